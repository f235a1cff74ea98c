// Package influxdb writes run results to InfluxDB 2.x.
package influxdb

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/config"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

// Measurement is the InfluxDB measurement every period is written to.
const Measurement = "isomodel_enduse"

// Publisher writes one point per period of a run.
type Publisher struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// New creates the client and checks the server's health.
func New(ctx context.Context, cfg *config.InfluxDBData) (*Publisher, error) {
	if cfg.URL == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("InfluxDB url, org and bucket are required")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		client.Close()
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return nil, fmt.Errorf("InfluxDB health check failed: %s", msg)
	}
	log.Infof("connected to InfluxDB at %s", cfg.URL)

	return &Publisher{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

// Points converts a run into points tagged by run, mode and building. Each
// point carries every end use and the period total as fields.
func Points(run *types.Run) []*write.Point {
	tags := map[string]string{
		"run_id":   run.ID,
		"mode":     string(run.Mode),
		"building": run.Building,
	}

	points := make([]*write.Point, len(run.Results))
	for i, u := range run.Results {
		fields := make(map[string]interface{}, isomodel.NumEndUses+1)
		for _, e := range isomodel.AllEndUses() {
			fields[e.String()] = u[e]
		}
		fields["Total"] = u.Total()
		points[i] = influxdb2.NewPoint(Measurement, tags, fields, run.PeriodStart(i))
	}
	return points
}

// Publish writes the run's points in one batch.
func (p *Publisher) Publish(ctx context.Context, run *types.Run) error {
	if err := p.writeAPI.WritePoint(ctx, Points(run)...); err != nil {
		return fmt.Errorf("failed to write run %s to InfluxDB: %w", run.ID, err)
	}
	return nil
}

// Close releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
