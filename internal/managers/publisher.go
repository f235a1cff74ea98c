package managers

import (
	"context"
	"fmt"

	"github.com/chrissnell/isomodel/internal/publisher"
	"github.com/chrissnell/isomodel/internal/publisher/influxdb"
	"github.com/chrissnell/isomodel/internal/publisher/mqtt"
	"github.com/chrissnell/isomodel/pkg/config"
)

// NewPublishers connects every configured publisher. On error the ones
// already connected are closed.
func NewPublishers(ctx context.Context, c *config.ConfigData) ([]publisher.Publisher, error) {
	var pubs []publisher.Publisher

	closeAll := func() {
		for _, p := range pubs {
			p.Close()
		}
	}

	if c.MQTT != nil && c.MQTT.Broker != "" {
		p, err := mqtt.New(c.MQTT)
		if err != nil {
			return nil, fmt.Errorf("could not add MQTT publisher: %w", err)
		}
		pubs = append(pubs, p)
	}

	if c.InfluxDB != nil && c.InfluxDB.URL != "" {
		p, err := influxdb.New(ctx, c.InfluxDB)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("could not add InfluxDB publisher: %w", err)
		}
		pubs = append(pubs, p)
	}

	return pubs, nil
}
