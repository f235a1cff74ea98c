package influxdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/config"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

func TestPoints(t *testing.T) {
	results := make([]isomodel.EndUses, 3)
	results[2][isomodel.ElecFans] = 0.25
	results[2][isomodel.GasDHW] = 0.5
	run := &types.Run{
		ID:        "r1",
		CreatedAt: time.Date(2026, time.August, 9, 0, 0, 0, 0, time.UTC),
		Mode:      types.ModeHourly,
		Building:  "office.ism",
		Results:   results,
	}

	points := Points(run)
	require.Len(t, points, 3)

	p := points[2]
	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, time.Date(2026, time.January, 1, 2, 0, 0, 0, time.UTC), p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"run_id": "r1", "mode": "hourly", "building": "office.ism"}, tags)

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Len(t, fields, int(isomodel.NumEndUses)+1)
	assert.Equal(t, 0.25, fields["ElecFans"])
	assert.Equal(t, 0.75, fields["Total"])
}

func TestNewRequiresSettings(t *testing.T) {
	_, err := New(context.Background(), &config.InfluxDBData{URL: "http://localhost:8086"})
	assert.Error(t, err)
}
