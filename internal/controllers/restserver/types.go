package restserver

import (
	"io"
	"time"

	"github.com/chrissnell/isomodel/internal/report"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/types"
)

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status              string                    `json:"status"`
	Version             string                    `json:"version"`
	Uptime              string                    `json:"uptime"`
	WeatherCacheEntries int                       `json:"weather_cache_entries"`
	Stores              map[string]storage.Health `json:"stores,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RunList is returned by GET /api/v1/runs.
type RunList struct {
	Runs  []*types.Run `json:"runs"`
	Count int          `json:"count"`
}

// runDocument is a run that can also be rendered as CSV.
type runDocument types.Run

func (d *runDocument) WriteCSV(w io.Writer) error {
	run := (*types.Run)(d)
	return report.WriteCSV(w, run.PeriodLabel(), run.Results)
}

func uptime(since time.Time) string {
	return time.Since(since).Round(time.Second).String()
}
