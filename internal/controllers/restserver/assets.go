package restserver

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/chrissnell/isomodel/internal/constants"
	"github.com/chrissnell/isomodel/internal/types"
)

const apiPrefix = "/api/v1"

//go:embed assets/index.html.tmpl
var assetsFS embed.FS

var indexTemplate = template.Must(template.ParseFS(assetsFS, "assets/index.html.tmpl"))

// endpoint is one API route. setupRouter registers it and the index page
// describes it.
type endpoint struct {
	Method  string
	Path    string
	Summary string
	handler http.HandlerFunc
}

func (c *Controller) endpoints() []endpoint {
	h := c.handlers
	return []endpoint{
		{http.MethodGet, "/health", "server and store health", h.GetHealth},
		{http.MethodPost, "/simulations", `run a simulation; body {"building": "...", "defaults": "...", "mode": "..."}`, h.CreateSimulation},
		{http.MethodGet, "/runs", "recent runs, newest first; ?limit=N", h.ListRuns},
		{http.MethodGet, "/runs/{id}", "one run with its results", h.GetRun},
	}
}

type indexPage struct {
	Version   string
	Prefix    string
	Modes     []types.Mode
	Endpoints []endpoint
}

// serveIndex renders the API index.
func (c *Controller) serveIndex(w http.ResponseWriter, req *http.Request) {
	page := indexPage{
		Version:   constants.Version,
		Prefix:    apiPrefix,
		Modes:     []types.Mode{types.ModeMonthly, types.ModeHourly, types.ModeHourlyByMonth},
		Endpoints: c.endpoints(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		c.logger.Errorf("error rendering index: %v", err)
	}
}
