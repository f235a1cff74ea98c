package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/chrissnell/isomodel/internal/constants"
	"github.com/chrissnell/isomodel/internal/runner"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/pkg/responseformat"
)

const maxRequestBody = 1 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	// Errors have no CSV form.
	if req.URL.Query().Get("format") == responseformat.FormatCSV {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
		return
	}
	if err := h.formatter.WriteResponseStatus(w, req, status, ErrorResponse{Error: msg}, nil); err != nil {
		h.controller.logger.Errorf("error writing error response: %v", err)
	}
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteResponseStatus(w, req, status, data, nil); err != nil {
		h.controller.logger.Errorf("error writing response: %v", err)
	}
}

// GetHealth reports the server version and the health of every store.
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := HealthResponse{
		Status:              storage.StatusHealthy,
		Version:             constants.Version,
		Uptime:              uptime(h.controller.startedAt),
		WeatherCacheEntries: h.controller.runner.WeatherCache().Len(),
	}

	status := http.StatusOK
	if h.controller.health != nil {
		resp.Stores = h.controller.health.GetHealth()
		for _, s := range resp.Stores {
			if s.Status != storage.StatusHealthy {
				resp.Status = storage.StatusUnhealthy
				status = http.StatusServiceUnavailable
			}
		}
	}

	h.write(w, req, status, resp)
}

// CreateSimulation runs the posted request and returns the run.
func (h *Handlers) CreateSimulation(w http.ResponseWriter, req *http.Request) {
	var sr runner.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sr); err != nil {
		h.writeError(w, req, http.StatusBadRequest, "invalid simulation request: "+err.Error())
		return
	}

	sr.Root = h.controller.dataDir
	run, err := h.controller.runner.Run(req.Context(), sr)
	if err != nil {
		if errors.Is(err, runner.ErrBadRequest) {
			h.writeError(w, req, http.StatusBadRequest, err.Error())
			return
		}
		h.controller.logger.Errorf("simulation failed: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "simulation failed: "+err.Error())
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+run.ID)
	h.write(w, req, http.StatusCreated, (*runDocument)(run))
}

// ListRuns returns the newest runs without their results.
func (h *Handlers) ListRuns(w http.ResponseWriter, req *http.Request) {
	store := h.controller.runner.Store()
	if store == nil {
		h.writeError(w, req, http.StatusServiceUnavailable, "no run store configured")
		return
	}

	ceiling := h.controller.restConfig.RunLimit
	limit := ceiling
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			h.writeError(w, req, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, ceiling)
	}

	runs, err := store.List(req.Context(), limit)
	if err != nil {
		h.controller.logger.Errorf("error listing runs: %v", err)
		h.writeError(w, req, http.StatusInternalServerError, "error listing runs")
		return
	}

	h.write(w, req, http.StatusOK, RunList{Runs: runs, Count: len(runs)})
}

// GetRun returns one run with its results.
func (h *Handlers) GetRun(w http.ResponseWriter, req *http.Request) {
	store := h.controller.runner.Store()
	if store == nil {
		h.writeError(w, req, http.StatusServiceUnavailable, "no run store configured")
		return
	}

	id := mux.Vars(req)["id"]
	run, err := store.Get(req.Context(), id)
	if errors.Is(err, storage.ErrRunNotFound) {
		h.writeError(w, req, http.StatusNotFound, "run not found: "+id)
		return
	}
	if err != nil {
		h.controller.logger.Errorf("error fetching run %s: %v", id, err)
		h.writeError(w, req, http.StatusInternalServerError, "error fetching run")
		return
	}

	h.write(w, req, http.StatusOK, (*runDocument)(run))
}
