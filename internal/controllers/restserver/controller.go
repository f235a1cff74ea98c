package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/runner"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/pkg/config"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	dataDir    string
	Server     http.Server
	runner     *runner.Runner
	health     *storage.HealthManager
	startedAt  time.Time
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. Simulation requests may
// only name files under dataDir. health may be nil when no store is
// configured.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, dataDir string, r *runner.Runner, health *storage.HealthManager, logger *zap.SugaredLogger) (*Controller, error) {
	if r == nil {
		return nil, fmt.Errorf("REST server requires a simulation runner")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = config.DefaultListenAddr
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %d", config.DefaultPort)
		rc.Port = config.DefaultPort
	}

	if rc.RunLimit <= 0 {
		rc.RunLimit = config.DefaultRunLimit
	}

	if dataDir == "" {
		dataDir = config.DefaultDataDir
	}
	logger.Infof("simulation requests are limited to files under %s", dataDir)

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		dataDir:    dataDir,
		runner:     r,
		health:     health,
		startedAt:  time.Now(),
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.Handler()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the router wrapped with CORS handling.
func (c *Controller) Handler() http.Handler {
	origins := c.restConfig.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(c.setupRouter())
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.loggingMiddleware)

	api := router.PathPrefix(apiPrefix).Subrouter()
	for _, e := range c.endpoints() {
		api.HandleFunc(e.Path, e.handler).Methods(e.Method)
	}

	router.HandleFunc("/", c.serveIndex).Methods(http.MethodGet)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (c *Controller) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		c.logger.Debugw("http request", "method", req.Method, "path", req.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}
