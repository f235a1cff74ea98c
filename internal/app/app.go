package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/isomodel/internal/controllers/restserver"
	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/managers"
	"github.com/chrissnell/isomodel/internal/runner"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/pkg/config"
	"github.com/chrissnell/isomodel/pkg/isomodel"
	"go.uber.org/zap"
)

const healthCheckInterval = time.Minute

// Services are the pieces a simulation needs, built from the configuration.
type Services struct {
	Runner    *runner.Runner
	Store     storage.Store
	StoreName string

	cache     *isomodel.WeatherCache
	cachePath string
}

// Build creates the runner. With useStore the configured store is opened;
// Store stays nil when none is configured. With usePublishers every
// configured publisher is connected.
func Build(ctx context.Context, cfg *config.ConfigData, logger *zap.SugaredLogger, useStore, usePublishers bool) (*Services, error) {
	s := &Services{cachePath: cfg.Simulation.WeatherCachePath}

	if s.cachePath != "" {
		cache, err := isomodel.LoadWeatherCache(s.cachePath)
		if err != nil {
			return nil, err
		}
		logger.Infof("loaded %d cached weather sites from %s", cache.Len(), s.cachePath)
		s.cache = cache
	} else {
		s.cache = isomodel.NewWeatherCache()
	}

	opts := []runner.Option{
		runner.WithWeatherCache(s.cache),
		runner.WithDefaultsFile(cfg.Simulation.DefaultsFile),
		runner.WithLogger(logger),
	}

	if useStore {
		store, name, err := managers.NewStore(ctx, cfg.Storage)
		switch {
		case errors.Is(err, managers.ErrNoStore):
			logger.Info("no run store configured; runs will not be saved")
		case err != nil:
			return nil, err
		default:
			s.Store, s.StoreName = store, name
			opts = append(opts, runner.WithStore(store))
		}
	}

	if usePublishers {
		pubs, err := managers.NewPublishers(ctx, cfg)
		if err != nil {
			if s.Store != nil {
				s.Store.Close()
			}
			return nil, err
		}
		opts = append(opts, runner.WithPublishers(pubs...))
	}

	s.Runner = runner.New(opts...)
	return s, nil
}

// Close persists the weather cache and closes the store and publishers.
func (s *Services) Close() error {
	var errs []error
	if s.cachePath != "" {
		if err := s.cache.Save(s.cachePath); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.Runner.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()

	services, err := Build(ctx, cfg, a.logger, true, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := services.Close(); err != nil {
			log.Errorf("error closing services: %v", err)
		}
	}()

	var health *storage.HealthManager
	if services.Store != nil {
		health = storage.NewHealthManager()
		storage.StartHealthMonitor(ctx, &wg, health, services.StoreName, services.Store, healthCheckInterval)
	}

	rest, err := restserver.NewController(ctx, &wg, *cfg.REST, cfg.Simulation.DataDir, services.Runner, health, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
