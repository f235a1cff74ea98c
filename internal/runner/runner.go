// Package runner loads buildings, simulates them and hands the results to
// the configured store and publishers.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/isomodel/internal/publisher"
	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/types"
	"github.com/chrissnell/isomodel/pkg/isomodel"
)

// ErrBadRequest wraps errors caused by the request rather than the runner.
var ErrBadRequest = errors.New("bad simulation request")

// Request describes one simulation.
type Request struct {
	Building string     `json:"building"`
	Defaults string     `json:"defaults,omitempty"`
	Mode     types.Mode `json:"mode,omitempty"`

	// Root, when set, is the directory Building, Defaults and the weather
	// file they name must stay inside. Building and Defaults are relative
	// to it. It is never read from a request body.
	Root string `json:"-"`
}

// Runner executes simulations. It is safe for concurrent use.
type Runner struct {
	cache        *isomodel.WeatherCache
	store        storage.Store
	publishers   []publisher.Publisher
	defaultsFile string
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore saves every run to s.
func WithStore(s storage.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithPublishers sends every run to each publisher.
func WithPublishers(p ...publisher.Publisher) Option {
	return func(r *Runner) { r.publishers = append(r.publishers, p...) }
}

// WithWeatherCache shares a weather cache across runs.
func WithWeatherCache(c *isomodel.WeatherCache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithDefaultsFile is used when a request names no defaults file.
func WithDefaultsFile(path string) Option {
	return func(r *Runner) { r.defaultsFile = path }
}

// WithLogger sets the runner's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *Runner) { r.logger = l }
}

// New returns a runner with no store or publishers unless options add them.
func New(opts ...Option) *Runner {
	r := &Runner{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = isomodel.NewWeatherCache()
	}
	if r.logger == nil {
		r.logger = zap.NewNop().Sugar()
	}
	return r
}

// Store returns the configured store, or nil.
func (r *Runner) Store() storage.Store {
	return r.store
}

// WeatherCache returns the cache shared by every run.
func (r *Runner) WeatherCache() *isomodel.WeatherCache {
	return r.cache
}

// Run simulates the request. A store failure fails the run; publisher
// failures are only logged.
func (r *Runner) Run(ctx context.Context, req Request) (*types.Run, error) {
	mode, err := types.ParseMode(string(req.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if req.Building == "" {
		return nil, fmt.Errorf("%w: building file is required", ErrBadRequest)
	}

	modelOpts := []isomodel.Option{isomodel.WithWeatherCache(r.cache), isomodel.WithLogger(r.logger)}
	building, defaults := req.Building, req.Defaults
	if req.Root != "" {
		if building, err = rooted(req.Root, building); err != nil {
			return nil, err
		}
		if defaults != "" {
			if defaults, err = rooted(req.Root, defaults); err != nil {
				return nil, err
			}
		}
		modelOpts = append(modelOpts, isomodel.WithRootDir(req.Root))
	}
	recordedDefaults := req.Defaults
	if defaults == "" {
		defaults, recordedDefaults = r.defaultsFile, r.defaultsFile
	}

	start := r.now()
	u := isomodel.NewUserModel(modelOpts...)
	var files []string
	if defaults != "" {
		files = append(files, defaults)
	}
	if err := u.Load(building, files...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := simulate(u, mode)
	if err != nil {
		return nil, err
	}

	run := &types.Run{
		ID:        uuid.NewString(),
		CreatedAt: start.UTC(),
		Duration:  r.now().Sub(start),
		Mode:      mode,
		Building:  req.Building,
		Defaults:  recordedDefaults,
		Location:  u.EPW.Location,
		Results:   results,
		Total:     isomodel.TotalEnergyUse(results),
	}
	r.logger.Infow("simulation complete", "id", run.ID, "mode", mode, "building", req.Building,
		"periods", len(results), "total", run.Total, "duration", run.Duration)

	if r.store != nil {
		if err := r.store.Save(ctx, run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
	}

	for _, p := range r.publishers {
		if err := p.Publish(ctx, run); err != nil {
			r.logger.Errorw("failed to publish run", "id", run.ID, "error", err)
		}
	}

	return run, nil
}

// rooted joins a request path onto root. Absolute paths and paths that
// climb out of root are rejected before anything is opened.
func rooted(root, path string) (string, error) {
	local := filepath.FromSlash(path)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q must be a relative path inside the data directory", ErrBadRequest, path)
	}
	return filepath.Join(root, local), nil
}

func simulate(u *isomodel.UserModel, mode types.Mode) ([]isomodel.EndUses, error) {
	if mode == types.ModeMonthly {
		m, err := u.ToMonthlyModel()
		if err != nil {
			return nil, err
		}
		return m.Simulate()
	}
	h, err := u.ToHourlyModel()
	if err != nil {
		return nil, err
	}
	return h.Simulate(mode == types.ModeHourlyByMonth)
}

// Close closes the store and every publisher.
func (r *Runner) Close() error {
	for _, p := range r.publishers {
		p.Close()
	}
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}
