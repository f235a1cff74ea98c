package isomodel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/isomodel/pkg/epw"
	"github.com/chrissnell/isomodel/pkg/properties"
	"go.uber.org/zap"
)

// ErrInvalidModel is returned when a simulation is requested from a
// UserModel that has not been successfully loaded.
var ErrInvalidModel = errors.New("user model is not valid")

// Option configures a UserModel.
type Option func(*UserModel)

// WithLogger sets the logger used while loading.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(u *UserModel) {
		u.logger = logger
	}
}

// WithWeatherCache shares a weather cache between models.
func WithWeatherCache(cache *WeatherCache) Option {
	return func(u *UserModel) {
		u.cache = cache
	}
}

// WithRootDir keeps the weather file inside dir. The building's weather
// path must then be relative to the building file.
func WithRootDir(dir string) Option {
	return func(u *UserModel) {
		u.root = dir
	}
}

// UserModel is a building description loaded from .ism files together with
// its weather. Convert it into a MonthlyModel or HourlyModel to simulate.
type UserModel struct {
	components

	WeatherFilePath string
	Weather         *WeatherData
	EPW             *epw.Data

	dataFile string
	root     string
	valid    bool
	loadErr  error
	cache    *WeatherCache
	logger   *zap.SugaredLogger
}

// NewUserModel returns an empty, invalid model with every component default
// applied.
func NewUserModel(opts ...Option) *UserModel {
	u := &UserModel{
		components: defaultComponents(),
		loadErr:    errors.New("nothing loaded"),
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.logger == nil {
		u.logger = zap.NewNop().Sugar()
	}
	if u.cache == nil {
		u.cache = NewWeatherCache()
	}
	return u
}

// Load reads the building file, falling back to defaultsFiles for any key it
// does not define, then loads the weather file the building names.
func (u *UserModel) Load(buildingFile string, defaultsFiles ...string) error {
	u.dataFile = buildingFile
	err := u.load(buildingFile, defaultsFiles)
	u.valid = err == nil
	u.loadErr = err
	return err
}

func (u *UserModel) load(buildingFile string, defaultsFiles []string) error {
	for _, f := range append([]string{buildingFile}, defaultsFiles...) {
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("ISO model file not found: %w", err)
		}
	}

	u.logger.Debugf("loading building file %s", buildingFile)
	props, err := properties.Load(append([]string{buildingFile}, defaultsFiles...)...)
	if err != nil {
		return err
	}

	c := defaultComponents()
	if err := c.initialize(props); err != nil {
		return fmt.Errorf("%s: %w", buildingFile, err)
	}

	weatherPath, _ := props.Get("weatherfilepath")
	if weatherPath == "" {
		return fmt.Errorf("%s: weatherFilePath building parameter is missing", buildingFile)
	}

	u.components = c
	u.WeatherFilePath = weatherPath

	u.logger.Debugf("loading weather file %s", weatherPath)
	return u.LoadWeather()
}

// LoadWeather (re)loads the file named by WeatherFilePath.
func (u *UserModel) LoadWeather() error {
	path, err := u.resolveWeatherPath()
	if err != nil {
		return err
	}

	data, err := epw.Load(path)
	if err != nil {
		return err
	}
	u.setWeather(data)
	u.logger.Debugw("weather loaded", "location", data.Location, "latitude", data.Latitude, "longitude", data.Longitude)
	return nil
}

// LoadWeatherBlock loads weather from a flat block laid out as described by
// epw.BlockSize. Summaries are cached by latitude and longitude.
func (u *UserModel) LoadWeatherBlock(block []float64) error {
	data, err := epw.FromBlock(block)
	if err != nil {
		u.valid = false
		u.loadErr = err
		return err
	}
	u.setWeather(data)
	u.valid = true
	u.loadErr = nil
	return nil
}

func (u *UserModel) setWeather(data *epw.Data) {
	u.EPW = data
	if w, ok := u.cache.Get(data.Latitude, data.Longitude); ok {
		u.logger.Debugf("weather cache hit for (%v, %v)", data.Latitude, data.Longitude)
		u.Weather = w
		return
	}
	u.Weather = NewWeatherData(data)
	u.cache.Put(data.Latitude, data.Longitude, u.Weather)
}

// resolveWeatherPath uses WeatherFilePath as given when it exists and
// otherwise resolves it against the building file's directory.
func (u *UserModel) resolveWeatherPath() (string, error) {
	if u.root != "" {
		return u.rootedWeatherPath()
	}
	if _, err := os.Stat(u.WeatherFilePath); err == nil {
		return u.WeatherFilePath, nil
	}

	rel := strings.TrimLeft(filepath.FromSlash(strings.ReplaceAll(u.WeatherFilePath, `\`, "/")), string(filepath.Separator))
	base := filepath.Dir(filepath.FromSlash(strings.ReplaceAll(u.dataFile, `\`, "/")))
	path := filepath.Join(base, rel)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("weather file not found: %s", u.WeatherFilePath)
	}
	return path, nil
}

// rootedWeatherPath resolves WeatherFilePath against the building file's
// directory and fails when the result leaves the root directory.
func (u *UserModel) rootedWeatherPath() (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(u.WeatherFilePath, `\`, "/"))
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, string(filepath.Separator)) {
		return "", fmt.Errorf("weather file %s is outside the data directory", u.WeatherFilePath)
	}
	path := filepath.Join(filepath.Dir(u.dataFile), rel)
	within, err := filepath.Rel(u.root, path)
	if err != nil || !filepath.IsLocal(within) {
		return "", fmt.Errorf("weather file %s is outside the data directory", u.WeatherFilePath)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("weather file not found: %s", u.WeatherFilePath)
	}
	return path, nil
}

// Valid reports whether the model can be simulated.
func (u *UserModel) Valid() bool {
	return u.Validate() == nil
}

// Validate explains why the model cannot be simulated. Errors wrap
// ErrInvalidModel.
func (u *UserModel) Validate() error {
	if !u.valid {
		return fmt.Errorf("%w: %v", ErrInvalidModel, u.loadErr)
	}
	if u.Weather == nil || u.EPW == nil {
		return fmt.Errorf("%w: no weather loaded", ErrInvalidModel)
	}
	return u.components.validate()
}

// ToMonthlyModel copies the building into an independent monthly simulation.
func (u *UserModel) ToMonthlyModel() (*MonthlyModel, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &MonthlyModel{
		components: u.components.clone(),
		Weather:    u.Weather.clone(),
		logger:     u.logger,
	}, nil
}

// ToHourlyModel copies the building into an independent hourly simulation.
func (u *UserModel) ToHourlyModel() (*HourlyModel, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	data, err := epw.FromBlock(u.EPW.Block())
	if err != nil {
		return nil, err
	}
	return &HourlyModel{
		components: u.components.clone(),
		epw:        data,
		logger:     u.logger,
	}, nil
}
