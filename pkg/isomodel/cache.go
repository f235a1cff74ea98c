package isomodel

import (
	"fmt"
	"os"
	"sync"

	"github.com/chrissnell/isomodel/pkg/solar"
	"github.com/chrissnell/isomodel/pkg/timeframe"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"
)

// LatLon keys the weather cache.
type LatLon struct {
	Lat float64
	Lon float64
}

// WeatherCache holds computed WeatherData by site so repeated simulations
// at the same location skip the solar calculation. It is safe for
// concurrent use.
type WeatherCache struct {
	mu      sync.RWMutex
	entries map[LatLon]*WeatherData
}

// NewWeatherCache returns an empty cache.
func NewWeatherCache() *WeatherCache {
	return &WeatherCache{entries: make(map[LatLon]*WeatherData)}
}

// Get returns a copy of the cached summary for the site.
func (c *WeatherCache) Get(lat, lon float64) (*WeatherData, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	w, ok := c.entries[LatLon{lat, lon}]
	if !ok {
		return nil, false
	}
	return w.clone(), true
}

// Put stores a copy of w for the site.
func (c *WeatherCache) Put(lat, lon float64, w *WeatherData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[LatLon{lat, lon}] = w.clone()
}

// Len returns the number of cached sites.
func (c *WeatherCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type cacheEntry struct {
	Lat    float64   `msgpack:"lat"`
	Lon    float64   `msgpack:"lon"`
	MSolar []float64 `msgpack:"msolar"`
	MHdbt  []float64 `msgpack:"mhdbt"`
	MHEgh  []float64 `msgpack:"mhegh"`
	MEgh   []float64 `msgpack:"megh"`
	Mdbt   []float64 `msgpack:"mdbt"`
	Mwind  []float64 `msgpack:"mwind"`
}

// Save writes the cache to path as MessagePack.
func (c *WeatherCache) Save(path string) error {
	c.mu.RLock()
	entries := make([]cacheEntry, 0, len(c.entries))
	for k, w := range c.entries {
		entries = append(entries, cacheEntry{
			Lat:    k.Lat,
			Lon:    k.Lon,
			MSolar: rawData(w.MSolar),
			MHdbt:  rawData(w.MHdbt),
			MHEgh:  rawData(w.MHEgh),
			MEgh:   w.MEgh,
			Mdbt:   w.Mdbt,
			Mwind:  w.Mwind,
		})
	}
	b, err := msgpack.Marshal(entries)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("could not encode weather cache: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("could not write weather cache: %w", err)
	}
	return nil
}

// LoadWeatherCache reads a cache written by Save. A missing file yields an
// empty cache.
func LoadWeatherCache(path string) (*WeatherCache, error) {
	c := NewWeatherCache()

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read weather cache: %w", err)
	}

	var entries []cacheEntry
	if err := msgpack.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("could not decode weather cache: %w", err)
	}

	for _, e := range entries {
		if len(e.MSolar) != timeframe.Months*solar.NumSurfaces ||
			len(e.MHdbt) != timeframe.Months*timeframe.HoursPerDay ||
			len(e.MHEgh) != timeframe.Months*timeframe.HoursPerDay ||
			len(e.MEgh) != timeframe.Months || len(e.Mdbt) != timeframe.Months || len(e.Mwind) != timeframe.Months {
			return nil, fmt.Errorf("weather cache entry (%v, %v) is malformed", e.Lat, e.Lon)
		}
		c.entries[LatLon{e.Lat, e.Lon}] = &WeatherData{
			MSolar: mat.NewDense(timeframe.Months, solar.NumSurfaces, e.MSolar),
			MHdbt:  mat.NewDense(timeframe.Months, timeframe.HoursPerDay, e.MHdbt),
			MHEgh:  mat.NewDense(timeframe.Months, timeframe.HoursPerDay, e.MHEgh),
			MEgh:   e.MEgh,
			Mdbt:   e.Mdbt,
			Mwind:  e.Mwind,
		}
	}
	return c, nil
}

func rawData(d *mat.Dense) []float64 {
	rows, cols := d.Dims()
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		out = append(out, d.RawRowView(r)...)
	}
	return out
}
