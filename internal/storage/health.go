package storage

import (
	"context"
	"sync"
	"time"

	"github.com/chrissnell/isomodel/internal/log"
)

// Health is the last known state of a store.
type Health struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthManager keeps store health in memory
type HealthManager struct {
	mu     sync.RWMutex
	health map[string]Health
}

// NewHealthManager creates a new health manager
func NewHealthManager() *HealthManager {
	return &HealthManager{
		health: make(map[string]Health),
	}
}

// UpdateHealth records the outcome of a health check for a store
func (hm *HealthManager) UpdateHealth(name string, err error) {
	h := Health{Status: StatusHealthy, LastCheck: time.Now()}
	if err != nil {
		h.Status = StatusUnhealthy
		h.Message = err.Error()
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.health[name] = h
}

// GetHealth returns a copy of every recorded state
func (hm *HealthManager) GetHealth() map[string]Health {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	out := make(map[string]Health, len(hm.health))
	for k, v := range hm.health {
		out[k] = v
	}
	return out
}

// StartHealthMonitor pings store every interval until ctx is cancelled
func StartHealthMonitor(ctx context.Context, wg *sync.WaitGroup, hm *HealthManager, name string, store Store, interval time.Duration) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		check := func() {
			err := store.Ping(ctx)
			hm.UpdateHealth(name, err)
			if err != nil {
				log.Errorf("%s store health check failed: %v", name, err)
			}
		}
		check()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				check()
			case <-ctx.Done():
				log.Infof("stopping %s health monitor", name)
				return
			}
		}
	}()
}
