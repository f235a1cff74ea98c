package managers

import (
	"context"
	"fmt"

	"github.com/chrissnell/isomodel/internal/storage"
	"github.com/chrissnell/isomodel/internal/storage/sqlite"
	"github.com/chrissnell/isomodel/internal/storage/timescaledb"
	"github.com/chrissnell/isomodel/pkg/config"
)

// ErrNoStore is returned by NewStore when no storage backend is configured.
var ErrNoStore = fmt.Errorf("no storage backend configured")

// NewStore opens the configured run store and returns it with its backend
// name. SQLite is preferred when both backends are configured.
func NewStore(ctx context.Context, c config.StorageData) (storage.Store, string, error) {
	if c.SQLite != nil && c.SQLite.Path != "" {
		s, err := sqlite.New(ctx, c.SQLite.Path)
		if err != nil {
			return nil, "", fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
		return s, "sqlite", nil
	}

	if c.TimescaleDB != nil && c.TimescaleDB.ConnectionString != "" {
		s, err := timescaledb.New(ctx, c.TimescaleDB.ConnectionString)
		if err != nil {
			return nil, "", fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
		return s, "timescaledb", nil
	}

	return nil, "", ErrNoStore
}
