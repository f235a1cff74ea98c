// Package storage defines the interface and implementations for simulation
// run storage backends.
package storage

import (
	"context"
	"errors"

	"github.com/chrissnell/isomodel/internal/types"
)

// ErrRunNotFound is returned by Get when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Store persists simulation runs.
type Store interface {
	Save(ctx context.Context, run *types.Run) error
	Get(ctx context.Context, id string) (*types.Run, error)
	// List returns up to limit runs, newest first, without their results.
	List(ctx context.Context, limit int) ([]*types.Run, error)
	Ping(ctx context.Context) error
	Close() error
}
