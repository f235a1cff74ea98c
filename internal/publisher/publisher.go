// Package publisher fans completed runs out to external systems.
package publisher

import (
	"context"

	"github.com/chrissnell/isomodel/internal/types"
)

// Publisher sends a completed run somewhere.
type Publisher interface {
	Publish(ctx context.Context, run *types.Run) error
	Close()
}
