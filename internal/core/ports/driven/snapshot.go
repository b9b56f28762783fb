package driven

import (
	"context"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
)

// SnapshotProvider fetches the server's information document. A fresh
// snapshot is fetched per batch; the core never caches one across
// invocations.
type SnapshotProvider interface {
	// Fetch retrieves the current snapshot from the server.
	Fetch(ctx context.Context) (*domain.Snapshot, error)
}
