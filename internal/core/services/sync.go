package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// SyncEngine synchronises a batch of independent repositories. One
// outcome is produced per target, in input order. A single repository's
// failure never aborts the batch: student repositories are independent.
type SyncEngine struct {
	transport driven.GitTransport
	workers   int
}

// NewSyncEngine creates an engine running up to workers repository
// synchronisations concurrently. Workers below 1 are treated as 1.
func NewSyncEngine(transport driven.GitTransport, workers int) *SyncEngine {
	if workers < 1 {
		workers = 1
	}
	return &SyncEngine{
		transport: transport,
		workers:   workers,
	}
}

// Run processes every target and returns one outcome per target,
// preserving input order. Targets map 1:1 to distinct local paths, so
// they are processed concurrently with no cross-target locking; the
// per-run HashCache is the only shared state.
//
// Re-running with the same targets and an unchanged remote yields
// StatusSkipped for every target that previously succeeded; a target
// that previously failed is retried from scratch. The engine carries no
// cross-run memory.
func (e *SyncEngine) Run(ctx context.Context, targets []domain.SyncTarget) []domain.SyncOutcome {
	outcomes := make([]domain.SyncOutcome, len(targets))
	cache := NewHashCache(e.transport)

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := e.workers
	if workers > len(targets) {
		workers = len(targets)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = e.syncOne(ctx, cache, targets[idx])
			}
		}()
	}

	for idx := range targets {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// syncOne processes a single target.
func (e *SyncEngine) syncOne(ctx context.Context, cache *HashCache, target domain.SyncTarget) domain.SyncOutcome {
	// Coarse cancellation: give up before starting a target, never
	// mid-flight, since an interrupted clone or pull could corrupt the
	// local copy.
	if err := ctx.Err(); err != nil {
		return domain.SyncOutcome{
			Target: target,
			Status: domain.StatusFailed,
			Err:    fmt.Errorf("batch cancelled: %w", err),
		}
	}

	localExists := e.transport.IsRepo(target.LocalPath)

	var localHash string
	if localExists {
		localHash, _ = cache.GetOrRead(ctx, target.LocalPath)
	}

	action := Decide(localExists, localHash, target.RemoteHash)
	logger.Debug("sync %s: %s", target.LocalPath, action)

	switch action {
	case domain.ActionNone:
		return domain.SyncOutcome{Target: target, Status: domain.StatusSkipped}

	case domain.ActionClone:
		if err := e.transport.Clone(ctx, target.Repo.CloneURL(), target.LocalPath); err != nil {
			return domain.SyncOutcome{
				Target: target,
				Status: domain.StatusFailed,
				Err:    fmt.Errorf("clone %s: %w", target.Repo.CloneURL(), err),
			}
		}
		return domain.SyncOutcome{Target: target, Status: domain.StatusCloned}

	default: // domain.ActionPull
		if err := e.transport.Pull(ctx, target.LocalPath, target.Repo.CloneURL()); err != nil {
			return domain.SyncOutcome{
				Target: target,
				Status: domain.StatusFailed,
				Err:    fmt.Errorf("pull %s: %w", target.LocalPath, err),
			}
		}
		return domain.SyncOutcome{Target: target, Status: domain.StatusPulled}
	}
}
