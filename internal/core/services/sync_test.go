package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
)

func target(n int, remoteHash string) domain.SyncTarget {
	return domain.SyncTarget{
		Repo: domain.RemoteRepo{
			Host:     "cs.example.edu",
			Port:     22,
			Username: "prof",
			Path:     fmt.Sprintf("/home/student%d/cs100/hw1.git", n),
		},
		RemoteHash: remoteHash,
		LocalPath:  fmt.Sprintf("/tmp/subs/student%d", n),
	}
}

func TestSyncEngine_Run_ClonesMissing(t *testing.T) {
	transport := newMockTransport()
	engine := NewSyncEngine(transport, 1)

	outcomes := engine.Run(context.Background(), []domain.SyncTarget{target(1, "abc")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusCloned, outcomes[0].Status)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, []string{"/tmp/subs/student1"}, transport.cloneCalls)
}

func TestSyncEngine_Run_SkipsCurrent(t *testing.T) {
	transport := newMockTransport()
	transport.repos["/tmp/subs/student1"] = "abc"
	engine := NewSyncEngine(transport, 1)

	outcomes := engine.Run(context.Background(), []domain.SyncTarget{target(1, "abc")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusSkipped, outcomes[0].Status)
	// No transport mutation was issued for a current target.
	assert.Zero(t, transport.mutationCount())
}

func TestSyncEngine_Run_PullsStale(t *testing.T) {
	transport := newMockTransport()
	transport.repos["/tmp/subs/student1"] = "old"
	engine := NewSyncEngine(transport, 1)

	outcomes := engine.Run(context.Background(), []domain.SyncTarget{target(1, "new")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusPulled, outcomes[0].Status)
	assert.Equal(t, []string{"/tmp/subs/student1"}, transport.pullCalls)
	assert.Empty(t, transport.cloneCalls)
}

func TestSyncEngine_Run_PreservesInputOrder(t *testing.T) {
	transport := newMockTransport()
	transport.repos["/tmp/subs/student2"] = "abc"
	engine := NewSyncEngine(transport, 4)

	targets := []domain.SyncTarget{
		target(1, "abc"), // missing -> cloned
		target(2, "abc"), // current -> skipped
		target(3, "abc"), // missing -> cloned
	}
	outcomes := engine.Run(context.Background(), targets)

	require.Len(t, outcomes, 3)
	assert.Equal(t, targets[0], outcomes[0].Target)
	assert.Equal(t, targets[1], outcomes[1].Target)
	assert.Equal(t, targets[2], outcomes[2].Target)
	assert.Equal(t, domain.StatusCloned, outcomes[0].Status)
	assert.Equal(t, domain.StatusSkipped, outcomes[1].Status)
	assert.Equal(t, domain.StatusCloned, outcomes[2].Status)
}

func TestSyncEngine_Run_FailureIsolation(t *testing.T) {
	transport := newMockTransport()
	transport.cloneErrs["/tmp/subs/student2"] = errors.New("network unreachable")
	engine := NewSyncEngine(transport, 2)

	targets := []domain.SyncTarget{target(1, "abc"), target(2, "abc"), target(3, "abc")}
	outcomes := engine.Run(context.Background(), targets)

	require.Len(t, outcomes, 3)
	assert.Equal(t, domain.StatusCloned, outcomes[0].Status)
	assert.Equal(t, domain.StatusFailed, outcomes[1].Status)
	assert.ErrorContains(t, outcomes[1].Err, "network unreachable")
	assert.Equal(t, domain.StatusCloned, outcomes[2].Status)
}

func TestSyncEngine_Run_PullFailure(t *testing.T) {
	transport := newMockTransport()
	transport.repos["/tmp/subs/student1"] = "old"
	transport.pullErrs["/tmp/subs/student1"] = errors.New("non-zero exit")
	engine := NewSyncEngine(transport, 1)

	outcomes := engine.Run(context.Background(), []domain.SyncTarget{target(1, "new")})

	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.StatusFailed, outcomes[0].Status)
	assert.ErrorContains(t, outcomes[0].Err, "non-zero exit")
}

func TestSyncEngine_Run_Idempotent(t *testing.T) {
	transport := newMockTransport()
	engine := NewSyncEngine(transport, 2)

	tgt := target(1, "abc")
	transport.remoteHashes[tgt.Repo.CloneURL()] = "abc"

	first := engine.Run(context.Background(), []domain.SyncTarget{tgt})
	require.Equal(t, domain.StatusCloned, first[0].Status)

	// Unchanged remote: the second run must be a no-op.
	second := engine.Run(context.Background(), []domain.SyncTarget{tgt})
	require.Equal(t, domain.StatusSkipped, second[0].Status)
	assert.Equal(t, 1, transport.mutationCount())
}

func TestSyncEngine_Run_RetriesPreviousFailure(t *testing.T) {
	transport := newMockTransport()
	engine := NewSyncEngine(transport, 1)

	tgt := target(1, "abc")
	transport.remoteHashes[tgt.Repo.CloneURL()] = "abc"
	transport.cloneErrs[tgt.LocalPath] = errors.New("flaky network")

	first := engine.Run(context.Background(), []domain.SyncTarget{tgt})
	require.Equal(t, domain.StatusFailed, first[0].Status)

	// The engine carries no failure memory: the target is retried.
	delete(transport.cloneErrs, tgt.LocalPath)
	second := engine.Run(context.Background(), []domain.SyncTarget{tgt})
	assert.Equal(t, domain.StatusCloned, second[0].Status)
}

func TestSyncEngine_Run_EmptyBatch(t *testing.T) {
	engine := NewSyncEngine(newMockTransport(), 4)

	outcomes := engine.Run(context.Background(), nil)

	assert.Empty(t, outcomes)
}

func TestSyncEngine_Run_CancelledContext(t *testing.T) {
	transport := newMockTransport()
	engine := NewSyncEngine(transport, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := engine.Run(ctx, []domain.SyncTarget{target(1, "abc"), target(2, "abc")})

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, domain.StatusFailed, o.Status)
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Zero(t, transport.mutationCount())
}

func TestSyncEngine_Run_SharedHashReadOnce(t *testing.T) {
	// Two targets pointing at the same local path (not the normal 1:1
	// mapping, but the cache must still read the hash only once).
	transport := newMockTransport()
	transport.repos["/tmp/subs/student1"] = "abc"
	engine := NewSyncEngine(transport, 1)

	tgt := target(1, "abc")
	outcomes := engine.Run(context.Background(), []domain.SyncTarget{tgt, tgt})

	require.Len(t, outcomes, 2)
	assert.Equal(t, 1, transport.headCallCount("/tmp/subs/student1"))
}
