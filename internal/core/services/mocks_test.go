package services

import (
	"context"
	"sync"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockTransport implements driven.GitTransport over an in-memory map of
// local repositories. Mutating calls update the map so idempotence can
// be exercised across consecutive runs.
type mockTransport struct {
	mu sync.Mutex

	// repos maps an existing local path to its HEAD hash.
	repos map[string]string

	// remoteHashes maps a clone URL to the hash a successful clone or
	// pull leaves behind. Unknown URLs clone at hash "head".
	remoteHashes map[string]string

	// cloneErrs / pullErrs inject failures per local path.
	cloneErrs map[string]error
	pullErrs  map[string]error

	headCalls  map[string]int
	cloneCalls []string
	pullCalls  []string
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		repos:        make(map[string]string),
		remoteHashes: make(map[string]string),
		cloneErrs:    make(map[string]error),
		pullErrs:     make(map[string]error),
		headCalls:    make(map[string]int),
	}
}

func (m *mockTransport) IsRepo(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.repos[path]
	return ok
}

func (m *mockTransport) HeadHash(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.headCalls[path]++
	hash, ok := m.repos[path]
	if !ok {
		return "", domain.ErrNotRepository
	}
	return hash, nil
}

func (m *mockTransport) Clone(_ context.Context, url, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cloneCalls = append(m.cloneCalls, path)
	if err := m.cloneErrs[path]; err != nil {
		return err
	}
	hash, ok := m.remoteHashes[url]
	if !ok {
		hash = "head"
	}
	m.repos[path] = hash
	return nil
}

func (m *mockTransport) Pull(_ context.Context, path, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pullCalls = append(m.pullCalls, path)
	if err := m.pullErrs[path]; err != nil {
		return err
	}
	hash, ok := m.remoteHashes[url]
	if !ok {
		hash = "head"
	}
	m.repos[path] = hash
	return nil
}

func (m *mockTransport) headCallCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headCalls[path]
}

func (m *mockTransport) mutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cloneCalls) + len(m.pullCalls)
}

// scriptedChannel implements driven.ServerChannel with a pre-filled
// message stream. Each Subscribe call receives the scripted messages
// carrying its tag, mirroring the per-tag fan-out of the real channel.
type scriptedChannel struct {
	mu     sync.Mutex
	msgs   []driven.EventMessage
	lost   bool     // when set, subscriptions close after their messages
	events []string // "tag payload" per LogEvent call
	logErr error
}

// newScriptedChannel returns a channel whose subscriptions deliver the
// given messages and then stay open (never close) so timeout handling
// can be exercised.
func newScriptedChannel(msgs ...driven.EventMessage) *scriptedChannel {
	return &scriptedChannel{msgs: msgs}
}

func (c *scriptedChannel) LogEvent(_ context.Context, tag, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.logErr != nil {
		return c.logErr
	}
	c.events = append(c.events, tag+" "+payload)
	return nil
}

func (c *scriptedChannel) Subscribe(tag string) <-chan driven.EventMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := make(chan driven.EventMessage, len(c.msgs)+16)
	for _, m := range c.msgs {
		if m.Tag == tag {
			sub <- m
		}
	}
	if c.lost {
		close(sub)
	}
	return sub
}

// mockSnapshotProvider implements driven.SnapshotProvider.
type mockSnapshotProvider struct {
	snapshot *domain.Snapshot
	err      error
}

func (p *mockSnapshotProvider) Fetch(_ context.Context) (*domain.Snapshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.snapshot, nil
}
