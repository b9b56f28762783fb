package services

import (
	"context"
	"sync"

	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// HashCache memoises the last observed local HEAD hash per repository
// path, so one synchronisation batch invokes the transport at most once
// per path. A fresh cache is created per batch and never shared across
// batches; the authoritative comparison is always against the server's
// freshly supplied remote hash.
type HashCache struct {
	transport driven.GitTransport

	mu      sync.Mutex
	entries map[string]hashEntry
}

type hashEntry struct {
	hash string
	ok   bool
}

// NewHashCache creates an empty cache reading through the transport.
func NewHashCache(transport driven.GitTransport) *HashCache {
	return &HashCache{
		transport: transport,
		entries:   make(map[string]hashEntry),
	}
}

// GetOrRead returns the HEAD hash of the repository at path, reading it
// through the transport on the first call for that path and from memory
// afterwards. ok is false when the path is not a readable repository;
// that result is cached too. First writer wins on a racing path.
func (c *HashCache) GetOrRead(ctx context.Context, path string) (hash string, ok bool) {
	c.mu.Lock()
	if entry, cached := c.entries[path]; cached {
		c.mu.Unlock()
		return entry.hash, entry.ok
	}
	c.mu.Unlock()

	// Read outside the lock: transport calls can block on I/O.
	entry := hashEntry{}
	if h, err := c.transport.HeadHash(ctx, path); err == nil {
		entry = hashEntry{hash: h, ok: true}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prior, cached := c.entries[path]; cached {
		return prior.hash, prior.ok
	}
	c.entries[path] = entry
	return entry.hash, entry.ok
}

// Len returns the number of cached paths.
func (c *HashCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
