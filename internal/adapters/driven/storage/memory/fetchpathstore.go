// Package memory provides in-memory store implementations, used by tests
// and as a fallback when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// Ensure FetchPathStore implements the interface.
var _ driven.FetchPathStore = (*FetchPathStore)(nil)

// FetchPathStore is an in-memory implementation of driven.FetchPathStore.
type FetchPathStore struct {
	mu    sync.RWMutex
	paths map[string]map[string]string // class -> assignment -> path
}

// NewFetchPathStore creates a new in-memory fetch path store.
func NewFetchPathStore() *FetchPathStore {
	return &FetchPathStore{
		paths: make(map[string]map[string]string),
	}
}

// Save records the local path an assignment was fetched to.
func (s *FetchPathStore) Save(_ context.Context, class, assignment, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paths[class] == nil {
		s.paths[class] = make(map[string]string)
	}
	s.paths[class][assignment] = path
	return nil
}

// Get returns the recorded path for an assignment.
func (s *FetchPathStore) Get(_ context.Context, class, assignment string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.paths[class][assignment]
	if !ok {
		return "", domain.ErrNotFound
	}
	return path, nil
}

// List returns assignment name -> recorded path for a class.
func (s *FetchPathStore) List(_ context.Context, class string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]string, len(s.paths[class]))
	for assignment, path := range s.paths[class] {
		result[assignment] = path
	}
	return result, nil
}

// Delete removes the record for an assignment.
func (s *FetchPathStore) Delete(_ context.Context, class, assignment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.paths[class], assignment)
	return nil
}
