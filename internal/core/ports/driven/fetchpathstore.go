package driven

import "context"

// FetchPathStore remembers where an assignment's submissions were last
// fetched to on the local machine. This is client-side convenience state,
// never a correctness oracle: synchronisation always compares against the
// server's fresh snapshot.
type FetchPathStore interface {
	// Save records the local path an assignment was fetched to.
	Save(ctx context.Context, class, assignment, path string) error

	// Get returns the recorded path for an assignment.
	// Returns domain.ErrNotFound when none was recorded.
	Get(ctx context.Context, class, assignment string) (string, error)

	// List returns assignment name -> recorded path for a class.
	List(ctx context.Context, class string) (map[string]string, error)

	// Delete removes the record for an assignment.
	Delete(ctx context.Context, class, assignment string) error
}
