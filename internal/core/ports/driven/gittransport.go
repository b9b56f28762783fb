package driven

import "context"

// GitTransport wraps the git operations the sync engine needs. The core
// never touches a repository directly; implementations shell out to the
// git executable or equivalent.
//
// All errors returned from HeadHash, Clone and Pull are transport errors:
// the underlying git/ssh operation failed (bad credentials, network
// unreachable, non-zero exit, non-repository directory).
type GitTransport interface {
	// IsRepo reports whether path holds a usable non-bare git
	// repository. It never fails; an unreadable path is not a repo.
	IsRepo(path string) bool

	// HeadHash returns the HEAD commit hash of the repository at path.
	// The error wraps domain.ErrNotRepository when path is not a valid
	// repository.
	HeadHash(ctx context.Context, path string) (string, error)

	// Clone creates a fresh local copy of url at path.
	Clone(ctx context.Context, url, path string) error

	// Pull updates the existing local copy at path from url.
	Pull(ctx context.Context, path, url string) error
}
