package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// Ensure StatusService implements the interface.
var _ driving.StatusReporter = (*StatusService)(nil)

// StatusService reports submission state by combining the server's
// snapshot with what has been fetched locally.
type StatusService struct {
	transport driven.GitTransport
	snapshots driven.SnapshotProvider
	paths     driven.FetchPathStore
}

// NewStatusService creates a status service.
func NewStatusService(
	transport driven.GitTransport,
	snapshots driven.SnapshotProvider,
	paths driven.FetchPathStore,
) *StatusService {
	return &StatusService{
		transport: transport,
		snapshots: snapshots,
		paths:     paths,
	}
}

// ClassStatus returns the submission state of every assignment in the
// class. A submission counts as fetched when its recorded local copy
// exists and its HEAD matches the server's current hash; local hashes
// are read through a per-invocation HashCache so each repository is
// inspected at most once.
func (s *StatusService) ClassStatus(ctx context.Context, class string) ([]driving.AssignmentStatus, error) {
	snapshot, err := s.snapshots.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	classInfo, err := snapshot.Class(class)
	if err != nil {
		return nil, err
	}

	fetchedPaths, err := s.paths.List(ctx, class)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("list fetch paths: %w", err)
	}

	cache := NewHashCache(s.transport)

	statuses := make([]driving.AssignmentStatus, 0, len(classInfo.Assignments))
	for _, assignment := range classInfo.AssignmentNames() {
		info, err := classInfo.Assignment(assignment)
		if err != nil {
			return nil, err
		}

		status := driving.AssignmentStatus{
			Assignment:  assignment,
			Published:   info.Published,
			FetchedPath: s.pruneStale(ctx, class, assignment, fetchedPaths[assignment]),
		}

		for _, student := range classInfo.Students {
			row := driving.SubmissionRow{Username: student.Username}
			if sub, err := info.Submission(student.Username); err == nil {
				row.SubmissionCount = sub.SubmissionCount
				row.SubmittedAt = sub.SubmittedAt
				row.Fetched = s.isFetched(ctx, cache, status.FetchedPath, assignment, student, sub)
			}
			status.Rows = append(status.Rows, row)
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}

// pruneStale drops a recorded fetch destination whose assignment
// directory no longer exists, so a deleted local copy stops being
// reported as fetched. Returns the path when it is still valid, ""
// otherwise.
func (s *StatusService) pruneStale(ctx context.Context, class, assignment, fetchedPath string) string {
	if fetchedPath == "" {
		return ""
	}
	if _, err := os.Stat(filepath.Join(fetchedPath, assignment)); err == nil {
		return fetchedPath
	}
	logger.Debug("fetch record for %s/%s points at a missing directory, pruning", class, assignment)
	if err := s.paths.Delete(ctx, class, assignment); err != nil {
		logger.Warn("prune fetch record for %s/%s: %v", class, assignment, err)
	}
	return ""
}

// isFetched reports whether the student's submission has a local copy
// matching the server's current head hash.
func (s *StatusService) isFetched(
	ctx context.Context,
	cache *HashCache,
	fetchedPath, assignment string,
	student domain.Student,
	sub *domain.SubmissionInfo,
) bool {
	if fetchedPath == "" {
		return false
	}
	localPath := filepath.Join(fetchedPath, assignment, "submissions", student.LastFirstUsername())
	localHash, ok := cache.GetOrRead(ctx, localPath)
	return ok && localHash == sub.Hash
}
