package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// Ensure FetchService implements the interface.
var _ driving.Fetcher = (*FetchService)(nil)

// FetchService orchestrates submission fetching: it turns the server's
// snapshot into sync targets, runs them through the engine, and records
// where the assignment landed locally.
type FetchService struct {
	engine    *SyncEngine
	snapshots driven.SnapshotProvider
	paths     driven.FetchPathStore
	cfg       *domain.ClientConfig
}

// NewFetchService creates a fetch service.
func NewFetchService(
	engine *SyncEngine,
	snapshots driven.SnapshotProvider,
	paths driven.FetchPathStore,
	cfg *domain.ClientConfig,
) *FetchService {
	return &FetchService{
		engine:    engine,
		snapshots: snapshots,
		paths:     paths,
		cfg:       cfg,
	}
}

// FetchAssignment synchronises one assignment of a class.
func (f *FetchService) FetchAssignment(ctx context.Context, class, assignment, destPath string) (*driving.FetchReport, error) {
	snapshot, err := f.snapshots.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	classInfo, err := snapshot.Class(class)
	if err != nil {
		return nil, err
	}
	if _, err := classInfo.Assignment(assignment); err != nil {
		return nil, err
	}

	dest, err := f.resolveDest(destPath, class)
	if err != nil {
		return nil, err
	}

	return f.fetchOne(ctx, class, assignment, dest, classInfo)
}

// FetchClass synchronises every assignment of a class.
func (f *FetchService) FetchClass(ctx context.Context, class, destPath string) ([]*driving.FetchReport, error) {
	snapshot, err := f.snapshots.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	classInfo, err := snapshot.Class(class)
	if err != nil {
		return nil, err
	}

	dest, err := f.resolveDest(destPath, class)
	if err != nil {
		return nil, err
	}

	reports := make([]*driving.FetchReport, 0, len(classInfo.Assignments))
	for _, assignment := range classInfo.AssignmentNames() {
		report, err := f.fetchOne(ctx, class, assignment, dest, classInfo)
		if err != nil {
			return reports, fmt.Errorf("fetch %s: %w", assignment, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// fetchOne synchronises one assignment into dest, which is the class
// submission directory. Layout under dest:
//
//	<assignment>/reports
//	<assignment>/submissions/<Last_First_username>
func (f *FetchService) fetchOne(ctx context.Context, class, assignment, dest string, classInfo *domain.ClassInfo) (*driving.FetchReport, error) {
	info, err := classInfo.Assignment(assignment)
	if err != nil {
		return nil, err
	}

	submissionsDir := filepath.Join(dest, assignment, "submissions")
	if err := os.MkdirAll(submissionsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create submissions directory: %w", err)
	}

	logger.Info("fetching %s/%s into %s", class, assignment, dest)

	// Reports repository first, then students in roster order.
	targets := []domain.SyncTarget{{
		Repo:       f.cfg.Remote(info.ReportsPath),
		RemoteHash: info.ReportsHash,
		LocalPath:  filepath.Join(dest, assignment, "reports"),
	}}

	for _, student := range classInfo.Students {
		sub, err := info.Submission(student.Username)
		if err != nil {
			// Roster and submission map disagree; skip rather
			// than fail the whole assignment.
			logger.Warn("no submission record for %s in %s/%s", student.Username, class, assignment)
			continue
		}
		targets = append(targets, domain.SyncTarget{
			Repo:       f.cfg.Remote(sub.Path),
			RemoteHash: sub.Hash,
			LocalPath:  filepath.Join(submissionsDir, student.LastFirstUsername()),
		})
	}

	outcomes := f.engine.Run(ctx, targets)

	if err := f.paths.Save(ctx, class, assignment, dest); err != nil {
		// The fetch itself succeeded; a stale path record only
		// degrades later status browsing.
		logger.Warn("record fetch path for %s/%s: %v", class, assignment, err)
	}

	return &driving.FetchReport{
		Class:      class,
		Assignment: assignment,
		DestPath:   dest,
		Outcomes:   outcomes,
		Summary:    domain.Summarize(outcomes),
	}, nil
}

// resolveDest picks the class submission directory: the explicit path if
// given, otherwise the configured submissions directory plus the class
// name, otherwise the working directory.
func (f *FetchService) resolveDest(destPath, class string) (string, error) {
	switch {
	case destPath != "":
		abs, err := filepath.Abs(destPath)
		if err != nil {
			return "", fmt.Errorf("resolve destination: %w", err)
		}
		return abs, nil

	case f.cfg.SubmissionsPath != "":
		return filepath.Join(f.cfg.SubmissionsPath, class), nil

	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve destination: %w", err)
		}
		logger.Info("no destination configured, fetching to %s", wd)
		return wd, nil
	}
}
