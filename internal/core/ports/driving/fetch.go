package driving

import (
	"context"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
)

// Fetcher synchronises submission repositories from the server.
type Fetcher interface {
	// FetchAssignment synchronises one assignment's reports repository
	// and every student submission repository into destPath. An empty
	// destPath resolves to the configured submissions directory, or the
	// working directory if none is configured.
	FetchAssignment(ctx context.Context, class, assignment, destPath string) (*FetchReport, error)

	// FetchClass synchronises every assignment of a class.
	FetchClass(ctx context.Context, class, destPath string) ([]*FetchReport, error)
}

// FetchReport is the result of fetching one assignment.
type FetchReport struct {
	// Class and Assignment identify what was fetched.
	Class      string
	Assignment string

	// DestPath is the resolved local directory for the assignment.
	DestPath string

	// Outcomes holds one entry per synchronised repository, in the
	// order the targets were built (reports repository first, then
	// students in roster order).
	Outcomes []domain.SyncOutcome

	// Summary counts the outcomes by status.
	Summary domain.SyncSummary
}
