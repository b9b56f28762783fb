package driving

import (
	"context"
	"time"
)

// StatusReporter reports submission state for browsing.
type StatusReporter interface {
	// ClassStatus returns the per-assignment submission state of a
	// class, assignments sorted by name, rows in roster order.
	ClassStatus(ctx context.Context, class string) ([]AssignmentStatus, error)
}

// AssignmentStatus is the submission state of one assignment.
type AssignmentStatus struct {
	// Assignment is the assignment name.
	Assignment string

	// Published reports whether students have received the assignment.
	Published bool

	// FetchedPath is where the assignment was last fetched locally,
	// empty if never fetched.
	FetchedPath string

	// Rows holds one entry per student in roster order.
	Rows []SubmissionRow
}

// SubmissionRow is one student's submission state for one assignment.
type SubmissionRow struct {
	// Username identifies the student.
	Username string

	// SubmissionCount is how many times the student pushed.
	SubmissionCount int

	// SubmittedAt is the most recent push time, zero if none.
	SubmittedAt time.Time

	// Fetched reports whether a local copy of the submission exists
	// and matches the server's current head hash.
	Fetched bool
}
