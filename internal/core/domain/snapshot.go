package domain

import (
	"fmt"
	"sort"
	"time"
)

// Snapshot is the server's information document for a faculty account:
// every class the faculty owns, with its roster and the current state of
// each assignment repository on the server. It is fetched fresh per batch
// and treated as read-only afterwards.
type Snapshot struct {
	// Classes maps class name to class information.
	Classes map[string]ClassInfo `json:"classes"`

	// GeneratedAt is when the server produced the document.
	GeneratedAt time.Time `json:"generated_at"`
}

// ClassInfo holds the roster and assignments of one class.
type ClassInfo struct {
	// Students is the class roster.
	Students []Student `json:"students"`

	// Assignments maps assignment name to assignment information.
	Assignments map[string]AssignmentInfo `json:"assignments"`
}

// Student is one roster entry.
type Student struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`

	// HomeDir is the student's home directory on the server, used to
	// build the server-side path of the student's assignment repository.
	HomeDir string `json:"home_dir"`
}

// LastFirstUsername returns the <last>_<first>_<username> form used to
// name per-student submission directories.
func (s Student) LastFirstUsername() string {
	return fmt.Sprintf("%s_%s_%s", s.LastName, s.FirstName, s.Username)
}

// AssignmentInfo holds the server-side state of one assignment.
type AssignmentInfo struct {
	// Published reports whether students have received the assignment.
	Published bool `json:"published"`

	// ReportsPath is the server-side path of the reports repository.
	ReportsPath string `json:"reports_path"`

	// ReportsHash is the HEAD hash of the reports repository.
	ReportsHash string `json:"reports_hash"`

	// Submissions maps student username to that student's submission
	// repository state.
	Submissions map[string]SubmissionInfo `json:"students"`
}

// SubmissionInfo holds the server-side state of one student's submission
// repository for one assignment.
type SubmissionInfo struct {
	// Path is the server-side path of the student's repository.
	Path string `json:"path"`

	// Hash is the HEAD hash of the student's repository.
	Hash string `json:"hash"`

	// SubmissionCount is how many times the student has pushed.
	// Zero means the repository still holds only the starter commit.
	SubmissionCount int `json:"submission_count"`

	// SubmittedAt is the time of the most recent push, zero if none.
	SubmittedAt time.Time `json:"submitted_at"`
}

// ClassNames returns the snapshot's class names, sorted.
func (s *Snapshot) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for name := range s.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Class returns the information for a class.
func (s *Snapshot) Class(name string) (*ClassInfo, error) {
	info, ok := s.Classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
	}
	return &info, nil
}

// AssignmentNames returns the class's assignment names, sorted.
func (c *ClassInfo) AssignmentNames() []string {
	names := make([]string, 0, len(c.Assignments))
	for name := range c.Assignments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Assignment returns the information for an assignment.
func (c *ClassInfo) Assignment(name string) (*AssignmentInfo, error) {
	info, ok := c.Assignments[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssignmentNotFound, name)
	}
	return &info, nil
}

// Student returns the roster entry for a username.
func (c *ClassInfo) Student(username string) (*Student, error) {
	for i := range c.Students {
		if c.Students[i].Username == username {
			return &c.Students[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, username)
}

// Submission returns a student's submission state for an assignment.
func (a *AssignmentInfo) Submission(username string) (*SubmissionInfo, error) {
	info, ok := a.Submissions[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, username)
	}
	return &info, nil
}

// SubmittedCount returns how many students have pushed at least once.
func (a *AssignmentInfo) SubmittedCount() int {
	count := 0
	for _, sub := range a.Submissions {
		if sub.SubmissionCount > 0 {
			count++
		}
	}
	return count
}
