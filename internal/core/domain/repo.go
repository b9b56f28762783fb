package domain

import "fmt"

// RemoteRepo identifies one git repository reachable over SSH.
// It is immutable once constructed.
type RemoteRepo struct {
	// Host is the server hostname or address.
	Host string

	// Port is the SSH port on the server.
	Port int

	// Username is the remote account that owns the SSH session.
	Username string

	// Path is the repository path on the server. It is inserted into
	// the clone URL verbatim, with no joining or normalisation.
	Path string
}

// CloneURL builds the git clone URL for the repository:
//
//	ssh://<username>@<host>:<port>/<path>
func (r RemoteRepo) CloneURL() string {
	return fmt.Sprintf("ssh://%s@%s:%d/%s", r.Username, r.Host, r.Port, r.Path)
}

// SyncTarget pairs a remote repository with the local path it should be
// mirrored to and the server-reported HEAD hash of the remote. One target
// exists per repository of interest per synchronisation batch; targets are
// built fresh each batch and own no long-lived resources.
type SyncTarget struct {
	// Repo is the remote repository descriptor.
	Repo RemoteRepo

	// RemoteHash is the HEAD commit hash of the remote repository,
	// as reported by the server's latest snapshot.
	RemoteHash string

	// LocalPath is the filesystem location of the local copy.
	LocalPath string
}

// SyncAction is the decision for one target: leave it alone, clone it
// fresh, or pull into the existing copy.
type SyncAction int

const (
	// ActionNone means the local copy is already current.
	ActionNone SyncAction = iota

	// ActionClone means no usable local copy exists.
	ActionClone

	// ActionPull means the local copy exists but is behind the remote.
	ActionPull
)

// String returns the action name for logging.
func (a SyncAction) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionClone:
		return "clone"
	case ActionPull:
		return "pull"
	default:
		return "unknown"
	}
}

// SyncStatus tags the outcome of processing one sync target.
type SyncStatus int

const (
	// StatusSkipped means the target was already current; no transport
	// mutation was issued.
	StatusSkipped SyncStatus = iota

	// StatusCloned means a fresh local copy was created.
	StatusCloned

	// StatusPulled means the existing local copy was updated.
	StatusPulled

	// StatusFailed means the clone or pull failed; Err carries the detail.
	StatusFailed
)

// String returns the status name for reporting.
func (s SyncStatus) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusCloned:
		return "cloned"
	case StatusPulled:
		return "pulled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncOutcome is the result of processing one SyncTarget. It is produced
// exactly once per target and not mutated afterwards.
type SyncOutcome struct {
	// Target is the target this outcome belongs to.
	Target SyncTarget

	// Status tags the result.
	Status SyncStatus

	// Err carries the failure detail when Status is StatusFailed.
	Err error
}

// SyncSummary counts outcomes by status for batch reporting.
type SyncSummary struct {
	Skipped int
	Cloned  int
	Pulled  int
	Failed  int
}

// Summarize tallies a batch of outcomes.
func Summarize(outcomes []SyncOutcome) SyncSummary {
	var s SyncSummary
	for _, o := range outcomes {
		switch o.Status {
		case StatusSkipped:
			s.Skipped++
		case StatusCloned:
			s.Cloned++
		case StatusPulled:
			s.Pulled++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}
