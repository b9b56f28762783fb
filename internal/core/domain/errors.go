package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClassNotFound indicates the snapshot has no such class.
	ErrClassNotFound = errors.New("class not found")

	// ErrAssignmentNotFound indicates the class has no such assignment.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrStudentNotFound indicates the class has no such student.
	ErrStudentNotFound = errors.New("student not found")

	// ErrNotRepository indicates a local path exists but is not a
	// usable git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrNotConnected indicates the server channel has not been
	// connected yet, or the connection has been closed.
	ErrNotConnected = errors.New("server not connected")

	// ErrInvalidConfig indicates the client configuration is incomplete
	// or malformed.
	ErrInvalidConfig = errors.New("invalid configuration")
)
