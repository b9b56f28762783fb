// Package domain defines the core business entities for coursekit.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RemoteRepo: a git repository reachable over SSH
//   - SyncTarget: one repository to synchronise in a batch
//   - SyncOutcome: the result of processing one target
//   - ServerResponse: one message from an asynchronous server operation
//   - Snapshot: the server's information document for a faculty account
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
