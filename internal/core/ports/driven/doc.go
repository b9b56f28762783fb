// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - GitTransport: clone/pull/inspect local git repositories
//   - ServerChannel: initiate remote operations and receive their
//     typed status messages
//   - SnapshotProvider: fetch the server's information document
//   - FetchPathStore: remember where an assignment was last fetched
//   - ConfigStore: client configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
