package domain

import (
	"fmt"
	"time"
)

// Defaults applied by ClientConfig.ApplyDefaults.
const (
	DefaultSSHPort        = 22
	DefaultSyncWorkers    = 4
	DefaultPublishTimeout = 20 * time.Second
)

// ClientConfig is the instructor-side client configuration. It identifies
// the coursekit server and tunes local behaviour. Connection setup and
// validation happen before any synchronisation starts; the core assumes a
// valid configuration at entry.
type ClientConfig struct {
	// ServerHost is the server hostname or address.
	ServerHost string

	// ServerPort is the SSH port, DefaultSSHPort if unset.
	ServerPort int

	// ServerUsername is the faculty account on the server.
	ServerUsername string

	// SubmissionsPath is the default local directory that class
	// submissions are fetched under. Empty means the working directory.
	SubmissionsPath string

	// SyncWorkers bounds the number of repositories synchronised
	// concurrently, DefaultSyncWorkers if unset.
	SyncWorkers int

	// PublishTimeout bounds how long the client waits for a terminal
	// response to a remote operation, DefaultPublishTimeout if unset.
	PublishTimeout time.Duration
}

// ApplyDefaults fills unset fields with their default values.
func (c *ClientConfig) ApplyDefaults() {
	if c.ServerPort == 0 {
		c.ServerPort = DefaultSSHPort
	}
	if c.SyncWorkers == 0 {
		c.SyncWorkers = DefaultSyncWorkers
	}
	if c.PublishTimeout == 0 {
		c.PublishTimeout = DefaultPublishTimeout
	}
}

// Validate reports whether the configuration identifies a server.
func (c *ClientConfig) Validate() error {
	if c.ServerHost == "" {
		return fmt.Errorf("%w: server host is required", ErrInvalidConfig)
	}
	if c.ServerUsername == "" {
		return fmt.Errorf("%w: server username is required", ErrInvalidConfig)
	}
	if c.ServerPort < 0 {
		return fmt.Errorf("%w: negative server port", ErrInvalidConfig)
	}
	return nil
}

// Remote builds a RemoteRepo for a server-side repository path using the
// configured connection parameters.
func (c *ClientConfig) Remote(serverPath string) RemoteRepo {
	return RemoteRepo{
		Host:     c.ServerHost,
		Port:     c.ServerPort,
		Username: c.ServerUsername,
		Path:     serverPath,
	}
}
