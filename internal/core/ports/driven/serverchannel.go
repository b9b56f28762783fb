package driven

import "context"

// EventMessage is one status message read from the server, before any
// per-operation filtering.
type EventMessage struct {
	// Tag correlates the message with the client-initiated operation
	// it belongs to (e.g. "PUBLISH").
	Tag string

	// Type is the wire name of the response type
	// (SUCCESS, ERROR, WARNING, TIMEOUT).
	Type string

	// Message is the optional human-readable payload.
	Message string
}

// ServerChannel initiates remote operations and exposes the server's
// status messages to the pollers waiting on them.
type ServerChannel interface {
	// LogEvent records an operation request on the server. The server
	// side picks it up asynchronously and reports progress through the
	// message stream.
	LogEvent(ctx context.Context, tag, payload string) error

	// Subscribe returns the stream of status messages for one operation
	// tag. Every subscriber receives every message carrying its tag, so
	// concurrent operations poll independently without stealing each
	// other's responses. The channel is closed when the connection to
	// the server is lost.
	Subscribe(tag string) <-chan EventMessage
}
