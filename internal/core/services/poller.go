package services

import (
	"context"
	"sync"
	"time"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// ResponsePoller drains the typed status messages of one remote
// operation, identified by its tag, from the server channel. It emits
// every WARNING it sees and exactly one terminal response: the server's
// SUCCESS or ERROR, or a synthetic TIMEOUT when nothing terminal arrived
// within the configured window. Nothing is ever emitted after the
// terminal response.
//
// Each poller holds its own subscription to the channel, so concurrent
// operations run independent deadline clocks without consuming each
// other's messages.
//
// A poller is one-shot: once drained it cannot be restarted; construct a
// new poller for a new operation.
type ResponsePoller struct {
	tag     string
	timeout time.Duration
	msgs    <-chan driven.EventMessage

	mu      sync.Mutex
	started bool
}

// NewResponsePoller creates a poller for one operation tag with an
// overall response deadline. The subscription is taken immediately, so a
// poller constructed before the operation is triggered cannot miss an
// early response.
func NewResponsePoller(tag string, timeout time.Duration, channel driven.ServerChannel) *ResponsePoller {
	return &ResponsePoller{
		tag:     tag,
		timeout: timeout,
		msgs:    channel.Subscribe(tag),
	}
}

// Responses starts the polling session and returns its finite response
// stream. The channel is closed after the terminal response. Calling
// Responses a second time returns a closed channel: the sequence is not
// restartable.
//
// Cancelling ctx ends the session with no further responses, which the
// caller must treat like a timeout: the remote state is unknown.
func (p *ResponsePoller) Responses(ctx context.Context) <-chan domain.ServerResponse {
	out := make(chan domain.ServerResponse)

	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		logger.Warn("response poller for %s restarted after drain", p.tag)
		close(out)
		return out
	}
	p.started = true
	p.mu.Unlock()

	go p.poll(ctx, out)
	return out
}

// poll is the blocking wait loop. It suspends on the message channel and
// the deadline timer; it never spins.
func (p *ResponsePoller) poll(ctx context.Context, out chan<- domain.ServerResponse) {
	defer close(out)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			// Caller disconnected; nothing must follow.
			return

		case <-timer.C:
			p.emit(ctx, out, domain.ServerResponse{Type: domain.ResponseTimeout})
			return

		case msg, open := <-p.msgs:
			if !open {
				// Connection lost before a terminal response:
				// the operation's state is unknown.
				p.emit(ctx, out, domain.ServerResponse{Type: domain.ResponseTimeout})
				return
			}

			resp := domain.ServerResponse{
				Type:    domain.ParseResponseType(msg.Type),
				Message: msg.Message,
			}
			if !p.emit(ctx, out, resp) {
				return
			}
			if resp.Type.Terminal() {
				return
			}
		}
	}
}

// emit delivers one response unless the caller has gone away.
func (p *ResponsePoller) emit(ctx context.Context, out chan<- domain.ServerResponse, resp domain.ServerResponse) bool {
	select {
	case out <- resp:
		return true
	case <-ctx.Done():
		return false
	}
}
