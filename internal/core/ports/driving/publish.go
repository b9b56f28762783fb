package driving

import (
	"context"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
)

// Publisher triggers remote assignment operations and relays the server's
// typed responses.
type Publisher interface {
	// Publish asks the server to publish an assignment to every student
	// in the class. Each response the server produces is passed to
	// onResponse in order, ending with exactly one terminal response
	// (SUCCESS, ERROR, or a synthetic TIMEOUT when the server did not
	// answer within the configured window).
	Publish(ctx context.Context, class, assignment string, onResponse func(domain.ServerResponse)) error
}
