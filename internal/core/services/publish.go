package services

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// Tag of the remote publish operation.
const publishTag = "PUBLISH"

// Ensure PublishService implements the interface.
var _ driving.Publisher = (*PublishService)(nil)

// PublishService triggers the server's publish operation for an
// assignment and relays its response stream.
type PublishService struct {
	channel   driven.ServerChannel
	snapshots driven.SnapshotProvider
	cfg       *domain.ClientConfig
}

// NewPublishService creates a publish service.
func NewPublishService(
	channel driven.ServerChannel,
	snapshots driven.SnapshotProvider,
	cfg *domain.ClientConfig,
) *PublishService {
	return &PublishService{
		channel:   channel,
		snapshots: snapshots,
		cfg:       cfg,
	}
}

// Publish asks the server to publish class/assignment and drains the
// operation's responses into onResponse until the terminal one. The
// poller is constructed before the event is logged so no early response
// can be missed.
func (p *PublishService) Publish(ctx context.Context, class, assignment string, onResponse func(domain.ServerResponse)) error {
	snapshot, err := p.snapshots.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	classInfo, err := snapshot.Class(class)
	if err != nil {
		return err
	}
	if _, err := classInfo.Assignment(assignment); err != nil {
		return err
	}

	poller := NewResponsePoller(publishTag, p.cfg.PublishTimeout, p.channel)

	payload := fmt.Sprintf("%s %s", class, assignment)
	if err := p.channel.LogEvent(ctx, publishTag, payload); err != nil {
		return fmt.Errorf("log %s event: %w", publishTag, err)
	}
	logger.Info("publish requested for %s/%s", class, assignment)

	for resp := range poller.Responses(ctx) {
		onResponse(resp)
	}
	return ctx.Err()
}
