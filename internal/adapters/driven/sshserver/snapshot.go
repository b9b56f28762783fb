package sshserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

// Ensure SnapshotProvider implements the interface.
var _ driven.SnapshotProvider = (*SnapshotProvider)(nil)

// SnapshotProvider reads the server's information document over the
// channel's SSH connection. The server regenerates the document whenever
// class state changes; the client always reads it whole.
type SnapshotProvider struct {
	channel *Channel
}

// NewSnapshotProvider creates a provider sharing the channel's connection.
func NewSnapshotProvider(channel *Channel) *SnapshotProvider {
	return &SnapshotProvider{channel: channel}
}

// Fetch retrieves and decodes the current snapshot.
func (p *SnapshotProvider) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	out, err := p.channel.output(ctx, fmt.Sprintf("cat %s", shellQuote(infoJSONPath)))
	if err != nil {
		return nil, fmt.Errorf("read info document: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		return nil, fmt.Errorf("decode info document: %w", err)
	}
	return &snapshot, nil
}
