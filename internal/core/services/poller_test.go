package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driven"
)

func drain(t *testing.T, responses <-chan domain.ServerResponse) []domain.ServerResponse {
	t.Helper()

	var got []domain.ServerResponse
	deadline := time.After(5 * time.Second)
	for {
		select {
		case resp, open := <-responses:
			if !open {
				return got
			}
			got = append(got, resp)
		case <-deadline:
			t.Fatalf("response stream did not close; got %v so far", got)
		}
	}
}

func types(responses []domain.ServerResponse) []domain.ResponseType {
	out := make([]domain.ResponseType, len(responses))
	for i, r := range responses {
		out[i] = r.Type
	}
	return out
}

func TestResponsePoller_WarningsThenSuccess(t *testing.T) {
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "PUBLISH", Type: "WARNING", Message: "no submissions for alice"},
		driven.EventMessage{Tag: "PUBLISH", Type: "WARNING", Message: "no submissions for bob"},
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "published"},
	)
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	got := drain(t, poller.Responses(context.Background()))

	assert.Equal(t, []domain.ResponseType{
		domain.ResponseWarning,
		domain.ResponseWarning,
		domain.ResponseSuccess,
	}, types(got))
	assert.Equal(t, "published", got[2].Message)
}

func TestResponsePoller_ErrorTerminates(t *testing.T) {
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "PUBLISH", Type: "ERROR", Message: "assignment not published"},
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "never delivered"},
	)
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	got := drain(t, poller.Responses(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, domain.ResponseError, got[0].Type)
	assert.Equal(t, "assignment not published", got[0].Message)
}

func TestResponsePoller_TimeoutWhenSilent(t *testing.T) {
	channel := newScriptedChannel()
	poller := NewResponsePoller("PUBLISH", 20*time.Millisecond, channel)

	got := drain(t, poller.Responses(context.Background()))

	assert.Equal(t, []domain.ResponseType{domain.ResponseTimeout}, types(got))
}

func TestResponsePoller_TimeoutAfterWarnings(t *testing.T) {
	// Warnings alone never terminate the session.
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "PUBLISH", Type: "WARNING", Message: "slow"},
	)
	poller := NewResponsePoller("PUBLISH", 20*time.Millisecond, channel)

	got := drain(t, poller.Responses(context.Background()))

	assert.Equal(t, []domain.ResponseType{
		domain.ResponseWarning,
		domain.ResponseTimeout,
	}, types(got))
}

func TestResponsePoller_IgnoresOtherTags(t *testing.T) {
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "DELETE", Type: "ERROR", Message: "other operation"},
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "published"},
	)
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	got := drain(t, poller.Responses(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, domain.ResponseSuccess, got[0].Type)
}

func TestResponsePoller_UnknownTypeIsWarning(t *testing.T) {
	// An unrecognised type must not terminate the session.
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "PUBLISH", Type: "PROGRESS", Message: "50%"},
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "published"},
	)
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	got := drain(t, poller.Responses(context.Background()))

	assert.Equal(t, []domain.ResponseType{
		domain.ResponseWarning,
		domain.ResponseSuccess,
	}, types(got))
}

func TestResponsePoller_ClosedSubscriptionIsTimeout(t *testing.T) {
	channel := newScriptedChannel()
	channel.lost = true
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	got := drain(t, poller.Responses(context.Background()))

	assert.Equal(t, []domain.ResponseType{domain.ResponseTimeout}, types(got))
}

func TestResponsePoller_ConcurrentPollers(t *testing.T) {
	// Two operations poll the same channel at once. Each poller must
	// receive its own terminal response even when the other operation's
	// response arrives first; a response must never be consumed and
	// dropped by the wrong poller.
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "DELETE", Type: "SUCCESS", Message: "deleted"},
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "published"},
	)
	publish := NewResponsePoller("PUBLISH", time.Second, channel)
	remove := NewResponsePoller("DELETE", time.Second, channel)

	publishResponses := publish.Responses(context.Background())
	removeResponses := remove.Responses(context.Background())

	gotRemove := drain(t, removeResponses)
	gotPublish := drain(t, publishResponses)

	require.Equal(t, []domain.ResponseType{domain.ResponseSuccess}, types(gotPublish))
	assert.Equal(t, "published", gotPublish[0].Message)
	require.Equal(t, []domain.ResponseType{domain.ResponseSuccess}, types(gotRemove))
	assert.Equal(t, "deleted", gotRemove[0].Message)
}

func TestResponsePoller_NotRestartable(t *testing.T) {
	channel := newScriptedChannel(
		driven.EventMessage{Tag: "PUBLISH", Type: "SUCCESS", Message: "published"},
	)
	poller := NewResponsePoller("PUBLISH", time.Second, channel)

	first := drain(t, poller.Responses(context.Background()))
	require.Equal(t, []domain.ResponseType{domain.ResponseSuccess}, types(first))

	second := drain(t, poller.Responses(context.Background()))
	assert.Empty(t, second)
}

func TestResponsePoller_CancelEndsStream(t *testing.T) {
	channel := newScriptedChannel()
	poller := NewResponsePoller("PUBLISH", time.Minute, channel)

	ctx, cancel := context.WithCancel(context.Background())
	responses := poller.Responses(ctx)
	cancel()

	got := drain(t, responses)

	// Cancellation emits nothing, not even a timeout: the caller gave
	// up, so there is nobody to tell.
	assert.Empty(t, got)
}
