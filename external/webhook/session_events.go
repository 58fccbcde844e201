package webhook

import (
	"context"

	"github.com/greenloop/recycle-league/internal/usecase"
)

// SessionEventSink adapts the generic publisher to the session lifecycle
// events the use case layer emits.
type SessionEventSink struct {
	publisher *Publisher
}

func NewSessionEventSink(publisher *Publisher) *SessionEventSink {
	return &SessionEventSink{publisher: publisher}
}

func (s *SessionEventSink) PublishSessionClosed(ctx context.Context, event usecase.SessionClosedEvent) error {
	return s.publisher.Publish(ctx, "session.closed", event.SessionID, event)
}
