package events

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/kafka"
)

// SessionEvictor drops a cached import session
type SessionEvictor interface {
	Delete(ctx context.Context, sessionID string) error
}

// SessionInvalidator evicts cached import sessions the batch-import service reports as changed.
type SessionInvalidator struct {
	cache  SessionEvictor
	logger ectologger.Logger
}

// NewSessionInvalidator creates a new session invalidator
func NewSessionInvalidator(cache SessionEvictor, logger ectologger.Logger) *SessionInvalidator {
	return &SessionInvalidator{cache: cache, logger: logger}
}

// Handle is a kafka.MessageHandler. Events of other types are ignored.
func (i *SessionInvalidator) Handle(ctx context.Context, msg *kafka.IncomingMessage) error {
	var event ImportSessionChangedEvent
	if err := msg.Decode(&event); err != nil {
		// malformed events are committed and dropped
		i.logger.WithContext(ctx).WithError(err).Warn("Skipping malformed import session event")
		return nil
	}

	eventType := EventType(msg.Header("event_type"))
	if eventType == "" {
		eventType = event.EventType
	}
	if eventType != EventTypeImportSessionUpdated && eventType != EventTypeImportSessionDeleted {
		return nil
	}

	sessionID := event.SessionID
	if sessionID == "" {
		sessionID = msg.Key
	}
	if sessionID == "" {
		return nil
	}

	if err := i.cache.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("evict import session %s: %w", sessionID, err)
	}

	i.logger.WithContext(ctx).WithFields(map[string]any{
		"session_id": sessionID,
		"event_type": eventType,
	}).Debug("Evicted cached import session")
	return nil
}
