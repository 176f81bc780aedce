package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
)

// EventType defines the type of event
type EventType string

const (
	// Emitted by the console
	EventTypeImportCommitted EventType = "import.committed"

	// Emitted by the batch-import service
	EventTypeImportSessionUpdated EventType = "import.session.updated"
	EventTypeImportSessionDeleted EventType = "import.session.deleted"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent stamps a new event, correlating it with the request in ctx
func NewBaseEvent(ctx context.Context, eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: appctx.GetRequestID(ctx),
	}
}

// ImportCommittedEvent is emitted once an import session's decisions were written
type ImportCommittedEvent struct {
	BaseEvent
	SessionID  string `json:"session_id"`
	OperatorID string `json:"operator_id,omitempty"`
	Auto       bool   `json:"auto"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
	Errors     int    `json:"errors"`
}

// ImportSessionChangedEvent announces that the batch-import service changed or removed a session
type ImportSessionChangedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
}
