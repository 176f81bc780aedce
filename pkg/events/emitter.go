// Package events publishes and consumes import lifecycle events
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/appctx"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/kafka"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/models"
	"github.com/Prygunov-Andrei/agent-assistant-sub001/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Publisher writes messages to the event topic
type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.OutgoingMessage) error
}

// Emitter handles event emission for the console
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitImportCommitted emits an import.committed event keyed by session id
func (e *Emitter) EmitImportCommitted(ctx context.Context, sessionID string, result *models.CommitResult, auto bool) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitImportCommitted")
	defer span.End()

	event := ImportCommittedEvent{
		BaseEvent:  NewBaseEvent(ctx, EventTypeImportCommitted),
		SessionID:  sessionID,
		OperatorID: appctx.GetOperatorID(ctx),
		Auto:       auto,
	}
	if result != nil {
		event.Created = result.Created
		event.Updated = result.Updated
		event.Skipped = result.Skipped
		event.Errors = result.Errors
	}

	return e.emit(ctx, sessionID, event.BaseEvent, event)
}

func (e *Emitter) emit(ctx context.Context, key string, base BaseEvent, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.OutgoingMessage{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"event_type":     string(base.EventType),
			"schema_version": base.SchemaVersion,
		},
	}
	if base.CorrelationID != "" {
		msg.Headers["correlation_id"] = base.CorrelationID
	}

	if err := e.publisher.Publish(ctx, msg); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", base.EventType)
		return err
	}
	return nil
}
