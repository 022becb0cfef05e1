package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}

// NewEventRegistry builds the registry with the configured topic name. All
// domain events flow through a single topic; consumers filter on the
// event_type attribute.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	if cfg.DomainTopic == "" {
		return nil, fmt.Errorf("domain topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	topic := cfg.DomainTopic

	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventEnrollmentCreated,
			AggregateType:  enums.AggregateEnrollment,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.EnrollmentCreatedEvent{} },
		},
		{
			EventType:      enums.EventEnrollmentApproved,
			AggregateType:  enums.AggregateEnrollment,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.EnrollmentApprovedEvent{} },
		},
		{
			EventType:      enums.EventEnrollmentRejected,
			AggregateType:  enums.AggregateEnrollment,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.EnrollmentRejectedEvent{} },
		},
		{
			EventType:      enums.EventCourseCompleted,
			AggregateType:  enums.AggregateEnrollment,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.CourseCompletedEvent{} },
		},
		{
			EventType:      enums.EventMaterialAdded,
			AggregateType:  enums.AggregateLesson,
			Topic:          topic,
			PayloadFactory: func() interface{} { return &payloads.MaterialAddedEvent{} },
		},
	} {
		reg.register(desc)
	}

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	payload, err := r.decodePayload(desc, envelope.Data)
	if err != nil {
		return nil, err
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// DecodeMessage decodes a published envelope back into its typed payload.
// Consumers read the event type from the message attributes.
func (r *EventRegistry) DecodeMessage(eventType enums.OutboxEventType, data []byte) (*ResolvedEvent, error) {
	desc, ok := r.entries[eventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", eventType))
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode envelope: %w", err))
	}

	payload, err := r.decodePayload(desc, envelope.Data)
	if err != nil {
		return nil, err
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

func (r *EventRegistry) decodePayload(desc EventDescriptor, data json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", desc.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", desc.EventType))
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", desc.EventType, err))
	}
	return payload, nil
}
