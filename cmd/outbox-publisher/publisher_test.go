package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/registry"
)

type stubDB struct{}

func (stubDB) Ping(context.Context) error { return nil }

func (stubDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubBroker struct{}

func (stubBroker) Ping(context.Context) error            { return nil }
func (stubBroker) DomainPublisher() *gcppubsub.Publisher { return nil }

type stubOutboxSource struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (s *stubOutboxSource) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	events := s.events
	s.events = nil
	return events, nil
}

func (s *stubOutboxSource) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutboxSource) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	s.failed = append(s.failed, id)
	return nil
}

func (s *stubOutboxSource) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	s.terminal = append(s.terminal, id)
	return nil
}

type stubDLQ struct {
	entries []models.OutboxDLQ
}

func (s *stubDLQ) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubTopic struct {
	errs      []error
	published []*gcppubsub.Message
}

func (s *stubTopic) Publish(ctx context.Context, msg *gcppubsub.Message) (string, error) {
	s.published = append(s.published, msg)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "server-id", nil
}

type stubResolver struct {
	err error
}

func (s *stubResolver) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			EventType:     event.EventType,
			AggregateType: event.AggregateType,
			Topic:         "engacademy-domain-events",
		},
		Envelope: outbox.PayloadEnvelope{EventID: uuid.NewString(), OccurredAt: time.Now().UTC()},
	}, nil
}

func newTestPublisher(t *testing.T, repo *stubOutboxSource, dlq *stubDLQ, topic *stubTopic, resolver *stubResolver, outboxCfg config.OutboxConfig) *Publisher {
	t.Helper()
	publisher, err := NewPublisher(PublisherParams{
		Config:     &config.Config{Outbox: outboxCfg},
		Logger:     logger.New(logger.Options{Output: io.Discard}),
		DB:         stubDB{},
		Broker:     stubBroker{},
		Repository: repo,
		DLQ:        dlq,
		Registry:   resolver,
		Topic:      topic,
	})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	return publisher
}

func outboxRow(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventEnrollmentCreated,
		AggregateType: enums.AggregateEnrollment,
		AggregateID:   uuid.New(),
		Payload:       []byte(`{"version":1}`),
		AttemptCount:  attempts,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestDrainContinuesAfterTransientFailure(t *testing.T) {
	first := outboxRow(0)
	second := outboxRow(0)
	repo := &stubOutboxSource{events: []models.OutboxEvent{first, second}}
	dlq := &stubDLQ{}
	topic := &stubTopic{errs: []error{errors.New("deadline exceeded"), nil}}
	publisher := newTestPublisher(t, repo, dlq, topic, &stubResolver{}, config.OutboxConfig{})

	drained, err := publisher.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if !drained {
		t.Fatal("expected drained batch")
	}
	if len(repo.failed) != 1 || repo.failed[0] != first.ID {
		t.Fatalf("failed = %v, want [%s]", repo.failed, first.ID)
	}
	if len(repo.published) != 1 || repo.published[0] != second.ID {
		t.Fatalf("published = %v, want [%s]", repo.published, second.ID)
	}
	if len(dlq.entries) != 0 {
		t.Fatalf("transient failure must not reach the DLQ, got %+v", dlq.entries)
	}
}

func TestDrainParksNonRetryablePublish(t *testing.T) {
	event := outboxRow(0)
	repo := &stubOutboxSource{events: []models.OutboxEvent{event}}
	dlq := &stubDLQ{}
	topic := &stubTopic{errs: []error{registry.NewNonRetryableError(errors.New("payload rejected"))}}
	publisher := newTestPublisher(t, repo, dlq, topic, &stubResolver{}, config.OutboxConfig{})

	if _, err := publisher.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", len(dlq.entries))
	}
	entry := dlq.entries[0]
	if entry.ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("reason = %q, want non_retryable", entry.ErrorReason)
	}
	if entry.EventID != event.ID || !bytes.Equal(entry.Payload, event.Payload) {
		t.Fatalf("DLQ entry must carry the original event, got %+v", entry)
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("terminal = %v, want [%s]", repo.terminal, event.ID)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("non-retryable event should not be scheduled for retry, got %v", repo.failed)
	}
}

func TestDrainParksAfterMaxAttempts(t *testing.T) {
	event := outboxRow(1)
	repo := &stubOutboxSource{events: []models.OutboxEvent{event}}
	dlq := &stubDLQ{}
	topic := &stubTopic{errs: []error{errors.New("deadline exceeded")}}
	publisher := newTestPublisher(t, repo, dlq, topic, &stubResolver{}, config.OutboxConfig{MaxAttempts: 2})

	if _, err := publisher.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("expected 1 DLQ entry, got %d", len(dlq.entries))
	}
	entry := dlq.entries[0]
	if entry.ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("reason = %q, want max_attempts", entry.ErrorReason)
	}
	if entry.AttemptCount != 1 {
		t.Fatalf("attempt count = %d, want 1", entry.AttemptCount)
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("terminal = %v, want [%s]", repo.terminal, event.ID)
	}
}

func TestDrainParksUnresolvableEvent(t *testing.T) {
	event := outboxRow(0)
	repo := &stubOutboxSource{events: []models.OutboxEvent{event}}
	dlq := &stubDLQ{}
	topic := &stubTopic{}
	resolver := &stubResolver{err: registry.NewNonRetryableError(errors.New("unknown event type"))}
	publisher := newTestPublisher(t, repo, dlq, topic, resolver, config.OutboxConfig{})

	if _, err := publisher.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(topic.published) != 0 {
		t.Fatalf("unresolvable event must not be published, got %d messages", len(topic.published))
	}
	if len(dlq.entries) != 1 || dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("expected non_retryable DLQ entry, got %+v", dlq.entries)
	}
}

func TestDrainReportsIdleWhenEmpty(t *testing.T) {
	repo := &stubOutboxSource{}
	publisher := newTestPublisher(t, repo, &stubDLQ{}, &stubTopic{}, &stubResolver{}, config.OutboxConfig{})

	drained, err := publisher.drainOnce(context.Background())
	if err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if drained {
		t.Fatal("empty fetch should report an idle cycle")
	}
}

func TestPublishedMessageCarriesAttributes(t *testing.T) {
	event := outboxRow(0)
	repo := &stubOutboxSource{events: []models.OutboxEvent{event}}
	topic := &stubTopic{}
	publisher := newTestPublisher(t, repo, &stubDLQ{}, topic, &stubResolver{}, config.OutboxConfig{})

	if _, err := publisher.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(topic.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(topic.published))
	}
	msg := topic.published[0]
	if !bytes.Equal(msg.Data, event.Payload) {
		t.Fatalf("message data = %s, want %s", msg.Data, event.Payload)
	}
	if msg.Attributes["event_type"] != string(event.EventType) {
		t.Fatalf("event_type attribute = %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("aggregate_id attribute = %q", msg.Attributes["aggregate_id"])
	}
}
