package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/idempotency"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/registry"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

func TestConsumerNotifiesStudentOnApproval(t *testing.T) {
	repo := &consumerRepoStub{}
	store := newConsumerStore()
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{}, &consumerAdminsStub{}, store)

	event := payloads.EnrollmentApprovedEvent{
		EnrollmentID: uuid.New(),
		UserID:       uuid.New(),
		CourseID:     uuid.New(),
		CourseTitle:  types.Bilingual{PT: "Inglês Básico", EN: "Basic English"},
	}
	msg := buildEventMessage(t, enums.EventEnrollmentApproved, event)

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	created := repo.created[0]
	if created.UserID != event.UserID {
		t.Fatalf("notification addressed to wrong user: %s", created.UserID)
	}
	if created.Type != enums.NotificationTypeEnrollmentApproved {
		t.Fatalf("unexpected notification type: %s", created.Type)
	}
	if created.Data == nil || created.Data.EnrollmentID == nil || *created.Data.EnrollmentID != event.EnrollmentID {
		t.Fatalf("notification data missing enrollment reference")
	}
}

func TestConsumerFansOutMaterialToApprovedStudents(t *testing.T) {
	students := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	repo := &consumerRepoStub{}
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{userIDs: students}, &consumerAdminsStub{}, newConsumerStore())

	event := payloads.MaterialAddedEvent{
		CourseID:    uuid.New(),
		LessonID:    uuid.New(),
		MaterialID:  uuid.New(),
		CourseTitle: types.Bilingual{PT: "Inglês Básico", EN: "Basic English"},
		LessonTitle: types.Bilingual{PT: "Saudações", EN: "Greetings"},
	}
	msg := buildEventMessage(t, enums.EventMaterialAdded, event)

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.batched) != len(students) {
		t.Fatalf("expected %d notifications, got %d", len(students), len(repo.batched))
	}
	for i, notification := range repo.batched {
		if notification.UserID != students[i] {
			t.Fatalf("notification %d addressed to wrong student", i)
		}
		if notification.Type != enums.NotificationTypeNewMaterial {
			t.Fatalf("unexpected notification type: %s", notification.Type)
		}
	}
}

func TestConsumerNotifiesAdminsOfPendingEnrollment(t *testing.T) {
	admins := []uuid.UUID{uuid.New(), uuid.New()}
	repo := &consumerRepoStub{}
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{}, &consumerAdminsStub{adminIDs: admins}, newConsumerStore())

	event := payloads.EnrollmentCreatedEvent{
		EnrollmentID:  uuid.New(),
		UserID:        uuid.New(),
		CourseID:      uuid.New(),
		CourseTitle:   types.Bilingual{PT: "Inglês Básico", EN: "Basic English"},
		PaymentMethod: enums.PaymentMethodMpesa,
	}
	msg := buildEventMessage(t, enums.EventEnrollmentCreated, event)

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(repo.batched) != len(admins) {
		t.Fatalf("expected %d admin notifications, got %d", len(admins), len(repo.batched))
	}
}

func TestConsumerSkipsAlreadyProcessedEvents(t *testing.T) {
	repo := &consumerRepoStub{}
	store := newConsumerStore()
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{}, &consumerAdminsStub{}, store)

	event := payloads.EnrollmentApprovedEvent{
		EnrollmentID: uuid.New(),
		UserID:       uuid.New(),
		CourseID:     uuid.New(),
	}
	msg := buildEventMessage(t, enums.EventEnrollmentApproved, event)

	first := consumer.process(context.Background(), msg)
	second := consumer.process(context.Background(), msg)
	if !first.ack || !second.ack {
		t.Fatalf("expected both deliveries acked")
	}
	if len(repo.created) != 1 {
		t.Fatalf("redelivery must not duplicate notifications, got %d", len(repo.created))
	}
}

func TestConsumerReleasesIdempotencyKeyWhenHandlingFails(t *testing.T) {
	repo := &consumerRepoStub{createErr: errors.New("db down")}
	store := newConsumerStore()
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{}, &consumerAdminsStub{}, store)

	event := payloads.EnrollmentApprovedEvent{
		EnrollmentID: uuid.New(),
		UserID:       uuid.New(),
		CourseID:     uuid.New(),
	}
	msg := buildEventMessage(t, enums.EventEnrollmentApproved, event)

	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on handler failure, got %+v", result)
	}
	if len(store.values) != 0 {
		t.Fatalf("expected idempotency key released, %d keys remain", len(store.values))
	}

	// Redelivery after the failure must be handled again.
	repo.createErr = nil
	retry := consumer.process(context.Background(), msg)
	if !retry.ack {
		t.Fatalf("expected redelivery to succeed")
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected notification on retry, got %d", len(repo.created))
	}
}

func TestConsumerAcksUnknownEventTypes(t *testing.T) {
	repo := &consumerRepoStub{}
	consumer := newTestConsumer(t, repo, &consumerEnrollmentsStub{}, &consumerAdminsStub{}, newConsumerStore())

	msg := &gcppubsub.Message{
		ID:         "msg-1",
		Data:       []byte(`{"version":1}`),
		Attributes: map[string]string{"event_type": "totally_unknown"},
	}

	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("undecodable events must be dropped with an ack, got %+v", result)
	}
	if len(repo.created)+len(repo.batched) != 0 {
		t.Fatalf("no notifications expected for unknown events")
	}
}

func newTestConsumer(t *testing.T, repo repository, enrollments enrollmentReader, admins adminReader, store *consumerStore) *Consumer {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{DomainTopic: "domain-events"})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	manager, err := idempotency.NewManager(store, time.Hour)
	if err != nil {
		t.Fatalf("build idempotency manager: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "consumer-test", Output: io.Discard})
	consumer, err := NewConsumer(repo, enrollments, admins, &gcppubsub.Subscriber{}, reg, manager, logg)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	return consumer
}

func buildEventMessage(tb testing.TB, eventType enums.OutboxEventType, payload any) *gcppubsub.Message {
	tb.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		tb.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{
		ID:         uuid.NewString(),
		Data:       envelope,
		Attributes: map[string]string{"event_type": string(eventType)},
	}
}

type consumerRepoStub struct {
	created   []*models.Notification
	batched   []models.Notification
	createErr error
}

func (s *consumerRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, notification)
	return nil
}

func (s *consumerRepoStub) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.batched = append(s.batched, notifications...)
	return nil
}

type consumerEnrollmentsStub struct {
	userIDs []uuid.UUID
	err     error
}

func (s *consumerEnrollmentsStub) ApprovedUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	return s.userIDs, s.err
}

type consumerAdminsStub struct {
	adminIDs []uuid.UUID
	err      error
}

func (s *consumerAdminsStub) AdminUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.adminIDs, s.err
}

// consumerStore is an in-memory stand-in for the redis idempotency store.
type consumerStore struct {
	values map[string]string
}

func newConsumerStore() *consumerStore {
	return &consumerStore{values: map[string]string{}}
}

func (s *consumerStore) Get(ctx context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *consumerStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *consumerStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *consumerStore) IdempotencyKey(scope, id string) string {
	return "ea:idempotency:" + scope + ":" + id
}
