package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edsonmucavele/engacademy-backend/pkg/config"
	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
	maxErrorBackoff    = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type brokerClient interface {
	Ping(context.Context) error
	DomainPublisher() *gcppubsub.Publisher
}

type outboxSource interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetterSink interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type eventResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// topicPublisher is the blocking publish seam. The production
// implementation wraps the GCP domain publisher and waits for the server
// ack before returning.
type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) (string, error)
}

// PublisherParams bundles the dependencies for NewPublisher. Topic
// overrides the broker's domain topic and exists for tests.
type PublisherParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	Broker     brokerClient
	Repository outboxSource
	DLQ        deadLetterSink
	Registry   eventResolver
	Topic      topicPublisher
}

// Publisher drains the transactional outbox and delivers domain events
// to the single Pub/Sub domain topic. Every fetched row settles in
// exactly one state per cycle: published, scheduled for retry, or parked
// in the dead letter queue inside the same transaction that read it.
type Publisher struct {
	logg        *logger.Logger
	db          dbClient
	broker      brokerClient
	repo        outboxSource
	dlq         deadLetterSink
	registry    eventResolver
	topic       topicPublisher
	batchSize   int
	maxAttempts int
	poll        time.Duration
	jitter      *rand.Rand
}

func NewPublisher(params PublisherParams) (*Publisher, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Broker == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.DLQ == nil {
		return nil, errors.New("dlq repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}

	topic := params.Topic
	if topic == nil {
		domain := params.Broker.DomainPublisher()
		if domain == nil {
			return nil, errors.New("domain topic publisher is not configured")
		}
		topic = domainTopic{pub: domain}
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Publisher{
		logg:        params.Logger,
		db:          params.DB,
		broker:      params.Broker,
		repo:        params.Repository,
		dlq:         params.DLQ,
		registry:    params.Registry,
		topic:       topic,
		batchSize:   batch,
		maxAttempts: maxAttempts,
		poll:        time.Duration(pollMs) * time.Millisecond,
		jitter:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run polls until the context is canceled. An empty fetch idles for the
// poll interval; a drain error backs off exponentially up to
// maxErrorBackoff.
func (p *Publisher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.checkDependencies(ctx); err != nil {
		return err
	}

	backoff := p.poll
	for {
		select {
		case <-ctx.Done():
			p.logg.Info(ctx, "outbox publisher context canceled")
			return ctx.Err()
		default:
		}

		drained, err := p.drainOnce(ctx)
		if err != nil {
			p.logg.Error(ctx, "outbox drain failed", err)
			backoff = doubleUpTo(backoff, maxErrorBackoff)
			if err := p.idle(ctx, backoff); err != nil {
				return err
			}
			continue
		}
		backoff = p.poll

		if drained {
			continue
		}
		if err := p.idle(ctx, p.poll); err != nil {
			return err
		}
	}
}

func (p *Publisher) checkDependencies(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		p.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := p.broker.Ping(ctx); err != nil {
		p.logg.Error(ctx, "pubsub ping failed", err)
		return fmt.Errorf("pubsub ping failed: %w", err)
	}
	return nil
}

// drainOnce fetches one batch inside a transaction and settles every row.
// It reports whether any rows were fetched so Run knows when to idle.
func (p *Publisher) drainOnce(ctx context.Context) (bool, error) {
	drained := false
	err := p.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := p.repo.FetchUnpublishedForPublish(tx, p.batchSize, p.maxAttempts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		drained = true
		for _, event := range events {
			if err := p.settle(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	return drained, err
}

// settle decides the fate of one outbox row: publish and mark done, mark
// failed for a later retry, or park it in the DLQ.
func (p *Publisher) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent) error {
	resolved, err := p.registry.Resolve(event)
	if err != nil {
		return p.park(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err)
	}

	err = p.deliver(ctx, event, resolved)
	if err == nil {
		if markErr := p.repo.MarkPublishedTx(tx, event.ID); markErr != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, markErr)
		}
		p.logg.Info(p.eventCtx(ctx, event, resolved), "domain event published")
		return nil
	}

	var nonRetry registry.NonRetryableError
	if errors.As(err, &nonRetry) {
		return p.park(ctx, tx, event, enums.OutboxDLQReasonNonRetryable, err)
	}
	if event.AttemptCount+1 >= p.maxAttempts {
		return p.park(ctx, tx, event, enums.OutboxDLQReasonMaxAttempts, fmt.Errorf("max publish attempts reached: %w", err))
	}

	logCtx := p.logg.WithField(p.eventCtx(ctx, event, resolved), "error", err.Error())
	p.logg.Warn(logCtx, "domain event publish failed, will retry")
	if markErr := p.repo.MarkFailedTx(tx, event.ID, err); markErr != nil {
		return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
	}
	return nil
}

func (p *Publisher) deliver(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	msg := &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	_, err := p.topic.Publish(publishCtx, msg)
	return err
}

// park writes the DLQ row and marks the outbox row terminal in the same
// transaction, so the event is never dropped without a trace.
func (p *Publisher) park(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	logCtx := p.logg.WithField(p.eventCtx(ctx, event, nil), "error_reason", reason)
	logCtx = p.logg.WithField(logCtx, "error", cause.Error())
	p.logg.Warn(logCtx, "domain event parked in dead letter queue")

	message := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &message,
		AttemptCount:  event.AttemptCount,
		FailedAt:      time.Now().UTC(),
	}
	if err := p.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("insert dlq %s: %w", event.ID, err)
	}
	if err := p.repo.MarkTerminalTx(tx, event.ID, cause, p.maxAttempts); err != nil {
		return fmt.Errorf("mark terminal %s: %w", event.ID, err)
	}
	return nil
}

func (p *Publisher) eventCtx(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) context.Context {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"attempt_count":  event.AttemptCount,
	}
	if resolved != nil {
		fields["event_id"] = resolved.Envelope.EventID
		fields["topic"] = resolved.Descriptor.Topic
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return p.logg.WithFields(ctx, fields)
}

func (p *Publisher) idle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	d += time.Duration(p.jitter.Int63n(int64(jitterWindow)))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func doubleUpTo(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}

// domainTopic adapts the async GCP publisher into the blocking seam.
type domainTopic struct {
	pub *gcppubsub.Publisher
}

func (t domainTopic) Publish(ctx context.Context, msg *gcppubsub.Message) (string, error) {
	return t.pub.Publish(ctx, msg).Get(ctx)
}
