package notifications

import (
	"context"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/logger"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/idempotency"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/payloads"
	"github.com/edsonmucavele/engacademy-backend/pkg/outbox/registry"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

const notificationConsumer = "notifications-worker"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

type enrollmentReader interface {
	ApprovedUserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
}

type adminReader interface {
	AdminUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Consumer watches domain events and turns enrollment and content changes into notifications.
type Consumer struct {
	repo         repository
	enrollments  enrollmentReader
	admins       adminReader
	subscription *pubsub.Subscriber
	registry     *registry.EventRegistry
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the notifications consumer.
func NewConsumer(repo repository, enrollments enrollmentReader, admins adminReader, subscription *pubsub.Subscriber, reg *registry.EventRegistry, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if enrollments == nil {
		return nil, fmt.Errorf("enrollment reader required")
	}
	if admins == nil {
		return nil, fmt.Errorf("admin reader required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if reg == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		enrollments:  enrollments,
		admins:       admins,
		subscription: subscription,
		registry:     reg,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	resolved, err := c.registry.DecodeMessage(eventType, msg.Data)
	if err != nil {
		var nonRetryable registry.NonRetryableError
		if errors.As(err, &nonRetryable) {
			c.logg.Error(logCtx, "dropping undecodable event", err)
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "failed to decode event", err)
		return processResult{nack: true}
	}

	eventID, err := uuid.Parse(resolved.Envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handle(ctx, resolved.Payload, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func (c *Consumer) handle(ctx context.Context, payload any, logCtx context.Context) error {
	switch event := payload.(type) {
	case *payloads.EnrollmentCreatedEvent:
		return c.notifyAdminsOfPendingEnrollment(ctx, event, logCtx)
	case *payloads.EnrollmentApprovedEvent:
		return c.notifyEnrollmentApproved(ctx, event, logCtx)
	case *payloads.EnrollmentRejectedEvent:
		return c.notifyEnrollmentRejected(ctx, event, logCtx)
	case *payloads.CourseCompletedEvent:
		return c.notifyCourseCompleted(ctx, event, logCtx)
	case *payloads.MaterialAddedEvent:
		return c.notifyNewMaterial(ctx, event, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) notifyEnrollmentApproved(ctx context.Context, event *payloads.EnrollmentApprovedEvent, logCtx context.Context) error {
	if event.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	notification := newEnrollmentApprovedNotification(event.UserID, event.CourseTitle, &types.NotificationData{
		CourseID:     &event.CourseID,
		EnrollmentID: &event.EnrollmentID,
	})
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "student notified of approved enrollment")
	return nil
}

func (c *Consumer) notifyEnrollmentRejected(ctx context.Context, event *payloads.EnrollmentRejectedEvent, logCtx context.Context) error {
	if event.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	notification := newEnrollmentRejectedNotification(event.UserID, event.CourseTitle, event.Reason, &types.NotificationData{
		CourseID:     &event.CourseID,
		EnrollmentID: &event.EnrollmentID,
	})
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "student notified of rejected enrollment")
	return nil
}

func (c *Consumer) notifyCourseCompleted(ctx context.Context, event *payloads.CourseCompletedEvent, logCtx context.Context) error {
	if event.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	notification := newCertificateReadyNotification(event.UserID, event.CourseTitle, &types.NotificationData{
		CourseID:     &event.CourseID,
		EnrollmentID: &event.EnrollmentID,
	})
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "student notified of course completion")
	return nil
}

func (c *Consumer) notifyNewMaterial(ctx context.Context, event *payloads.MaterialAddedEvent, logCtx context.Context) error {
	if event.CourseID == uuid.Nil {
		return fmt.Errorf("course id missing")
	}
	userIDs, err := c.enrollments.ApprovedUserIDs(ctx, event.CourseID)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		c.logg.Info(logCtx, "no approved students for material fanout")
		return nil
	}

	notifications := make([]models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, newMaterialNotification(userID, event.CourseTitle, event.LessonTitle, &types.NotificationData{
			CourseID: &event.CourseID,
			LessonID: &event.LessonID,
		}))
	}
	if err := c.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithFields(logCtx, map[string]any{"recipients": len(userIDs)}), "students notified of new material")
	return nil
}

func (c *Consumer) notifyAdminsOfPendingEnrollment(ctx context.Context, event *payloads.EnrollmentCreatedEvent, logCtx context.Context) error {
	if event.UserID == uuid.Nil {
		return fmt.Errorf("user id missing")
	}
	adminIDs, err := c.admins.AdminUserIDs(ctx)
	if err != nil {
		return err
	}
	if len(adminIDs) == 0 {
		c.logg.Info(logCtx, "no admins to notify of pending enrollment")
		return nil
	}

	notifications := make([]models.Notification, 0, len(adminIDs))
	for _, adminID := range adminIDs {
		notifications = append(notifications, models.Notification{
			UserID: adminID,
			Type:   enums.NotificationTypeSystem,
			Title: types.Bilingual{
				PT: "Nova Inscrição Pendente",
				EN: "New Pending Enrollment",
			},
			Message: types.Bilingual{
				PT: fmt.Sprintf("Uma nova inscrição no curso %q aguarda revisão do comprovativo.", event.CourseTitle.PT),
				EN: fmt.Sprintf("A new enrollment in course %q is waiting for proof review.", event.CourseTitle.EN),
			},
			Data: &types.NotificationData{
				CourseID:     &event.CourseID,
				EnrollmentID: &event.EnrollmentID,
			},
			Priority: enums.NotificationPriorityNormal,
		})
	}
	if err := c.repo.CreateBatch(ctx, notifications); err != nil {
		return err
	}
	c.logg.Info(logCtx, "admins notified of pending enrollment")
	return nil
}
