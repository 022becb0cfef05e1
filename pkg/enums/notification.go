package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeEnrollmentApproved NotificationType = "enrollment_approved"
	NotificationTypeEnrollmentRejected NotificationType = "enrollment_rejected"
	NotificationTypeNewMaterial        NotificationType = "new_material"
	NotificationTypeCourseUpdate       NotificationType = "course_update"
	NotificationTypeCertificateReady   NotificationType = "certificate_ready"
	NotificationTypePaymentReminder    NotificationType = "payment_reminder"
	NotificationTypeSystem             NotificationType = "system"
	NotificationTypeAdminMessage       NotificationType = "admin_message"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeEnrollmentApproved,
	NotificationTypeEnrollmentRejected,
	NotificationTypeNewMaterial,
	NotificationTypeCourseUpdate,
	NotificationTypeCertificateReady,
	NotificationTypePaymentReminder,
	NotificationTypeSystem,
	NotificationTypeAdminMessage,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationPriority orders delivery prominence in the frontend.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

var validNotificationPriorities = []NotificationPriority{
	NotificationPriorityLow,
	NotificationPriorityNormal,
	NotificationPriorityHigh,
	NotificationPriorityUrgent,
}

// IsValid reports whether the value is a known NotificationPriority.
func (p NotificationPriority) IsValid() bool {
	for _, candidate := range validNotificationPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}
