package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateEnrollment OutboxAggregateType = "enrollment"
	AggregateCourse     OutboxAggregateType = "course"
	AggregateLesson     OutboxAggregateType = "lesson"
	AggregateUser       OutboxAggregateType = "user"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateEnrollment,
	AggregateCourse,
	AggregateLesson,
	AggregateUser,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventEnrollmentCreated  OutboxEventType = "enrollment_created"
	EventEnrollmentApproved OutboxEventType = "enrollment_approved"
	EventEnrollmentRejected OutboxEventType = "enrollment_rejected"
	EventCourseCompleted    OutboxEventType = "course_completed"
	EventMaterialAdded      OutboxEventType = "material_added"
)

var validOutboxEventTypes = []OutboxEventType{
	EventEnrollmentCreated,
	EventEnrollmentApproved,
	EventEnrollmentRejected,
	EventCourseCompleted,
	EventMaterialAdded,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason classifies why an event was parked in the DLQ.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value matches the canonical DLQ reason enum.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}
