package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
)

// AuditLog is an append-only record of who did what. Rows older than the
// retention window are swept by the cron worker.
type AuditLog struct {
	ID           uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       *uuid.UUID             `gorm:"column:user_id;type:uuid;index:idx_audit_logs_user_created" json:"userId,omitempty"`
	Action       enums.AuditAction      `gorm:"column:action;type:audit_action;not null;index:idx_audit_logs_action_created" json:"action"`
	Description  string                 `gorm:"column:description;not null" json:"description"`
	TargetType   *enums.AuditTargetType `gorm:"column:target_type;type:audit_target_type" json:"targetType,omitempty"`
	TargetID     *uuid.UUID             `gorm:"column:target_id;type:uuid" json:"targetId,omitempty"`
	PreviousData json.RawMessage        `gorm:"column:previous_data;type:jsonb" json:"previousData,omitempty"`
	NewData      json.RawMessage        `gorm:"column:new_data;type:jsonb" json:"newData,omitempty"`
	IP           *string                `gorm:"column:ip" json:"ip,omitempty"`
	UserAgent    *string                `gorm:"column:user_agent" json:"userAgent,omitempty"`
	Status       enums.AuditStatus      `gorm:"column:status;type:audit_status;not null;default:'success'" json:"status"`
	ErrorMessage *string                `gorm:"column:error_message" json:"errorMessage,omitempty"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime;index:idx_audit_logs_created_at,sort:desc" json:"createdAt"`
}
