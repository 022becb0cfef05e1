package enums

import "fmt"

// AuditAction maps to the audit_action enum in Postgres. The closed set spans
// every privileged or security-relevant operation the platform records.
type AuditAction string

const (
	// Auth actions.
	AuditActionLogin          AuditAction = "login"
	AuditActionLogout         AuditAction = "logout"
	AuditActionRegister       AuditAction = "register"
	AuditActionPasswordChange AuditAction = "password_change"
	AuditActionPasswordReset  AuditAction = "password_reset"

	// User actions.
	AuditActionUserCreate AuditAction = "user_create"
	AuditActionUserUpdate AuditAction = "user_update"
	AuditActionUserDelete AuditAction = "user_delete"
	AuditActionRoleChange AuditAction = "role_change"

	// Course actions.
	AuditActionCourseCreate    AuditAction = "course_create"
	AuditActionCourseUpdate    AuditAction = "course_update"
	AuditActionCourseDelete    AuditAction = "course_delete"
	AuditActionCoursePublish   AuditAction = "course_publish"
	AuditActionCourseUnpublish AuditAction = "course_unpublish"

	// Module/lesson actions.
	AuditActionModuleCreate   AuditAction = "module_create"
	AuditActionModuleUpdate   AuditAction = "module_update"
	AuditActionModuleDelete   AuditAction = "module_delete"
	AuditActionLessonCreate   AuditAction = "lesson_create"
	AuditActionLessonUpdate   AuditAction = "lesson_update"
	AuditActionLessonDelete   AuditAction = "lesson_delete"
	AuditActionMaterialAdd    AuditAction = "material_add"
	AuditActionMaterialDelete AuditAction = "material_delete"

	// Enrollment actions.
	AuditActionEnrollmentCreate  AuditAction = "enrollment_create"
	AuditActionEnrollmentApprove AuditAction = "enrollment_approve"
	AuditActionEnrollmentReject  AuditAction = "enrollment_reject"
	AuditActionEnrollmentCancel  AuditAction = "enrollment_cancel"

	// Progress actions.
	AuditActionLessonComplete      AuditAction = "lesson_complete"
	AuditActionCertificateGenerate AuditAction = "certificate_generate"

	// System actions.
	AuditActionSystemSettingChange AuditAction = "system_setting_change"
	AuditActionBackupCreate        AuditAction = "backup_create"
	AuditActionDataExport          AuditAction = "data_export"
)

var validAuditActions = []AuditAction{
	AuditActionLogin, AuditActionLogout, AuditActionRegister,
	AuditActionPasswordChange, AuditActionPasswordReset,
	AuditActionUserCreate, AuditActionUserUpdate, AuditActionUserDelete, AuditActionRoleChange,
	AuditActionCourseCreate, AuditActionCourseUpdate, AuditActionCourseDelete,
	AuditActionCoursePublish, AuditActionCourseUnpublish,
	AuditActionModuleCreate, AuditActionModuleUpdate, AuditActionModuleDelete,
	AuditActionLessonCreate, AuditActionLessonUpdate, AuditActionLessonDelete,
	AuditActionMaterialAdd, AuditActionMaterialDelete,
	AuditActionEnrollmentCreate, AuditActionEnrollmentApprove,
	AuditActionEnrollmentReject, AuditActionEnrollmentCancel,
	AuditActionLessonComplete, AuditActionCertificateGenerate,
	AuditActionSystemSettingChange, AuditActionBackupCreate, AuditActionDataExport,
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// AuditTargetType names the entity kind an audit entry points at.
type AuditTargetType string

const (
	AuditTargetUser       AuditTargetType = "user"
	AuditTargetCourse     AuditTargetType = "course"
	AuditTargetModule     AuditTargetType = "module"
	AuditTargetLesson     AuditTargetType = "lesson"
	AuditTargetEnrollment AuditTargetType = "enrollment"
	AuditTargetMaterial   AuditTargetType = "material"
	AuditTargetSystem     AuditTargetType = "system"
)

var validAuditTargetTypes = []AuditTargetType{
	AuditTargetUser,
	AuditTargetCourse,
	AuditTargetModule,
	AuditTargetLesson,
	AuditTargetEnrollment,
	AuditTargetMaterial,
	AuditTargetSystem,
}

// IsValid reports whether the value is a known AuditTargetType.
func (t AuditTargetType) IsValid() bool {
	for _, candidate := range validAuditTargetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// AuditStatus records the outcome of the audited action.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusWarning AuditStatus = "warning"
)

var validAuditStatuses = []AuditStatus{
	AuditStatusSuccess,
	AuditStatusFailure,
	AuditStatusWarning,
}

// IsValid reports whether the value is a known AuditStatus.
func (s AuditStatus) IsValid() bool {
	for _, candidate := range validAuditStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
