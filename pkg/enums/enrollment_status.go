package enums

import "fmt"

// EnrollmentStatus maps to the enrollment_status enum in Postgres. The
// Portuguese values are consumed verbatim by the frontend.
type EnrollmentStatus string

const (
	EnrollmentStatusPendente  EnrollmentStatus = "PENDENTE"
	EnrollmentStatusAprovado  EnrollmentStatus = "APROVADO"
	EnrollmentStatusRejeitado EnrollmentStatus = "REJEITADO"
	EnrollmentStatusCancelado EnrollmentStatus = "CANCELADO"
	EnrollmentStatusExpirado  EnrollmentStatus = "EXPIRADO"
)

var validEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusPendente,
	EnrollmentStatusAprovado,
	EnrollmentStatusRejeitado,
	EnrollmentStatusCancelado,
	EnrollmentStatusExpirado,
}

// String implements fmt.Stringer.
func (s EnrollmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known EnrollmentStatus.
func (s EnrollmentStatus) IsValid() bool {
	for _, candidate := range validEnrollmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsActive reports whether the status blocks a new enrollment for the same
// (user, course) pair. Terminal rejections and cancellations do not.
func (s EnrollmentStatus) IsActive() bool {
	return s == EnrollmentStatusPendente || s == EnrollmentStatusAprovado
}

// IsTerminal reports whether no further status transition is defined.
func (s EnrollmentStatus) IsTerminal() bool {
	switch s {
	case EnrollmentStatusRejeitado, EnrollmentStatusCancelado, EnrollmentStatusExpirado:
		return true
	}
	return false
}

// ParseEnrollmentStatus converts raw input into an EnrollmentStatus.
func ParseEnrollmentStatus(value string) (EnrollmentStatus, error) {
	for _, candidate := range validEnrollmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid enrollment status %q", value)
}
