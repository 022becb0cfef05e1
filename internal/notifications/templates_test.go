package notifications

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

var templateCourseTitle = types.Bilingual{PT: "Engenharia de Estruturas", EN: "Structural Engineering"}

func TestApprovedTemplateUsesHighPriority(t *testing.T) {
	notification := newEnrollmentApprovedNotification(uuid.New(), templateCourseTitle, nil)
	if notification.Priority != enums.NotificationPriorityHigh {
		t.Fatalf("expected high priority, got %s", notification.Priority)
	}
	if notification.Title.PT != "✅ Inscrição Aprovada!" {
		t.Fatalf("unexpected title %q", notification.Title.PT)
	}
	if !strings.Contains(notification.Message.PT, "Engenharia de Estruturas") {
		t.Fatalf("expected course title in message, got %q", notification.Message.PT)
	}
}

func TestRejectedTemplateFallsBackWithoutReason(t *testing.T) {
	notification := newEnrollmentRejectedNotification(uuid.New(), templateCourseTitle, "", nil)
	if !strings.Contains(notification.Message.PT, rejectionFallbackPT) {
		t.Fatalf("expected fallback reason, got %q", notification.Message.PT)
	}
	if !strings.Contains(notification.Message.EN, rejectionFallbackEN) {
		t.Fatalf("expected fallback reason, got %q", notification.Message.EN)
	}

	withReason := newEnrollmentRejectedNotification(uuid.New(), templateCourseTitle, "Comprovativo ilegível", nil)
	if !strings.Contains(withReason.Message.PT, "Comprovativo ilegível") {
		t.Fatalf("expected supplied reason, got %q", withReason.Message.PT)
	}
}

func TestMaterialTemplateMentionsLessonAndCourse(t *testing.T) {
	lesson := types.Bilingual{PT: "Fundações", EN: "Foundations"}
	notification := newMaterialNotification(uuid.New(), templateCourseTitle, lesson, nil)
	if notification.Type != enums.NotificationTypeNewMaterial {
		t.Fatalf("unexpected type %s", notification.Type)
	}
	if !strings.Contains(notification.Message.EN, "Foundations") || !strings.Contains(notification.Message.EN, "Structural Engineering") {
		t.Fatalf("expected lesson and course in message, got %q", notification.Message.EN)
	}
}
