package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/edsonmucavele/engacademy-backend/pkg/db/models"
	"github.com/edsonmucavele/engacademy-backend/pkg/enums"
	"github.com/edsonmucavele/engacademy-backend/pkg/types"
)

// Notification copy lives here so the worker and any admin tooling render the
// exact bilingual texts the frontend expects.

const (
	rejectionFallbackPT = "Entre em contato para mais informações."
	rejectionFallbackEN = "Please contact us for more information."
)

func newEnrollmentApprovedNotification(userID uuid.UUID, courseTitle types.Bilingual, data *types.NotificationData) *models.Notification {
	return &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeEnrollmentApproved,
		Title: types.Bilingual{
			PT: "✅ Inscrição Aprovada!",
			EN: "✅ Enrollment Approved!",
		},
		Message: types.Bilingual{
			PT: fmt.Sprintf("Parabéns! Sua inscrição no curso %q foi aprovada. Você já pode começar a estudar!", courseTitle.PT),
			EN: fmt.Sprintf("Congratulations! Your enrollment in the course %q has been approved. You can start learning now!", courseTitle.EN),
		},
		Data:     data,
		Priority: enums.NotificationPriorityHigh,
	}
}

func newEnrollmentRejectedNotification(userID uuid.UUID, courseTitle types.Bilingual, reason string, data *types.NotificationData) *models.Notification {
	reasonPT := reason
	reasonEN := reason
	if reason == "" {
		reasonPT = rejectionFallbackPT
		reasonEN = rejectionFallbackEN
	}
	return &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeEnrollmentRejected,
		Title: types.Bilingual{
			PT: "❌ Inscrição Rejeitada",
			EN: "❌ Enrollment Rejected",
		},
		Message: types.Bilingual{
			PT: fmt.Sprintf("Sua inscrição no curso %q foi rejeitada. %s", courseTitle.PT, reasonPT),
			EN: fmt.Sprintf("Your enrollment in the course %q has been rejected. %s", courseTitle.EN, reasonEN),
		},
		Data:     data,
		Priority: enums.NotificationPriorityNormal,
	}
}

func newMaterialNotification(userID uuid.UUID, courseTitle, lessonTitle types.Bilingual, data *types.NotificationData) models.Notification {
	return models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeNewMaterial,
		Title: types.Bilingual{
			PT: "📚 Novo Material Disponível",
			EN: "📚 New Material Available",
		},
		Message: types.Bilingual{
			PT: fmt.Sprintf("Um novo material foi adicionado à aula %q do curso %q.", lessonTitle.PT, courseTitle.PT),
			EN: fmt.Sprintf("New material has been added to lesson %q in course %q.", lessonTitle.EN, courseTitle.EN),
		},
		Data:     data,
		Priority: enums.NotificationPriorityNormal,
	}
}

func newCertificateReadyNotification(userID uuid.UUID, courseTitle types.Bilingual, data *types.NotificationData) *models.Notification {
	return &models.Notification{
		UserID: userID,
		Type:   enums.NotificationTypeCertificateReady,
		Title: types.Bilingual{
			PT: "🎓 Curso Concluído!",
			EN: "🎓 Course Completed!",
		},
		Message: types.Bilingual{
			PT: fmt.Sprintf("Você concluiu o curso %q. Seu certificado está sendo preparado.", courseTitle.PT),
			EN: fmt.Sprintf("You completed the course %q. Your certificate is being prepared.", courseTitle.EN),
		},
		Data:     data,
		Priority: enums.NotificationPriorityHigh,
	}
}
