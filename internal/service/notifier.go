package service

import (
	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyWorkshopCreated(w *domain.WorkshopSummary)
	NotifyRegistration(workshopID uuid.UUID, participantCount, maxParticipants int)
	NotifyWorkshopStatus(workshopID uuid.UUID, status domain.WorkshopStatus)
	NotifyArticlePublished(a *domain.KnowledgeArticle)
	NotifyArticleComment(c *domain.ArticleComment)
}
