package ws

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyWorkshopCreated(w *domain.WorkshopSummary) {
	n.publish(EventTypeWorkshopCreated, nil, WorkshopPayload{WorkshopSummary: *w})
}

func (n *HubNotifier) NotifyRegistration(workshopID uuid.UUID, participantCount, maxParticipants int) {
	n.publish(EventTypeRegistration, &workshopID, RegistrationPayload{
		WorkshopID:      workshopID,
		Participants:    participantCount,
		MaxParticipants: maxParticipants,
		SpotsRemaining:  max(maxParticipants-participantCount, 0),
	})
}

func (n *HubNotifier) NotifyWorkshopStatus(workshopID uuid.UUID, status domain.WorkshopStatus) {
	n.publish(EventTypeWorkshopStatus, &workshopID, WorkshopStatusPayload{WorkshopID: workshopID, Status: status})
}

func (n *HubNotifier) NotifyArticlePublished(a *domain.KnowledgeArticle) {
	tags := a.TagList()
	if tags == nil {
		tags = []string{}
	}
	n.publish(EventTypeArticlePublished, nil, ArticlePayload{
		ID:         a.ID,
		Title:      a.Title,
		Category:   a.Category,
		Tags:       tags,
		AuthorName: a.AuthorName,
	})
}

func (n *HubNotifier) NotifyArticleComment(c *domain.ArticleComment) {
	n.publish(EventTypeArticleComment, &c.ArticleID, CommentPayload{ArticleComment: *c})
}

func (n *HubNotifier) publish(eventType string, topic *uuid.UUID, payload any) {
	evt, err := NewEvent(eventType, topic, payload)
	if err != nil {
		n.hub.log.Error(context.Background(), "encode event", "type", eventType, "error", err)
		return
	}
	n.hub.Broadcast(evt)
}
