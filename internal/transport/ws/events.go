package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeSubscribe   = "subscribe"
	EventTypeUnsubscribe = "unsubscribe"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypeWorkshopCreated  = "workshop.created"
	EventTypeRegistration     = "workshop.registration"
	EventTypeWorkshopStatus   = "workshop.status"
	EventTypeArticlePublished = "article.published"
	EventTypeArticleComment   = "article.comment"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Event is the base envelope for all WebSocket messages. Topic is the id of
// the workshop or article the event concerns; feed-wide events carry none.
type Event struct {
	Type      string          `json:"type"`
	Topic     *uuid.UUID      `json:"topic,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type TopicPayload struct {
	ID uuid.UUID `json:"id"`
}

// --- Server → Client payloads ---

type WorkshopPayload struct {
	domain.WorkshopSummary
}

type RegistrationPayload struct {
	WorkshopID      uuid.UUID `json:"workshop_id"`
	Participants    int       `json:"current_participants"`
	MaxParticipants int       `json:"max_participants"`
	SpotsRemaining  int       `json:"spots_remaining"`
}

type WorkshopStatusPayload struct {
	WorkshopID uuid.UUID             `json:"workshop_id"`
	Status     domain.WorkshopStatus `json:"status"`
}

type ArticlePayload struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	AuthorName string    `json:"author_name"`
}

type CommentPayload struct {
	domain.ArticleComment
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, topic *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Topic:     topic,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
