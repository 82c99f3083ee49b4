package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type WorkshopStatus string

const (
	WorkshopScheduled WorkshopStatus = "scheduled"
	WorkshopCompleted WorkshopStatus = "completed"
	WorkshopCancelled WorkshopStatus = "cancelled"
)

func (s WorkshopStatus) Valid() bool {
	switch s {
	case WorkshopScheduled, WorkshopCompleted, WorkshopCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s WorkshopStatus) Terminal() bool {
	return s == WorkshopCompleted || s == WorkshopCancelled
}

var WorkshopCategories = []string{
	"coding",
	"cooking",
	"arts",
	"business",
	"health",
	"language",
	"music",
	"other",
}

func IsWorkshopCategory(c string) bool {
	return slices.Contains(WorkshopCategories, c)
}

const RegistrationRegistered = "registered"

type Workshop struct {
	ID              uuid.UUID      `json:"id"`
	HostID          uuid.UUID      `json:"host_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	MaxParticipants int            `json:"max_participants"`
	DateTime        time.Time      `json:"date_time"`
	Location        string         `json:"location"`
	Status          WorkshopStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
}

// WorkshopSummary is a workshop joined with its host and registrations.
type WorkshopSummary struct {
	Workshop
	HostName         string      `json:"host_name"`
	ParticipantCount int         `json:"current_participants"`
	RegistrantIDs    []uuid.UUID `json:"-"`
}

func (w *WorkshopSummary) IsRegistered(userID uuid.UUID) bool {
	return slices.Contains(w.RegistrantIDs, userID)
}

func (w *WorkshopSummary) IsFull() bool {
	return w.ParticipantCount >= w.MaxParticipants
}

type Registration struct {
	ID           uuid.UUID `json:"id"`
	WorkshopID   uuid.UUID `json:"workshop_id"`
	UserID       uuid.UUID `json:"user_id"`
	Status       string    `json:"attendance_status"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Participant struct {
	Registration
	UserName string `json:"user_name"`
}

type RegistrationActivity struct {
	Registration
	UserName      string `json:"user_name"`
	WorkshopTitle string `json:"workshop_title"`
}

type WorkshopDetail struct {
	WorkshopSummary
	Participants []Participant `json:"participants"`
}
