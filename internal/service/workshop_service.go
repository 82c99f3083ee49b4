package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/matching"
	"github.com/vedran77/skillshare/internal/repository"
)

const WorkshopsPerPage = 6

var (
	ErrWorkshopNotFound        = domain.ErrWorkshopNotFound
	ErrAlreadyRegistered       = domain.ErrAlreadyRegistered
	ErrWorkshopFull            = domain.ErrWorkshopFull
	ErrOwnWorkshop             = domain.ErrOwnWorkshop
	ErrWorkshopClosed          = domain.ErrWorkshopClosed
	ErrNotWorkshopHost         = errors.New("only the workshop host can perform this action")
	ErrInvalidStatusTransition = errors.New("workshop status cannot change from its current state")
)

type WorkshopService struct {
	workshopRepo repository.WorkshopRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	log          logging.Logger
}

func NewWorkshopService(workshopRepo repository.WorkshopRepository, userRepo repository.UserRepository, log logging.Logger) *WorkshopService {
	return &WorkshopService{
		workshopRepo: workshopRepo,
		userRepo:     userRepo,
		log:          log.With("component", "workshops"),
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *WorkshopService) SetNotifier(n Notifier) {
	s.notifier = n
}

type CreateWorkshopInput struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	MaxParticipants int       `json:"max_participants"`
	DateTime        time.Time `json:"date_time"`
	Location        string    `json:"location"`
}

type UpdateStatusInput struct {
	Status domain.WorkshopStatus `json:"status"`
}

type RegistrationInput struct {
	WorkshopID uuid.UUID `json:"workshop_id"`
}

func (s *WorkshopService) Create(ctx context.Context, hostID uuid.UUID, input CreateWorkshopInput) (*domain.WorkshopSummary, error) {
	host, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, err
	}
	if host == nil {
		return nil, ErrUserNotFound
	}

	w := domain.Workshop{
		ID:              uuid.New(),
		HostID:          hostID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        input.Category,
		MaxParticipants: input.MaxParticipants,
		DateTime:        input.DateTime.UTC(),
		Location:        strings.TrimSpace(input.Location),
		Status:          domain.WorkshopScheduled,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.workshopRepo.Create(ctx, &w); err != nil {
		return nil, fmt.Errorf("creating workshop: %w", err)
	}

	summary := &domain.WorkshopSummary{Workshop: w, HostName: host.Name}

	s.log.Info(ctx, "workshop created", "workshop_id", w.ID, "host_id", hostID)
	if s.notifier != nil {
		s.notifier.NotifyWorkshopCreated(summary)
	}

	return summary, nil
}

// List pages over every workshop ordered by date. Pages past the end are
// empty rather than an error.
func (s *WorkshopService) List(ctx context.Context, page int) (domain.Page[domain.WorkshopSummary], error) {
	page, offset := domain.NormalizePage(page, WorkshopsPerPage)

	items, total, err := s.workshopRepo.List(ctx, offset, WorkshopsPerPage)
	if err != nil {
		return domain.Page[domain.WorkshopSummary]{}, fmt.Errorf("listing workshops: %w", err)
	}

	return domain.NewPage(items, page, WorkshopsPerPage, total), nil
}

func (s *WorkshopService) ListScheduled(ctx context.Context) ([]domain.WorkshopSummary, error) {
	items, err := s.workshopRepo.ListByStatus(ctx, domain.WorkshopScheduled)
	if err != nil {
		return nil, fmt.Errorf("listing scheduled workshops: %w", err)
	}
	return items, nil
}

func (s *WorkshopService) Get(ctx context.Context, id uuid.UUID) (*domain.WorkshopDetail, error) {
	summary, err := s.workshopRepo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, ErrWorkshopNotFound
	}

	participants, err := s.workshopRepo.ListParticipants(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}

	return &domain.WorkshopDetail{WorkshopSummary: *summary, Participants: participants}, nil
}

// Register enrolls userID in a workshop. Capacity, duplicate and ownership
// checks happen inside the store transaction.
func (s *WorkshopService) Register(ctx context.Context, userID, workshopID uuid.UUID) (*domain.Registration, error) {
	reg := &domain.Registration{
		ID:           uuid.New(),
		WorkshopID:   workshopID,
		UserID:       userID,
		Status:       domain.RegistrationRegistered,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.workshopRepo.Register(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrWorkshopNotFound),
			errors.Is(err, domain.ErrOwnWorkshop),
			errors.Is(err, domain.ErrWorkshopClosed),
			errors.Is(err, domain.ErrAlreadyRegistered),
			errors.Is(err, domain.ErrWorkshopFull):
			return nil, err
		}
		return nil, fmt.Errorf("registering for workshop: %w", err)
	}

	s.log.Info(ctx, "registered for workshop", "workshop_id", workshopID, "user_id", userID)
	s.notifyCount(ctx, workshopID)

	return reg, nil
}

func (s *WorkshopService) UpdateStatus(ctx context.Context, requesterID, id uuid.UUID, status domain.WorkshopStatus) (*domain.Workshop, error) {
	w, err := s.workshopRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWorkshopNotFound
	}

	if w.HostID != requesterID {
		requester, err := s.userRepo.GetByID(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		if !requester.IsAdmin() {
			return nil, ErrNotWorkshopHost
		}
	}

	if w.Status.Terminal() || !status.Terminal() {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.workshopRepo.UpdateStatus(ctx, id, w.Status, status)
	if err != nil {
		return nil, fmt.Errorf("updating workshop status: %w", err)
	}
	if !updated {
		return nil, ErrInvalidStatusTransition
	}
	w.Status = status

	s.log.Info(ctx, "workshop status changed", "workshop_id", id, "status", status)
	if s.notifier != nil {
		s.notifier.NotifyWorkshopStatus(id, status)
	}

	return w, nil
}

// Recommend ranks the scheduled workshops against the user's sought skills.
func (s *WorkshopService) Recommend(ctx context.Context, userID uuid.UUID) ([]matching.Match, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	candidates, err := s.workshopRepo.ListByStatus(ctx, domain.WorkshopScheduled)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	return matching.FindMatches(user, candidates), nil
}

func (s *WorkshopService) notifyCount(ctx context.Context, workshopID uuid.UUID) {
	if s.notifier == nil {
		return
	}

	summary, err := s.workshopRepo.GetSummary(ctx, workshopID)
	if err != nil || summary == nil {
		s.log.Warn(ctx, "loading workshop for notification", "workshop_id", workshopID, "error", err)
		return
	}
	s.notifier.NotifyRegistration(workshopID, summary.ParticipantCount, summary.MaxParticipants)
}
