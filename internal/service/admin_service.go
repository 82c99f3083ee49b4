package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultActivityLimit = 10
	MaxActivityLimit     = 100
)

type AdminService struct {
	userRepo     repository.UserRepository
	workshopRepo repository.WorkshopRepository
	log          logging.Logger
}

func NewAdminService(userRepo repository.UserRepository, workshopRepo repository.WorkshopRepository, log logging.Logger) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		workshopRepo: workshopRepo,
		log:          log.With("component", "admin"),
	}
}

type PlatformStats struct {
	TotalUsers         int `json:"total_users"`
	TotalWorkshops     int `json:"total_workshops"`
	TotalRegistrations int `json:"total_registrations"`
	UpcomingWorkshops  int `json:"upcoming_workshops"`
}

type RecentActivity struct {
	RecentWorkshops     []domain.WorkshopSummary      `json:"recent_workshops"`
	RecentRegistrations []domain.RegistrationActivity `json:"recent_registrations"`
	RecentUsers         []domain.User                 `json:"recent_users"`
}

type SetRoleInput struct {
	Role domain.Role `json:"role"`
}

func (s *AdminService) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.userRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting users: %w", err)
		}
		stats.TotalUsers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.workshopRepo.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting workshops: %w", err)
		}
		stats.TotalWorkshops = n
		return nil
	})
	g.Go(func() error {
		n, err := s.workshopRepo.CountRegistrations(ctx)
		if err != nil {
			return fmt.Errorf("counting registrations: %w", err)
		}
		stats.TotalRegistrations = n
		return nil
	})
	g.Go(func() error {
		n, err := s.workshopRepo.CountByStatus(ctx, domain.WorkshopScheduled)
		if err != nil {
			return fmt.Errorf("counting upcoming workshops: %w", err)
		}
		stats.UpcomingWorkshops = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentActivity returns the newest workshops, registrations and users.
// limit <= 0 falls back to DefaultActivityLimit.
func (s *AdminService) RecentActivity(ctx context.Context, limit int) (*RecentActivity, error) {
	limit = repository.ClampLimit(limit, DefaultActivityLimit, MaxActivityLimit)

	var act RecentActivity

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.workshopRepo.ListRecent(ctx, limit)
		if err != nil {
			return fmt.Errorf("listing recent workshops: %w", err)
		}
		act.RecentWorkshops = nonNil(items)
		return nil
	})
	g.Go(func() error {
		items, err := s.workshopRepo.ListRecentRegistrations(ctx, limit)
		if err != nil {
			return fmt.Errorf("listing recent registrations: %w", err)
		}
		act.RecentRegistrations = nonNil(items)
		return nil
	})
	g.Go(func() error {
		items, err := s.userRepo.ListRecent(ctx, limit)
		if err != nil {
			return fmt.Errorf("listing recent users: %w", err)
		}
		act.RecentUsers = nonNil(items)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &act, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return nonNil(users), nil
}

func (s *AdminService) ListWorkshops(ctx context.Context) ([]domain.WorkshopSummary, error) {
	items, err := s.workshopRepo.ListRecent(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing workshops: %w", err)
	}
	return nonNil(items), nil
}

func (s *AdminService) SetRole(ctx context.Context, actorID, userID uuid.UUID, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrCannotChangeOwnRole
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.SetRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("setting role: %w", err)
	}
	user.Role = role

	s.log.Info(ctx, "role changed", "actor_id", actorID, "user_id", userID, "role", role)
	return user, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
