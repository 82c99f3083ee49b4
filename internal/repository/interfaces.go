package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
)

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateProfileImage(ctx context.Context, id uuid.UUID, key *string) error
	SetRole(ctx context.Context, id uuid.UUID, role domain.Role) error
	List(ctx context.Context) ([]domain.User, error)
	ListRecent(ctx context.Context, limit int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

type WorkshopRepository interface {
	Create(ctx context.Context, w *domain.Workshop) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Workshop, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*domain.WorkshopSummary, error)
	// List pages over all workshops ordered by date_time and returns the total count.
	List(ctx context.Context, offset, limit int) ([]domain.WorkshopSummary, int, error)
	ListByStatus(ctx context.Context, status domain.WorkshopStatus) ([]domain.WorkshopSummary, error)
	// ListRecent returns the newest workshops first; limit <= 0 returns all.
	ListRecent(ctx context.Context, limit int) ([]domain.WorkshopSummary, error)
	// UpdateStatus moves the workshop from one status to another and reports
	// false when its current status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkshopStatus) (bool, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status domain.WorkshopStatus) (int, error)

	// Register inserts reg atomically with respect to the workshop's capacity.
	// It returns domain.ErrWorkshopNotFound, ErrOwnWorkshop, ErrWorkshopClosed,
	// ErrAlreadyRegistered or ErrWorkshopFull without writing anything.
	Register(ctx context.Context, reg *domain.Registration) error
	ListParticipants(ctx context.Context, workshopID uuid.UUID) ([]domain.Participant, error)
	ListRecentRegistrations(ctx context.Context, limit int) ([]domain.RegistrationActivity, error)
	CountRegistrations(ctx context.Context) (int, error)
}

type ArticleRepository interface {
	Create(ctx context.Context, a *domain.KnowledgeArticle) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.KnowledgeArticle, error)
	Update(ctx context.Context, a *domain.KnowledgeArticle) error
	// IncrementViews bumps the counter and reports whether the article exists.
	IncrementViews(ctx context.Context, id uuid.UUID) (bool, error)
	// List returns published articles matching f, newest first, and the total count.
	List(ctx context.Context, f domain.ArticleFilter) ([]domain.KnowledgeArticle, int, error)
	CreateComment(ctx context.Context, c *domain.ArticleComment) error
	ListComments(ctx context.Context, articleID uuid.UUID) ([]domain.ArticleComment, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users     UserRepository
	Workshops WorkshopRepository
	Articles  ArticleRepository
}
