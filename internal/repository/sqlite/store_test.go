package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vedran77/skillshare/internal/database"
	"github.com/vedran77/skillshare/internal/domain"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLite(ctx, database.MemorySQLiteDSN(name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.MigrateSQLite(ctx, db))
	return db
}

func seedUser(t *testing.T, repo *UserRepo, name string, at time.Time) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "salt:hash",
		Role:         domain.RoleMember,
		CreatedAt:    at,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func seedWorkshop(t *testing.T, repo *WorkshopRepo, host uuid.UUID, title string, capacity int, when time.Time) *domain.Workshop {
	t.Helper()
	w := &domain.Workshop{
		ID:              uuid.New(),
		HostID:          host,
		Title:           title,
		Description:     "about " + title,
		Category:        "music",
		MaxParticipants: capacity,
		DateTime:        when,
		Location:        "Library",
		Status:          domain.WorkshopScheduled,
		CreatedAt:       baseTime,
	}
	require.NoError(t, repo.Create(context.Background(), w))
	return w
}

func newRegistration(workshopID, userID uuid.UUID) *domain.Registration {
	return &domain.Registration{
		ID:           uuid.New(),
		WorkshopID:   workshopID,
		UserID:       userID,
		Status:       domain.RegistrationRegistered,
		RegisteredAt: time.Now().UTC(),
	}
}
