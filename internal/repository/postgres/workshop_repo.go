package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillshare/internal/domain"
)

const summarySelect = `
	SELECT w.id, w.host_id, w.title, w.description, w.category, w.max_participants,
	       w.date_time, w.location, w.status, w.created_at,
	       u.name, COUNT(r.id),
	       COALESCE(array_agg(r.user_id) FILTER (WHERE r.user_id IS NOT NULL), '{}')
	FROM workshops w
	JOIN users u ON u.id = w.host_id
	LEFT JOIN registrations r ON r.workshop_id = w.id`

const summaryGroup = ` GROUP BY w.id, u.name`

type WorkshopRepo struct {
	pool *pgxpool.Pool
}

func NewWorkshopRepo(pool *pgxpool.Pool) *WorkshopRepo {
	return &WorkshopRepo{pool: pool}
}

func (r *WorkshopRepo) Create(ctx context.Context, w *domain.Workshop) error {
	query := `
		INSERT INTO workshops (id, host_id, title, description, category, max_participants, date_time, location, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.HostID, w.Title, w.Description, w.Category, w.MaxParticipants,
		w.DateTime, w.Location, w.Status, w.CreatedAt,
	)
	return err
}

func (r *WorkshopRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workshop, error) {
	query := `
		SELECT id, host_id, title, description, category, max_participants, date_time, location, status, created_at
		FROM workshops WHERE id = $1`

	var w domain.Workshop
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.HostID, &w.Title, &w.Description, &w.Category, &w.MaxParticipants,
		&w.DateTime, &w.Location, &w.Status, &w.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkshopRepo) GetSummary(ctx context.Context, id uuid.UUID) (*domain.WorkshopSummary, error) {
	s, err := scanSummary(r.pool.QueryRow(ctx, summarySelect+` WHERE w.id = $1`+summaryGroup, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *WorkshopRepo) List(ctx context.Context, offset, limit int) ([]domain.WorkshopSummary, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workshops`).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.querySummaries(ctx,
		summarySelect+summaryGroup+` ORDER BY w.date_time ASC, w.created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *WorkshopRepo) ListByStatus(ctx context.Context, status domain.WorkshopStatus) ([]domain.WorkshopSummary, error) {
	return r.querySummaries(ctx,
		summarySelect+` WHERE w.status = $1`+summaryGroup+` ORDER BY w.date_time ASC, w.created_at ASC`,
		status)
}

func (r *WorkshopRepo) ListRecent(ctx context.Context, limit int) ([]domain.WorkshopSummary, error) {
	query := summarySelect + summaryGroup + ` ORDER BY w.created_at DESC`
	if limit <= 0 {
		return r.querySummaries(ctx, query)
	}
	return r.querySummaries(ctx, query+` LIMIT $1`, limit)
}

func (r *WorkshopRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkshopStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE workshops SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WorkshopRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM workshops`)
}

func (r *WorkshopRepo) CountByStatus(ctx context.Context, status domain.WorkshopStatus) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM workshops WHERE status = $1`, status)
}

func (r *WorkshopRepo) CountRegistrations(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM registrations`)
}

// Register locks the workshop row for the duration of the transaction so
// concurrent registrations for the same workshop are checked one at a time.
func (r *WorkshopRepo) Register(ctx context.Context, reg *domain.Registration) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var (
			hostID uuid.UUID
			status domain.WorkshopStatus
			limit  int
		)
		err := tx.QueryRow(ctx,
			`SELECT host_id, status, max_participants FROM workshops WHERE id = $1 FOR UPDATE`, reg.WorkshopID,
		).Scan(&hostID, &status, &limit)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWorkshopNotFound
		}
		if err != nil {
			return err
		}

		if hostID == reg.UserID {
			return domain.ErrOwnWorkshop
		}
		if status != domain.WorkshopScheduled {
			return domain.ErrWorkshopClosed
		}

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM registrations WHERE workshop_id = $1 AND user_id = $2)`,
			reg.WorkshopID, reg.UserID,
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM registrations WHERE workshop_id = $1`, reg.WorkshopID).Scan(&count); err != nil {
			return err
		}
		if count >= limit {
			return domain.ErrWorkshopFull
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO registrations (id, workshop_id, user_id, attendance_status, registered_at)
			VALUES ($1, $2, $3, $4, $5)`,
			reg.ID, reg.WorkshopID, reg.UserID, reg.Status, reg.RegisteredAt,
		)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	})
}

func (r *WorkshopRepo) ListParticipants(ctx context.Context, workshopID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT r.id, r.workshop_id, r.user_id, r.attendance_status, r.registered_at, u.name
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.workshop_id = $1
		ORDER BY r.registered_at ASC`

	rows, err := r.pool.Query(ctx, query, workshopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []domain.Participant{}
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.WorkshopID, &p.UserID, &p.Status, &p.RegisteredAt, &p.UserName); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *WorkshopRepo) ListRecentRegistrations(ctx context.Context, limit int) ([]domain.RegistrationActivity, error) {
	query := `
		SELECT r.id, r.workshop_id, r.user_id, r.attendance_status, r.registered_at, u.name, w.title
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN workshops w ON w.id = r.workshop_id
		ORDER BY r.registered_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := []domain.RegistrationActivity{}
	for rows.Next() {
		var a domain.RegistrationActivity
		if err := rows.Scan(&a.ID, &a.WorkshopID, &a.UserID, &a.Status, &a.RegisteredAt, &a.UserName, &a.WorkshopTitle); err != nil {
			return nil, err
		}
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (r *WorkshopRepo) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *WorkshopRepo) querySummaries(ctx context.Context, query string, args ...any) ([]domain.WorkshopSummary, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []domain.WorkshopSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *s)
	}
	return summaries, rows.Err()
}

func scanSummary(row pgx.Row) (*domain.WorkshopSummary, error) {
	var s domain.WorkshopSummary
	err := row.Scan(
		&s.ID, &s.HostID, &s.Title, &s.Description, &s.Category, &s.MaxParticipants,
		&s.DateTime, &s.Location, &s.Status, &s.CreatedAt,
		&s.HostName, &s.ParticipantCount, &s.RegistrantIDs,
	)
	return &s, err
}
