package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/dbx"
	"github.com/vedran77/skillshare/internal/domain"
)

const summarySelect = `
	SELECT w.id, w.host_id, w.title, w.description, w.category, w.max_participants,
	       w.date_time, w.location, w.status, w.created_at,
	       u.name, COUNT(r.id), COALESCE(group_concat(r.user_id), '')
	FROM workshops w
	JOIN users u ON u.id = w.host_id
	LEFT JOIN registrations r ON r.workshop_id = w.id`

type WorkshopRepo struct {
	db *sql.DB
}

func NewWorkshopRepo(db *sql.DB) *WorkshopRepo {
	return &WorkshopRepo{db: db}
}

func (r *WorkshopRepo) Create(ctx context.Context, w *domain.Workshop) error {
	query := `
		INSERT INTO workshops (id, host_id, title, description, category, max_participants, date_time, location, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.HostID, w.Title, w.Description, w.Category, w.MaxParticipants,
		w.DateTime.UTC(), w.Location, w.Status, w.CreatedAt.UTC(),
	)
	if err != nil {
		return dbErr(err)
	}
	return nil
}

func (r *WorkshopRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Workshop, error) {
	query := `
		SELECT id, host_id, title, description, category, max_participants, date_time, location, status, created_at
		FROM workshops WHERE id = ?`

	var w domain.Workshop
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.HostID, &w.Title, &w.Description, &w.Category, &w.MaxParticipants,
		&w.DateTime, &w.Location, &w.Status, &w.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr(err)
	}
	return &w, nil
}

func (r *WorkshopRepo) GetSummary(ctx context.Context, id uuid.UUID) (*domain.WorkshopSummary, error) {
	s, err := scanSummary(r.db.QueryRowContext(ctx, summarySelect+` WHERE w.id = ? GROUP BY w.id`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr(err)
	}
	return s, nil
}

func (r *WorkshopRepo) List(ctx context.Context, offset, limit int) ([]domain.WorkshopSummary, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workshops`).Scan(&total); err != nil {
		return nil, 0, dbErr(err)
	}

	items, err := r.querySummaries(ctx,
		summarySelect+` GROUP BY w.id ORDER BY w.date_time ASC, w.created_at ASC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *WorkshopRepo) ListByStatus(ctx context.Context, status domain.WorkshopStatus) ([]domain.WorkshopSummary, error) {
	return r.querySummaries(ctx,
		summarySelect+` WHERE w.status = ? GROUP BY w.id ORDER BY w.date_time ASC, w.created_at ASC`,
		status)
}

func (r *WorkshopRepo) ListRecent(ctx context.Context, limit int) ([]domain.WorkshopSummary, error) {
	query := summarySelect + ` GROUP BY w.id ORDER BY w.created_at DESC`
	if limit <= 0 {
		return r.querySummaries(ctx, query)
	}
	return r.querySummaries(ctx, query+` LIMIT ?`, limit)
}

func (r *WorkshopRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.WorkshopStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE workshops SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, dbErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, dbErr(err)
	}
	return n == 1, nil
}

func (r *WorkshopRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM workshops`)
}

func (r *WorkshopRepo) CountByStatus(ctx context.Context, status domain.WorkshopStatus) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM workshops WHERE status = ?`, status)
}

func (r *WorkshopRepo) CountRegistrations(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM registrations`)
}

// Register runs the checks and the insert in one transaction. The pool has a
// single connection, so no other writer can interleave between the count and
// the insert.
func (r *WorkshopRepo) Register(ctx context.Context, reg *domain.Registration) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var (
			hostID uuid.UUID
			status domain.WorkshopStatus
			limit  int
		)
		err := tx.QueryRowContext(ctx,
			`SELECT host_id, status, max_participants FROM workshops WHERE id = ?`, reg.WorkshopID,
		).Scan(&hostID, &status, &limit)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrWorkshopNotFound
		}
		if err != nil {
			return dbErr(err)
		}

		if hostID == reg.UserID {
			return domain.ErrOwnWorkshop
		}
		if status != domain.WorkshopScheduled {
			return domain.ErrWorkshopClosed
		}

		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM registrations WHERE workshop_id = ? AND user_id = ?)`,
			reg.WorkshopID, reg.UserID,
		).Scan(&exists)
		if err != nil {
			return dbErr(err)
		}
		if exists {
			return domain.ErrAlreadyRegistered
		}

		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM registrations WHERE workshop_id = ?`, reg.WorkshopID,
		).Scan(&count)
		if err != nil {
			return dbErr(err)
		}
		if count >= limit {
			return domain.ErrWorkshopFull
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO registrations (id, workshop_id, user_id, attendance_status, registered_at)
			VALUES (?, ?, ?, ?, ?)`,
			reg.ID, reg.WorkshopID, reg.UserID, reg.Status, reg.RegisteredAt.UTC(),
		)
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		if err != nil {
			return dbErr(err)
		}
		return nil
	})
}

func (r *WorkshopRepo) ListParticipants(ctx context.Context, workshopID uuid.UUID) ([]domain.Participant, error) {
	query := `
		SELECT r.id, r.workshop_id, r.user_id, r.attendance_status, r.registered_at, u.name
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.workshop_id = ?
		ORDER BY r.registered_at ASC`

	rows, err := r.db.QueryContext(ctx, query, workshopID)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	participants := []domain.Participant{}
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.WorkshopID, &p.UserID, &p.Status, &p.RegisteredAt, &p.UserName); err != nil {
			return nil, dbErr(err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return participants, nil
}

func (r *WorkshopRepo) ListRecentRegistrations(ctx context.Context, limit int) ([]domain.RegistrationActivity, error) {
	query := `
		SELECT r.id, r.workshop_id, r.user_id, r.attendance_status, r.registered_at, u.name, w.title
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		JOIN workshops w ON w.id = r.workshop_id
		ORDER BY r.registered_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	activity := []domain.RegistrationActivity{}
	for rows.Next() {
		var a domain.RegistrationActivity
		if err := rows.Scan(&a.ID, &a.WorkshopID, &a.UserID, &a.Status, &a.RegisteredAt, &a.UserName, &a.WorkshopTitle); err != nil {
			return nil, dbErr(err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return activity, nil
}

func (r *WorkshopRepo) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, dbErr(err)
	}
	return n, nil
}

func (r *WorkshopRepo) querySummaries(ctx context.Context, query string, args ...any) ([]domain.WorkshopSummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErr(err)
	}
	defer rows.Close()

	summaries := []domain.WorkshopSummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, dbErr(err)
		}
		summaries = append(summaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr(err)
	}
	return summaries, nil
}

func scanSummary(row rowScanner) (*domain.WorkshopSummary, error) {
	var (
		s   domain.WorkshopSummary
		ids string
	)
	err := row.Scan(
		&s.ID, &s.HostID, &s.Title, &s.Description, &s.Category, &s.MaxParticipants,
		&s.DateTime, &s.Location, &s.Status, &s.CreatedAt,
		&s.HostName, &s.ParticipantCount, &ids,
	)
	if err != nil {
		return nil, err
	}
	if s.RegistrantIDs, err = parseIDList(ids); err != nil {
		return nil, err
	}
	return &s, nil
}
