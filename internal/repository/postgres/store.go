package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/skillshare/internal/repository"
)

const uniqueViolation = "23505"

func NewStore(pool *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Users:     NewUserRepo(pool),
		Workshops: NewWorkshopRepo(pool),
		Articles:  NewArticleRepo(pool),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
