// Package sqlite implements the repositories on database/sql with the
// pure-Go modernc SQLite driver. The handle must come from
// database.OpenSQLite, which limits the pool to one connection.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/repository"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Users:     NewUserRepo(db),
		Workshops: NewWorkshopRepo(db),
		Articles:  NewArticleRepo(db),
	}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

func dbErr(err error) error {
	return fmt.Errorf("db error: %w", err)
}

// parseIDList splits the group_concat output of a uuid column.
func parseIDList(s string) ([]uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
