package postgres

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"holidaymatch/internal/domain"
)

const (
	uniqueViolation           = "23505"
	foreignKeyViolation       = "23503"
	invalidTextRepresentation = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// lookupErr maps a missing row, or an id that does not parse as a UUID, to domain.ErrNotFound.
func lookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || pqCode(err) == invalidTextRepresentation {
		return domain.ErrNotFound
	}
	return err
}

// canonicalID returns the lowercase hyphenated form of a UUID so that string
// order matches the database's uuid order. Other ids are returned unchanged.
func canonicalID(id string) string {
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}
