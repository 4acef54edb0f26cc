package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup, update or delete matches no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateLink is returned when a thesis is linked twice to the same question and answer
	ErrDuplicateLink = errors.New("thesis already linked to this question and answer")
	// ErrInvalidAnswer is returned for link answers other than the two answer tags
	ErrInvalidAnswer = errors.New("invalid answer tag")
)

const uniqueViolation = "23505"

// notFound maps pgx.ErrNoRows to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
