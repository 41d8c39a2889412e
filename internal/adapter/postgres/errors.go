package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// PostgreSQL error codes surfaced by the driver.
const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
)

// Error codes in class 08 are connection failures.
const connectionClass = "08"

// MapError converts pgx/pgconn errors to port-level store errors.
// context.DeadlineExceeded and context.Canceled pass through unchanged so
// the caller's cancellation semantics survive.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return &store.ConstraintError{
				Kind:       store.ConstraintUnique,
				Constraint: pgErr.ConstraintName,
				Operation:  op,
				Detail:     pgErr.Detail,
			}
		case codeFKViolation:
			return &store.ConstraintError{
				Kind:       store.ConstraintForeign,
				Constraint: pgErr.ConstraintName,
				Operation:  op,
				Detail:     pgErr.Detail,
			}
		}
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == connectionClass {
			return fmt.Errorf("%s: %w", op, store.ErrUnavailable)
		}
		return fmt.Errorf("%s: %s: %w", op, pgErr.Code, store.ErrFault)
	}

	// Dial and pool errors have no PgError; treat them as unavailability.
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w", op, store.ErrUnavailable)
	}

	return fmt.Errorf("%s: %v: %w", op, err, store.ErrFault)
}
