// Package staff implements the credential lookup the auth service needs.
// The staff table is otherwise managed generically through the entity
// store; only password_hash is private to this repository.
package staff

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Credentials is the slice of a staff record the auth service sees.
type Credentials struct {
	ID           uuid.UUID        `db:"id"`
	Email        string           `db:"email"`
	StaffType    domain.StaffType `db:"staff_type"`
	PasswordHash string           `db:"password_hash"`
	IsArchived   bool             `db:"is_archived"`
}

// Repo provides staff credential persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new staff credentials repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetCredentialsByEmail loads login credentials for a staff member.
// Archived accounts are still returned; rejecting them is an auth-service
// decision, not a storage one.
func (r *Repo) GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := builder.
		Select("id", "email", "staff_type", "password_hash", "is_archived").
		From("staff_members").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build credentials select: %w", err)
	}

	var creds Credentials
	if err := pgxscan.Get(ctx, q, &creds, sql, args...); err != nil {
		return nil, postgres.MapError(err, "get credentials")
	}
	return &creds, nil
}

// SetPasswordHash stores a new bcrypt hash for a staff member.
func (r *Repo) SetPasswordHash(ctx context.Context, staffID uuid.UUID, hash string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := builder.
		Update("staff_members").
		Set("password_hash", hash).
		Where(sq.Eq{"id": staffID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build password update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "set password")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
