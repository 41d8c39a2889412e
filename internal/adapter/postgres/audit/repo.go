// Package audit implements the audit trail repository using PostgreSQL.
// It provides append-only operations for audit records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "audit_records"

var columns = []string{"id", "actor_id", "entity_kind", "entity_id", "action", "changes", "created_at"}

// Repo provides audit record persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// auditRow is the scany row model for audit_records.
type auditRow struct {
	ID         uuid.UUID  `db:"id"`
	ActorID    uuid.UUID  `db:"actor_id"`
	EntityKind string     `db:"entity_kind"`
	EntityID   *uuid.UUID `db:"entity_id"`
	Action     string     `db:"action"`
	Changes    []byte     `db:"changes"`
	CreatedAt  time.Time  `db:"created_at"`
}

// Append inserts a new audit record. Called inside the same transaction as
// the mutation it describes, so a failed write rolls both back.
func (r *Repo) Append(ctx context.Context, rec domain.AuditRecord) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var changes []byte
	if rec.Changes != nil {
		var err error
		changes, err = json.Marshal(rec.Changes)
		if err != nil {
			return fmt.Errorf("audit record %s: marshal changes: %w", rec.ID, err)
		}
	}

	sql, args, err := builder.Insert(table).
		Columns(columns...).
		Values(rec.ID, rec.ActorID, rec.Kind.String(), rec.EntityID, rec.Action.String(), changes, rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "audit append")
	}
	return nil
}

// ListByEntity returns the change history of one entity, newest first.
func (r *Repo) ListByEntity(ctx context.Context, kind domain.Kind, entityID uuid.UUID, limit, offset int) ([]domain.AuditRecord, error) {
	query := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"entity_kind": kind.String(), "entity_id": entityID}).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return r.list(ctx, query)
}

// ListByActor returns everything one staff member did, newest first.
func (r *Repo) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]domain.AuditRecord, error) {
	query := builder.Select(columns...).
		From(table).
		Where(sq.Eq{"actor_id": actorID}).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	return r.list(ctx, query)
}

func (r *Repo) list(ctx context.Context, query sq.SelectBuilder) ([]domain.AuditRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit select: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "audit list")
	}

	records := make([]domain.AuditRecord, len(rows))
	for i, row := range rows {
		rec, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

func toDomain(row auditRow) (domain.AuditRecord, error) {
	rec := domain.AuditRecord{
		ID:        row.ID,
		ActorID:   row.ActorID,
		Kind:      domain.Kind(row.EntityKind),
		EntityID:  row.EntityID,
		Action:    domain.AuditAction(row.Action),
		CreatedAt: row.CreatedAt,
	}

	if len(row.Changes) > 0 {
		changes := make(map[string]any)
		if err := json.Unmarshal(row.Changes, &changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit record %s: unmarshal changes: %w", row.ID, err)
		}
		rec.Changes = changes
	}

	return rec, nil
}
