// Package entitystore implements the repository port for every managed
// kind with a single squirrel-based store. Table names, column sets, and
// dependency edges all come from the catalog, so adding a kind touches no
// code here.
package entitystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	postgres "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// builder is the statement builder configured for PostgreSQL placeholders.
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// envelope columns present on every managed table, in declaration order.
var envelopeColumns = []string{
	"is_archived",
	"created_at", "created_by",
	"last_modified_at", "last_modified_by",
	"archived_at", "archived_by", "archive_reason",
}

// Store is the PostgreSQL implementation of the repository port.
type Store struct {
	db  postgres.Querier
	cat *catalog.Catalog
}

var _ store.Store = (*Store)(nil)

// New creates a Store over a querier (pool in production, mock in tests).
func New(db postgres.Querier, cat *catalog.Catalog) *Store {
	return &Store{db: db, cat: cat}
}

// q returns the transaction from ctx when one is active, else the pool.
func (s *Store) q(ctx context.Context) postgres.Querier {
	return postgres.QuerierFromCtx(ctx, s.db)
}

// columns returns the full column list for a kind: id, the kind-specific
// attributes, then the envelope.
func columns(d *catalog.Descriptor) []string {
	cols := make([]string, 0, 1+len(d.Attributes)+len(envelopeColumns))
	cols = append(cols, "id")
	cols = append(cols, d.Attributes...)
	cols = append(cols, envelopeColumns...)
	return cols
}

func (s *Store) Insert(ctx context.Context, kind domain.Kind, rec *domain.Record) (*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	cols := columns(meta)
	vals := make([]any, 0, len(cols))
	vals = append(vals, rec.ID)
	for _, attr := range meta.Attributes {
		vals = append(vals, rec.Attr(attr))
	}
	vals = append(vals,
		rec.IsArchived,
		rec.CreatedAt, rec.CreatedBy,
		rec.LastModifiedAt, rec.LastModifiedBy,
		rec.ArchivedAt, rec.ArchivedBy, rec.ArchiveReason,
	)

	query := builder.Insert(meta.StorageName).
		Columns(cols...).
		Values(vals...).
		Suffix("RETURNING " + joinColumns(cols))

	return s.queryOne(ctx, kind, query, "insert")
}

func (s *Store) GetActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	return s.getByID(ctx, kind, id, false)
}

func (s *Store) GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	return s.getByID(ctx, kind, id, true)
}

func (s *Store) getByID(ctx context.Context, kind domain.Kind, id uuid.UUID, archived bool) (*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	query := builder.Select(columns(meta)...).
		From(meta.StorageName).
		Where(sq.Eq{"id": id, "is_archived": archived})

	rec, err := s.selectOne(ctx, kind, query, "get")
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) ExistsActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return false, err
	}

	sql := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND is_archived = FALSE)",
		meta.StorageName,
	)

	var exists bool
	if err := s.q(ctx).QueryRow(ctx, sql, id).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "exists")
	}
	return exists, nil
}

func (s *Store) Query(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	return s.query(ctx, kind, spec, false)
}

func (s *Store) QueryArchived(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	return s.query(ctx, kind, spec, true)
}

func (s *Store) query(ctx context.Context, kind domain.Kind, spec domain.QuerySpec, archived bool) ([]*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	query := builder.Select(columns(meta)...).
		From(meta.StorageName).
		Where(sq.Eq{"is_archived": archived})
	query = applySpec(query, meta, spec)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "query")
	}
	defer rows.Close()

	return scanRecords(kind, rows)
}

func (s *Store) Update(ctx context.Context, kind domain.Kind, id uuid.UUID, rec *domain.Record) (*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	query := builder.Update(meta.StorageName)
	for _, attr := range meta.Attributes {
		query = query.Set(attr, rec.Attr(attr))
	}
	query = query.
		Set("last_modified_at", rec.LastModifiedAt).
		Set("last_modified_by", rec.LastModifiedBy).
		Where(sq.Eq{"id": id, "is_archived": false}).
		Suffix("RETURNING " + joinColumns(columns(meta)))

	return s.queryOne(ctx, kind, query, "update")
}

func (s *Store) MarkArchived(ctx context.Context, kind domain.Kind, id uuid.UUID, actor uuid.UUID, reason string) (*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := builder.Update(meta.StorageName).
		Set("is_archived", true).
		Set("archived_at", now).
		Set("archived_by", actor).
		Set("archive_reason", nullable(reason)).
		Set("last_modified_at", now).
		Set("last_modified_by", actor).
		Where(sq.Eq{"id": id, "is_archived": false}).
		Suffix("RETURNING " + joinColumns(columns(meta)))

	rec, err := s.queryOne(ctx, kind, query, "update")
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	// Already archived is a no-op: return the current record.
	return s.GetArchived(ctx, kind, id)
}

func (s *Store) Restore(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	query := builder.Update(meta.StorageName).
		Set("is_archived", false).
		Set("archived_at", nil).
		Set("archived_by", nil).
		Set("archive_reason", nil).
		Where(sq.Eq{"id": id, "is_archived": true}).
		Suffix("RETURNING " + joinColumns(columns(meta)))

	rec, err := s.queryOne(ctx, kind, query, "update")
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	// Already active is a no-op: return the current record.
	return s.GetActive(ctx, kind, id)
}

func (s *Store) HardDeleteActive(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	return s.hardDelete(ctx, kind, id, false)
}

func (s *Store) HardDeleteArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	return s.hardDelete(ctx, kind, id, true)
}

func (s *Store) hardDelete(ctx context.Context, kind domain.Kind, id uuid.UUID, archived bool) error {
	meta, err := s.cat.MetadataFor(kind)
	if err != nil {
		return err
	}

	query := builder.Delete(meta.StorageName).
		Where(sq.Eq{"id": id, "is_archived": archived})

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.q(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "delete")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountDependents(ctx context.Context, edge catalog.DependencyEdge, targetID uuid.UUID, onlyActive bool) (int64, error) {
	meta, err := s.cat.MetadataFor(edge.Dependent)
	if err != nil {
		return 0, err
	}

	query := builder.Select("count(*)").
		From(meta.StorageName).
		Where(sq.Eq{edge.FKAttr: targetID})
	if onlyActive {
		query = query.Where(sq.Eq{"is_archived": false})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := s.q(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "count")
	}
	return count, nil
}

// queryOne runs a mutating statement with a RETURNING suffix and scans the
// single resulting record.
func (s *Store) queryOne(ctx context.Context, kind domain.Kind, query sq.Sqlizer, op string) (*domain.Record, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	defer rows.Close()

	return scanOne(kind, rows, op)
}

// selectOne runs a select expected to yield at most one row.
func (s *Store) selectOne(ctx context.Context, kind domain.Kind, query sq.SelectBuilder, op string) (*domain.Record, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}

	rows, err := s.q(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	defer rows.Close()

	return scanOne(kind, rows, op)
}

// nullable maps "" to NULL so empty reasons are stored as absent.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
