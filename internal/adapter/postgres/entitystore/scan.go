package entitystore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// scanOne consumes a row set expected to hold at most one record.
func scanOne(kind domain.Kind, rows pgx.Rows, op string) (*domain.Record, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, postgres.MapError(err, op)
		}
		return nil, store.ErrNotFound
	}
	rec, err := recordFromRow(kind, rows)
	if err != nil {
		return nil, err
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, op)
	}
	return rec, nil
}

// scanRecords consumes a row set of any size.
func scanRecords(kind domain.Kind, rows pgx.Rows) ([]*domain.Record, error) {
	records := make([]*domain.Record, 0)
	for rows.Next() {
		rec, err := recordFromRow(kind, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "query")
	}
	return records, nil
}

// recordFromRow maps the current row into a record using the result's field
// descriptions, so the store never hard-codes per-kind column positions.
// Envelope columns fill the struct fields; everything else lands in Attrs.
func recordFromRow(kind domain.Kind, rows pgx.Rows) (*domain.Record, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("read row values: %w", err)
	}
	fields := rows.FieldDescriptions()
	if len(fields) != len(values) {
		return nil, fmt.Errorf("row has %d fields but %d values", len(fields), len(values))
	}

	rec := &domain.Record{Kind: kind, Attrs: make(map[string]any)}
	for i, fd := range fields {
		name := string(fd.Name)
		value := values[i]

		switch name {
		case "id":
			rec.ID, err = asUUID(value)
		case "is_archived":
			rec.IsArchived, err = asBool(value)
		case "created_at":
			rec.CreatedAt, err = asTime(value)
		case "created_by":
			rec.CreatedBy, err = asUUID(value)
		case "last_modified_at":
			rec.LastModifiedAt, err = asTime(value)
		case "last_modified_by":
			rec.LastModifiedBy, err = asUUID(value)
		case "archived_at":
			rec.ArchivedAt, err = asTimePtr(value)
		case "archived_by":
			rec.ArchivedBy, err = asUUIDPtr(value)
		case "archive_reason":
			rec.ArchiveReason, err = asStringPtr(value)
		default:
			rec.Attrs[name] = normalizeAttr(value)
		}
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
	}
	return rec, nil
}

// normalizeAttr converts driver representations into the small value set the
// rest of the system works with. pgx returns uuid columns as [16]byte when no
// type registration is in play.
func normalizeAttr(value any) any {
	switch v := value.(type) {
	case [16]byte:
		return uuid.UUID(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return value
	}
}

func asUUID(value any) (uuid.UUID, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v, nil
	case [16]byte:
		return uuid.UUID(v), nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("unexpected uuid representation %T", value)
	}
}

func asUUIDPtr(value any) (*uuid.UUID, error) {
	if value == nil {
		return nil, nil
	}
	id, err := asUUID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func asBool(value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("unexpected bool representation %T", value)
	}
	return b, nil
}

func asTime(value any) (time.Time, error) {
	t, ok := value.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected time representation %T", value)
	}
	return t, nil
}

func asTimePtr(value any) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	t, err := asTime(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func asStringPtr(value any) (*string, error) {
	if value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected string representation %T", value)
	}
	return &s, nil
}
