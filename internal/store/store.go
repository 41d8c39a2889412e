// Package store defines the persistence port the lifecycle engine talks
// to, together with the port-level error types a driver must surface.
// Drivers translate their native failures into these types; the constraint
// translator then lifts them into domain errors. The engine never sees a
// raw driver error.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// Port-level sentinel errors.
var (
	// ErrNotFound signals a failed lookup by id. Queries never return it;
	// an empty page is an empty slice.
	ErrNotFound = errors.New("store: not found")

	// ErrUnavailable signals a connection or timeout failure.
	ErrUnavailable = errors.New("store: unavailable")

	// ErrFault signals an unexpected driver failure.
	ErrFault = errors.New("store: fault")
)

// ConstraintKind distinguishes the two classes of integrity violation.
type ConstraintKind string

const (
	ConstraintUnique  ConstraintKind = "unique"
	ConstraintForeign ConstraintKind = "foreign"
)

// ConstraintError is an integrity violation raised by the database. It
// carries the raw constraint identifier and detail so the translator can
// resolve it against the catalog.
type ConstraintError struct {
	Kind       ConstraintKind
	Constraint string // database constraint name, possibly empty
	Operation  string // "insert", "update", or "delete"
	Detail     string // free-text driver detail, logs and fallback matching
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("store: %s constraint %q violated on %s", e.Kind, e.Constraint, e.Operation)
}

// Store is the repository port: primitive persistence operations keyed by
// entity kind. Implementations must honor the transaction present in ctx
// (see the postgres adapter's TxManager) and keep every call atomic.
type Store interface {
	// Insert persists a new record. Fails with *ConstraintError on unique
	// or foreign-key violations.
	Insert(ctx context.Context, kind domain.Kind, rec *domain.Record) (*domain.Record, error)

	// GetActive loads a non-archived record by id; ErrNotFound otherwise.
	GetActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)

	// GetArchived loads an archived record by id; ErrNotFound otherwise.
	GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)

	// ExistsActive reports whether an active record with the id exists.
	ExistsActive(ctx context.Context, kind domain.Kind, id uuid.UUID) (bool, error)

	// Query returns an ordered, paginated page of active records. The spec
	// must already be normalized and validated by the engine.
	Query(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)

	// QueryArchived is Query over the archived set.
	QueryArchived(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error)

	// Update rewrites a record's attributes and audit fields. Row-level
	// locking serializes concurrent writers; last writer wins.
	Update(ctx context.Context, kind domain.Kind, id uuid.UUID, rec *domain.Record) (*domain.Record, error)

	// MarkArchived transitions an active record to archived, stamping the
	// archive triple. Idempotent when already archived.
	MarkArchived(ctx context.Context, kind domain.Kind, id uuid.UUID, actor uuid.UUID, reason string) (*domain.Record, error)

	// Restore reactivates an archived record, clearing the archive triple.
	// Idempotent when already active.
	Restore(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error)

	// HardDeleteActive permanently removes an active record.
	HardDeleteActive(ctx context.Context, kind domain.Kind, id uuid.UUID) error

	// HardDeleteArchived permanently removes an archived record.
	HardDeleteArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) error

	// CountDependents counts rows of the edge's dependent kind whose FK
	// attribute equals targetID. With onlyActive, archived dependents are
	// ignored.
	CountDependents(ctx context.Context, edge catalog.DependencyEdge, targetID uuid.UUID, onlyActive bool) (int64, error)
}
