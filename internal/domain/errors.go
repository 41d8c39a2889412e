package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors used across all layers. Typed errors below unwrap to one
// of these so callers can branch with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("already exists")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("storage unavailable")
	ErrStorageFault = errors.New("storage fault")
	ErrUnknownKind  = errors.New("unknown entity kind")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors. It is
// produced by injected field validators and propagated unchanged.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// NotFoundError reports a failed lookup by id.
type NotFoundError struct {
	Kind  Kind
	ID    uuid.UUID
	Label string // human-readable noun from the catalog
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Label)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func (e *NotFoundError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.String("id", e.ID.String()),
	)
}

// DuplicateError is a unique-constraint violation translated into domain
// terms: which field collided and with what value.
type DuplicateError struct {
	Kind   Kind
	Field  string
	Value  any
	Label  string
	Detail string // raw constraint detail, for logs only
}

func (e *DuplicateError) Error() string {
	if e.Field == "" || e.Field == "unknown" {
		return fmt.Sprintf("%s already exists", e.Label)
	}
	return fmt.Sprintf("a %s with this %s already exists", e.Label, humanField(e.Field))
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

func (e *DuplicateError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.String("field", e.Field),
		slog.Any("value", e.Value),
		slog.String("detail", e.Detail),
	)
}

// RelatedNotFoundError is a foreign-key violation on insert/update: the
// referenced entity does not exist.
type RelatedNotFoundError struct {
	Kind      Kind   // referenced kind
	Attribute string // attribute on the entity being written
	Value     any
	Label     string // display label of the relation
	Operation string // "insert" or "update"
	Detail    string
}

func (e *RelatedNotFoundError) Error() string {
	return fmt.Sprintf("the referenced %s does not exist", e.Label)
}

func (e *RelatedNotFoundError) Unwrap() error { return ErrNotFound }

func (e *RelatedNotFoundError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("referenced_kind", string(e.Kind)),
		slog.String("attribute", e.Attribute),
		slog.Any("value", e.Value),
		slog.String("operation", e.Operation),
		slog.String("detail", e.Detail),
	)
}

// RelationshipError is a foreign-key violation on delete: some dependent
// row still references the entity at the persistence layer.
type RelationshipError struct {
	Operation string
	Detail    string
}

func (e *RelationshipError) Error() string {
	return "the record is still referenced by other records"
}

func (e *RelationshipError) Unwrap() error { return ErrConflict }

func (e *RelationshipError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("operation", e.Operation),
		slog.String("detail", e.Detail),
	)
}

// ArchiveBlockedError reports that a pre-archive check found active
// dependents. Blocking holds the human labels of the offending relations.
type ArchiveBlockedError struct {
	Kind     Kind
	ID       uuid.UUID
	Blocking []string
}

func (e *ArchiveBlockedError) Error() string {
	return fmt.Sprintf("cannot archive: active %s still reference this record", strings.Join(e.Blocking, ", "))
}

func (e *ArchiveBlockedError) Unwrap() error { return ErrConflict }

func (e *ArchiveBlockedError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.String("id", e.ID.String()),
		slog.Any("blocking", e.Blocking),
	)
}

// InUseError reports that a pre-delete check found dependents, active or
// archived.
type InUseError struct {
	Kind     Kind
	ID       uuid.UUID
	Blocking []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("cannot delete: %s still reference this record", strings.Join(e.Blocking, ", "))
}

func (e *InUseError) Unwrap() error { return ErrConflict }

func (e *InUseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(e.Kind)),
		slog.String("id", e.ID.String()),
		slog.Any("blocking", e.Blocking),
	)
}

// humanField turns a column-ish attribute name into prose ("admission_no"
// -> "admission no").
func humanField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
