// Package lifecycle implements the entity-generic lifecycle engine: every
// create, read, update, archive, restore, and hard-delete flow for every
// cataloged kind runs through the one engine, parameterized by kind.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
	"github.com/ayodelan/schoolbase-backend/pkg/ctxutil"
)

// auditLogger appends one audit record per mutation, inside the mutation's
// transaction.
type auditLogger interface {
	Append(ctx context.Context, rec domain.AuditRecord) error
}

// txManager runs a function within a database transaction.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// translator turns storage constraint violations into domain errors.
type translator interface {
	Translate(kind domain.Kind, violation *store.ConstraintError, input map[string]any) error
}

// FieldValidator checks one attribute value and returns its canonical form,
// which the engine writes back into the attribute map before persisting. A
// nil value means the caller omitted or cleared the attribute; validators
// that require presence must reject nil themselves.
type FieldValidator func(value any) (any, error)

// Engine is the lifecycle engine. Field validators are injected per
// (kind, attribute) at wiring time; the engine itself knows no per-kind
// business rules beyond what the catalog declares.
type Engine struct {
	log        *slog.Logger
	cat        *catalog.Catalog
	store      store.Store
	audit      auditLogger
	tx         txManager
	translate  translator
	validators map[domain.Kind]map[string]FieldValidator

	now   func() time.Time
	newID func() uuid.UUID
}

// New creates a lifecycle engine.
func New(
	log *slog.Logger,
	cat *catalog.Catalog,
	st store.Store,
	audit auditLogger,
	tx txManager,
	translate translator,
) *Engine {
	return &Engine{
		log:        log.With("service", "lifecycle"),
		cat:        cat,
		store:      st,
		audit:      audit,
		tx:         tx,
		translate:  translate,
		validators: make(map[domain.Kind]map[string]FieldValidator),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.New,
	}
}

// RegisterValidator attaches a field validator to a (kind, attribute) pair.
// Panics on unknown kinds or attributes, matching the catalog's init-time
// contract.
func (e *Engine) RegisterValidator(kind domain.Kind, attribute string, v FieldValidator) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		panic(fmt.Sprintf("lifecycle: register validator: %v", err))
	}
	if !meta.HasAttribute(attribute) {
		panic(fmt.Sprintf("lifecycle: kind %q has no attribute %q", kind, attribute))
	}
	if e.validators[kind] == nil {
		e.validators[kind] = make(map[string]FieldValidator)
	}
	e.validators[kind][attribute] = v
}

// actorFrom resolves the acting staff member, falling back to the reserved
// system actor for flows that run outside an authenticated request.
func actorFrom(ctx context.Context) domain.Actor {
	if actor, ok := ctxutil.ActorFromCtx(ctx); ok {
		return actor
	}
	return domain.SystemActor()
}

// checkAttrs rejects attributes the catalog does not declare and runs the
// registered validators, writing each canonical value back into attrs. When
// full is true every registered validator for the kind runs, receiving nil
// for attributes the caller omitted, so required fields fail here instead of
// surfacing as storage faults. All failures are collected into one
// ValidationError.
func (e *Engine) checkAttrs(meta *catalog.Descriptor, attrs map[string]any, full bool) error {
	var fields []domain.FieldError
	for _, name := range sortedAttrKeys(attrs) {
		if !meta.HasAttribute(name) {
			fields = append(fields, domain.FieldError{Field: name, Message: "unknown attribute"})
			continue
		}
		if v, ok := e.validators[meta.Kind][name]; ok {
			canonical, err := v(attrs[name])
			if err != nil {
				fields = append(fields, domain.FieldError{Field: name, Message: err.Error()})
				continue
			}
			attrs[name] = canonical
		}
	}
	if full {
		for _, name := range sortedValidatorNames(e.validators[meta.Kind]) {
			if _, present := attrs[name]; present {
				continue
			}
			canonical, err := e.validators[meta.Kind][name](nil)
			if err != nil {
				fields = append(fields, domain.FieldError{Field: name, Message: err.Error()})
				continue
			}
			if canonical != nil {
				attrs[name] = canonical
			}
		}
	}
	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// mapStoreErr converts port errors into domain errors. input is the
// attribute map of the in-flight mutation; reads pass nil.
func (e *Engine) mapStoreErr(ctx context.Context, meta *catalog.Descriptor, id uuid.UUID, input map[string]any, err error) error {
	if err == nil {
		return nil
	}

	var cerr *store.ConstraintError
	switch {
	case errors.As(err, &cerr):
		return e.translate.Translate(meta.Kind, cerr, input)
	case errors.Is(err, store.ErrNotFound):
		return &domain.NotFoundError{Kind: meta.Kind, ID: id, Label: meta.Label}
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%s: %w", meta.Kind, domain.ErrUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrUnknownKind):
		return err
	default:
		// Raw storage errors stay inside the engine; callers see only the
		// sentinel while the log keeps the cause.
		e.log.ErrorContext(ctx, "storage fault",
			slog.String("kind", string(meta.Kind)),
			slog.String("id", id.String()),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: %w", meta.Kind, domain.ErrStorageFault)
	}
}

// blockingLabels runs dependency counts over the kind's edges and returns
// the deduplicated labels of relations that still hold rows.
func (e *Engine) blockingLabels(ctx context.Context, meta *catalog.Descriptor, id uuid.UUID, onlyActive bool) ([]string, error) {
	var labels []string
	seen := make(map[string]bool)
	for _, edge := range meta.Dependencies {
		count, err := e.store.CountDependents(ctx, edge, id, onlyActive)
		if err != nil {
			return nil, err
		}
		if count > 0 && !seen[edge.Label] {
			seen[edge.Label] = true
			labels = append(labels, edge.Label)
		}
	}
	return labels, nil
}

func sortedAttrKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic validation order keeps error lists stable.
	sort.Strings(keys)
	return keys
}

func sortedValidatorNames(m map[string]FieldValidator) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
