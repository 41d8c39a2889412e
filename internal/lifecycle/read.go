package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// Get loads an active record by id.
func (e *Engine) Get(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.GetActive(ctx, kind, id)
	if err != nil {
		return nil, e.mapStoreErr(ctx, meta, id, nil, err)
	}
	return rec, nil
}

// GetArchived loads an archived record by id.
func (e *Engine) GetArchived(ctx context.Context, kind domain.Kind, id uuid.UUID) (*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}

	rec, err := e.store.GetArchived(ctx, kind, id)
	if err != nil {
		return nil, e.mapStoreErr(ctx, meta, id, nil, err)
	}
	return rec, nil
}

// List returns a filtered, ordered page of active records. The spec is
// validated against the catalog before it reaches storage; an empty page
// is an empty slice, never an error.
func (e *Engine) List(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}
	if err := e.prepareSpec(meta, &spec); err != nil {
		return nil, err
	}

	recs, err := e.store.Query(ctx, kind, spec)
	if err != nil {
		return nil, e.mapStoreErr(ctx, meta, uuid.Nil, nil, err)
	}
	return recs, nil
}

// ListArchived is List over the archived set.
func (e *Engine) ListArchived(ctx context.Context, kind domain.Kind, spec domain.QuerySpec) ([]*domain.Record, error) {
	meta, err := e.cat.MetadataFor(kind)
	if err != nil {
		return nil, err
	}
	if err := e.prepareSpec(meta, &spec); err != nil {
		return nil, err
	}

	recs, err := e.store.QueryArchived(ctx, kind, spec)
	if err != nil {
		return nil, e.mapStoreErr(ctx, meta, uuid.Nil, nil, err)
	}
	return recs, nil
}

// Envelope columns a caller may sort by in addition to declared attributes.
var sortableEnvelope = map[string]bool{
	"created_at":       true,
	"last_modified_at": true,
	"archived_at":      true,
}

// prepareSpec validates a query spec against the catalog, fills ordering
// defaults, and normalizes pagination in place.
func (e *Engine) prepareSpec(meta *catalog.Descriptor, spec *domain.QuerySpec) error {
	var fields []domain.FieldError

	for _, name := range sortedAttrKeys(spec.Equals) {
		if !meta.HasAttribute(name) {
			fields = append(fields, domain.FieldError{Field: name, Message: "unknown attribute"})
		}
	}
	for _, name := range sortedStringKeys(spec.Contains) {
		if !meta.IsSearchable(name) {
			fields = append(fields, domain.FieldError{Field: name, Message: "attribute does not accept substring filters"})
		}
	}
	if spec.FullName != "" && len(meta.FullNameFields) == 0 {
		fields = append(fields, domain.FieldError{
			Field:   "full_name",
			Message: fmt.Sprintf("%s records have no full-name filter", meta.Label),
		})
	}

	switch {
	case spec.OrderBy == "":
		def, err := e.cat.DefaultSortFor(meta.Kind)
		if err != nil {
			return err
		}
		spec.OrderBy = def.Attribute
		if spec.OrderDir == "" {
			spec.OrderDir = def.Direction
		}
	case spec.OrderBy == domain.OrderByFullName:
		if len(meta.FullNameFields) == 0 {
			fields = append(fields, domain.FieldError{
				Field:   "order_by",
				Message: fmt.Sprintf("%s records have no full-name sort", meta.Label),
			})
		}
	case meta.HasAttribute(spec.OrderBy), sortableEnvelope[spec.OrderBy]:
	default:
		fields = append(fields, domain.FieldError{Field: "order_by", Message: "unknown sort attribute"})
	}

	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}

	spec.Normalize()
	if spec.OrderDir == "" {
		spec.OrderDir = domain.SortAsc
	}
	return nil
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
