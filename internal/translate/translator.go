// Package translate converts port-level constraint violations into domain
// errors with field and relation context, driven by the entity catalog.
// The translator is pure: no I/O, no mutation of the catalog or the input.
package translate

import (
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/store"
)

// Translator resolves constraint identifiers against the catalog.
type Translator struct {
	catalog *catalog.Catalog
}

// New creates a Translator over the given catalog.
func New(c *catalog.Catalog) *Translator {
	return &Translator{catalog: c}
}

// Translate maps a ConstraintError raised while operating on kind into a
// domain error, extracting context values from the in-flight input. The
// constraint name is matched first; when it is empty or unknown, the
// driver's free-text detail is searched as a fallback. No match still
// yields a typed error so callers never see a raw storage failure.
func (t *Translator) Translate(kind domain.Kind, violation *store.ConstraintError, input map[string]any) error {
	meta, err := t.catalog.MetadataFor(kind)
	if err != nil {
		return err
	}

	uc, fk := t.lookup(kind, violation)

	switch violation.Kind {
	case store.ConstraintUnique:
		if uc == nil {
			return &domain.DuplicateError{
				Kind:   kind,
				Field:  "unknown",
				Label:  meta.Label,
				Detail: violation.Detail,
			}
		}
		var value any
		if uc.Extract != nil {
			value = uc.Extract(input)
		}
		return &domain.DuplicateError{
			Kind:   kind,
			Field:  uc.Attribute,
			Value:  value,
			Label:  meta.Label,
			Detail: violation.Detail,
		}

	case store.ConstraintForeign:
		// FK raised by a delete means a dependent row still exists; the
		// referenced-entity context of an insert/update does not apply.
		if violation.Operation == "delete" || fk == nil {
			return &domain.RelationshipError{
				Operation: violation.Operation,
				Detail:    violation.Detail,
			}
		}
		var value any
		if input != nil {
			value = input[fk.Attribute]
		}
		return &domain.RelatedNotFoundError{
			Kind:      fk.References,
			Attribute: fk.Attribute,
			Value:     value,
			Label:     fk.Label,
			Operation: violation.Operation,
			Detail:    violation.Detail,
		}
	}

	return &domain.RelationshipError{Operation: violation.Operation, Detail: violation.Detail}
}

// lookup matches the violation's constraint name, then its free-text
// detail, against the kind's constraint maps merged with the common bucket.
func (t *Translator) lookup(kind domain.Kind, violation *store.ConstraintError) (*catalog.UniqueConstraint, *catalog.FKConstraint) {
	if violation.Constraint != "" {
		uc, fk, err := t.catalog.ConstraintLookup(kind, violation.Constraint)
		if err == nil && (uc != nil || fk != nil) {
			return uc, fk
		}
	}
	if violation.Detail != "" {
		uc, fk, err := t.catalog.ConstraintLookup(kind, violation.Detail)
		if err == nil && (uc != nil || fk != nil) {
			return uc, fk
		}
	}
	return nil, nil
}
