// Package catalog is the declarative source of truth for kind-specific
// behavior: storage names, display labels, constraint mappings, dependency
// edges, export relations, and query defaults. The catalog is built once at
// startup and is immutable afterwards; adding a new kind is a configuration
// change in entities.go, not a code change in the lifecycle engine.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// Extractor derives the offending attribute value from the in-flight input
// for constraint error messages. It must be pure.
type Extractor func(attrs map[string]any) any

// AttrExtractor returns an Extractor that reads a single attribute.
func AttrExtractor(name string) Extractor {
	return func(attrs map[string]any) any {
		if attrs == nil {
			return nil
		}
		return attrs[name]
	}
}

// UniqueConstraint maps a database unique-constraint identifier to the
// attribute it protects.
type UniqueConstraint struct {
	Attribute string
	Extract   Extractor
}

// FKConstraint maps a database foreign-key-constraint identifier to the
// relation it enforces.
type FKConstraint struct {
	References domain.Kind
	Attribute  string // attribute on this entity holding the reference
	Label      string // display label of the relation
}

// DependencyEdge is a declared relation from this kind to a dependent kind
// via a named foreign-key attribute. Used for pre-archive and pre-delete
// checks and for export traversal.
type DependencyEdge struct {
	Relation  string      // stable relation name, e.g. "students"
	Dependent domain.Kind // the kind holding the foreign key
	FKAttr    string      // attribute on the dependent pointing back here
	Label     string      // human label used in blocking-error messages
}

// RelationMode distinguishes to-one lookups from to-many traversals.
type RelationMode string

const (
	RelationOne  RelationMode = "one"
	RelationMany RelationMode = "many"
)

// ProjectedField maps an attribute of a related record to a display-ready
// snapshot field.
type ProjectedField struct {
	From string // attribute name on the related record
	As   string // field name in the snapshot
}

// Relation is an outbound relation used by the export gatherer. A "one"
// relation follows a local FK attribute to a single related record; a
// "many" relation collects dependents via their FK attribute.
type Relation struct {
	Name       string
	Kind       domain.Kind
	Mode       RelationMode
	Attribute  string // local FK attribute (one) or remote FK attribute (many)
	Projection []ProjectedField
}

// SortKey is an attribute plus direction.
type SortKey struct {
	Attribute string
	Direction string // domain.SortAsc or domain.SortDesc
}

// Descriptor is the catalog record for one kind.
type Descriptor struct {
	Kind        domain.Kind
	StorageName string
	Label       string // human-readable noun, singular

	// Attributes is the closed set of kind-specific columns the engine may
	// read or write. Envelope columns (id, audit, archive) are implicit.
	Attributes []string

	Unique       map[string]UniqueConstraint // constraint id -> mapping
	ForeignKeys  map[string]FKConstraint     // constraint id -> mapping
	Dependencies []DependencyEdge            // ordered
	Relations    []Relation                  // ordered, export only

	Searchable     []string
	FullNameFields []string // empty when the kind has no full_name filter
	DefaultSort    SortKey
}

// HasAttribute reports whether name is a declared attribute of the kind.
func (d *Descriptor) HasAttribute(name string) bool {
	for _, a := range d.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

// IsSearchable reports whether the attribute accepts substring filters.
func (d *Descriptor) IsSearchable(name string) bool {
	for _, a := range d.Searchable {
		if a == name {
			return true
		}
	}
	return false
}

// Catalog holds the descriptors for every managed kind plus the common
// foreign-key bucket shared across kinds (audit columns).
type Catalog struct {
	kinds map[domain.Kind]*Descriptor
	order []domain.Kind
	common map[string]FKConstraint
}

// New builds a catalog from descriptors and the common FK bucket. It
// validates internal consistency and panics on programmer error, matching
// its init-time, configuration-like role.
func New(common map[string]FKConstraint, descriptors ...*Descriptor) *Catalog {
	c := &Catalog{
		kinds:  make(map[domain.Kind]*Descriptor, len(descriptors)),
		common: common,
	}

	for _, d := range descriptors {
		if d.Kind == "" || d.StorageName == "" || d.Label == "" {
			panic(fmt.Sprintf("catalog: incomplete descriptor %+v", d))
		}
		if _, dup := c.kinds[d.Kind]; dup {
			panic(fmt.Sprintf("catalog: duplicate kind %q", d.Kind))
		}
		if d.DefaultSort.Attribute == "" {
			panic(fmt.Sprintf("catalog: kind %q has no default sort", d.Kind))
		}
		for _, s := range d.Searchable {
			if !d.HasAttribute(s) {
				panic(fmt.Sprintf("catalog: kind %q searchable field %q is not an attribute", d.Kind, s))
			}
		}
		for _, f := range d.FullNameFields {
			if !d.HasAttribute(f) {
				panic(fmt.Sprintf("catalog: kind %q full-name field %q is not an attribute", d.Kind, f))
			}
		}
		c.kinds[d.Kind] = d
		c.order = append(c.order, d.Kind)
	}

	// Dependency edges must point at declared kinds.
	for _, d := range c.kinds {
		for _, e := range d.Dependencies {
			dep, ok := c.kinds[e.Dependent]
			if !ok {
				panic(fmt.Sprintf("catalog: kind %q dependency on unknown kind %q", d.Kind, e.Dependent))
			}
			if !dep.HasAttribute(e.FKAttr) {
				panic(fmt.Sprintf("catalog: kind %q dependency %q: %q has no attribute %q",
					d.Kind, e.Relation, e.Dependent, e.FKAttr))
			}
		}
	}

	return c
}

// MetadataFor returns the descriptor for a kind.
func (c *Catalog) MetadataFor(kind domain.Kind) (*Descriptor, error) {
	d, ok := c.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q: %w", kind, domain.ErrUnknownKind)
	}
	return d, nil
}

// DependenciesOf returns the ordered dependency edges of a kind.
func (c *Catalog) DependenciesOf(kind domain.Kind) ([]DependencyEdge, error) {
	d, err := c.MetadataFor(kind)
	if err != nil {
		return nil, err
	}
	return d.Dependencies, nil
}

// ConstraintLookup resolves a constraint identifier for a kind, merging the
// per-kind maps with the common bucket. Matching is case-insensitive and
// falls back to substring search so free-text error detail can be matched.
// Exactly one of the returns is non-nil on success.
func (c *Catalog) ConstraintLookup(kind domain.Kind, constraintID string) (*UniqueConstraint, *FKConstraint, error) {
	d, err := c.MetadataFor(kind)
	if err != nil {
		return nil, nil, err
	}

	needle := strings.ToLower(constraintID)

	// First match wins; keys are walked in sorted order so the search is
	// deterministic regardless of map layout.
	for _, id := range sortedKeys(d.Unique) {
		if strings.Contains(needle, strings.ToLower(id)) {
			u := d.Unique[id]
			return &u, nil, nil
		}
	}
	for _, id := range sortedKeys(d.ForeignKeys) {
		if strings.Contains(needle, strings.ToLower(id)) {
			f := d.ForeignKeys[id]
			return nil, &f, nil
		}
	}
	for _, id := range sortedKeys(c.common) {
		if strings.Contains(needle, strings.ToLower(id)) {
			f := c.common[id]
			return nil, &f, nil
		}
	}

	return nil, nil, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Searchable reports whether an attribute of the kind accepts substring
// filters. Unknown kinds report false.
func (c *Catalog) Searchable(kind domain.Kind, attribute string) bool {
	d, ok := c.kinds[kind]
	if !ok {
		return false
	}
	return d.IsSearchable(attribute)
}

// DefaultSortFor returns the default sort key of a kind.
func (c *Catalog) DefaultSortFor(kind domain.Kind) (SortKey, error) {
	d, err := c.MetadataFor(kind)
	if err != nil {
		return SortKey{}, err
	}
	return d.DefaultSort, nil
}

// Kinds returns all declared kinds in declaration order.
func (c *Catalog) Kinds() []domain.Kind {
	out := make([]domain.Kind, len(c.order))
	copy(out, c.order)
	return out
}

// KindByStorageName resolves a storage (table) name back to its kind.
func (c *Catalog) KindByStorageName(name string) (domain.Kind, bool) {
	for _, d := range c.kinds {
		if d.StorageName == name {
			return d.Kind, true
		}
	}
	return "", false
}
