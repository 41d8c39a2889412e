package domain

// Sort directions accepted by QuerySpec.OrderDir.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// OrderByFullName is the special order_by token that sorts by the
// concatenation of the catalog's full-name fields, in catalog order.
const OrderByFullName = "full_name"

// Pagination bounds. Limit defaults to DefaultLimit and is clamped to
// MaxLimit; both are deliberately equal so a caller can never widen a page.
const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// QuerySpec describes a filtered, ordered, paginated read. The recognized
// fields form a closed set; anything else is rejected by the engine.
type QuerySpec struct {
	// Equals holds per-attribute equality filters (enums always match here).
	Equals map[string]any

	// Contains holds case-insensitive substring filters. Only attributes the
	// catalog declares searchable are accepted.
	Contains map[string]string

	// FullName matches the concatenation of the catalog's full-name fields
	// in either order. Empty string means no full-name filter.
	FullName string

	// OrderBy is an attribute name or OrderByFullName. Empty falls back to
	// the catalog default sort.
	OrderBy string

	// OrderDir is SortAsc or SortDesc. Empty falls back with OrderBy.
	OrderDir string

	Limit  int
	Offset int
}

// Normalize applies pagination defaults and clamps values in place.
// Ordering defaults are catalog-dependent and filled by the engine.
func (s *QuerySpec) Normalize() {
	if s.Limit <= 0 {
		s.Limit = DefaultLimit
	}
	if s.Limit > MaxLimit {
		s.Limit = MaxLimit
	}
	if s.Offset < 0 {
		s.Offset = 0
	}
	switch s.OrderDir {
	case SortAsc, SortDesc:
	default:
		s.OrderDir = ""
	}
}
