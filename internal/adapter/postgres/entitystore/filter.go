package entitystore

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
)

// applySpec layers the filter, sort, and page parts of a query spec onto a
// select builder. The spec is assumed normalized; unknown attributes were
// rejected upstream, so nothing here re-validates.
func applySpec(query sq.SelectBuilder, meta *catalog.Descriptor, spec domain.QuerySpec) sq.SelectBuilder {
	for _, attr := range sortedFilterKeys(spec.Equals) {
		query = query.Where(sq.Eq{attr: spec.Equals[attr]})
	}
	for _, attr := range sortedFilterKeys(spec.Contains) {
		query = query.Where(sq.ILike{attr: likePattern(spec.Contains[attr])})
	}
	if spec.FullName != "" && len(meta.FullNameFields) > 0 {
		pattern := likePattern(spec.FullName)
		// Match both field orders so "Ada Obi" and "Obi Ada" find the
		// same person.
		query = query.Where(sq.Or{
			sq.ILike{nameConcat(meta.FullNameFields, false): pattern},
			sq.ILike{nameConcat(meta.FullNameFields, true): pattern},
		})
	}

	query = query.OrderBy(orderClauses(meta, spec)...)

	if spec.Limit > 0 {
		query = query.Limit(uint64(spec.Limit))
	}
	if spec.Offset > 0 {
		query = query.Offset(uint64(spec.Offset))
	}
	return query
}

// orderClauses resolves the sort key, expanding the full_name pseudo-column
// into its component fields. The id column is always the final tiebreak so
// pagination is stable.
func orderClauses(meta *catalog.Descriptor, spec domain.QuerySpec) []string {
	dir := "ASC"
	if spec.OrderDir == domain.SortDesc {
		dir = "DESC"
	}

	var clauses []string
	if spec.OrderBy == domain.OrderByFullName {
		for _, field := range meta.FullNameFields {
			clauses = append(clauses, field+" "+dir)
		}
	} else {
		clauses = append(clauses, spec.OrderBy+" "+dir)
	}
	return append(clauses, "id ASC")
}

// nameConcat builds the SQL concatenation of the name fields, optionally in
// reverse order, with single spaces in between.
func nameConcat(fields []string, reversed bool) string {
	parts := make([]string, len(fields))
	copy(parts, fields)
	if reversed {
		for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
			parts[i], parts[j] = parts[j], parts[i]
		}
	}
	return strings.Join(parts, " || ' ' || ")
}

// sortedFilterKeys returns the map keys in lexical order so the generated
// SQL is the same for the same spec.
func sortedFilterKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// likePattern wraps a needle for substring match, escaping LIKE wildcards
// in user input.
func likePattern(needle string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(needle)
	return "%" + escaped + "%"
}

// joinColumns renders a column list for a RETURNING clause.
func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
