package filter

import (
	"fmt"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

// DefaultPageSize is used when a list query omits pageSize.
const DefaultPageSize = 12

// SortField is a single sort criterion. Order of criteria is significant.
type SortField struct {
	Field string
	Desc  bool
}

// Query is a validated list query: predicates plus projection, paging and sort.
type Query struct {
	include    []string
	exclude    []string
	page       int
	pageSize   int
	sort       []SortField
	predicates []Predicate
}

// NewQuery validates and creates a list query. include and exclude are
// mutually exclusive. Zero page and pageSize take defaults, negative or
// zero explicit values are rejected by the transport layer before this.
func NewQuery(include, exclude []string, page, pageSize int, sort []SortField, predicates []Predicate) (Query, error) {
	if len(include) > 0 && len(exclude) > 0 {
		return Query{}, fmt.Errorf("include and exclude are mutually exclusive: %w", domain.ErrInvalidQuery)
	}
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return Query{}, fmt.Errorf("page must be >= 1: %w", domain.ErrInvalidQuery)
	}
	if pageSize < 1 {
		return Query{}, fmt.Errorf("pageSize must be >= 1: %w", domain.ErrInvalidQuery)
	}
	for _, s := range sort {
		if s.Field == "" {
			return Query{}, fmt.Errorf("sort field is required: %w", domain.ErrInvalidQuery)
		}
	}
	return Query{
		include:    include,
		exclude:    exclude,
		page:       page,
		pageSize:   pageSize,
		sort:       sort,
		predicates: predicates,
	}, nil
}

// MatchAll returns a query with no predicates and default paging.
func MatchAll() Query {
	q, _ := NewQuery(nil, nil, 0, 0, nil, nil)
	return q
}

// Predicates returns the filter clauses.
func (q Query) Predicates() []Predicate { return q.predicates }

// Page returns the 1-based page number.
func (q Query) Page() int { return q.page }

// PageSize returns the page size.
func (q Query) PageSize() int { return q.pageSize }

// Skip returns the number of records preceding the requested page.
func (q Query) Skip() int { return (q.page - 1) * q.pageSize }

// Sort returns the sort criteria in request order.
func (q Query) Sort() []SortField { return q.sort }

// Projection returns the field projection of the query.
func (q Query) Projection() Projection {
	return Projection{include: q.include, exclude: q.exclude}
}

// Projection narrows serialized records to a field subset. With include, only
// the listed fields survive (identity included only when listed). With
// exclude, the listed fields are dropped.
type Projection struct {
	include []string
	exclude []string
}

// IsZero reports whether the projection keeps every field.
func (p Projection) IsZero() bool {
	return len(p.include) == 0 && len(p.exclude) == 0
}

// Include returns the included field names.
func (p Projection) Include() []string { return p.include }

// Exclude returns the excluded field names.
func (p Projection) Exclude() []string { return p.exclude }

// Apply trims a serialized record according to the projection.
func (p Projection) Apply(record map[string]any) map[string]any {
	if p.IsZero() {
		return record
	}

	if len(p.include) > 0 {
		out := make(map[string]any, len(p.include))
		for _, f := range p.include {
			if v, ok := record[f]; ok {
				out[f] = v
			}
		}
		return out
	}

	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	for _, f := range p.exclude {
		delete(out, f)
	}
	return out
}
