package searchindex

import (
	"fmt"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

// Translate compiles a store-agnostic query into a native bleve query.
// Predicates become a conjunction; an empty predicate set matches everything.
func Translate(fq filter.Query) (query.Query, error) {
	var clauses []query.Query
	for _, p := range fq.Predicates() {
		clause, err := translatePredicate(p)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}

	switch len(clauses) {
	case 0:
		return bleve.NewMatchAllQuery(), nil
	case 1:
		return clauses[0], nil
	default:
		return bleve.NewConjunctionQuery(clauses...), nil
	}
}

func translatePredicate(p filter.Predicate) (query.Query, error) {
	switch p.Kind() {
	case filter.KindTerm:
		return termClause(p)
	case filter.KindBool:
		return boolClause(p)
	case filter.KindRange:
		return rangeClause(p)
	case filter.KindDateTime:
		return dateClause(p)
	case filter.KindWildcard:
		rq := bleve.NewRegexpQuery(p.WildcardPattern())
		rq.SetField(exactField(p.Field()))
		return rq, nil
	default:
		return nil, fmt.Errorf("predicate kind %q on %q: %w", p.Kind(), p.Field(), domain.ErrInvalidFilter)
	}
}

func termClause(p filter.Predicate) (query.Query, error) {
	term := p.Term()
	var clauses []query.Query

	if term.Eq != nil {
		eq, err := equalityClause(p.Field(), term.Eq)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, eq)
	}
	if term.Ne != nil {
		eq, err := equalityClause(p.Field(), term.Ne)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, negate(eq))
	}

	return conjoin(clauses)
}

// equalityClause picks the native equality form by field and value type:
// document id lookups for the identity field, degenerate date ranges for the
// timestamp field, degenerate numeric ranges for numbers and term queries on
// the exact sub-field for strings.
func equalityClause(field string, v any) (query.Query, error) {
	if field == "id" || field == "_id" {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("id bound must be a string, got %T: %w", v, domain.ErrInvalidFilter)
		}
		return bleve.NewDocIDQuery([]string{s}), nil
	}
	if field == fieldCreated {
		ts, err := filter.ParseDateTime(v)
		if err != nil {
			return nil, err
		}
		inclusive := true
		dq := bleve.NewDateRangeInclusiveQuery(ts, ts, &inclusive, &inclusive)
		dq.SetField(field)
		return dq, nil
	}

	switch t := v.(type) {
	case string:
		tq := bleve.NewTermQuery(t)
		tq.SetField(exactField(field))
		return tq, nil
	case float64, int, int64:
		n := toFloat(t)
		inclusive := true
		nq := bleve.NewNumericRangeInclusiveQuery(&n, &n, &inclusive, &inclusive)
		nq.SetField(field)
		return nq, nil
	default:
		return nil, fmt.Errorf("term bound for %q must be a string or number, got %T: %w",
			field, v, domain.ErrInvalidFilter)
	}
}

func boolClause(p filter.Predicate) (query.Query, error) {
	term := p.Term()
	var clauses []query.Query

	if term.Eq != nil {
		bq := bleve.NewBoolFieldQuery(filter.CoerceBool(term.Eq))
		bq.SetField(p.Field())
		clauses = append(clauses, bq)
	}
	if term.Ne != nil {
		bq := bleve.NewBoolFieldQuery(filter.CoerceBool(term.Ne))
		bq.SetField(p.Field())
		clauses = append(clauses, negate(bq))
	}

	return conjoin(clauses)
}

// rangeClause picks the bound form by field, matching the stored field types:
// counters are numeric, timestamps are dates, everything else compares as a
// string on the exact sub-field.
func rangeClause(p filter.Predicate) (query.Query, error) {
	switch p.Field() {
	case fieldCreated:
		return dateClause(p)
	case fieldCounter:
		return numericRangeClause(p)
	default:
		return termRangeClause(p)
	}
}

func numericRangeClause(p filter.Predicate) (query.Query, error) {
	rng := p.Range()

	var min, max *float64
	minInc, maxInc := true, true
	if rng.Gte != nil {
		v, err := numericBound(p.Field(), rng.Gte)
		if err != nil {
			return nil, err
		}
		min = &v
	}
	if rng.Gt != nil {
		v, err := numericBound(p.Field(), rng.Gt)
		if err != nil {
			return nil, err
		}
		min, minInc = &v, false
	}
	if rng.Lte != nil {
		v, err := numericBound(p.Field(), rng.Lte)
		if err != nil {
			return nil, err
		}
		max = &v
	}
	if rng.Lt != nil {
		v, err := numericBound(p.Field(), rng.Lt)
		if err != nil {
			return nil, err
		}
		max, maxInc = &v, false
	}

	nq := bleve.NewNumericRangeInclusiveQuery(min, max, &minInc, &maxInc)
	nq.SetField(p.Field())
	return nq, nil
}

// termRangeClause compares string bounds lexicographically. An empty min or
// max leaves that end of the range open.
func termRangeClause(p filter.Predicate) (query.Query, error) {
	rng := p.Range()

	var min, max string
	minInc, maxInc := true, true
	if rng.Gte != nil {
		s, err := stringBound(p.Field(), rng.Gte)
		if err != nil {
			return nil, err
		}
		min = s
	}
	if rng.Gt != nil {
		s, err := stringBound(p.Field(), rng.Gt)
		if err != nil {
			return nil, err
		}
		min, minInc = s, false
	}
	if rng.Lte != nil {
		s, err := stringBound(p.Field(), rng.Lte)
		if err != nil {
			return nil, err
		}
		max = s
	}
	if rng.Lt != nil {
		s, err := stringBound(p.Field(), rng.Lt)
		if err != nil {
			return nil, err
		}
		max, maxInc = s, false
	}

	tq := bleve.NewTermRangeInclusiveQuery(min, max, &minInc, &maxInc)
	tq.SetField(exactField(p.Field()))
	return tq, nil
}

func dateClause(p filter.Predicate) (query.Query, error) {
	rng := p.Range()

	var start, end time.Time
	startInc, endInc := true, true
	if rng.Gte != nil {
		t, err := filter.ParseDateTime(rng.Gte)
		if err != nil {
			return nil, err
		}
		start = t
	}
	if rng.Gt != nil {
		t, err := filter.ParseDateTime(rng.Gt)
		if err != nil {
			return nil, err
		}
		start, startInc = t, false
	}
	if rng.Lte != nil {
		t, err := filter.ParseDateTime(rng.Lte)
		if err != nil {
			return nil, err
		}
		end = t
	}
	if rng.Lt != nil {
		t, err := filter.ParseDateTime(rng.Lt)
		if err != nil {
			return nil, err
		}
		end, endInc = t, false
	}

	dq := bleve.NewDateRangeInclusiveQuery(start, end, &startInc, &endInc)
	dq.SetField(p.Field())
	return dq, nil
}

func conjoin(clauses []query.Query) (query.Query, error) {
	switch len(clauses) {
	case 0:
		return nil, fmt.Errorf("empty predicate: %w", domain.ErrInvalidFilter)
	case 1:
		return clauses[0], nil
	default:
		return bleve.NewConjunctionQuery(clauses...), nil
	}
}

func negate(inner query.Query) query.Query {
	bq := bleve.NewBooleanQuery()
	bq.AddMust(bleve.NewMatchAllQuery())
	bq.AddMustNot(inner)
	return bq
}

// exactField resolves the exact-match sub-field for analyzed text fields.
func exactField(field string) string {
	if field == fieldSentence {
		return fieldKeyword
	}
	return field
}

// sortOrder builds the bleve sort expression: request order, minus prefix
// for descending, a newest-first identity default and identity as the
// trailing tiebreaker on explicit sorts.
func sortOrder(sorts []filter.SortField) []string {
	if len(sorts) == 0 {
		return []string{"-_id"}
	}
	out := make([]string, 0, len(sorts)+1)
	hasID := false
	for _, sf := range sorts {
		field := sf.Field
		if field == "id" || field == "_id" {
			field = "_id"
			hasID = true
		}
		if field == fieldSentence {
			field = fieldKeyword
		}
		if sf.Desc {
			field = "-" + field
		}
		out = append(out, field)
	}
	if !hasID {
		out = append(out, "_id")
	}
	return out
}

func numericBound(field string, v any) (float64, error) {
	switch t := v.(type) {
	case float64, int, int64:
		return toFloat(t), nil
	default:
		return 0, fmt.Errorf("range bound for %q must be a number, got %T: %w", field, v, domain.ErrInvalidFilter)
	}
}

func stringBound(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("range bound for %q must be a string, got %T: %w", field, v, domain.ErrInvalidFilter)
	}
	return s, nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return 0
}
