package docstore

import (
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

// recordFields maps wire field names onto record struct fields.
var recordFields = map[string]string{
	"id":              "ID",
	"_id":             "ID",
	"sentence":        "Sentence",
	"sentence_vector": "SentenceVector",
	"created_at":      "CreatedAt",
	"counter":         "Counter",
}

// Translate compiles a store-agnostic query into a native badgerhold query.
// Predicates are joined with And. Without a sort criterion records come back
// newest first: identities are time-ordered, so ID descending follows
// creation order. Mixed sort directions are rejected because the underlying
// store applies one direction to the whole sort.
func Translate(fq filter.Query) (*badgerhold.Query, error) {
	var q *badgerhold.Query
	crit := func(field string) *badgerhold.Criterion {
		if q == nil {
			return badgerhold.Where(field)
		}
		return q.And(field)
	}

	for _, p := range fq.Predicates() {
		field, err := recordField(p.Field())
		if err != nil {
			return nil, err
		}

		switch p.Kind() {
		case filter.KindTerm:
			term := p.Term()
			if term.Eq != nil {
				v, err := coerceValue(field, term.Eq)
				if err != nil {
					return nil, err
				}
				q = crit(field).Eq(v)
			}
			if term.Ne != nil {
				v, err := coerceValue(field, term.Ne)
				if err != nil {
					return nil, err
				}
				q = crit(field).Ne(v)
			}

		case filter.KindBool:
			term := p.Term()
			if term.Eq != nil {
				q = crit(field).Eq(filter.CoerceBool(term.Eq))
			}
			if term.Ne != nil {
				q = crit(field).Ne(filter.CoerceBool(term.Ne))
			}

		case filter.KindRange:
			rng := p.Range()
			bounds := []struct {
				value any
				apply func(*badgerhold.Criterion, any) *badgerhold.Query
			}{
				{rng.Gte, func(c *badgerhold.Criterion, v any) *badgerhold.Query { return c.Ge(v) }},
				{rng.Lte, func(c *badgerhold.Criterion, v any) *badgerhold.Query { return c.Le(v) }},
				{rng.Gt, func(c *badgerhold.Criterion, v any) *badgerhold.Query { return c.Gt(v) }},
				{rng.Lt, func(c *badgerhold.Criterion, v any) *badgerhold.Query { return c.Lt(v) }},
			}
			for _, b := range bounds {
				if b.value == nil {
					continue
				}
				v, err := coerceValue(field, b.value)
				if err != nil {
					return nil, err
				}
				q = b.apply(crit(field), v)
			}

		case filter.KindDateTime:
			rng := p.Range()
			bounds := []struct {
				value any
				apply func(*badgerhold.Criterion, time.Time) *badgerhold.Query
			}{
				{rng.Gte, func(c *badgerhold.Criterion, t time.Time) *badgerhold.Query { return c.Ge(t) }},
				{rng.Lte, func(c *badgerhold.Criterion, t time.Time) *badgerhold.Query { return c.Le(t) }},
				{rng.Gt, func(c *badgerhold.Criterion, t time.Time) *badgerhold.Query { return c.Gt(t) }},
				{rng.Lt, func(c *badgerhold.Criterion, t time.Time) *badgerhold.Query { return c.Lt(t) }},
			}
			for _, b := range bounds {
				if b.value == nil {
					continue
				}
				ts, err := filter.ParseDateTime(b.value)
				if err != nil {
					return nil, err
				}
				q = b.apply(crit(field), ts)
			}

		case filter.KindWildcard:
			re, err := p.WildcardRegexp()
			if err != nil {
				return nil, err
			}
			q = crit(field).RegExp(re)

		default:
			return nil, fmt.Errorf("predicate kind %q on %q: %w", p.Kind(), p.Field(), domain.ErrInvalidFilter)
		}
	}

	if q == nil {
		q = badgerhold.Where("ID").Ne("")
	}

	return applySort(q, fq.Sort())
}

func applySort(q *badgerhold.Query, sorts []filter.SortField) (*badgerhold.Query, error) {
	if len(sorts) == 0 {
		return q.SortBy("ID").Reverse(), nil
	}

	desc := sorts[0].Desc
	fields := make([]string, len(sorts))
	hasID := false
	for i, sf := range sorts {
		if sf.Desc != desc {
			return nil, fmt.Errorf("mixed sort directions are not supported: %w", domain.ErrInvalidQuery)
		}
		field, err := recordField(sf.Field)
		if err != nil {
			return nil, err
		}
		if field == "ID" {
			hasID = true
		}
		fields[i] = field
	}
	// Identity as the trailing criterion keeps equal-key runs in a stable,
	// creation-ordered sequence.
	if !hasID {
		fields = append(fields, "ID")
	}

	q = q.SortBy(fields...)
	if desc {
		q = q.Reverse()
	}
	return q, nil
}

func recordField(name string) (string, error) {
	field, ok := recordFields[name]
	if !ok {
		return "", fmt.Errorf("unknown field %q: %w", name, domain.ErrInvalidFilter)
	}
	return field, nil
}

// coerceValue aligns wire values with the stored field types: counters are
// int64, timestamps are time.Time, everything else is a string.
func coerceValue(field string, v any) (any, error) {
	switch field {
	case "Counter":
		switch t := v.(type) {
		case float64:
			return int64(t), nil
		case int:
			return int64(t), nil
		case int64:
			return t, nil
		default:
			return nil, fmt.Errorf("counter bound must be a number, got %T: %w", v, domain.ErrInvalidFilter)
		}
	case "CreatedAt":
		return filter.ParseDateTime(v)
	default:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("value for %s must be a string, got %T: %w", field, v, domain.ErrInvalidFilter)
		}
		return s, nil
	}
}
