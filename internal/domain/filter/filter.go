// Package filter models store-agnostic list filters: typed predicates over
// record fields plus projection, paging and sort. Store dialects translate
// a filter.Query into their native query language.
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

// Kind identifies the predicate family a clause belongs to.
type Kind string

const (
	// KindTerm matches a field for equality or inequality.
	KindTerm Kind = "term"
	// KindBool matches a field against a coerced boolean.
	KindBool Kind = "bool"
	// KindRange bounds a numeric field with gte/lte/gt/lt.
	KindRange Kind = "range"
	// KindWildcard matches a string field against a * pattern.
	KindWildcard Kind = "wildcard"
	// KindDateTime bounds a timestamp field with gte/lte/gt/lt.
	KindDateTime Kind = "datetime"
)

// TermOperator holds equality bounds. Nil means the bound is absent.
type TermOperator struct {
	Eq any
	Ne any
}

// RangeOperator holds ordering bounds. Nil means the bound is absent.
type RangeOperator struct {
	Gte any
	Lte any
	Gt  any
	Lt  any
}

// Predicate is a single validated filter clause.
type Predicate struct {
	field string
	kind  Kind
	term  TermOperator
	rng   RangeOperator
	like  string
}

// NewPredicate validates operator keys against the declared kind and creates
// a Predicate. An empty or unknown kind is inferred from the operator keys:
// ordering bounds mean range, like means wildcard, eq/ne mean term. Keys that
// fit no signature are rejected.
func NewPredicate(kind Kind, field string, operator map[string]any) (Predicate, error) {
	if field == "" {
		return Predicate{}, fmt.Errorf("filter field is required: %w", domain.ErrInvalidFilter)
	}
	if len(operator) == 0 {
		return Predicate{}, fmt.Errorf("filter operator for %q is required: %w", field, domain.ErrInvalidFilter)
	}

	if kind == "" || !knownKind(kind) {
		kind = sniffKind(operator)
	}

	p := Predicate{field: field, kind: kind}
	switch kind {
	case KindTerm, KindBool:
		if !keysWithin(operator, "eq", "ne") {
			return Predicate{}, operatorError(field)
		}
		p.term = TermOperator{Eq: operator["eq"], Ne: operator["ne"]}
	case KindRange, KindDateTime:
		if !keysWithin(operator, "gte", "lte", "gt", "lt") {
			return Predicate{}, operatorError(field)
		}
		p.rng = RangeOperator{
			Gte: operator["gte"],
			Lte: operator["lte"],
			Gt:  operator["gt"],
			Lt:  operator["lt"],
		}
	case KindWildcard:
		if !keysWithin(operator, "like") {
			return Predicate{}, operatorError(field)
		}
		like, ok := operator["like"].(string)
		if !ok {
			return Predicate{}, fmt.Errorf("wildcard pattern for %q must be a string: %w", field, domain.ErrInvalidFilter)
		}
		p.like = like
	default:
		return Predicate{}, operatorError(field)
	}

	return p, nil
}

// Field returns the record field the clause applies to.
func (p Predicate) Field() string { return p.field }

// Kind returns the resolved predicate kind.
func (p Predicate) Kind() Kind { return p.kind }

// Term returns the equality bounds for term and bool predicates.
func (p Predicate) Term() TermOperator { return p.term }

// Range returns the ordering bounds for range and datetime predicates.
func (p Predicate) Range() RangeOperator { return p.rng }

// Like returns the raw * pattern for wildcard predicates.
func (p Predicate) Like() string { return p.like }

// WildcardRegexp compiles the * pattern into a substring regexp:
// literal segments are quoted, each * becomes .* and the whole pattern
// is wrapped in .* on both sides.
func (p Predicate) WildcardRegexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(p.WildcardPattern())
	if err != nil {
		return nil, fmt.Errorf("compile wildcard for %q: %w", p.field, domain.ErrInvalidFilter)
	}
	return re, nil
}

// WildcardPattern returns the regexp source of the * pattern.
func (p Predicate) WildcardPattern() string {
	parts := strings.Split(p.like, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return ".*" + strings.Join(parts, ".*") + ".*"
}

func operatorError(field string) error {
	return fmt.Errorf("filter for %q: %w", field, domain.ErrInvalidOperator)
}

func knownKind(k Kind) bool {
	switch k {
	case KindTerm, KindBool, KindRange, KindWildcard, KindDateTime:
		return true
	}
	return false
}

// sniffKind infers the predicate kind from the operator payload keys.
func sniffKind(operator map[string]any) Kind {
	if hasAny(operator, "gte", "lte", "gt", "lt") {
		return KindRange
	}
	if hasAny(operator, "like") {
		return KindWildcard
	}
	if hasAny(operator, "eq", "ne") {
		return KindTerm
	}
	return Kind("")
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func keysWithin(m map[string]any, allowed ...string) bool {
	for k := range m {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// CoerceBool maps loosely typed flag values onto a boolean. Recognized true
// strings are true/t/yes/y/1, false strings are false/f/no/n/0; anything
// unrecognized is false. Numbers follow non-zero truthiness.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "t", "yes", "y", "1":
			return true
		}
		return false
	}
	return false
}

// dateLayouts are tried in order when parsing datetime bounds.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDateTime parses a timestamp in any of the accepted layouts, from full
// RFC 3339 down to a bare year. Times without a zone are treated as UTC.
func ParseDateTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, t, time.UTC); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable datetime %q: %w", t, domain.ErrInvalidFilter)
	default:
		return time.Time{}, fmt.Errorf("datetime bound must be a string, got %T: %w", v, domain.ErrInvalidFilter)
	}
}
