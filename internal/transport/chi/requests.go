package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
)

// extractorRequest is the submit body. created_at is optional and defaults
// to the submission time.
type extractorRequest struct {
	Sentence  string     `json:"sentence" validate:"required"`
	CreatedAt *time.Time `json:"created_at"`
}

func (r extractorRequest) createdAt() time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}

// sentenceList accepts either a single string or an array of strings.
type sentenceList []string

func (s *sentenceList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = sentenceList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("sentences must be a string or an array of strings")
	}
	*s = many
	return nil
}

// sentencesRequest is the shared body of the model, vectors and tokenizer routes.
type sentencesRequest struct {
	Sentences sentenceList `json:"sentences" validate:"required,min=1"`
}

// filterItem is one criterion of the getList filter.
type filterItem struct {
	Type     string         `json:"type"`
	Field    string         `json:"field"`
	Operator map[string]any `json:"operator"`
}

// sortSpec preserves the key order of the sort object. Directions accept
// 1/-1 numerics and asc/desc strings.
type sortSpec []filter.SortField

func (s *sortSpec) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("sort must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return errors.New("sort keys must be strings")
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		desc, err := sortDirection(key, v)
		if err != nil {
			return err
		}
		*s = append(*s, filter.SortField{Field: key, Desc: desc})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func sortDirection(field string, v any) (bool, error) {
	switch d := v.(type) {
	case float64:
		switch d {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
	case string:
		switch d {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	}
	return false, fmt.Errorf("invalid sort direction %v for field %q", v, field)
}

// bodyList is the getList request.
type bodyList struct {
	Include  []string     `json:"include"`
	Exclude  []string     `json:"exclude"`
	Page     int          `json:"page" validate:"omitempty,gte=1"`
	PageSize int          `json:"pageSize" validate:"omitempty,gte=1"`
	Sort     sortSpec     `json:"sort"`
	Filter   []filterItem `json:"filter"`
}

func (b bodyList) toQuery() (filter.Query, error) {
	predicates := make([]filter.Predicate, 0, len(b.Filter))
	for _, item := range b.Filter {
		p, err := filter.NewPredicate(filter.Kind(item.Type), item.Field, item.Operator)
		if err != nil {
			return filter.Query{}, err
		}
		predicates = append(predicates, p)
	}
	return filter.NewQuery(b.Include, b.Exclude, b.Page, b.PageSize, b.Sort, predicates)
}
