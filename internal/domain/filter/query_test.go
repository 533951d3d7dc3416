package filter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
)

func TestNewQueryDefaults(t *testing.T) {
	q, err := NewQuery(nil, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	if q.Page() != 1 {
		t.Errorf("page = %d, want 1", q.Page())
	}
	if q.PageSize() != DefaultPageSize {
		t.Errorf("pageSize = %d, want %d", q.PageSize(), DefaultPageSize)
	}
	if q.Skip() != 0 {
		t.Errorf("skip = %d, want 0", q.Skip())
	}
}

func TestNewQueryRejectsIncludeWithExclude(t *testing.T) {
	_, err := NewQuery([]string{"sentence"}, []string{"counter"}, 0, 0, nil, nil)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestNewQueryRejectsBadPaging(t *testing.T) {
	if _, err := NewQuery(nil, nil, -1, 0, nil, nil); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("negative page: err = %v, want ErrInvalidQuery", err)
	}
	if _, err := NewQuery(nil, nil, 1, -5, nil, nil); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("negative pageSize: err = %v, want ErrInvalidQuery", err)
	}
}

func TestQuerySkip(t *testing.T) {
	q, err := NewQuery(nil, nil, 3, 10, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	if q.Skip() != 20 {
		t.Errorf("skip = %d, want 20", q.Skip())
	}
}

func TestProjectionInclude(t *testing.T) {
	q, err := NewQuery([]string{"sentence", "counter"}, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	record := map[string]any{
		"id":         "abc",
		"sentence":   "hello",
		"created_at": "2024-01-01T00:00:00Z",
		"counter":    int64(2),
	}
	got := q.Projection().Apply(record)

	want := map[string]any{"sentence": "hello", "counter": int64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply = %v, want %v", got, want)
	}
}

func TestProjectionIncludeKeepsIDOnlyWhenListed(t *testing.T) {
	q, err := NewQuery([]string{"id", "sentence"}, nil, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	got := q.Projection().Apply(map[string]any{"id": "abc", "sentence": "hi", "counter": int64(1)})
	if _, ok := got["id"]; !ok {
		t.Error("id listed in include must survive")
	}
	if _, ok := got["counter"]; ok {
		t.Error("counter not listed in include must be dropped")
	}
}

func TestProjectionExclude(t *testing.T) {
	q, err := NewQuery(nil, []string{"counter"}, 0, 0, nil, nil)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	record := map[string]any{"id": "abc", "sentence": "hello", "counter": int64(2)}
	got := q.Projection().Apply(record)

	if _, ok := got["counter"]; ok {
		t.Error("excluded field must be dropped")
	}
	if _, ok := got["id"]; !ok {
		t.Error("id must survive an exclude projection")
	}
	if _, ok := record["counter"]; !ok {
		t.Error("Apply must not mutate the source record")
	}
}

func TestProjectionZeroKeepsEverything(t *testing.T) {
	q := MatchAll()
	record := map[string]any{"id": "abc", "counter": int64(1)}
	got := q.Projection().Apply(record)
	if !reflect.DeepEqual(got, record) {
		t.Errorf("Apply = %v, want %v", got, record)
	}
}
