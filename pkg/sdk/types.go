package extractor

import (
	"time"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/pagination"
	domrep "github.com/suthipongg/service-sentence-extractor/internal/domain/report"
)

// Sentence is a deduplicated sentence record with its embedding vector.
type Sentence struct {
	ID        string
	Sentence  string
	Vector    []float32
	CreatedAt time.Time
	Counter   int64
}

// Page describes the window of a paginated result set.
type Page struct {
	Page      int
	PageSize  int
	PageCount int
	Total     int
}

// ListRequest selects and pages stored sentence records.
// Include and Exclude are mutually exclusive field projections.
type ListRequest struct {
	Include  []string
	Exclude  []string
	Page     int
	PageSize int
}

// ReportBucket is the submission count of one calendar bucket.
type ReportBucket struct {
	Key   string
	Count int64
}

// Report is a calendar histogram of stored sentences plus the sum of
// their submission counters over the window.
type Report struct {
	Buckets    []ReportBucket
	CounterSum float64
}

func sentenceFromDomain(s domain.ExtractedSentence) Sentence {
	return Sentence{
		ID:        s.ID,
		Sentence:  s.Sentence,
		Vector:    s.SentenceVector,
		CreatedAt: s.CreatedAt,
		Counter:   s.Counter,
	}
}

func pageFromDomain(p pagination.Page) Page {
	return Page{
		Page:      p.Page,
		PageSize:  p.PageSize,
		PageCount: p.PageCount,
		Total:     p.Total,
	}
}

func reportFromDomain(h domrep.Histogram) Report {
	buckets := make([]ReportBucket, 0, len(h.Buckets))
	for _, b := range h.Buckets {
		buckets = append(buckets, ReportBucket{Key: b.Key, Count: b.Count})
	}
	return Report{Buckets: buckets, CounterSum: h.CounterSum}
}
