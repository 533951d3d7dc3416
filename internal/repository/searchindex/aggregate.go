package searchindex

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/suthipongg/service-sentence-extractor/internal/domain/report"
)

// sumPageSize bounds how many hits the counter sum scan pulls per page.
const sumPageSize = 500

// DateHistogram buckets records by creation time over the report window and
// sums their submission counters. Buckets with no records are reported with
// a zero count.
func (s *Store) DateHistogram(ctx context.Context, rq report.Query) (report.Histogram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts, err := s.bucketCounts(ctx, rq)
	if err != nil {
		return report.Histogram{}, err
	}

	sum, err := s.counterSum(ctx, rq)
	if err != nil {
		return report.Histogram{}, err
	}

	buckets := make([]report.BucketCount, len(rq.Buckets))
	for i, b := range rq.Buckets {
		buckets[i] = report.BucketCount{Key: b.Key, Count: counts[b.Key]}
	}
	return report.Histogram{Buckets: buckets, CounterSum: sum}, nil
}

// bucketCounts runs one facet per calendar bucket over the window query.
func (s *Store) bucketCounts(ctx context.Context, rq report.Query) (map[string]int64, error) {
	req := bleve.NewSearchRequestOptions(s.windowQuery(rq), 0, 0, false)

	facet := bleve.NewFacetRequest(fieldCreated, len(rq.Buckets))
	for _, b := range rq.Buckets {
		facet.AddDateTimeRange(b.Key, b.Start, b.End)
	}
	req.AddFacet("total_by_day", facet)

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("date histogram: %w", err)
	}

	counts := make(map[string]int64, len(rq.Buckets))
	if fr, ok := res.Facets["total_by_day"]; ok {
		for _, dr := range fr.DateRanges {
			counts[dr.Name] = int64(dr.Count)
		}
	}
	return counts, nil
}

// counterSum pages through the window hits and accumulates the counter field.
// The index has no native sum aggregation, so the sum is computed client-side
// over stored field values.
func (s *Store) counterSum(ctx context.Context, rq report.Query) (float64, error) {
	var sum float64
	for from := 0; ; from += sumPageSize {
		req := bleve.NewSearchRequestOptions(s.windowQuery(rq), sumPageSize, from, false)
		req.Fields = []string{fieldCounter}

		res, err := s.idx.SearchInContext(ctx, req)
		if err != nil {
			return 0, fmt.Errorf("counter sum: %w", err)
		}
		for _, hit := range res.Hits {
			if v, ok := hit.Fields[fieldCounter].(float64); ok {
				sum += v
			}
		}
		if from+len(res.Hits) >= int(res.Total) || len(res.Hits) == 0 {
			break
		}
	}
	return sum, nil
}

// windowQuery bounds the aggregation to the inclusive report window.
func (s *Store) windowQuery(rq report.Query) query.Query {
	inclusive := true
	dq := bleve.NewDateRangeInclusiveQuery(rq.Start, rq.End, &inclusive, &inclusive)
	dq.SetField(fieldCreated)
	return dq
}
