package report

import (
	"context"

	domrep "github.com/suthipongg/service-sentence-extractor/internal/domain/report"
)

// Aggregator runs date-bucketed aggregations over the search index.
type Aggregator interface {
	DateHistogram(ctx context.Context, rq domrep.Query) (domrep.Histogram, error)
}
