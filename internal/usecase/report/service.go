// Package report resolves submission-report requests into calendar-bucketed
// histograms over the search index.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/suthipongg/service-sentence-extractor/internal/domain"
	"github.com/suthipongg/service-sentence-extractor/internal/domain/filter"
	domrep "github.com/suthipongg/service-sentence-extractor/internal/domain/report"
)

// Service builds submission reports.
type Service struct {
	agg Aggregator
	now func() time.Time
}

// New creates a report service.
func New(agg Aggregator) *Service {
	return &Service{agg: agg, now: time.Now}
}

// Histogram aggregates submission counts over [startDate, endDate] bucketed
// by interval. Empty dates default to the first and last day of the current
// month; an empty interval defaults to day. A date-only end bound covers the
// whole day.
func (s *Service) Histogram(ctx context.Context, startDate, endDate, interval string) (domrep.Histogram, error) {
	iv := domrep.IntervalDay
	if interval != "" {
		parsed, err := domrep.ParseInterval(interval)
		if err != nil {
			return domrep.Histogram{}, fmt.Errorf("%s: %w", err, domain.ErrInvalidQuery)
		}
		iv = parsed
	}

	start, end, err := s.window(startDate, endDate)
	if err != nil {
		return domrep.Histogram{}, err
	}

	rq, err := domrep.NewQuery(iv, start, end)
	if err != nil {
		return domrep.Histogram{}, fmt.Errorf("%s: %w", err, domain.ErrInvalidQuery)
	}

	hist, err := s.agg.DateHistogram(ctx, rq)
	if err != nil {
		return domrep.Histogram{}, fmt.Errorf("aggregate report: %w", err)
	}
	return hist, nil
}

func (s *Service) window(startDate, endDate string) (time.Time, time.Time, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

	start := monthStart
	if startDate != "" {
		parsed, err := filter.ParseDateTime(startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", startDate, domain.ErrInvalidQuery)
		}
		start = parsed
	}

	end := monthEnd
	if endDate != "" {
		parsed, err := filter.ParseDateTime(endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", endDate, domain.ErrInvalidQuery)
		}
		end = parsed
		// A bare date means the whole day, not its first instant.
		if len(endDate) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Second)
		}
	}

	return start, end, nil
}
