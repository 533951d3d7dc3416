// Package report models time-bucketed submission reporting: calendar
// intervals, bucket generation and the histogram result shape.
package report

import (
	"fmt"
	"time"
)

// Interval is a calendar bucketing granularity.
type Interval string

const (
	// IntervalHour buckets by clock hour.
	IntervalHour Interval = "hour"
	// IntervalDay buckets by calendar day.
	IntervalDay Interval = "day"
	// IntervalWeek buckets by ISO week starting Monday.
	IntervalWeek Interval = "week"
	// IntervalMonth buckets by calendar month.
	IntervalMonth Interval = "month"
	// IntervalQuarter buckets by calendar quarter.
	IntervalQuarter Interval = "quarter"
	// IntervalYear buckets by calendar year.
	IntervalYear Interval = "year"
)

// ParseInterval validates an interval name.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case IntervalHour, IntervalDay, IntervalWeek, IntervalMonth, IntervalQuarter, IntervalYear:
		return Interval(s), nil
	}
	return "", fmt.Errorf("unknown interval %q", s)
}

// Layout returns the bucket key time layout for the interval. Day and week
// keys carry the full date, month and quarter keys drop the day, year keys
// keep only the year. Anything finer falls back to a full timestamp.
func (iv Interval) Layout() string {
	switch iv {
	case IntervalDay, IntervalWeek:
		return "2006-01-02"
	case IntervalMonth, IntervalQuarter:
		return "2006-01"
	case IntervalYear:
		return "2006"
	default:
		return "2006-01-02 15:04:05"
	}
}

// Truncate aligns t down to the start of its bucket in UTC.
func (iv Interval) Truncate(t time.Time) time.Time {
	t = t.UTC()
	y, m, d := t.Date()
	switch iv {
	case IntervalDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case IntervalWeek:
		// weeks start on Monday
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, time.UTC)
	case IntervalMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case IntervalQuarter:
		return time.Date(y, m-time.Month((int(m)-1)%3), 1, 0, 0, 0, 0, time.UTC)
	case IntervalYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the bucket following the one starting at t.
func (iv Interval) Next(t time.Time) time.Time {
	switch iv {
	case IntervalDay:
		return t.AddDate(0, 0, 1)
	case IntervalWeek:
		return t.AddDate(0, 0, 7)
	case IntervalMonth:
		return t.AddDate(0, 1, 0)
	case IntervalQuarter:
		return t.AddDate(0, 3, 0)
	case IntervalYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.Add(time.Hour)
	}
}

// Bucket is a half-open [Start, End) calendar window with its label.
type Bucket struct {
	Key   string
	Start time.Time
	End   time.Time
}

// Buckets generates the contiguous bucket sequence covering [start, end].
// Buckets are emitted even when no record falls into them.
func Buckets(iv Interval, start, end time.Time) []Bucket {
	if end.Before(start) {
		return nil
	}
	layout := iv.Layout()
	last := iv.Truncate(end)

	var out []Bucket
	for b := iv.Truncate(start); !b.After(last); b = iv.Next(b) {
		out = append(out, Bucket{
			Key:   b.Format(layout),
			Start: b,
			End:   iv.Next(b),
		})
	}
	return out
}

// Query is a resolved report request handed to the search index.
type Query struct {
	Start    time.Time
	End      time.Time
	Interval Interval
	Buckets  []Bucket
}

// NewQuery resolves the bucket sequence for a report window.
func NewQuery(iv Interval, start, end time.Time) (Query, error) {
	if end.Before(start) {
		return Query{}, fmt.Errorf("report window end %s precedes start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return Query{
		Start:    start,
		End:      end,
		Interval: iv,
		Buckets:  Buckets(iv, start, end),
	}, nil
}

// BucketCount is the document count of one bucket.
type BucketCount struct {
	Key   string
	Count int64
}

// Histogram is the aggregated report: per-bucket document counts plus the
// sum of submission counters over the window.
type Histogram struct {
	Buckets    []BucketCount
	CounterSum float64
}
