package provider

import (
	"context"
	"time"

	"tickerdash/internal/domain"
)

// Mock returns controllable fixed data for development and tests. With no
// fixed Series it synthesizes a gently trending series spaced by the
// requested interval, which is also what the demo provider mode serves.
type Mock struct {
	Series domain.Series
	Err    error

	BasePrice float64

	// FetchCalls counts Fetch invocations, letting tests assert that
	// rejected queries never reach the provider.
	FetchCalls int
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Fetch(ctx context.Context, ticker string, interval domain.Interval, start, end time.Time) (domain.Series, error) {
	m.FetchCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		out := make(domain.Series, len(m.Series))
		copy(out, m.Series)
		return out, nil
	}

	base := m.BasePrice
	if base == 0 {
		base = 100
	}
	return SyntheticSeries(base, interval, start, end), nil
}

// SyntheticSeries generates bars spaced by the interval over [start, end]:
// one per weekday, one per Monday, or one per month.
func SyntheticSeries(basePrice float64, interval domain.Interval, start, end time.Time) domain.Series {
	series := domain.Series{}
	i := 0
	for d := firstBar(start, interval); !d.After(end); d = nextBar(d, interval) {
		p := basePrice * (1 + float64(i)*0.002)
		series = append(series, domain.Candle{
			Timestamp: d,
			Open:      p * 0.999,
			High:      p * 1.005,
			Low:       p * 0.995,
			Close:     p,
			Volume:    1_000_000 + int64(i)*10_000,
		})
		i++
	}
	return series
}

func firstBar(start time.Time, interval domain.Interval) time.Time {
	switch interval {
	case domain.IntervalWeekly:
		for start.Weekday() != time.Monday {
			start = start.AddDate(0, 0, 1)
		}
	case domain.IntervalMonthly:
	default:
		for start.Weekday() == time.Saturday || start.Weekday() == time.Sunday {
			start = start.AddDate(0, 0, 1)
		}
	}
	return start
}

func nextBar(d time.Time, interval domain.Interval) time.Time {
	switch interval {
	case domain.IntervalWeekly:
		return d.AddDate(0, 0, 7)
	case domain.IntervalMonthly:
		return d.AddDate(0, 1, 0)
	default:
		d = d.AddDate(0, 0, 1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		return d
	}
}
