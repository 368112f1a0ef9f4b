// Package provider fetches historical price series from external market-data
// sources. Implementations sit behind a narrow interface so the dashboard can
// swap sources and tests can run against a mock.
package provider

import (
	"context"
	"time"

	"tickerdash/internal/domain"
)

// Provider retrieves the price series of one ticker over a closed calendar
// date range. The returned series is sorted ascending and contains exactly the
// trading sessions the source reported; nothing is interpolated or dropped.
//
// Errors are mapped to the domain sentinels: domain.ErrUnknownTicker when the
// source does not know the symbol, domain.ErrNoData when the range holds no
// trading sessions, domain.ErrProviderUnavailable for transport failures.
type Provider interface {
	Fetch(ctx context.Context, ticker string, interval domain.Interval, start, end time.Time) (domain.Series, error)
	Name() string
}
