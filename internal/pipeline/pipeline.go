// Package pipeline runs the linear fetch, transform, render cycle behind
// every dashboard query. There is no intermediate state: a query either
// produces a complete report or an error.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"tickerdash/internal/analysis"
	"tickerdash/internal/chart"
	"tickerdash/internal/dataset"
	"tickerdash/internal/domain"
	"tickerdash/internal/provider"
)

// Report is the complete result of one query: the normalized table, headline
// statistics and the rendered chart page.
type Report struct {
	Query       domain.Query
	Table       *dataset.Table
	Summary     analysis.Summary
	ChartHTML   []byte
	GeneratedAt time.Time
}

type Pipeline struct {
	provider provider.Provider
	metrics  *pipelineMetrics
}

func New(p provider.Provider, mp metric.MeterProvider) (*Pipeline, error) {
	m, err := newPipelineMetrics(mp)
	if err != nil {
		return nil, fmt.Errorf("init pipeline metrics: %w", err)
	}
	return &Pipeline{provider: p, metrics: m}, nil
}

// Run executes one fetch-and-render cycle. Validation happens first; an
// invalid query never reaches the provider. Zero-value windows fall back to
// the dashboard defaults.
func (pl *Pipeline) Run(ctx context.Context, q domain.Query, windows analysis.Windows) (report *Report, err error) {
	defer func() {
		pl.metrics.queries.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
	}()

	if err = q.Validate(); err != nil {
		return nil, err
	}
	if windows == (analysis.Windows{}) {
		windows = analysis.DefaultWindows()
	}
	if werr := windows.Validate(); werr != nil {
		err = fmt.Errorf("%w: %v", domain.ErrInvalidQuery, werr)
		return nil, err
	}

	fetchStart := time.Now()
	series, err := pl.provider.Fetch(ctx, q.Ticker, q.Interval, q.Start, q.End)
	pl.metrics.fetchDuration.Record(ctx, time.Since(fetchStart).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "provider fetch failed",
			"provider", pl.provider.Name(), "ticker", q.Ticker, "error", err)
		return nil, err
	}

	table, err := dataset.Build(q.Ticker, series, windows)
	if err != nil {
		return nil, err
	}
	summary := analysis.Summarize(table.Returns())

	var buf bytes.Buffer
	if err = chart.Render(&buf, table, summary); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	slog.InfoContext(ctx, "query rendered",
		"ticker", q.Ticker,
		"start", q.Start.Format(domain.DateFormat),
		"end", q.End.Format(domain.DateFormat),
		"rows", table.Len(),
	)

	return &Report{
		Query:       q,
		Table:       table,
		Summary:     summary,
		ChartHTML:   buf.Bytes(),
		GeneratedAt: time.Now().UTC(),
	}, nil
}
