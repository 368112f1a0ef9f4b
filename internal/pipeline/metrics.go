package pipeline

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"tickerdash/internal/domain"
)

type pipelineMetrics struct {
	queries       metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

func newPipelineMetrics(mp metric.MeterProvider) (*pipelineMetrics, error) {
	meter := mp.Meter("tickerdash/pipeline")

	queries, err := meter.Int64Counter(
		"dashboard_queries_total",
		metric.WithDescription("Fetch-and-render cycles by outcome."),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"provider_fetch_duration_seconds",
		metric.WithDescription("Wall time of provider fetches."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &pipelineMetrics{queries: queries, fetchDuration: fetchDuration}, nil
}

func outcomeAttr(err error) attribute.KeyValue {
	return attribute.String("outcome", outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, domain.ErrUnknownTicker):
		return "unknown_ticker"
	case errors.Is(err, domain.ErrNoData):
		return "no_data"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_unavailable"
	default:
		return "error"
	}
}
