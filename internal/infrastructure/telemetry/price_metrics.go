package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Price lookup results.
const (
	LookupResultHit      = "hit"
	LookupResultMiss     = "miss"
	LookupResultNotFound = "not_found"
	LookupResultError    = "error"
)

// PriceLookupMetrics counts price lookups by result and records their latency.
type PriceLookupMetrics struct {
	lookups  *Counter
	duration *Histogram
}

// NewPriceLookupMetrics registers the price lookup instruments on meter.
func NewPriceLookupMetrics(meter metric.Meter) (*PriceLookupMetrics, error) {
	lookups, err := NewCounter(meter,
		"price_lookup_total",
		"Number of product price lookups by result",
		"{lookup}",
	)
	if err != nil {
		return nil, err
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "price_lookup_duration_seconds",
		Description: "Duration of product price lookups",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &PriceLookupMetrics{lookups: lookups, duration: duration}, nil
}

// RecordLookup records one lookup. A nil receiver is a no-op.
func (m *PriceLookupMetrics) RecordLookup(ctx context.Context, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookups.Inc(ctx, AttrLookupResult.String(result))
	m.duration.RecordDuration(ctx, elapsed, AttrLookupResult.String(result))
}
