package cache

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type cacheMetricsCollection struct {
	accessCount     metric.Int64Counter
	refreshCount    metric.Int64Counter
	refreshDuration metric.Float64Histogram
	keyedLookups    metric.Int64Counter
}

var metrics cacheMetricsCollection

func init() {
	const name = "campaigncache/cache"
	meter := otel.Meter(name)

	accessCount, err := meter.Int64Counter(
		"cache/access_count",
		metric.WithDescription("Accesses to refresh-ahead caches by decision"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create access count metric: %w", err))
	}

	refreshCount, err := meter.Int64Counter(
		"cache/refresh_count",
		metric.WithDescription("Completed refreshes of refresh-ahead caches by result"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create refresh count metric: %w", err))
	}

	refreshDuration, err := meter.Float64Histogram(
		"cache/refresh_duration_seconds",
		metric.WithDescription("Time spent running the query of a refresh"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create refresh duration metric: %w", err))
	}

	keyedLookups, err := meter.Int64Counter(
		"cache/keyed_lookup_count",
		metric.WithDescription("Lookups in keyed caches by hit/miss"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create keyed lookup count metric: %w", err))
	}

	metrics = cacheMetricsCollection{
		accessCount:     accessCount,
		refreshCount:    refreshCount,
		refreshDuration: refreshDuration,
		keyedLookups:    keyedLookups,
	}
}

func recordAccess(ctx context.Context, cacheName string, d decision) {
	metrics.accessCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("cache", cacheName),
		attribute.String("decision", d.String()),
	))
}

func recordRefresh(ctx context.Context, cacheName string, result string, duration time.Duration) {
	attributesOption := metric.WithAttributes(
		attribute.String("cache", cacheName),
		attribute.String("result", result),
	)
	metrics.refreshCount.Add(ctx, 1, attributesOption)
	metrics.refreshDuration.Record(ctx, duration.Seconds(), attributesOption)
}

func recordKeyedLookup(ctx context.Context, result string) {
	metrics.keyedLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
