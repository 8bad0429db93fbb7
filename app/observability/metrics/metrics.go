package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	RemoteRequestDurationSeconds metric.Float64Histogram
	RemoteRequestFailuresTotal   metric.Int64Counter
	StorageFallbacksTotal        metric.Int64Counter
	ItineraryGenerationsTotal    metric.Int64Counter
	DbQueryErrorsTotal           metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once, from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TouristGuide")
		var err error
		m := &AppMetrics{}

		m.RemoteRequestDurationSeconds, err = meter.Float64Histogram(
			"remote_request_duration_seconds",
			metric.WithDescription("Duration of remote collections API calls, retries included"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create remote_request_duration_seconds: %v", err)
		}

		m.RemoteRequestFailuresTotal, err = meter.Int64Counter(
			"remote_request_failures_total",
			metric.WithDescription("Remote calls that failed after all attempts"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create remote_request_failures_total: %v", err)
		}

		m.StorageFallbacksTotal, err = meter.Int64Counter(
			"storage_fallbacks_total",
			metric.WithDescription("Operations served by the local store after a remote failure"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create storage_fallbacks_total: %v", err)
		}

		m.ItineraryGenerationsTotal, err = meter.Int64Counter(
			"itinerary_generations_total",
			metric.WithDescription("Generated itineraries by strategy"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generations_total: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of local database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, initializing them against the current
// global provider on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
