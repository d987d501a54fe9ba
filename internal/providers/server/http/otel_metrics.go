package http

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	requestCounterName  = "cloudstore.client.requests"
	requestDurationName = "cloudstore.client.request.duration"
	requestCounterUnit  = "{request}"
	requestDurationUnit = "s"
)

type otelInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	if provider == nil {
		return nil, validationError("meter provider is required", nil)
	}
	meter := provider.Meter(tracerName)

	requests, err := meter.Int64Counter(
		requestCounterName,
		metric.WithDescription("API requests issued."),
		metric.WithUnit(requestCounterUnit),
	)
	if err != nil {
		return nil, internalError("failed to create request counter", err)
	}
	duration, err := meter.Float64Histogram(
		requestDurationName,
		metric.WithDescription("API request latency."),
		metric.WithUnit(requestDurationUnit),
	)
	if err != nil {
		return nil, internalError("failed to create request duration histogram", err)
	}

	return &otelInstruments{requests: requests, duration: duration}, nil
}

// record is a no-op on a nil receiver. A status of 0 means no response was
// received.
func (i *otelInstruments) record(ctx context.Context, method string, status int, elapsed time.Duration) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)
	i.requests.Add(ctx, 1, attrs)
	i.duration.Record(ctx, elapsed.Seconds(), attrs)
}
