package http

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type requestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

func newRequestMetrics(registerer prometheus.Registerer) (*requestMetrics, error) {
	if registerer == nil {
		return nil, validationError("metrics registerer is required", nil)
	}

	metrics := &requestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cloudstore",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API requests issued, partitioned by status code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cloudstore",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cloudstore",
			Subsystem: "client",
			Name:      "in_flight_requests",
			Help:      "API requests currently awaiting a response.",
		}),
	}

	var err error
	if metrics.requests, err = registerCollector(registerer, metrics.requests); err != nil {
		return nil, err
	}
	if metrics.duration, err = registerCollector(registerer, metrics.duration); err != nil {
		return nil, err
	}
	if metrics.inFlight, err = registerCollector(registerer, metrics.inFlight); err != nil {
		return nil, err
	}
	return metrics, nil
}

// registerCollector reuses an already registered collector of the same shape.
func registerCollector[T prometheus.Collector](registerer prometheus.Registerer, collector T) (T, error) {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, internalError("failed to register request metrics", err)
	}
	return collector, nil
}

func (m *requestMetrics) instrument(next http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperInFlight(
		m.inFlight,
		promhttp.InstrumentRoundTripperCounter(
			m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next),
		),
	)
}
