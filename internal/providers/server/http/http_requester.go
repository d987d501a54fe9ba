package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
	"github.com/crmarques/cloudstore/server"
)

const (
	defaultMediaType    = "application/json"
	requestIDHeader     = "X-Request-Id"
	maxResponseBodySize = 64 << 20
	tracerName          = "github.com/crmarques/cloudstore/internal/providers/server/http"
)

var _ server.Requester = (*HTTPRequester)(nil)

// HTTPRequester sends API requests using the configuration carried by each
// request. Clients and limiters are built lazily per distinct transport
// setting and reused afterwards.
type HTTPRequester struct {
	baseTransport http.RoundTripper
	tracer        trace.Tracer
	propagator    propagation.TextMapPropagator
	metrics       *requestMetrics
	instruments   *otelInstruments
	newRequestID  func() string
	maxBodySize   int64

	mu       sync.Mutex
	clients  map[string]*http.Client
	limiters map[string]*rate.Limiter
}

type RequesterOption func(*HTTPRequester) error

// WithTransport replaces the base round tripper; TLS and proxy settings from
// the request configuration are then the caller's responsibility.
func WithTransport(transport http.RoundTripper) RequesterOption {
	return func(r *HTTPRequester) error {
		r.baseTransport = transport
		return nil
	}
}

func WithMetrics(registerer prometheus.Registerer) RequesterOption {
	return func(r *HTTPRequester) error {
		metrics, err := newRequestMetrics(registerer)
		if err != nil {
			return err
		}
		r.metrics = metrics
		return nil
	}
}

// WithMeterProvider records request counts and latency as OpenTelemetry
// instruments. The global meter provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) RequesterOption {
	return func(r *HTTPRequester) error {
		instruments, err := newOtelInstruments(provider)
		if err != nil {
			return err
		}
		r.instruments = instruments
		return nil
	}
}

func WithTracerProvider(provider trace.TracerProvider) RequesterOption {
	return func(r *HTTPRequester) error {
		if provider != nil {
			r.tracer = provider.Tracer(tracerName)
		}
		return nil
	}
}

func WithRequestIDGenerator(generator func() string) RequesterOption {
	return func(r *HTTPRequester) error {
		if generator != nil {
			r.newRequestID = generator
		}
		return nil
	}
}

// WithMaxResponseBodySize caps how many bytes of a response body are read.
// Larger bodies fail with a transport error rather than being cut short.
func WithMaxResponseBodySize(limit int64) RequesterOption {
	return func(r *HTTPRequester) error {
		if limit <= 0 {
			return validationError("max response body size must be positive", nil)
		}
		r.maxBodySize = limit
		return nil
	}
}

func NewHTTPRequester(opts ...RequesterOption) (*HTTPRequester, error) {
	requester := &HTTPRequester{
		tracer:       otel.Tracer(tracerName),
		propagator:   otel.GetTextMapPropagator(),
		newRequestID: uuid.NewString,
		maxBodySize:  maxResponseBodySize,
		clients:      map[string]*http.Client{},
		limiters:     map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(requester); err != nil {
			return nil, err
		}
	}
	if requester.instruments == nil {
		instruments, err := newOtelInstruments(otel.GetMeterProvider())
		if err != nil {
			return nil, err
		}
		requester.instruments = instruments
	}
	return requester, nil
}

func (r *HTTPRequester) Do(ctx context.Context, request server.Request) (*server.Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(request.Method))
	if method == "" {
		return nil, validationError("request method is required", nil)
	}
	request.Method = method

	ctx, span := r.tracer.Start(ctx, "HTTPRequester.Do", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("cloudstore.path", request.Path),
	)

	started := time.Now()
	response, err := r.execute(ctx, request)
	status := faults.StatusCode(err)
	if response != nil {
		status = response.StatusCode
	}
	r.instruments.record(ctx, method, status, time.Since(started))
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return response, nil
}

func (r *HTTPRequester) execute(ctx context.Context, request server.Request) (*server.Response, error) {
	if err := config.Validate(request.Config); err != nil {
		return nil, err
	}

	if request.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Config.Timeout)
		defer cancel()
	}

	if err := r.wait(ctx, request.Config); err != nil {
		return nil, transportError("request rate limiter wait failed", err)
	}

	client, err := r.clientFor(request.Config)
	if err != nil {
		return nil, err
	}

	httpRequest, err := r.newRequest(ctx, request)
	if err != nil {
		return nil, err
	}

	httpResponse, err := r.doRequest(ctx, client, httpRequest)
	if err != nil {
		return nil, transportError("remote request failed", err)
	}
	defer httpResponse.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, r.maxBodySize+1))
	if err != nil {
		return nil, transportError("failed to read remote response body", err)
	}
	if int64(len(body)) > r.maxBodySize {
		return nil, transportError(fmt.Sprintf("remote response body exceeds %d bytes", r.maxBodySize), nil)
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		return nil, faults.NewStatusError(httpResponse.StatusCode, body)
	}

	return &server.Response{
		StatusCode: httpResponse.StatusCode,
		Header:     httpResponse.Header.Clone(),
		Body:       body,
	}, nil
}

func (r *HTTPRequester) wait(ctx context.Context, cfg config.Config) error {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}

	key := cfg.BaseURL
	r.mu.Lock()
	limiter, ok := r.limiters[key]
	if !ok || limiter.Limit() != rate.Limit(cfg.RequestsPerSecond) {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
		r.limiters[key] = limiter
	}
	r.mu.Unlock()

	return limiter.Wait(ctx)
}
