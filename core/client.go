package core

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
	configfile "github.com/crmarques/cloudstore/internal/providers/config/file"
	httpserver "github.com/crmarques/cloudstore/internal/providers/server/http"
	"github.com/crmarques/cloudstore/resource"
	"github.com/crmarques/cloudstore/server"
)

type ClientOption func(*clientOptions)

type clientOptions struct {
	requester      server.Requester
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithRequester bypasses the HTTP requester entirely.
func WithRequester(requester server.Requester) ClientOption {
	return func(o *clientOptions) {
		o.requester = requester
	}
}

// WithMetricsRegisterer exports request metrics to registerer.
func WithMetricsRegisterer(registerer prometheus.Registerer) ClientOption {
	return func(o *clientOptions) {
		o.registerer = registerer
	}
}

func WithTracerProvider(provider trace.TracerProvider) ClientOption {
	return func(o *clientOptions) {
		o.tracerProvider = provider
	}
}

func WithMeterProvider(provider metric.MeterProvider) ClientOption {
	return func(o *clientOptions) {
		o.meterProvider = provider
	}
}

func NewContextService(opts BootstrapConfig) config.ContextService {
	return configfile.NewFileContextService(opts.ContextCatalogPath)
}

// NewClient resolves the selected context from the catalog and builds a
// client around it.
func NewClient(opts BootstrapConfig, selection config.ContextSelection, clientOpts ...ClientOption) (Client, error) {
	contextService := NewContextService(opts)
	resolved, err := contextService.ResolveContext(context.Background(), selection)
	if err != nil {
		return Client{}, err
	}

	client, err := NewClientFromConfig(resolved, clientOpts...)
	if err != nil {
		return Client{}, err
	}
	client.Contexts = contextService
	return client, nil
}

// NewClientFromConfig builds a client for an already resolved configuration.
func NewClientFromConfig(cfg config.Config, clientOpts ...ClientOption) (Client, error) {
	if err := config.Validate(cfg); err != nil {
		return Client{}, err
	}

	var options clientOptions
	for _, opt := range clientOpts {
		if opt != nil {
			opt(&options)
		}
	}

	requester := options.requester
	if requester == nil {
		requesterOptions := make([]httpserver.RequesterOption, 0, 3)
		if options.registerer != nil {
			requesterOptions = append(requesterOptions, httpserver.WithMetrics(options.registerer))
		}
		if options.tracerProvider != nil {
			requesterOptions = append(requesterOptions, httpserver.WithTracerProvider(options.tracerProvider))
		}
		if options.meterProvider != nil {
			requesterOptions = append(requesterOptions, httpserver.WithMeterProvider(options.meterProvider))
		}

		httpRequester, err := httpserver.NewHTTPRequester(requesterOptions...)
		if err != nil {
			return Client{}, err
		}
		requester = httpRequester
	}
	return Client{
		Config:    cfg.Clone(),
		Requester: requester,
		Accounts:  resource.NewAccountProxy(resource.WithConfig(cfg), resource.WithRequester(requester)),
	}, nil
}

// Account returns an unsynced account bound to the client.
func (c Client) Account(id string) (*resource.Account, error) {
	if c.Accounts == nil {
		return nil, faults.NewTypedError(faults.PreconditionError, "client is not initialized", nil)
	}
	return c.Accounts.New(id)
}
