package config

import "context"

type ContextCatalogWriter interface {
	Upsert(ctx context.Context, cfg Context) error
	Delete(ctx context.Context, name string) error
	SetCurrent(ctx context.Context, name string) error
}

type ContextCatalogReader interface {
	List(ctx context.Context) ([]Context, error)
	GetCurrent(ctx context.Context) (Context, error)
}

type ContextResolver interface {
	// ResolveContext returns the effective configuration: defaults, then the
	// selected context, then environment overrides, then selection overrides.
	ResolveContext(ctx context.Context, selection ContextSelection) (Config, error)
}

type ContextService interface {
	ContextCatalogWriter
	ContextCatalogReader
	ContextResolver
}
