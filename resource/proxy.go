package resource

import (
	"context"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/server"
)

// Proxy binds a parent, configuration and requester ahead of time for calls
// against T's kind. Options given per call take precedence.
type Proxy[T Object] struct {
	parent    Object
	config    config.Config
	requester server.Requester
	registry  *Registry
}

// NewProxy snapshots the binding described by opts.
func NewProxy[T Object](opts ...Option) *Proxy[T] {
	b := buildOptions(opts).binding()
	return &Proxy[T]{
		parent:    b.parent,
		config:    b.config,
		requester: b.requester,
		registry:  b.registry,
	}
}

func (p *Proxy[T]) Kind() *Kind {
	return kindOf[T]()
}

func (p *Proxy[T]) Parent() Object {
	return p.parent
}

func (p *Proxy[T]) Config() config.Config {
	return p.config.Clone()
}

// New constructs a T with the proxy's binding.
func (p *Proxy[T]) New(id string, opts ...Option) (T, error) {
	object, err := New(p.Kind(), id, p.bind(opts)...)
	if err != nil {
		var zero T
		return zero, err
	}
	return asKind[T](object)
}

func (p *Proxy[T]) all(ctx context.Context, opts []Option) (*Collection, error) {
	return All[T](ctx, p.bind(opts)...)
}

func (p *Proxy[T]) get(ctx context.Context, id string, opts []Option) (T, error) {
	return Get[T](ctx, id, p.bind(opts)...)
}

func (p *Proxy[T]) create(ctx context.Context, fields map[string]any, opts []Option) (T, error) {
	return Create[T](ctx, fields, p.bind(opts)...)
}

func (p *Proxy[T]) bind(opts []Option) []Option {
	bound := make([]Option, 0, len(opts)+4)
	if !isNilObject(p.parent) {
		bound = append(bound, WithParent(p.parent))
	}
	bound = append(bound, WithConfig(p.config), WithRequester(p.requester), WithRegistry(p.registry))
	return append(bound, opts...)
}

// cachedProxy returns the proxy stored on r for kind, building it on first use.
func cachedProxy[P any](r *Resource, kind *Kind, build func() P) P {
	if r.proxies == nil {
		r.proxies = map[*Kind]any{}
	}
	if existing, ok := r.proxies[kind]; ok {
		if typed, ok := existing.(P); ok {
			return typed
		}
	}
	proxy := build()
	r.proxies[kind] = proxy
	return proxy
}
