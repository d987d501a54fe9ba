package resource

import (
	"net/url"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/server"
)

type Option func(*options)

type options struct {
	parent    Object
	config    *config.Config
	requester server.Requester
	registry  *Registry
	params    url.Values
}

// WithParent binds the owning resource. Configuration and requester are
// inherited from it unless given explicitly.
func WithParent(parent Object) Option {
	return func(o *options) {
		o.parent = parent
	}
}

// WithConfig sets the request configuration. The value is copied.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		cloned := cfg.Clone()
		o.config = &cloned
	}
}

func WithRequester(requester server.Requester) Option {
	return func(o *options) {
		o.requester = requester
	}
}

// WithRegistry replaces DefaultRegistry for discriminator dispatch.
func WithRegistry(registry *Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithParams adds query parameters to the request.
func WithParams(params url.Values) Option {
	return func(o *options) {
		if o.params == nil {
			o.params = url.Values{}
		}
		for key, values := range params {
			o.params[key] = append(o.params[key], values...)
		}
	}
}

func WithParam(key string, value string) Option {
	return func(o *options) {
		if o.params == nil {
			o.params = url.Values{}
		}
		o.params.Add(key, value)
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	return o
}

// binding is what a resource inherits from the call that created it.
type binding struct {
	parent    Object
	config    config.Config
	requester server.Requester
	registry  *Registry
}

func (o options) binding() binding {
	b := binding{
		parent:    o.parent,
		config:    config.Default(),
		requester: o.requester,
		registry:  o.registry,
	}

	if !isNilObject(o.parent) {
		parent := o.parent.base()
		b.config = parent.config
		if b.requester == nil {
			b.requester = parent.requester
		}
		if b.registry == nil {
			b.registry = parent.registry
		}
	}
	if o.config != nil {
		b.config = config.Merge(config.Default(), *o.config)
	}
	if b.registry == nil {
		b.registry = DefaultRegistry
	}
	b.config = b.config.Clone()
	return b
}
