package resource

import (
	"context"
	"net/url"
)

// Link is a shareable link to a file.
type Link struct {
	*Resource
}

func NewLink(account *Account, id string, opts ...Option) (*Link, error) {
	object, err := New(LinkKind, id, append([]Option{WithParent(account)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return asKind[*Link](object)
}

func (*Link) Kind() *Kind {
	return LinkKind
}

func (l *Link) base() *Resource {
	if l == nil {
		return nil
	}
	return l.Resource
}

func (l *Link) Save(ctx context.Context) error {
	return l.save(ctx)
}

func (l *Link) Delete(ctx context.Context, query url.Values) error {
	return l.remove(ctx, query)
}

type LinkProxy struct {
	proxy *Proxy[*Link]
}

func (p *LinkProxy) All(ctx context.Context, opts ...Option) (*Collection, error) {
	return p.proxy.all(ctx, opts)
}

func (p *LinkProxy) Get(ctx context.Context, id string, opts ...Option) (*Link, error) {
	return p.proxy.get(ctx, id, opts)
}

func (p *LinkProxy) Create(ctx context.Context, fields map[string]any, opts ...Option) (*Link, error) {
	return p.proxy.create(ctx, fields, opts)
}

func (p *LinkProxy) New(id string, opts ...Option) (*Link, error) {
	return p.proxy.New(id, opts...)
}

func (p *LinkProxy) Parent() Object {
	return p.proxy.Parent()
}
