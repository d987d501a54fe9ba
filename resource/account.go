package resource

import (
	"context"
	"net/url"

	"github.com/crmarques/cloudstore/config"
)

// Account is a connected storage account. Files, folders and links live
// under it.
type Account struct {
	*Resource
}

func NewAccount(id string, opts ...Option) (*Account, error) {
	object, err := New(AccountKind, id, opts...)
	if err != nil {
		return nil, err
	}
	return asKind[*Account](object)
}

func (*Account) Kind() *Kind {
	return AccountKind
}

func (a *Account) base() *Resource {
	if a == nil {
		return nil
	}
	return a.Resource
}

// Delete removes the account remotely and clears every local field.
func (a *Account) Delete(ctx context.Context, query url.Values) error {
	return a.remove(ctx, query)
}

// Files returns the account's file proxy. Repeated calls return the same
// proxy.
func (a *Account) Files() *FileProxy {
	return cachedProxy(a.Resource, FileKind, func() *FileProxy {
		return &FileProxy{proxy: childProxy[*File](a)}
	})
}

func (a *Account) Folders() *FolderProxy {
	return cachedProxy(a.Resource, FolderKind, func() *FolderProxy {
		return &FolderProxy{proxy: childProxy[*Folder](a)}
	})
}

func (a *Account) Links() *LinkProxy {
	return cachedProxy(a.Resource, LinkKind, func() *LinkProxy {
		return &LinkProxy{proxy: childProxy[*Link](a)}
	})
}

func childProxy[T Object](a *Account) *Proxy[T] {
	return NewProxy[T](
		WithParent(a),
		WithConfig(a.config),
		WithRequester(a.requester),
		WithRegistry(a.registry),
	)
}

// AccountProxy is the root accessor for accounts.
type AccountProxy struct {
	proxy *Proxy[*Account]
}

func NewAccountProxy(opts ...Option) *AccountProxy {
	return &AccountProxy{proxy: NewProxy[*Account](opts...)}
}

func (p *AccountProxy) All(ctx context.Context, opts ...Option) (*Collection, error) {
	return p.proxy.all(ctx, opts)
}

func (p *AccountProxy) Get(ctx context.Context, id string, opts ...Option) (*Account, error) {
	return p.proxy.get(ctx, id, opts)
}

func (p *AccountProxy) New(id string, opts ...Option) (*Account, error) {
	return p.proxy.New(id, opts...)
}

func (p *AccountProxy) Config() config.Config {
	return p.proxy.Config()
}
