package resource

import (
	"context"
	"net/http"
	"net/url"

	"github.com/crmarques/cloudstore/server"
)

// Folder is a directory in an account's storage. A folder built without an
// id refers to the storage root.
type Folder struct {
	*Resource
}

func NewFolder(account *Account, id string, opts ...Option) (*Folder, error) {
	object, err := New(FolderKind, id, append([]Option{WithParent(account)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return asKind[*Folder](object)
}

func (*Folder) Kind() *Kind {
	return FolderKind
}

func (f *Folder) base() *Resource {
	if f == nil {
		return nil
	}
	return f.Resource
}

func (f *Folder) Save(ctx context.Context) error {
	return f.save(ctx)
}

func (f *Folder) Delete(ctx context.Context, query url.Values) error {
	return f.remove(ctx, query)
}

// Contents lists the folder's immediate children.
func (f *Folder) Contents(ctx context.Context, query url.Values) (*Collection, error) {
	detailPath, err := f.DetailPath()
	if err != nil {
		return nil, err
	}

	b := f.binding()
	payload, err := doJSON(ctx, b, server.Request{
		Method: http.MethodGet,
		Path:   detailPath + "/contents",
		Query:  query,
	})
	if err != nil {
		return nil, err
	}
	return newCollection(FolderKind, payload, b)
}

type FolderProxy struct {
	proxy *Proxy[*Folder]
}

func (p *FolderProxy) Get(ctx context.Context, id string, opts ...Option) (*Folder, error) {
	return p.proxy.get(ctx, id, opts)
}

func (p *FolderProxy) Create(ctx context.Context, fields map[string]any, opts ...Option) (*Folder, error) {
	return p.proxy.create(ctx, fields, opts)
}

func (p *FolderProxy) New(id string, opts ...Option) (*Folder, error) {
	return p.proxy.New(id, opts...)
}

func (p *FolderProxy) Parent() Object {
	return p.proxy.Parent()
}
