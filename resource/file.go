package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/crmarques/cloudstore/server"
)

const defaultUploadParentID = "root"

// File is a stored file. Its bytes live under a path distinct from its
// metadata.
type File struct {
	*Resource
}

func NewFile(account *Account, id string, opts ...Option) (*File, error) {
	object, err := New(FileKind, id, append([]Option{WithParent(account)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return asKind[*File](object)
}

func (*File) Kind() *Kind {
	return FileKind
}

func (f *File) base() *Resource {
	if f == nil {
		return nil
	}
	return f.Resource
}

func (f *File) Save(ctx context.Context) error {
	return f.save(ctx)
}

// Delete removes the file; pass permanent=true to skip the provider's trash.
func (f *File) Delete(ctx context.Context, query url.Values) error {
	return f.remove(ctx, query)
}

// Contents downloads the file's bytes.
func (f *File) Contents(ctx context.Context) ([]byte, error) {
	detailPath, err := f.DetailPath()
	if err != nil {
		return nil, err
	}

	response, err := do(ctx, f.binding(), server.Request{
		Method: http.MethodGet,
		Path:   detailPath + "/contents",
	})
	if err != nil {
		return nil, err
	}
	return response.Content(), nil
}

// UpdateContents replaces the file's bytes and repopulates it from the
// response.
func (f *File) UpdateContents(ctx context.Context, data []byte) error {
	detailPath, err := f.DetailPath()
	if err != nil {
		return err
	}

	payload, err := doJSON(ctx, f.binding(), server.Request{
		Method: http.MethodPut,
		Path:   detailPath,
		Raw:    append([]byte{}, data...),
	})
	if err != nil {
		return err
	}
	return f.populateFromResponse(payload)
}

// Copy duplicates the file into the folder parentID, optionally renamed.
func (f *File) Copy(ctx context.Context, parentID string, name string) (*File, error) {
	detailPath, err := f.DetailPath()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(parentID) == "" {
		return nil, validationError("copy requires a destination parent id", nil)
	}

	body := map[string]any{"parent_id": parentID}
	if name != "" {
		body["name"] = name
	}

	b := f.binding()
	payload, err := doJSON(ctx, b, server.Request{
		Method: http.MethodPost,
		Path:   detailPath + "/copy",
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	converted, err := createFromData(FileKind, payload, b)
	if err != nil {
		return nil, err
	}
	return asKind[*File](converted)
}

// FileUpload describes a new file. ParentID defaults to the storage root.
type FileUpload struct {
	Name        string
	ParentID    string
	Data        []byte
	ContentType string
	Overwrite   bool
}

func upload(ctx context.Context, input FileUpload, o options) (*File, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationError("upload requires a file name", nil)
	}
	parentID := input.ParentID
	if parentID == "" {
		parentID = defaultUploadParentID
	}

	b := o.binding()
	listPath, err := FileKind.ListPath(b.parent)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(map[string]string{
		"name":      input.Name,
		"parent_id": parentID,
	})
	if err != nil {
		return nil, validationError("failed to encode upload metadata", err)
	}

	query := url.Values{}
	for key, values := range o.params {
		query[key] = append([]string(nil), values...)
	}
	query.Set("overwrite", strconv.FormatBool(input.Overwrite))

	payload, err := doJSON(ctx, b, server.Request{
		Method: http.MethodPost,
		Path:   listPath,
		Query:  query,
		Form:   map[string]string{"metadata": string(metadata)},
		Files: []server.FilePart{{
			Field:       "file",
			FileName:    input.Name,
			ContentType: input.ContentType,
			Content:     bytes.NewReader(input.Data),
		}},
	})
	if err != nil {
		return nil, err
	}

	converted, err := createFromData(FileKind, payload, b)
	if err != nil {
		return nil, err
	}
	return asKind[*File](converted)
}

type FileProxy struct {
	proxy *Proxy[*File]
}

func (p *FileProxy) Get(ctx context.Context, id string, opts ...Option) (*File, error) {
	return p.proxy.get(ctx, id, opts)
}

// Upload creates a file from raw bytes under the proxy's account.
func (p *FileProxy) Upload(ctx context.Context, input FileUpload, opts ...Option) (*File, error) {
	return upload(ctx, input, buildOptions(p.proxy.bind(opts)))
}

func (p *FileProxy) New(id string, opts ...Option) (*File, error) {
	return p.proxy.New(id, opts...)
}

func (p *FileProxy) Parent() Object {
	return p.proxy.Parent()
}

// Upload creates a file without a proxy; WithParent must name the account.
func Upload(ctx context.Context, input FileUpload, opts ...Option) (*File, error) {
	return upload(ctx, input, buildOptions(opts))
}
