package resource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/crmarques/cloudstore/server"
)

// All lists resources of T's kind.
func All[T Object](ctx context.Context, opts ...Option) (*Collection, error) {
	return list(ctx, kindOf[T](), buildOptions(opts))
}

// Get retrieves one resource of T's kind by id.
func Get[T Object](ctx context.Context, id string, opts ...Option) (T, error) {
	var zero T
	object, err := retrieve(ctx, kindOf[T](), id, buildOptions(opts))
	if err != nil {
		return zero, err
	}
	return asKind[T](object)
}

// Create posts fields to T's collection and returns the created resource.
func Create[T Object](ctx context.Context, fields map[string]any, opts ...Option) (T, error) {
	var zero T
	object, err := create(ctx, kindOf[T](), fields, buildOptions(opts))
	if err != nil {
		return zero, err
	}
	return asKind[T](object)
}

func kindOf[T Object]() *Kind {
	var zero T
	return zero.Kind()
}

func asKind[T Object](value any) (T, error) {
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, constructionError(fmt.Sprintf("response converted to %T, expected %T", value, zero), nil)
	}
	return typed, nil
}

func list(ctx context.Context, kind *Kind, o options) (*Collection, error) {
	if !kind.Supports(CapList) {
		return nil, unsupported(kind, "listed")
	}

	b := o.binding()
	listPath, err := kind.ListPath(b.parent)
	if err != nil {
		return nil, err
	}

	payload, err := doJSON(ctx, b, server.Request{
		Method: http.MethodGet,
		Path:   listPath,
		Query:  o.params,
	})
	if err != nil {
		return nil, err
	}
	return newCollection(kind, payload, b)
}

func retrieve(ctx context.Context, kind *Kind, id string, o options) (Object, error) {
	if !kind.Supports(CapRetrieve) {
		return nil, unsupported(kind, "retrieved")
	}

	if id == "" {
		id = kind.DefaultID
	}
	var rawID any
	if id != "" {
		rawID = id
	}
	r, err := newResource(kind, rawID, o.binding())
	if err != nil {
		return nil, err
	}
	detailPath, err := r.DetailPath()
	if err != nil {
		return nil, err
	}

	payload, err := doJSON(ctx, r.binding(), server.Request{
		Method: http.MethodGet,
		Path:   detailPath,
		Query:  o.params,
	})
	if err != nil {
		return nil, err
	}
	if err := r.populateFromResponse(payload); err != nil {
		return nil, err
	}
	return kind.newObject(r), nil
}

func create(ctx context.Context, kind *Kind, fields map[string]any, o options) (any, error) {
	if !kind.Supports(CapCreate) {
		return nil, unsupported(kind, "created")
	}

	b := o.binding()
	listPath, err := kind.ListPath(b.parent)
	if err != nil {
		return nil, err
	}

	body := map[string]any{}
	for key, value := range fields {
		body[key] = serializeValue(encodeField(key, value))
	}

	payload, err := doJSON(ctx, b, server.Request{
		Method: http.MethodPost,
		Path:   listPath,
		Query:  o.params,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return createFromData(kind, payload, b)
}

// save sends the fields changed since the last population. An empty diff is
// still sent.
func (r *Resource) save(ctx context.Context) error {
	if !r.Kind().Supports(CapUpdate) {
		return unsupported(r.Kind(), "updated")
	}
	detailPath, err := r.DetailPath()
	if err != nil {
		return err
	}

	payload, err := doJSON(ctx, r.binding(), server.Request{
		Method: http.MethodPatch,
		Path:   detailPath,
		Body:   r.Diff(),
	})
	if err != nil {
		return err
	}
	return r.populateFromResponse(payload)
}

func (r *Resource) remove(ctx context.Context, query url.Values) error {
	if !r.Kind().Supports(CapDelete) {
		return unsupported(r.Kind(), "deleted")
	}
	detailPath, err := r.DetailPath()
	if err != nil {
		return err
	}

	if _, err := do(ctx, r.binding(), server.Request{
		Method: http.MethodDelete,
		Path:   detailPath,
		Query:  query,
	}); err != nil {
		return err
	}
	return r.Populate(map[string]any{})
}

func (r *Resource) populateFromResponse(payload any) error {
	if payload == nil {
		return r.Populate(map[string]any{})
	}
	data, ok := payload.(map[string]any)
	if !ok {
		return constructionError(fmt.Sprintf("%s response must be a JSON object, got %T", r.Kind().Name, payload), nil)
	}
	return r.Populate(data)
}

func do(ctx context.Context, b binding, request server.Request) (*server.Response, error) {
	if b.requester == nil {
		return nil, preconditionError("no requester is configured for this resource")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	request.Config = b.config.Clone()
	return b.requester.Do(ctx, request)
}

func doJSON(ctx context.Context, b binding, request server.Request) (any, error) {
	response, err := do(ctx, b, request)
	if err != nil {
		return nil, err
	}
	return response.JSON()
}

func unsupported(kind *Kind, verb string) error {
	return preconditionError(fmt.Sprintf("%s resources cannot be %s", kind.String(), verb))
}
