package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
)

// Requester performs exactly one round trip per call. Implementations return a
// TransportError for non-success statuses and network failures.
type Requester interface {
	Do(ctx context.Context, request Request) (*Response, error)
}

// RequesterFunc adapts a plain function to Requester.
type RequesterFunc func(ctx context.Context, request Request) (*Response, error)

func (f RequesterFunc) Do(ctx context.Context, request Request) (*Response, error) {
	return f(ctx, request)
}

// Request describes one API call relative to the configured base URL and
// API version prefix. At most one of Body, Raw, or Files is used.
type Request struct {
	Method string
	// Path is already escaped; ids are escaped once by the resource layer.
	Path   string
	Config config.Config
	Query  url.Values

	// Body is encoded as JSON.
	Body any

	// Raw is sent verbatim with RawContentType.
	Raw            []byte
	RawContentType string

	// Form and Files produce a multipart/form-data body.
	Form  map[string]string
	Files []FilePart
}

type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

func (r Request) IsMultipart() bool {
	return len(r.Files) > 0
}

type Response struct {
	StatusCode int
	Header     map[string][]string
	Body       []byte
}

// JSON decodes the body keeping numbers as json.Number. An empty body
// decodes to nil.
func (r *Response) JSON() (any, error) {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(r.Body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, faults.NewTypedError(faults.TransportError, "response body is not valid JSON", err)
	}
	return value, nil
}

// Content returns the raw body, used for binary downloads.
func (r *Response) Content() []byte {
	if r == nil {
		return nil
	}
	return r.Body
}
