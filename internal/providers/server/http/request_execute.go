package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/propagation"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/server"
)

func (r *HTTPRequester) newRequest(ctx context.Context, request server.Request) (*http.Request, error) {
	targetURL, err := resolveRequestURL(request.Config, request.Path, request.Query)
	if err != nil {
		return nil, err
	}

	requestBody, contentType, err := encodeRequestBody(request)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(requestBody) > 0 {
		bodyReader = bytes.NewReader(requestBody)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.Method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	if len(request.Config.DefaultHeaders) > 0 {
		keys := make([]string, 0, len(request.Config.DefaultHeaders))
		for key := range request.Config.DefaultHeaders {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			httpRequest.Header.Set(key, request.Config.DefaultHeaders[key])
		}
	}

	httpRequest.Header.Set("Accept", defaultMediaType)
	if contentType != "" && bodyReader != nil {
		httpRequest.Header.Set("Content-Type", contentType)
	}
	if userAgent := strings.TrimSpace(request.Config.UserAgent); userAgent != "" {
		httpRequest.Header.Set("User-Agent", userAgent)
	}
	httpRequest.Header.Set(requestIDHeader, r.newRequestID())
	applyAuth(request.Config, httpRequest)
	r.propagator.Inject(ctx, propagation.HeaderCarrier(httpRequest.Header))

	return httpRequest, nil
}

func resolveRequestURL(cfg config.Config, requestPath string, query url.Values) (string, error) {
	if parsed, err := url.Parse(strings.TrimSpace(requestPath)); err == nil && parsed.Scheme != "" {
		return "", validationError("request path must be relative to base-url", nil)
	}
	if normalizeRequestPath(requestPath) == "" {
		return "", validationError("request path is required", nil)
	}

	baseURL, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return "", validationError("base-url is invalid", err)
	}

	prefix, err := config.APIPathPrefix(cfg)
	if err != nil {
		return "", err
	}

	escapedPath, err := joinBaseAndRequestPath(baseURL.EscapedPath(), prefix, requestPath)
	if err != nil {
		return "", err
	}
	decodedPath, err := url.PathUnescape(escapedPath)
	if err != nil {
		return "", validationError("request path contains an invalid escape", err)
	}

	target := *baseURL
	target.Path = decodedPath
	target.RawPath = escapedPath

	values := target.Query()
	for key, items := range query {
		for _, item := range items {
			values.Add(key, item)
		}
	}
	target.RawQuery = values.Encode()

	return target.String(), nil
}
