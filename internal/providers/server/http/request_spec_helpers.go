package http

import (
	"net/url"
	"strings"
)

func normalizeRequestPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if trimmed != "/" {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	return trimmed
}

// joinBaseAndRequestPath concatenates escaped path segments with single
// slashes. Segments are kept verbatim; dot segments are rejected instead of
// being resolved.
func joinBaseAndRequestPath(basePath string, segments ...string) (string, error) {
	parts := make([]string, 0, 8)
	for _, value := range append([]string{basePath}, segments...) {
		for _, part := range strings.Split(strings.TrimSpace(value), "/") {
			if part == "" {
				continue
			}
			decoded, err := url.PathUnescape(part)
			if err != nil {
				return "", validationError("request path contains an invalid escape", err)
			}
			if decoded == "." || decoded == ".." {
				return "", validationError("request path must not contain dot segments", nil)
			}
			parts = append(parts, part)
		}
	}
	return "/" + strings.Join(parts, "/"), nil
}
