package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/crmarques/cloudstore/faults"
)

// Merge layers overrides onto base. Non-zero override fields win and header
// maps are combined into a fresh map, so neither input is aliased.
func Merge(base Config, overrides ...Config) Config {
	merged := base.Clone()
	for _, override := range overrides {
		if value := strings.TrimSpace(override.BaseURL); value != "" {
			merged.BaseURL = value
		}
		if value := strings.TrimSpace(override.APIVersion); value != "" {
			merged.APIVersion = value
		}
		if override.APIKey != "" {
			merged.APIKey = override.APIKey
			merged.BearerToken = ""
		}
		if override.BearerToken != "" {
			merged.BearerToken = override.BearerToken
			merged.APIKey = ""
		}
		if len(override.DefaultHeaders) > 0 {
			headers := make(map[string]string, len(merged.DefaultHeaders)+len(override.DefaultHeaders))
			for key, value := range merged.DefaultHeaders {
				headers[key] = value
			}
			for key, value := range override.DefaultHeaders {
				headers[key] = value
			}
			merged.DefaultHeaders = headers
		}
		if override.Timeout > 0 {
			merged.Timeout = override.Timeout
		}
		if value := strings.TrimSpace(override.UserAgent); value != "" {
			merged.UserAgent = value
		}
		if value := strings.TrimSpace(override.ProxyURL); value != "" {
			merged.ProxyURL = value
		}
		if override.RequestsPerSecond > 0 {
			merged.RequestsPerSecond = override.RequestsPerSecond
		}
		if override.TLS != nil {
			tlsCopy := *override.TLS
			merged.TLS = &tlsCopy
		}
	}
	return merged
}

func Validate(cfg Config) error {
	value := strings.TrimSpace(cfg.BaseURL)
	if value == "" {
		return validationError("base-url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return validationError("base-url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return validationError("base-url must use http or https", nil)
	}
	if parsed.Host == "" {
		return validationError("base-url host is required", nil)
	}

	if _, err := APIPathPrefix(cfg); err != nil {
		return err
	}

	if cfg.APIKey != "" && cfg.BearerToken != "" {
		return validationError("api-key and bearer-token are mutually exclusive", nil)
	}
	if cfg.Timeout < 0 {
		return validationError("timeout must not be negative", nil)
	}
	if cfg.RequestsPerSecond < 0 {
		return validationError("requests-per-second must not be negative", nil)
	}

	if proxyURL := strings.TrimSpace(cfg.ProxyURL); proxyURL != "" {
		parsedProxy, err := url.Parse(proxyURL)
		if err != nil || parsedProxy.Host == "" {
			return validationError("proxy-url is invalid", err)
		}
	}

	if cfg.TLS != nil {
		if (strings.TrimSpace(cfg.TLS.ClientCertFile) == "") != (strings.TrimSpace(cfg.TLS.ClientKeyFile) == "") {
			return validationError("tls requires both client-cert-file and client-key-file", nil)
		}
	}

	return nil
}

// APIPathPrefix returns the versioned path prefix, e.g. "/v1".
func APIPathPrefix(cfg Config) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(cfg.APIVersion), "v")
	if raw == "" {
		raw = DefaultAPIVersion
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return "", validationError(fmt.Sprintf("api-version %q is invalid", cfg.APIVersion), err)
	}
	return fmt.Sprintf("/v%d", version.Major()), nil
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}
