package config

import "time"

const (
	ContextFileEnvVar         = "CLOUDSTORE_CONFIG_FILE"
	DefaultContextCatalogPath = "~/.cloudstore/config.yaml"
	DefaultBaseURL            = "https://api.kloudless.com"
	DefaultAPIVersion         = "1"
	DefaultTimeout            = 30 * time.Second
)

// Config is the effective request configuration carried by every resource.
type Config struct {
	BaseURL           string            `yaml:"base-url,omitempty" json:"base-url,omitempty"`
	APIVersion        string            `yaml:"api-version,omitempty" json:"api-version,omitempty"`
	APIKey            string            `yaml:"api-key,omitempty" json:"api-key,omitempty"`
	BearerToken       string            `yaml:"bearer-token,omitempty" json:"bearer-token,omitempty"`
	DefaultHeaders    map[string]string `yaml:"default-headers,omitempty" json:"default-headers,omitempty"`
	Timeout           time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	UserAgent         string            `yaml:"user-agent,omitempty" json:"user-agent,omitempty"`
	ProxyURL          string            `yaml:"proxy-url,omitempty" json:"proxy-url,omitempty"`
	RequestsPerSecond float64           `yaml:"requests-per-second,omitempty" json:"requests-per-second,omitempty"`
	TLS               *TLS              `yaml:"tls,omitempty" json:"tls,omitempty"`
}

type TLS struct {
	CACertFile         string `yaml:"ca-cert-file,omitempty" json:"ca-cert-file,omitempty"`
	ClientCertFile     string `yaml:"client-cert-file,omitempty" json:"client-cert-file,omitempty"`
	ClientKeyFile      string `yaml:"client-key-file,omitempty" json:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecure-skip-verify,omitempty" json:"insecure-skip-verify,omitempty"`
}

type Catalog struct {
	Contexts   []Context `yaml:"contexts"`
	CurrentCtx string    `yaml:"current-ctx"`
}

type Context struct {
	Name   string `yaml:"name"`
	Config `yaml:",inline"`
}

type ContextSelection struct {
	Name      string
	Overrides Config
}

func Default() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		APIVersion: DefaultAPIVersion,
		Timeout:    DefaultTimeout,
	}
}

// Clone returns a deep copy so callers can keep mutating their own value.
func (c Config) Clone() Config {
	cloned := c
	cloned.DefaultHeaders = cloneStringMap(c.DefaultHeaders)
	if c.TLS != nil {
		tlsCopy := *c.TLS
		cloned.TLS = &tlsCopy
	}
	return cloned
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
