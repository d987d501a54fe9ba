package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpproxy"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/internal/providers/shared/tlsconfig"
)

func (r *HTTPRequester) clientFor(cfg config.Config) (*http.Client, error) {
	key := transportKey(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client, nil
	}

	transport, err := r.buildTransport(cfg)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		transport = r.metrics.instrument(transport)
	}

	client := &http.Client{Transport: transport}
	r.clients[key] = client
	return client, nil
}

func (r *HTTPRequester) buildTransport(cfg config.Config) (http.RoundTripper, error) {
	if r.baseTransport != nil {
		return r.baseTransport, nil
	}

	tlsConfig, err := tlsconfig.BuildTLSConfig(cfg.TLS, "tls")
	if err != nil {
		return nil, err
	}

	proxyFunc, err := buildProxyFunc(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	transport.Proxy = func(request *http.Request) (*url.URL, error) {
		return proxyFunc(request.URL)
	}
	return transport, nil
}

func buildProxyFunc(proxyURL string) (func(*url.URL) (*url.URL, error), error) {
	trimmed := strings.TrimSpace(proxyURL)
	if trimmed == "" {
		return httpproxy.FromEnvironment().ProxyFunc(), nil
	}

	if _, err := url.Parse(trimmed); err != nil {
		return nil, validationError("proxy-url is invalid", err)
	}
	proxyConfig := &httpproxy.Config{
		HTTPProxy:  trimmed,
		HTTPSProxy: trimmed,
	}
	return proxyConfig.ProxyFunc(), nil
}

func transportKey(cfg config.Config) string {
	key := "proxy=" + strings.TrimSpace(cfg.ProxyURL)
	if cfg.TLS != nil {
		key += fmt.Sprintf(
			"|ca=%s|cert=%s|key=%s|insecure=%t",
			cfg.TLS.CACertFile,
			cfg.TLS.ClientCertFile,
			cfg.TLS.ClientKeyFile,
			cfg.TLS.InsecureSkipVerify,
		)
	}
	return key
}
