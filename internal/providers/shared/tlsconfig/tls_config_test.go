package tlsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
)

func TestBuildTLSConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil_settings", func(t *testing.T) {
		t.Parallel()

		tlsConfig, err := BuildTLSConfig(nil, "tls")
		if err != nil || tlsConfig != nil {
			t.Fatalf("expected nil config, got %#v err=%v", tlsConfig, err)
		}
	})

	t.Run("insecure_skip_verify", func(t *testing.T) {
		t.Parallel()

		tlsConfig, err := BuildTLSConfig(&config.TLS{InsecureSkipVerify: true}, "tls")
		if err != nil {
			t.Fatalf("BuildTLSConfig returned error: %v", err)
		}
		if !tlsConfig.InsecureSkipVerify {
			t.Fatal("expected insecure skip verify to be set")
		}
	})

	t.Run("partial_client_pair", func(t *testing.T) {
		t.Parallel()

		_, err := BuildTLSConfig(&config.TLS{ClientCertFile: "cert.pem"}, "tls")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("invalid_ca_pem", func(t *testing.T) {
		t.Parallel()

		caFile := filepath.Join(t.TempDir(), "ca.pem")
		if err := os.WriteFile(caFile, []byte("not a certificate"), 0o600); err != nil {
			t.Fatalf("write ca file: %v", err)
		}

		_, err := BuildTLSConfig(&config.TLS{CACertFile: caFile}, "tls")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
