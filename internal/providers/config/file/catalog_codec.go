package file

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/yamlutil"
)

func decodeCatalogFile(path string) (config.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Catalog{}, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (config.Catalog, error) {
	var contextCatalog config.Catalog
	if len(bytes.TrimSpace(data)) == 0 {
		return contextCatalog, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&contextCatalog); err != nil {
		return config.Catalog{}, validationError("invalid context catalog yaml", err)
	}

	return contextCatalog, nil
}

func encodeCatalog(contextCatalog config.Catalog) ([]byte, error) {
	return yamlutil.Marshal(contextCatalog)
}

func resolveCatalogPath(explicitPath string, lookupEnv func(string) (string, bool)) (string, error) {
	path := explicitPath
	if path == "" && lookupEnv != nil {
		path, _ = lookupEnv(config.ContextFileEnvVar)
	}
	if path == "" {
		path = config.DefaultContextCatalogPath
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", internalError("failed to resolve user home directory", err)
		}
		if path == "~" {
			path = homeDir
		} else {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
		}
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("context catalog path is invalid", errors.New("resolved to current directory"))
	}

	return cleanPath, nil
}
