package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
)

var _ config.ContextService = (*FileContextService)(nil)

type FileContextService struct {
	contextCatalogPath string
	lookupEnv          func(string) (string, bool)
}

type Option func(*FileContextService)

// WithEnvLookup replaces os.LookupEnv when applying CLOUDSTORE_* overrides.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(s *FileContextService) {
		if s == nil {
			return
		}
		s.lookupEnv = lookup
	}
}

func NewFileContextService(path string, opts ...Option) *FileContextService {
	service := &FileContextService{contextCatalogPath: path, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(service)
	}
	return service
}

func (m *FileContextService) Upsert(_ context.Context, cfg config.Context) error {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return validationError("context name must not be empty", nil)
	}
	if err := config.Validate(config.Merge(config.Default(), cfg.Config)); err != nil {
		return err
	}

	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if idx := findContextIndex(contextCatalog.Contexts, cfg.Name); idx >= 0 {
		contextCatalog.Contexts[idx] = cfg
	} else {
		contextCatalog.Contexts = append(contextCatalog.Contexts, cfg)
	}
	if contextCatalog.CurrentCtx == "" {
		contextCatalog.CurrentCtx = cfg.Name
	}

	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) Delete(_ context.Context, name string) error {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	idx := findContextIndex(contextCatalog.Contexts, name)
	if idx < 0 {
		return notFoundError(fmt.Sprintf("context %q not found", name))
	}

	contextCatalog.Contexts = append(contextCatalog.Contexts[:idx], contextCatalog.Contexts[idx+1:]...)

	if contextCatalog.CurrentCtx == name {
		if len(contextCatalog.Contexts) == 0 {
			contextCatalog.CurrentCtx = ""
		} else {
			contextCatalog.CurrentCtx = contextCatalog.Contexts[0].Name
		}
	}

	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) List(_ context.Context) ([]config.Context, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return nil, err
	}

	contexts := make([]config.Context, len(contextCatalog.Contexts))
	copy(contexts, contextCatalog.Contexts)
	return contexts, nil
}

func (m *FileContextService) SetCurrent(_ context.Context, name string) error {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return err
	}

	if findContextIndex(contextCatalog.Contexts, name) < 0 {
		return notFoundError(fmt.Sprintf("context %q not found", name))
	}

	contextCatalog.CurrentCtx = name
	return m.saveCatalog(contextCatalog)
}

func (m *FileContextService) GetCurrent(_ context.Context) (config.Context, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Context{}, err
	}
	if contextCatalog.CurrentCtx == "" {
		return config.Context{}, notFoundError("current context not set")
	}

	idx := findContextIndex(contextCatalog.Contexts, contextCatalog.CurrentCtx)
	if idx < 0 {
		return config.Context{}, notFoundError(fmt.Sprintf("current context %q not found", contextCatalog.CurrentCtx))
	}

	return contextCatalog.Contexts[idx], nil
}

// ResolveContext tolerates a missing catalog so that environment variables
// alone are enough to configure the client.
func (m *FileContextService) ResolveContext(_ context.Context, selection config.ContextSelection) (config.Config, error) {
	contextCatalog, err := m.loadCatalog()
	if err != nil {
		return config.Config{}, err
	}

	resolved := config.Default()

	effectiveName := selection.Name
	if effectiveName == "" {
		effectiveName = contextCatalog.CurrentCtx
	}
	if effectiveName != "" {
		idx := findContextIndex(contextCatalog.Contexts, effectiveName)
		if idx < 0 {
			return config.Config{}, notFoundError(fmt.Sprintf("context %q not found", effectiveName))
		}
		resolved = config.Merge(resolved, contextCatalog.Contexts[idx].Config)
	}

	resolved, err = config.ApplyEnvOverrides(resolved, m.lookupEnv)
	if err != nil {
		return config.Config{}, err
	}
	resolved = config.Merge(resolved, selection.Overrides)

	if err := config.Validate(resolved); err != nil {
		return config.Config{}, err
	}
	return resolved, nil
}

func (m *FileContextService) saveCatalog(contextCatalog config.Catalog) error {
	if err := validateCatalog(contextCatalog); err != nil {
		return err
	}

	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return err
	}

	encoded, err := encodeCatalog(contextCatalog)
	if err != nil {
		return internalError("failed to encode context catalog", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolvedPath), 0o755); err != nil {
		return internalError("failed to create context config directory", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(resolvedPath), ".cloudstore-config-*")
	if err != nil {
		return internalError("failed to create temporary context catalog file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(encoded); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write context catalog", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to set context catalog permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize context catalog", err)
	}

	if err := os.Rename(tempPath, resolvedPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace context catalog", err)
	}

	return nil
}

func (m *FileContextService) loadCatalog() (config.Catalog, error) {
	resolvedPath, err := m.resolveCatalogPath()
	if err != nil {
		return config.Catalog{}, err
	}

	contextCatalog, err := decodeCatalogFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Catalog{}, nil
		}
		return config.Catalog{}, err
	}

	if err := validateCatalog(contextCatalog); err != nil {
		return config.Catalog{}, err
	}

	return contextCatalog, nil
}

func (m *FileContextService) resolveCatalogPath() (string, error) {
	return resolveCatalogPath(m.contextCatalogPath, m.lookupEnv)
}

func validateCatalog(contextCatalog config.Catalog) error {
	seen := make(map[string]struct{}, len(contextCatalog.Contexts))
	for _, item := range contextCatalog.Contexts {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return validationError("context name must not be empty", nil)
		}
		if _, exists := seen[name]; exists {
			return validationError(fmt.Sprintf("context %q is defined more than once", name), nil)
		}
		seen[name] = struct{}{}
	}

	if contextCatalog.CurrentCtx != "" {
		if _, exists := seen[contextCatalog.CurrentCtx]; !exists {
			return validationError(fmt.Sprintf("current-ctx %q does not match any context", contextCatalog.CurrentCtx), nil)
		}
	}
	return nil
}

func findContextIndex(contexts []config.Context, name string) int {
	for idx, item := range contexts {
		if item.Name == name {
			return idx
		}
	}
	return -1
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func notFoundError(message string) error {
	return faults.NewTypedError(faults.NotFoundError, message, nil)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
