package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DownloadTarget joins dir with a file name reported by the server. Names
// that are not a single path element, or that resolve outside dir through an
// existing symlink, are rejected.
func DownloadTarget(dir string, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ValidationError("remote file name "+quoteName(name)+" cannot be used as a local file name", nil)
	}

	root, err := resolveExistingPrefix(dir)
	if err != nil {
		return "", ValidationError("failed to resolve download directory "+dir, err)
	}
	target, err := resolveExistingPrefix(filepath.Join(dir, name))
	if err != nil {
		return "", ValidationError("failed to resolve download target", err)
	}
	if !isUnder(root, target) {
		return "", ValidationError("download target for "+quoteName(name)+" escapes "+dir, nil)
	}
	return filepath.Join(dir, name), nil
}

// resolveExistingPrefix evaluates symlinks on the longest existing prefix of
// path and appends the missing suffix unchanged.
func resolveExistingPrefix(path string) (string, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	existing := absolute
	var missing []string
	for {
		_, err := os.Lstat(existing)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		missing = append([]string{filepath.Base(existing)}, missing...)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, missing...)...), nil
}

func isUnder(root string, candidate string) bool {
	relative, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return relative != ".." && !strings.HasPrefix(relative, ".."+string(filepath.Separator))
}

func quoteName(name string) string {
	return `"` + name + `"`
}
