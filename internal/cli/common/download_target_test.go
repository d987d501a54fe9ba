package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/cloudstore/faults"
)

func TestDownloadTarget(t *testing.T) {
	t.Parallel()

	t.Run("joins_plain_name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target, err := DownloadTarget(dir, "report.pdf")
		if err != nil {
			t.Fatalf("DownloadTarget returned error: %v", err)
		}
		if target != filepath.Join(dir, "report.pdf") {
			t.Fatalf("unexpected target %q", target)
		}
	})

	t.Run("rejects_names_that_are_not_one_element", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"", ".", "..", "../escape.txt", "nested/file.txt", `..\escape.txt`} {
			_, err := DownloadTarget(dir, name)
			if !faults.IsCategory(err, faults.ValidationError) {
				t.Fatalf("expected validation error for %q, got %v", name, err)
			}
		}
	})

	t.Run("rejects_symlink_pointing_outside", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		outside := filepath.Join(t.TempDir(), "victim.txt")
		if err := os.WriteFile(outside, []byte("keep"), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := os.Symlink(outside, filepath.Join(dir, "report.pdf")); err != nil {
			t.Fatalf("failed to create symlink: %v", err)
		}

		_, err := DownloadTarget(dir, "report.pdf")
		if !faults.IsCategory(err, faults.ValidationError) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("allows_missing_directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "later")
		if _, err := DownloadTarget(dir, "report.pdf"); err != nil {
			t.Fatalf("DownloadTarget returned error: %v", err)
		}
	})
}
