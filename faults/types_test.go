package faults

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := NewTypedError(PreconditionError, "id is unknown", nil)
	if !IsCategory(err, PreconditionError) {
		t.Fatalf("expected precondition category match")
	}
	if IsCategory(err, FieldAccessError) {
		t.Fatalf("expected field-access category mismatch")
	}

	wrapped := errors.New("wrap: " + err.Error())
	if IsCategory(wrapped, PreconditionError) {
		t.Fatalf("plain wrapped string error must not match typed category")
	}

	joined := errors.Join(err, errors.New("other"))
	if !IsCategory(joined, PreconditionError) {
		t.Fatalf("expected category match through errors.Join")
	}
}

func TestNewStatusError(t *testing.T) {
	t.Parallel()

	t.Run("keeps_status_and_body", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"error_code":"not_found"}`)
		err := NewStatusError(404, body)
		body[0] = 'x'

		if !IsCategory(err, TransportError) {
			t.Fatalf("expected transport category, got %v", err.Category)
		}
		if err.StatusCode != 404 {
			t.Fatalf("expected status 404, got %d", err.StatusCode)
		}
		if string(err.Body) != `{"error_code":"not_found"}` {
			t.Fatalf("expected verbatim body, got %q", err.Body)
		}
		if !strings.Contains(err.Error(), "status 404") {
			t.Fatalf("expected status in message, got %q", err.Error())
		}
	})

	t.Run("status_code_through_wrapping", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("get file: %w", NewStatusError(403, nil))
		if got := StatusCode(err); got != 403 {
			t.Fatalf("expected 403, got %d", got)
		}
		if got := StatusCode(errors.New("plain")); got != 0 {
			t.Fatalf("expected 0 for untyped error, got %d", got)
		}
	})

	t.Run("empty_body_summary", func(t *testing.T) {
		t.Parallel()

		err := NewStatusError(500, nil)
		if !strings.Contains(err.Error(), "<empty>") {
			t.Fatalf("expected empty marker, got %q", err.Error())
		}
	})
}
