package resource

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/crmarques/cloudstore/faults"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("populated_file_becomes_wire_fields", func(t *testing.T) {
		t.Parallel()

		account := mustAccount(t, "a1", newFakeRequester())
		converted, err := CreateFromData(FileKind, map[string]any{
			"id":       json.Number("42"),
			"type":     "file",
			"name":     "report.pdf",
			"size":     json.Number("1024"),
			"modified": "2024-05-06T07:08:09Z",
		}, WithParent(account))
		if err != nil {
			t.Fatalf("CreateFromData returned error: %v", err)
		}
		file, ok := converted.(*File)
		if !ok {
			t.Fatalf("expected *File, got %T", converted)
		}

		got, err := Normalize(file)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		expected := map[string]any{
			"id":       int64(42),
			"type":     "file",
			"name":     "report.pdf",
			"size":     int64(1024),
			"modified": "2024-05-06T07:08:09Z",
		}
		if !reflect.DeepEqual(got, expected) {
			t.Fatalf("expected %#v, got %#v", expected, got)
		}
	})

	t.Run("nil_wrappers_become_null", func(t *testing.T) {
		t.Parallel()

		var file *File
		got, err := Normalize(file)
		if err != nil || got != nil {
			t.Fatalf("expected nil, got %#v (%v)", got, err)
		}

		got, err = Normalize([]any{(*Link)(nil), "x"})
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if !reflect.DeepEqual(got, []any{nil, "x"}) {
			t.Fatalf("unexpected list %#v", got)
		}
	})

	t.Run("response_numbers", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			input    json.Number
			expected any
		}{
			{input: "42", expected: int64(42)},
			{input: "1.5", expected: 1.5},
			{input: "1e3", expected: float64(1000)},
		}
		for _, tc := range cases {
			got, err := Normalize(tc.input)
			if err != nil {
				t.Fatalf("Normalize(%s) returned error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Fatalf("Normalize(%s): expected %#v, got %#v", tc.input, tc.expected, got)
			}
		}

		_, err := Normalize(json.Number("12345678901234567890"))
		assertTypedCategory(t, err, faults.ValidationError)
	})

	t.Run("assigned_values_match_decoded_values", func(t *testing.T) {
		t.Parallel()

		expiration := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		pairs := []struct {
			name     string
			assigned any
			decoded  any
		}{
			{name: "timestamp", assigned: expiration, decoded: "2025-01-02T03:04:05Z"},
			{name: "small_int", assigned: int8(7), decoded: json.Number("7")},
			{name: "string_slice", assigned: []string{"a", "b"}, decoded: []any{"a", "b"}},
			{name: "string_map", assigned: map[string]string{"k": "v"}, decoded: map[string]any{"k": "v"}},
		}
		for _, pair := range pairs {
			left, err := Normalize(pair.assigned)
			if err != nil {
				t.Fatalf("%s: Normalize returned error: %v", pair.name, err)
			}
			right, err := Normalize(pair.decoded)
			if err != nil {
				t.Fatalf("%s: Normalize returned error: %v", pair.name, err)
			}
			if !reflect.DeepEqual(left, right) {
				t.Fatalf("%s: expected %#v to equal %#v", pair.name, left, right)
			}
		}
	})

	t.Run("rejects_values_without_a_wire_form", func(t *testing.T) {
		t.Parallel()

		type payload struct{ ID string }
		for _, value := range []any{
			math.NaN(),
			uint64(math.MaxInt64) + 1,
			map[int]string{1: "x"},
			payload{ID: "x"},
		} {
			_, err := Normalize(value)
			assertTypedCategory(t, err, faults.ValidationError)
		}
	})
}
