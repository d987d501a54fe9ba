package yamlutil

import "testing"

func TestMarshalUsesTwoSpaceIndent(t *testing.T) {
	t.Parallel()

	value := map[string]any{
		"contexts": []any{
			map[string]any{"name": "dev", "default-headers": map[string]any{"X-Team": "storage"}},
		},
	}

	encoded, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	expected := "contexts:\n  - default-headers:\n      X-Team: storage\n    name: dev\n"
	if string(encoded) != expected {
		t.Fatalf("unexpected yaml:\n%s", encoded)
	}
}

func TestMarshalWithIndent(t *testing.T) {
	t.Parallel()

	encoded, err := MarshalWithIndent(map[string]any{"tls": map[string]any{"insecure-skip-verify": true}}, 4)
	if err != nil {
		t.Fatalf("MarshalWithIndent returned error: %v", err)
	}
	if string(encoded) != "tls:\n    insecure-skip-verify: true\n" {
		t.Fatalf("unexpected yaml:\n%s", encoded)
	}
}
