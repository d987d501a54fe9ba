package resource

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
	"github.com/crmarques/cloudstore/server"
)

type fakeResponse struct {
	body string
	err  error
}

// fakeRequester records every request and replies from a queue; an empty
// queue answers with an empty JSON object.
type fakeRequester struct {
	responses []fakeResponse
	requests  []server.Request
}

func newFakeRequester(responses ...fakeResponse) *fakeRequester {
	return &fakeRequester{responses: responses}
}

func (f *fakeRequester) Do(_ context.Context, request server.Request) (*server.Response, error) {
	f.requests = append(f.requests, request)
	if len(f.responses) == 0 {
		return &server.Response{StatusCode: 200, Body: []byte("{}")}, nil
	}

	next := f.responses[0]
	f.responses = f.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &server.Response{StatusCode: 200, Body: []byte(next.body)}, nil
}

func (f *fakeRequester) last(t *testing.T) server.Request {
	t.Helper()
	if len(f.requests) == 0 {
		t.Fatal("expected at least one request")
	}
	return f.requests[len(f.requests)-1]
}

func reply(body string) fakeResponse {
	return fakeResponse{body: body}
}

func fail(status int, body string) fakeResponse {
	return fakeResponse{err: faults.NewStatusError(status, []byte(body))}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.APIKey = "test-key"
	return cfg
}

func mustAccount(t *testing.T, id string, requester server.Requester) *Account {
	t.Helper()

	account, err := NewAccount(id, WithConfig(testConfig()), WithRequester(requester))
	if err != nil {
		t.Fatalf("NewAccount returned error: %v", err)
	}
	return account
}

func decodeJSONObject(t *testing.T, raw string) map[string]any {
	t.Helper()

	var value map[string]any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		t.Fatalf("invalid test JSON %q: %v", raw, err)
	}
	return value
}

func assertBodyJSON(t *testing.T, body any, expected string) {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	var got, want any
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		t.Fatalf("decode expected body: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected body %s, got %s", expected, encoded)
	}
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", category)
	}
	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %s error, got %v", category, err)
	}
}
