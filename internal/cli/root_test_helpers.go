package cli

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/faults"
	clitestkit "github.com/crmarques/cloudstore/internal/cli/testkit"
	"github.com/crmarques/cloudstore/resource"
	"github.com/crmarques/cloudstore/server"
)

func executeForTest(deps Dependencies, stdin string, args ...string) (string, error) {
	return clitestkit.ExecuteCommandForTest(NewRootCommand(deps), stdin, args...)
}

func executeForTestWithStreams(deps Dependencies, stdin string, args ...string) (string, string, error) {
	return clitestkit.ExecuteCommandForTestWithStreams(NewRootCommand(deps), stdin, args...)
}

func registeredPaths(command *cobra.Command, prefix []string) [][]string {
	return clitestkit.RegisteredPaths(command, prefix)
}

func joinPath(path []string) string {
	return clitestkit.JoinPath(path)
}

func testDeps() Dependencies {
	deps, _ := testDepsWith(newTestRequester())
	return deps
}

func testDepsWith(requester *testRequester) (Dependencies, *testContextService) {
	contexts := newTestContextService()
	cfg := config.Default()
	cfg.APIKey = "test-key"
	return Dependencies{
		Contexts: contexts,
		Accounts: resource.NewAccountProxy(resource.WithConfig(cfg), resource.WithRequester(requester)),
	}, contexts
}

// testRequester answers "METHOD path" keys with canned bodies and records
// every request. Unknown keys answer 200 "{}".
type testRequester struct {
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]int
	requests  []server.Request
}

func newTestRequester() *testRequester {
	return &testRequester{responses: map[string]string{}, failures: map[string]int{}}
}

func (r *testRequester) on(method string, path string, body string) *testRequester {
	r.responses[method+" "+path] = body
	return r
}

func (r *testRequester) failOn(method string, path string, status int) *testRequester {
	r.failures[method+" "+path] = status
	return r
}

func (r *testRequester) Do(_ context.Context, request server.Request) (*server.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, request)
	key := request.Method + " " + request.Path
	if status, ok := r.failures[key]; ok {
		return nil, faults.NewStatusError(status, []byte(`{"message":"failed"}`))
	}
	body, ok := r.responses[key]
	if !ok {
		body = "{}"
	}
	return &server.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func (r *testRequester) last(t *testing.T) server.Request {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("expected a request to be sent")
	}
	return r.requests[len(r.requests)-1]
}

func (r *testRequester) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

type testContextService struct {
	mu       sync.Mutex
	contexts map[string]config.Context
	current  string
}

func newTestContextService() *testContextService {
	return &testContextService{
		contexts: map[string]config.Context{
			"dev":  {Name: "dev", Config: config.Config{BaseURL: "https://dev.example.com", APIKey: "dev-key"}},
			"prod": {Name: "prod", Config: config.Config{BaseURL: "https://api.example.com", BearerToken: "prod-token"}},
		},
		current: "dev",
	}
}

func (s *testContextService) Upsert(_ context.Context, cfg config.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[cfg.Name] = cfg
	return nil
}

func (s *testContextService) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[name]; !ok {
		return faults.NewTypedError(faults.NotFoundError, "context "+name+" not found", nil)
	}
	delete(s.contexts, name)
	if s.current == name {
		s.current = ""
	}
	return nil
}

func (s *testContextService) SetCurrent(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[name]; !ok {
		return faults.NewTypedError(faults.NotFoundError, "context "+name+" not found", nil)
	}
	s.current = name
	return nil
}

func (s *testContextService) List(context.Context) ([]config.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]config.Context, 0, len(s.contexts))
	for _, item := range s.contexts {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *testContextService) GetCurrent(context.Context) (config.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.contexts[s.current]
	if !ok {
		return config.Context{}, faults.NewTypedError(faults.NotFoundError, "current context is not set", nil)
	}
	return item, nil
}

func (s *testContextService) ResolveContext(ctx context.Context, selection config.ContextSelection) (config.Config, error) {
	name := strings.TrimSpace(selection.Name)
	if name == "" {
		current, err := s.GetCurrent(ctx)
		if err != nil {
			return config.Config{}, err
		}
		name = current.Name
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.contexts[name]
	if !ok {
		return config.Config{}, faults.NewTypedError(faults.NotFoundError, "context "+name+" not found", nil)
	}
	return config.Merge(config.Default(), item.Config, selection.Overrides), nil
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
