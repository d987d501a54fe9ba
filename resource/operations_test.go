package resource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/crmarques/cloudstore/faults"
	"github.com/crmarques/cloudstore/server"
)

func TestGetAccount(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"id":"a1","service":"box","created":"2023-03-04T05:06:07Z"}`))

	account, err := Get[*Account](context.Background(), "a1", WithConfig(testConfig()), WithRequester(requester))
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	request := requester.last(t)
	if request.Method != http.MethodGet || request.Path != "accounts/a1" {
		t.Fatalf("unexpected request %s %s", request.Method, request.Path)
	}
	if request.Config.APIKey != "test-key" {
		t.Fatalf("expected request config to carry api key, got %q", request.Config.APIKey)
	}

	service, err := account.GetString("service")
	if err != nil || service != "box" {
		t.Fatalf("expected service box, got %q %v", service, err)
	}
	created, err := account.GetTime("created")
	if err != nil {
		t.Fatalf("GetTime returned error: %v", err)
	}
	if created.Year() != 2023 {
		t.Fatalf("unexpected created time %v", created)
	}
}

func TestGetPropagatesTransportErrors(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(fail(http.StatusNotFound, `{"message":"not found"}`))
	_, err := Get[*Account](context.Background(), "missing", WithRequester(requester))
	assertTypedCategory(t, err, faults.TransportError)
	if faults.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 status, got %d", faults.StatusCode(err))
	}
}

func TestUnsupportedOperationsSendNothing(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester()
	account := mustAccount(t, "a1", requester)

	cases := []struct {
		name string
		call func() error
	}{
		{
			name: "create_account",
			call: func() error {
				_, err := Create[*Account](context.Background(), map[string]any{"name": "x"}, WithRequester(requester))
				return err
			},
		},
		{
			name: "list_files",
			call: func() error {
				_, err := All[*File](context.Background(), WithParent(account))
				return err
			},
		},
		{
			name: "list_folders",
			call: func() error {
				_, err := All[*Folder](context.Background(), WithParent(account))
				return err
			},
		},
		{
			name: "create_file_as_json",
			call: func() error {
				_, err := Create[*File](context.Background(), map[string]any{"name": "a.txt"}, WithParent(account))
				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertTypedCategory(t, tc.call(), faults.PreconditionError)
		})
	}
	if len(requester.requests) != 0 {
		t.Fatalf("expected no requests, got %d", len(requester.requests))
	}
}

func TestOperationsWithoutRequester(t *testing.T) {
	t.Parallel()

	account, err := NewAccount("a1")
	if err != nil {
		t.Fatalf("NewAccount returned error: %v", err)
	}
	err = account.Delete(context.Background(), nil)
	assertTypedCategory(t, err, faults.PreconditionError)
}

func TestLinkSave(t *testing.T) {
	t.Parallel()

	t.Run("sends_only_changed_fields", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(
			reply(`{"id":"l1","active":true,"url":"https://example.com/l1","file_id":"f1"}`),
			reply(`{"id":"l1","active":false,"file_id":"f1"}`),
		)
		account := mustAccount(t, "a1", requester)

		link, err := account.Links().Get(context.Background(), "l1")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		link.Set("active", false)

		if err := link.Save(context.Background()); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}

		request := requester.last(t)
		if request.Method != http.MethodPatch || request.Path != "accounts/a1/links/l1" {
			t.Fatalf("unexpected request %s %s", request.Method, request.Path)
		}
		assertBodyJSON(t, request.Body, `{"active":false}`)

		_, err = link.Get("url")
		assertTypedCategory(t, err, faults.FieldAccessError)
		if diff := link.Diff(); len(diff) != 0 {
			t.Fatalf("expected clean link after save, got %v", diff)
		}
	})

	t.Run("empty_diff_is_still_sent", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply(`{"id":"l1","active":true}`))
		account := mustAccount(t, "a1", requester)
		link, err := NewLink(account, "l1")
		if err != nil {
			t.Fatalf("NewLink returned error: %v", err)
		}
		if err := link.Populate(map[string]any{"active": true}); err != nil {
			t.Fatalf("Populate returned error: %v", err)
		}

		if err := link.Save(context.Background()); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		if len(requester.requests) != 1 {
			t.Fatalf("expected one request, got %d", len(requester.requests))
		}
		assertBodyJSON(t, requester.last(t).Body, `{}`)
	})

	t.Run("encodes_timestamp_changes", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply(`{"id":"l1","expiration":"2030-01-01T00:00:00Z"}`))
		account := mustAccount(t, "a1", requester)
		link, err := NewLink(account, "l1")
		if err != nil {
			t.Fatalf("NewLink returned error: %v", err)
		}
		if err := link.Populate(map[string]any{}); err != nil {
			t.Fatalf("Populate returned error: %v", err)
		}
		link.Set("expiration", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

		if err := link.Save(context.Background()); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		assertBodyJSON(t, requester.last(t).Body, `{"expiration":"2030-01-01T00:00:00Z"}`)

		expiration, err := link.GetTime("expiration")
		if err != nil || expiration.Year() != 2030 {
			t.Fatalf("expected decoded expiration, got %v %v", expiration, err)
		}
	})

	t.Run("failed_save_keeps_local_changes", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(fail(http.StatusInternalServerError, `{"error":"boom"}`))
		account := mustAccount(t, "a1", requester)
		link, err := NewLink(account, "l1")
		if err != nil {
			t.Fatalf("NewLink returned error: %v", err)
		}
		if err := link.Populate(map[string]any{"active": true}); err != nil {
			t.Fatalf("Populate returned error: %v", err)
		}
		link.Set("active", false)

		err = link.Save(context.Background())
		assertTypedCategory(t, err, faults.TransportError)

		active, err := link.GetBool("active")
		if err != nil || active {
			t.Fatalf("expected local change to survive, got %v %v", active, err)
		}
		if diff := link.Diff(); len(diff) != 1 {
			t.Fatalf("expected pending diff, got %v", diff)
		}
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(``))
	account := mustAccount(t, "a1", requester)
	file, err := NewFile(account, "f1")
	if err != nil {
		t.Fatalf("NewFile returned error: %v", err)
	}
	if err := file.Populate(map[string]any{"name": "a.txt", "size": json.Number("4")}); err != nil {
		t.Fatalf("Populate returned error: %v", err)
	}

	if err := file.Delete(context.Background(), url.Values{"permanent": []string{"true"}}); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	request := requester.last(t)
	if request.Method != http.MethodDelete || request.Path != "accounts/a1/files/f1" {
		t.Fatalf("unexpected request %s %s", request.Method, request.Path)
	}
	if request.Query.Get("permanent") != "true" {
		t.Fatalf("expected permanent=true, got %v", request.Query)
	}

	if file.ID() != "f1" {
		t.Fatalf("expected id to survive delete, got %q", file.ID())
	}
	_, err = file.Get("name")
	assertTypedCategory(t, err, faults.FieldAccessError)
}

func TestCreateLink(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"id":"l3","type":"link","file_id":"f1","expiration":"2031-02-03T04:05:06Z"}`))
	account := mustAccount(t, "a1", requester)

	link, err := account.Links().Create(context.Background(), map[string]any{
		"file_id":    "f1",
		"expiration": time.Date(2031, 2, 3, 4, 5, 6, 0, time.UTC),
	}, WithParam("fields", "url"))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	request := requester.last(t)
	if request.Method != http.MethodPost || request.Path != "accounts/a1/links" {
		t.Fatalf("unexpected request %s %s", request.Method, request.Path)
	}
	if request.Query.Get("fields") != "url" {
		t.Fatalf("expected fields param, got %v", request.Query)
	}
	assertBodyJSON(t, request.Body, `{"file_id":"f1","expiration":"2031-02-03T04:05:06Z"}`)

	if link.ID() != "l3" {
		t.Fatalf("expected l3, got %q", link.ID())
	}
	if link.Parent() != Object(account) {
		t.Fatal("expected created link to be bound to the account")
	}
}

func TestCreateRejectsMismatchedResponse(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"id":"f1","type":"file"}`))
	account := mustAccount(t, "a1", requester)

	_, err := account.Links().Create(context.Background(), map[string]any{"file_id": "f1"})
	assertTypedCategory(t, err, faults.ConstructionError)
}

func TestCreateFolder(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"id":"fo9","type":"folder","name":"reports","parent":{"id":"root","type":"folder"}}`))
	account := mustAccount(t, "a1", requester)

	folder, err := account.Folders().Create(context.Background(), map[string]any{"name": "reports", "parent_id": "root"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if requester.last(t).Path != "accounts/a1/folders" {
		t.Fatalf("unexpected path %q", requester.last(t).Path)
	}
	parent, err := folder.Get("parent")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if _, ok := parent.(*Folder); !ok {
		t.Fatalf("expected nested *Folder, got %T", parent)
	}
}

func TestFileContentOperations(t *testing.T) {
	t.Parallel()

	t.Run("upload_sends_multipart", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply(`{"id":"f9","type":"file","name":"a.txt","size":2}`))
		account := mustAccount(t, "a1", requester)

		file, err := account.Files().Upload(context.Background(), FileUpload{
			Name:        "a.txt",
			Data:        []byte("hi"),
			ContentType: "text/plain",
		})
		if err != nil {
			t.Fatalf("Upload returned error: %v", err)
		}

		request := requester.last(t)
		if request.Method != http.MethodPost || request.Path != "accounts/a1/files" {
			t.Fatalf("unexpected request %s %s", request.Method, request.Path)
		}
		if !request.IsMultipart() {
			t.Fatal("expected multipart request")
		}
		if request.Query.Get("overwrite") != "false" {
			t.Fatalf("expected overwrite=false, got %v", request.Query)
		}
		metadata := decodeJSONObject(t, request.Form["metadata"])
		if metadata["name"] != "a.txt" || metadata["parent_id"] != "root" {
			t.Fatalf("unexpected metadata %v", metadata)
		}
		if len(request.Files) != 1 || request.Files[0].Field != "file" || request.Files[0].FileName != "a.txt" {
			t.Fatalf("unexpected file parts %#v", request.Files)
		}
		content, err := io.ReadAll(request.Files[0].Content)
		if err != nil || string(content) != "hi" {
			t.Fatalf("unexpected file content %q %v", content, err)
		}

		size, err := file.GetInt("size")
		if err != nil || size != 2 {
			t.Fatalf("expected size 2, got %d %v", size, err)
		}
	})

	t.Run("upload_requires_name", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester()
		account := mustAccount(t, "a1", requester)

		_, err := account.Files().Upload(context.Background(), FileUpload{Data: []byte("x")})
		assertTypedCategory(t, err, faults.ValidationError)
		if len(requester.requests) != 0 {
			t.Fatal("expected no request")
		}
	})

	t.Run("upload_without_proxy_requires_account", func(t *testing.T) {
		t.Parallel()

		_, err := Upload(context.Background(), FileUpload{Name: "a.txt"}, WithRequester(newFakeRequester()))
		assertTypedCategory(t, err, faults.PreconditionError)
	})

	t.Run("contents_returns_raw_bytes", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply("plain bytes"))
		account := mustAccount(t, "a1", requester)
		file, err := NewFile(account, "f1")
		if err != nil {
			t.Fatalf("NewFile returned error: %v", err)
		}

		content, err := file.Contents(context.Background())
		if err != nil {
			t.Fatalf("Contents returned error: %v", err)
		}
		if string(content) != "plain bytes" {
			t.Fatalf("unexpected content %q", content)
		}
		if requester.last(t).Path != "accounts/a1/files/f1/contents" {
			t.Fatalf("unexpected path %q", requester.last(t).Path)
		}
	})

	t.Run("update_contents_puts_raw_bytes", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply(`{"id":"f1","size":5}`))
		account := mustAccount(t, "a1", requester)
		file, err := NewFile(account, "f1")
		if err != nil {
			t.Fatalf("NewFile returned error: %v", err)
		}

		if err := file.UpdateContents(context.Background(), []byte("hello")); err != nil {
			t.Fatalf("UpdateContents returned error: %v", err)
		}
		request := requester.last(t)
		if request.Method != http.MethodPut || string(request.Raw) != "hello" {
			t.Fatalf("unexpected request %s %q", request.Method, request.Raw)
		}
		size, err := file.GetInt("size")
		if err != nil || size != 5 {
			t.Fatalf("expected size 5, got %d %v", size, err)
		}
	})

	t.Run("copy_returns_new_file", func(t *testing.T) {
		t.Parallel()

		requester := newFakeRequester(reply(`{"id":"f2","name":"b.txt","type":"file"}`))
		account := mustAccount(t, "a1", requester)
		file, err := NewFile(account, "f1")
		if err != nil {
			t.Fatalf("NewFile returned error: %v", err)
		}

		copied, err := file.Copy(context.Background(), "fo1", "b.txt")
		if err != nil {
			t.Fatalf("Copy returned error: %v", err)
		}
		request := requester.last(t)
		if request.Method != http.MethodPost || request.Path != "accounts/a1/files/f1/copy" {
			t.Fatalf("unexpected request %s %s", request.Method, request.Path)
		}
		assertBodyJSON(t, request.Body, `{"parent_id":"fo1","name":"b.txt"}`)
		if copied.ID() != "f2" || copied.Parent() != Object(account) {
			t.Fatalf("unexpected copy %s", copied.ID())
		}
	})

	t.Run("copy_requires_destination", func(t *testing.T) {
		t.Parallel()

		account := mustAccount(t, "a1", newFakeRequester())
		file, err := NewFile(account, "f1")
		if err != nil {
			t.Fatalf("NewFile returned error: %v", err)
		}
		_, err = file.Copy(context.Background(), " ", "")
		assertTypedCategory(t, err, faults.ValidationError)
	})
}

func TestContextIsPassedToRequester(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	var seen any
	requester := server.RequesterFunc(func(ctx context.Context, _ server.Request) (*server.Response, error) {
		seen = ctx.Value(ctxKey{})
		return &server.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":"a1"}`)}, nil
	})

	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")
	if _, err := Get[*Account](ctx, "a1", WithRequester(requester)); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if seen != "marker" {
		t.Fatalf("expected context value to reach requester, got %#v", seen)
	}
}

func TestDetailPathEscapesIDs(t *testing.T) {
	t.Parallel()

	account := mustAccount(t, "a1", newFakeRequester())

	cases := []struct {
		name     string
		id       string
		expected string
	}{
		{name: "space", id: "my file", expected: "accounts/a1/files/my%20file"},
		{name: "slash", id: "a/b", expected: "accounts/a1/files/a%2Fb"},
		{name: "percent", id: "100%", expected: "accounts/a1/files/100%25"},
		{name: "dots_inside_id", id: "report..pdf", expected: "accounts/a1/files/report..pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			file, err := account.Files().New(tc.id)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			got, err := file.DetailPath()
			if err != nil {
				t.Fatalf("DetailPath returned error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestDotIDsNeverReachTheRequester(t *testing.T) {
	t.Parallel()

	for _, id := range []string{".", ".."} {
		requester := newFakeRequester()
		account := mustAccount(t, "a1", requester)

		file, err := account.Files().New(id)
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}
		_, err = file.DetailPath()
		assertTypedCategory(t, err, faults.PreconditionError)

		err = file.Delete(context.Background(), nil)
		assertTypedCategory(t, err, faults.PreconditionError)

		_, err = account.Links().Get(context.Background(), id)
		assertTypedCategory(t, err, faults.PreconditionError)

		parent := mustAccount(t, id, requester)
		_, err = parent.Links().All(context.Background())
		assertTypedCategory(t, err, faults.PreconditionError)

		if len(requester.requests) != 0 {
			t.Fatalf("expected no requests for id %q, got %d", id, len(requester.requests))
		}
	}
}
