package resource

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"testing"

	"github.com/crmarques/cloudstore/faults"
)

func TestFolderContents(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{
		"objects": [
			{"type": "file", "id": "f1", "name": "a.txt", "modified": "2024-02-03T04:05:06Z"},
			{"type": "folder", "id": "fo2", "name": "nested"},
			{"id": "x1", "name": "untyped"}
		],
		"cursor": "c2",
		"count": 3
	}`))
	account := mustAccount(t, "a1", requester)
	root, err := NewFolder(account, "")
	if err != nil {
		t.Fatalf("NewFolder returned error: %v", err)
	}

	collection, err := root.Contents(context.Background(), url.Values{"page_size": []string{"3"}})
	if err != nil {
		t.Fatalf("Contents returned error: %v", err)
	}

	request := requester.last(t)
	if request.Method != http.MethodGet || request.Path != "accounts/a1/folders/root/contents" {
		t.Fatalf("unexpected request %s %s", request.Method, request.Path)
	}
	if request.Query.Get("page_size") != "3" {
		t.Fatalf("expected page_size param, got %v", request.Query)
	}

	if collection.Len() != 3 || collection.Field() != ObjectsField {
		t.Fatalf("unexpected collection shape len=%d field=%q", collection.Len(), collection.Field())
	}
	if _, ok := collection.At(0).(*File); !ok {
		t.Fatalf("expected *File, got %T", collection.At(0))
	}
	if _, ok := collection.At(1).(*Folder); !ok {
		t.Fatalf("expected *Folder, got %T", collection.At(1))
	}
	if _, ok := collection.At(2).(*Folder); !ok {
		t.Fatalf("expected untyped item to fall back to *Folder, got %T", collection.At(2))
	}
	if files := CollectionItems[*File](collection); len(files) != 1 || files[0].Parent() != Object(account) {
		t.Fatalf("unexpected files %v", files)
	}

	cursor, ok := collection.Meta("cursor")
	if !ok || cursor != "c2" {
		t.Fatalf("expected cursor c2, got %#v", cursor)
	}
	count, _ := collection.Meta("count")
	if count != int64(3) {
		t.Fatalf("expected count 3, got %#v", count)
	}
	if !reflect.DeepEqual(collection.MetaKeys(), []string{"count", "cursor"}) {
		t.Fatalf("unexpected meta keys %v", collection.MetaKeys())
	}

	serialized := collection.Serialize()
	items := serialized[ObjectsField].([]any)
	first := items[0].(map[string]any)
	if first["modified"] != "2024-02-03T04:05:06Z" {
		t.Fatalf("expected encoded timestamp, got %#v", first["modified"])
	}
}

func TestCollectionListField(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		payload  string
		field    string
		category faults.ErrorCategory
	}{
		{name: "objects_preferred", payload: `{"objects":[{"id":"l1"}],"errors":[]}`, field: "objects"},
		{name: "single_list_field", payload: `{"links":[{"id":"l1"}],"cursor":null}`, field: "links"},
		{name: "ambiguous_lists", payload: `{"links":[],"files":[]}`, category: faults.ConstructionError},
		{name: "no_list", payload: `{"count":0}`, category: faults.ConstructionError},
		{name: "not_an_object", payload: `[{"id":"l1"}]`, category: faults.ConstructionError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			requester := newFakeRequester(reply(tc.payload))
			account := mustAccount(t, "a1", requester)

			collection, err := account.Links().All(context.Background())
			if tc.category != "" {
				assertTypedCategory(t, err, tc.category)
				return
			}
			if err != nil {
				t.Fatalf("All returned error: %v", err)
			}
			if collection.Field() != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, collection.Field())
			}
		})
	}
}

func TestAccountList(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"objects":[{"id":"a1","service":"box"},{"id":"a2","service":"s3"}],"page":1,"has_next":false}`))
	proxy := NewAccountProxy(WithConfig(testConfig()), WithRequester(requester))

	collection, err := proxy.All(context.Background(), WithParam("page_size", "2"))
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	request := requester.last(t)
	if request.Path != "accounts" || request.Query.Get("page_size") != "2" {
		t.Fatalf("unexpected request %s %v", request.Path, request.Query)
	}

	accounts := CollectionItems[*Account](collection)
	if len(accounts) != 2 || accounts[1].ID() != "a2" {
		t.Fatalf("unexpected accounts %v", accounts)
	}
	if accounts[0].Parent() != nil {
		t.Fatal("expected top-level accounts")
	}
	if len(collection.Objects()) != 2 {
		t.Fatalf("expected two objects, got %d", len(collection.Objects()))
	}
}

func TestCollectionFilter(t *testing.T) {
	t.Parallel()

	requester := newFakeRequester(reply(`{"objects":[{"id":"l1","active":true},{"id":"l2","active":false}],"count":2}`))
	account := mustAccount(t, "a1", requester)
	collection, err := account.Links().All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}

	ids, err := collection.Filter(context.Background(), `.objects[] | select(.active) | .id`)
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if !reflect.DeepEqual(ids, []any{"l1"}) {
		t.Fatalf("unexpected filter result %#v", ids)
	}

	count, err := ApplyJQ(context.Background(), collection, ".count")
	if err != nil {
		t.Fatalf("ApplyJQ returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %#v", count)
	}

	_, err = collection.Filter(context.Background(), ".objects[")
	assertTypedCategory(t, err, faults.ValidationError)
}

func TestApplyJQInputs(t *testing.T) {
	t.Parallel()

	account := mustAccount(t, "a1", newFakeRequester(reply(`{"objects":[{"id":"l1","size":1024},{"id":"l2","size":3}],"count":2}`)))
	links, err := account.Links().All(context.Background())
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}

	large, err := ApplyJQ(context.Background(), links, `[.objects[] | select(.size > 1000) | .id]`)
	if err != nil {
		t.Fatalf("ApplyJQ returned error: %v", err)
	}
	if !reflect.DeepEqual(large, []any{"l1"}) {
		t.Fatalf("unexpected result %#v", large)
	}

	kind, err := ApplyJQ(context.Background(), links, ".count | type")
	if err != nil {
		t.Fatalf("ApplyJQ returned error: %v", err)
	}
	if kind != "number" {
		t.Fatalf("expected number, got %#v", kind)
	}

	version, err := ApplyJQ(context.Background(), struct {
		Version string `json:"version"`
	}{Version: "v1.2.3"}, ".version")
	if err != nil {
		t.Fatalf("ApplyJQ returned error: %v", err)
	}
	if version != "v1.2.3" {
		t.Fatalf("expected struct fields to be filterable, got %#v", version)
	}
}
