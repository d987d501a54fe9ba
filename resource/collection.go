package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

// ObjectsField is the list field preferred when a listing carries several.
const ObjectsField = "objects"

// Collection is one listing response: its converted items plus the sibling
// metadata fields (cursors, counts) of the same payload.
type Collection struct {
	kind     *Kind
	field    string
	items    []any
	meta     map[string]any
	metaKeys []string
}

func newCollection(kind *Kind, payload any, b binding) (*Collection, error) {
	data, ok := payload.(map[string]any)
	if !ok {
		return nil, constructionError(fmt.Sprintf("list response must be a JSON object, got %T", payload), nil)
	}

	field, err := findObjectsField(data)
	if err != nil {
		return nil, err
	}

	converted, err := createFromData(kind, data[field], b)
	if err != nil {
		return nil, err
	}

	collection := &Collection{
		kind:  kind,
		field: field,
		items: converted.([]any),
		meta:  make(map[string]any, len(data)-1),
	}
	for key, value := range data {
		if key == field {
			continue
		}
		decoded, err := decodeField(key, value)
		if err != nil {
			return nil, err
		}
		convertedValue, err := createFromData(kind, decoded, b)
		if err != nil {
			return nil, err
		}
		collection.meta[key] = convertedValue
		collection.metaKeys = append(collection.metaKeys, key)
	}
	sort.Strings(collection.metaKeys)

	return collection, nil
}

func findObjectsField(data map[string]any) (string, error) {
	if value, ok := data[ObjectsField]; ok {
		if _, isList := value.([]any); isList {
			return ObjectsField, nil
		}
	}

	listFields := make([]string, 0, 1)
	for key, value := range data {
		if _, isList := value.([]any); isList {
			listFields = append(listFields, key)
		}
	}
	sort.Strings(listFields)

	switch len(listFields) {
	case 1:
		return listFields[0], nil
	case 0:
		return "", constructionError("no list of objects was found in the list response", nil)
	default:
		return "", constructionError(fmt.Sprintf(
			"list response is ambiguous: expected an %q list or a single list field, found [%s]",
			ObjectsField,
			strings.Join(listFields, ", "),
		), nil)
	}
}

func (c *Collection) Kind() *Kind {
	return c.kind
}

// Field names the payload field the items were read from.
func (c *Collection) Field() string {
	return c.field
}

func (c *Collection) Len() int {
	return len(c.items)
}

func (c *Collection) At(index int) any {
	return c.items[index]
}

func (c *Collection) Items() []any {
	return append([]any(nil), c.items...)
}

// Objects returns the items that are resources, skipping primitives.
func (c *Collection) Objects() []Object {
	objects := make([]Object, 0, len(c.items))
	for _, item := range c.items {
		if object, ok := item.(Object); ok {
			objects = append(objects, object)
		}
	}
	return objects
}

func (c *Collection) Meta(name string) (any, bool) {
	value, ok := c.meta[name]
	return value, ok
}

func (c *Collection) MetaKeys() []string {
	return append([]string(nil), c.metaKeys...)
}

// Serialize rebuilds the payload shape the collection was read from.
func (c *Collection) Serialize() map[string]any {
	payload := make(map[string]any, len(c.meta)+1)
	for key, value := range c.meta {
		payload[key] = serializeValue(encodeField(key, value))
	}
	payload[c.field] = serializeValue(c.items)
	return payload
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Serialize())
}

// Filter evaluates a jq expression against the serialized payload and
// returns every emitted value.
func (c *Collection) Filter(ctx context.Context, expression string) ([]any, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return []any{c.Serialize()}, nil
	}

	code, err := compileJQ(trimmed)
	if err != nil {
		return nil, validationError("invalid jq expression", err)
	}

	input, err := jqInput(c.Serialize())
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	iterator := code.RunWithContext(ctx, input)
	results := make([]any, 0, c.Len())
	for {
		value, ok := iterator.Next()
		if !ok {
			break
		}
		if valueErr, isErr := value.(error); isErr {
			return nil, validationError("failed to evaluate jq expression", valueErr)
		}
		results = append(results, value)
	}
	return results, nil
}

// CollectionItems returns the items of c that are of type T.
func CollectionItems[T Object](c *Collection) []T {
	items := make([]T, 0, c.Len())
	for _, item := range c.items {
		if typed, ok := item.(T); ok {
			items = append(items, typed)
		}
	}
	return items
}

var jqCodeCache sync.Map

func compileJQ(expression string) (*gojq.Code, error) {
	if cached, ok := jqCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := jqCodeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}

// ApplyJQ evaluates expression against any JSON-compatible value, returning
// a single result unwrapped and several results as a list.
func ApplyJQ(ctx context.Context, value any, expression string) (any, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return value, nil
	}

	code, err := compileJQ(trimmed)
	if err != nil {
		return nil, validationError("invalid jq expression", err)
	}
	if collection, ok := value.(*Collection); ok {
		value = collection.Serialize()
	}
	input, err := jqInput(value)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	iterator := code.RunWithContext(ctx, input)
	results := make([]any, 0, 1)
	for {
		item, ok := iterator.Next()
		if !ok {
			break
		}
		if itemErr, isErr := item.(error); isErr {
			return nil, validationError("failed to evaluate jq expression", itemErr)
		}
		results = append(results, item)
	}

	switch len(results) {
	case 0:
		return []any{}, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// jqInput normalizes value into the types gojq accepts. Integers are handed
// over as int.
func jqInput(value any) (any, error) {
	normalized, err := Normalize(serializeValue(value))
	if err != nil {
		normalized, err = normalizeThroughJSON(value)
		if err != nil {
			return nil, err
		}
	}
	return toJQValue(normalized), nil
}

func toJQValue(value any) any {
	switch typed := value.(type) {
	case int64:
		return int(typed)
	case []any:
		for idx, item := range typed {
			typed[idx] = toJQValue(item)
		}
		return typed
	case map[string]any:
		for key, item := range typed {
			typed[key] = toJQValue(item)
		}
		return typed
	default:
		return value
	}
}

// normalizeThroughJSON handles values such as structs that only have a JSON
// encoding.
func normalizeThroughJSON(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, validationError("value cannot be filtered with jq", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, validationError("value cannot be filtered with jq", err)
	}
	return Normalize(decoded)
}
