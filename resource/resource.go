package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/server"
)

// Object is implemented by *Resource and by every typed wrapper around it.
type Object interface {
	Kind() *Kind
	base() *Resource
}

// Resource is the field container shared by every kind. Decoded JSON objects
// carry no key order, so Populate stores keys sorted by name (with a carried
// over id first); fields added later with Set are appended in assignment
// order. Fields reports that order.
//
// A Resource is not safe for concurrent mutation.
type Resource struct {
	kind     *Kind
	keys     []string
	fields   map[string]any
	previous map[string]any
	removed  map[string]struct{}

	parent    Object
	config    config.Config
	requester server.Requester
	registry  *Registry

	proxies map[*Kind]any
}

var _ Object = (*Resource)(nil)

// New builds an unsynced resource of kind. An empty id falls back to the
// kind's default id, if any.
func New(kind *Kind, id string, opts ...Option) (Object, error) {
	var rawID any
	if id != "" {
		rawID = id
	} else if kind != nil && kind.DefaultID != "" {
		rawID = kind.DefaultID
	}

	r, err := newResource(kind, rawID, buildOptions(opts).binding())
	if err != nil {
		return nil, err
	}
	return r.kind.newObject(r), nil
}

func newResource(kind *Kind, id any, b binding) (*Resource, error) {
	if kind == nil {
		kind = GenericKind
	}
	if err := kind.checkParent(b.parent); err != nil {
		return nil, err
	}

	return &Resource{
		kind:      kind,
		keys:      []string{"id"},
		fields:    map[string]any{"id": id},
		previous:  map[string]any{},
		removed:   map[string]struct{}{},
		parent:    b.parent,
		config:    b.config.Clone(),
		requester: b.requester,
		registry:  b.registry,
	}, nil
}

func (r *Resource) Kind() *Kind {
	if r == nil || r.kind == nil {
		return GenericKind
	}
	return r.kind
}

func (r *Resource) base() *Resource {
	return r
}

// Parent returns the owning resource, or nil for top-level resources.
func (r *Resource) Parent() Object {
	return r.parent
}

// Config returns a copy of the request configuration bound at construction.
func (r *Resource) Config() config.Config {
	return r.config.Clone()
}

func (r *Resource) ID() string {
	switch typed := r.fields["id"].(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}

func (r *Resource) HasID() bool {
	return r.ID() != ""
}

// Get returns the value of a field. Reading a field that disappeared during
// the last population reports the fields currently available.
func (r *Resource) Get(name string) (any, error) {
	value, ok := r.fields[name]
	if ok {
		return value, nil
	}

	if _, removed := r.removed[name]; removed {
		return nil, fieldAccessError(fmt.Sprintf(
			"field %q was previously present but no longer is; the resource was repopulated with data returned by the API, "+
				"probably after being saved or deleted. Current fields: %s",
			name,
			strings.Join(r.keys, ", "),
		))
	}
	return nil, fieldAccessError(fmt.Sprintf("field %q is not present on %s resource", name, r.Kind().Name))
}

func (r *Resource) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Set assigns a field locally. The change is sent on the next Save.
func (r *Resource) Set(name string, value any) {
	if r.fields == nil {
		r.fields = map[string]any{}
	}
	if _, exists := r.fields[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = value
}

// DeleteField always fails: fields are cleared by setting them to nil.
func (r *Resource) DeleteField(name string) error {
	return preconditionError(fmt.Sprintf("field %q cannot be deleted; set it to nil to clear it", name))
}

func (r *Resource) Fields() []string {
	return append([]string(nil), r.keys...)
}

// RemovedFields lists every field dropped by a population since construction.
func (r *Resource) RemovedFields() []string {
	names := make([]string, 0, len(r.removed))
	for name := range r.removed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PreviousFields returns the wire form recorded at the last population.
func (r *Resource) PreviousFields() map[string]any {
	return cloneFields(r.previous)
}

// Populate replaces every field with data, keeping the current id when data
// has none. Keys are ordered by name. Nested objects become resources bound to the same parent.
func (r *Resource) Populate(data map[string]any) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if r.removed == nil {
		r.removed = map[string]struct{}{}
	}

	converted := make(map[string]any, len(data)+1)
	b := r.binding()
	for _, key := range keys {
		decoded, err := decodeField(key, data[key])
		if err != nil {
			return err
		}
		value, err := createFromData(r.Kind(), decoded, b)
		if err != nil {
			return err
		}
		converted[key] = value
	}

	if _, ok := converted["id"]; !ok {
		converted["id"] = r.fields["id"]
		keys = append([]string{"id"}, keys...)
	}

	for _, key := range r.keys {
		if _, ok := converted[key]; !ok {
			r.removed[key] = struct{}{}
		}
	}

	r.keys = keys
	r.fields = converted
	r.previous = r.Serialize()
	return nil
}

// Serialize returns a plain JSON-compatible copy of the fields with nested
// resources serialized and codec fields encoded.
func (r *Resource) Serialize() map[string]any {
	serialized := make(map[string]any, len(r.fields))
	for _, key := range r.keys {
		value := r.fields[key]
		if _, isObject := value.(Object); isObject {
			serialized[key] = serializeValue(value)
			continue
		}
		serialized[key] = serializeValue(encodeField(key, value))
	}
	return serialized
}

func serializeValue(value any) any {
	switch typed := value.(type) {
	case Object:
		if isNilObject(typed) {
			return nil
		}
		return typed.base().Serialize()
	case []any:
		items := make([]any, len(typed))
		for idx, item := range typed {
			items[idx] = serializeValue(item)
		}
		return items
	case map[string]any:
		items := make(map[string]any, len(typed))
		for key, item := range typed {
			items[key] = serializeValue(item)
		}
		return items
	default:
		return value
	}
}

// Diff returns the serialized fields that are absent from, or different to,
// the snapshot taken at the last population.
func (r *Resource) Diff() map[string]any {
	current := r.Serialize()
	diff := make(map[string]any)
	for key, value := range current {
		previous, ok := r.previous[key]
		if !ok || !sameWireValue(previous, value) {
			diff[key] = value
		}
	}
	return diff
}

func sameWireValue(a any, b any) bool {
	normalizedA, errA := Normalize(a)
	normalizedB, errB := Normalize(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return reflect.DeepEqual(normalizedA, normalizedB)
}

func (r *Resource) ListPath() (string, error) {
	return r.Kind().ListPath(r.parent)
}

// DetailPath returns the list path followed by the escaped id. Ids that
// would resolve to another path ("." and "..") are refused.
func (r *Resource) DetailPath() (string, error) {
	if !r.HasID() {
		return "", preconditionError(fmt.Sprintf("the detail path of this %s cannot be obtained since its id is unknown", r.Kind().Name))
	}
	if id := r.ID(); id == "." || id == ".." {
		return "", preconditionError(fmt.Sprintf("%q is not a usable %s id", id, r.Kind().Name))
	}
	listPath, err := r.ListPath()
	if err != nil {
		return "", err
	}
	return listPath + "/" + url.PathEscape(r.ID()), nil
}

func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Serialize())
}

func (r *Resource) GetString(name string) (string, error) {
	value, err := r.Get(name)
	if err != nil {
		return "", err
	}
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	default:
		return "", typeMismatch(name, "string", value)
	}
}

func (r *Resource) GetTime(name string) (time.Time, error) {
	value, err := r.Get(name)
	if err != nil {
		return time.Time{}, err
	}
	switch typed := value.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return typed, nil
	case string:
		decoded, err := decodeTimestamp(typed)
		if err != nil {
			return time.Time{}, validationError(fmt.Sprintf("field %q is not a timestamp", name), err)
		}
		return decoded.(time.Time), nil
	default:
		return time.Time{}, typeMismatch(name, "timestamp", value)
	}
}

func (r *Resource) GetInt(name string) (int64, error) {
	value, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch typed := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return typed, nil
	case int:
		return int64(typed), nil
	case float64:
		if typed != math.Trunc(typed) {
			return 0, typeMismatch(name, "integer", value)
		}
		return int64(typed), nil
	case json.Number:
		parsed, err := typed.Int64()
		if err != nil {
			return 0, typeMismatch(name, "integer", value)
		}
		return parsed, nil
	default:
		return 0, typeMismatch(name, "integer", value)
	}
}

func (r *Resource) GetBool(name string) (bool, error) {
	value, err := r.Get(name)
	if err != nil {
		return false, err
	}
	switch typed := value.(type) {
	case nil:
		return false, nil
	case bool:
		return typed, nil
	default:
		return false, typeMismatch(name, "boolean", value)
	}
}

func typeMismatch(name string, expected string, value any) error {
	return validationError(fmt.Sprintf("field %q is a %T, not a %s", name, value, expected), nil)
}

func (r *Resource) binding() binding {
	return binding{
		parent:    r.parent,
		config:    r.config,
		requester: r.requester,
		registry:  r.registry,
	}
}

func cloneFields(values map[string]any) map[string]any {
	cloned := make(map[string]any, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}

func isNilObject(value Object) bool {
	if value == nil {
		return true
	}
	return value.base() == nil
}
