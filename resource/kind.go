package resource

import (
	"fmt"
	"sort"
)

// Capability is a bit set of the verbs a kind supports remotely.
type Capability uint8

const (
	CapList Capability = 1 << iota
	CapRetrieve
	CapCreate
	CapUpdate
	CapDelete
)

func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	names := []string{}
	for _, item := range []struct {
		cap  Capability
		name string
	}{
		{CapList, "list"},
		{CapRetrieve, "retrieve"},
		{CapCreate, "create"},
		{CapUpdate, "update"},
		{CapDelete, "delete"},
	} {
		if c.Has(item.cap) {
			names = append(names, item.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return fmt.Sprint(names)
}

// Kind describes one resource type: its discriminator, where it lives, which
// parent it requires and what it can do.
type Kind struct {
	Name         string
	PathSegment  string
	Parent       *Kind
	DefaultID    string
	Capabilities Capability

	wrap func(*Resource) Object
}

func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	return k.Name
}

func (k *Kind) Supports(capability Capability) bool {
	return k != nil && k.Capabilities.Has(capability)
}

// ListPath returns the collection path for this kind under parent. Top-level
// kinds ignore parent; child kinds nest under the parent's detail path.
func (k *Kind) ListPath(parent Object) (string, error) {
	if k == nil || k.PathSegment == "" {
		return "", preconditionError(fmt.Sprintf("resource kind %q has no collection path", k.String()))
	}
	if k.Parent == nil {
		return k.PathSegment, nil
	}

	if err := k.checkParent(parent); err != nil {
		return "", err
	}
	parentPath, err := parent.base().DetailPath()
	if err != nil {
		return "", err
	}
	return parentPath + "/" + k.PathSegment, nil
}

func (k *Kind) checkParent(parent Object) error {
	if k == nil || k.Parent == nil {
		return nil
	}
	if isNilObject(parent) {
		return preconditionError(fmt.Sprintf("a %s parent must be specified for %s resources", k.Parent.Name, k.Name))
	}
	if parentKind := parent.Kind(); parentKind != k.Parent {
		return preconditionError(fmt.Sprintf("the parent of a %s resource must be a %s, got %s", k.Name, k.Parent.Name, parentKind.String()))
	}
	return nil
}

func (k *Kind) newObject(r *Resource) Object {
	if k == nil || k.wrap == nil {
		return r
	}
	return k.wrap(r)
}

var (
	// GenericKind backs payloads whose discriminator is unknown and that are
	// converted without a more specific calling kind.
	GenericKind = &Kind{Name: "resource"}

	AccountKind = &Kind{
		Name:         "account",
		PathSegment:  "accounts",
		Capabilities: CapList | CapRetrieve | CapDelete,
		wrap:         func(r *Resource) Object { return &Account{Resource: r} },
	}
	FileKind = &Kind{
		Name:         "file",
		PathSegment:  "files",
		Parent:       AccountKind,
		Capabilities: CapRetrieve | CapUpdate | CapDelete,
		wrap:         func(r *Resource) Object { return &File{Resource: r} },
	}
	FolderKind = &Kind{
		Name:         "folder",
		PathSegment:  "folders",
		Parent:       AccountKind,
		DefaultID:    "root",
		Capabilities: CapRetrieve | CapCreate | CapUpdate | CapDelete,
		wrap:         func(r *Resource) Object { return &Folder{Resource: r} },
	}
	LinkKind = &Kind{
		Name:         "link",
		PathSegment:  "links",
		Parent:       AccountKind,
		Capabilities: CapList | CapRetrieve | CapCreate | CapUpdate | CapDelete,
		wrap:         func(r *Resource) Object { return &Link{Resource: r} },
	}
)

// Registry maps a payload's "type" discriminator to a kind.
type Registry struct {
	kinds map[string]*Kind
}

func NewRegistry(kinds ...*Kind) *Registry {
	registry := &Registry{kinds: make(map[string]*Kind, len(kinds))}
	for _, kind := range kinds {
		registry.Register(kind)
	}
	return registry
}

func (r *Registry) Register(kind *Kind) {
	if r == nil || kind == nil || kind.Name == "" {
		return
	}
	r.kinds[kind.Name] = kind
}

// Lookup returns the kind for discriminator or fallback when none matches.
func (r *Registry) Lookup(discriminator any, fallback *Kind) *Kind {
	name, ok := discriminator.(string)
	if !ok || r == nil {
		return fallback
	}
	if kind, found := r.kinds[name]; found {
		return kind
	}
	return fallback
}

func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry knows the built-in kinds.
var DefaultRegistry = NewRegistry(AccountKind, FileKind, FolderKind, LinkKind)
