// Package tags is the registry of runtime type tags.
//
// Tags live in an append-only arena. A tag refers to its base by index, so
// the inheritance graph is a forest by construction: a base always exists
// before any tag deriving from it.
package tags

import (
	"strings"
	"sync"

	"github.com/funvibe/tagops/internal/config"
)

// ID identifies a tag for the lifetime of the registry.
type ID int

const noBase = -1

// Tag is a registered type tag.
type Tag struct {
	ID   ID
	Name string

	base int
	reg  *Registry
}

// Base returns the tag this one derives from, or nil for a root tag.
func (t *Tag) Base() *Tag {
	if t == nil || t.base == noBase {
		return nil
	}
	return t.reg.at(t.base)
}

// InheritsFrom reports whether other is reachable by walking the base chain
// starting at t (t itself included).
func (t *Tag) InheritsFrom(other *Tag) bool {
	if other == nil {
		return false
	}
	for cur := t; cur != nil; cur = cur.Base() {
		if cur.ID == other.ID {
			return true
		}
	}
	return false
}

// Is reports whether t is exactly the tag with id.
func (t *Tag) Is(id ID) bool {
	return t != nil && t.ID == id
}

func (t *Tag) String() string {
	if t == nil {
		return "<nil tag>"
	}
	return t.Name
}

// Registry owns all tags.
type Registry struct {
	mu     sync.RWMutex
	arena  []*Tag
	byName map[string]int
}

// NewRegistry creates a registry preloaded with the reserved tags.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, name := range config.TagNames {
		r.append(name, noBase)
	}
	return r
}

// Find returns the tag with the given id, or nil.
func (r *Registry) Find(id ID) *Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || int(id) >= len(r.arena) {
		return nil
	}
	return r.arena[id]
}

// FindByName returns the tag with the given name, or nil.
func (r *Registry) FindByName(name string) *Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx, ok := r.byName[name]; ok {
		return r.arena[idx]
	}
	return nil
}

// Unknown returns the root fallback tag.
func (r *Registry) Unknown() *Tag {
	return r.Find(config.TagUnknown)
}

// Resolve returns the tag for id, falling back to the unknown tag.
func (r *Registry) Resolve(id ID) *Tag {
	if t := r.Find(id); t != nil {
		return t
	}
	return r.Unknown()
}

// Register finds or creates the tag called name. A new name of the form
// "base@sub" derives from the tag named "base", which is registered first
// when missing.
func (r *Registry) Register(name string) *Tag {
	if t := r.FindByName(name); t != nil {
		return t
	}
	var base *Tag
	if i := strings.LastIndexByte(name, config.TagSeparator); i > 0 {
		base = r.Register(name[:i])
	}
	return r.RegisterDerived(name, base)
}

// RegisterDerived finds or creates the tag called name with an explicit
// base. An existing tag is returned unchanged.
func (r *Registry) RegisterDerived(name string, base *Tag) *Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.byName[name]; ok {
		return r.arena[idx]
	}
	b := noBase
	if base != nil {
		b = int(base.ID)
	}
	return r.append(name, b)
}

// Len returns the number of registered tags.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.arena)
}

// All returns a snapshot of every tag in id order.
func (r *Registry) All() []*Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Tag, len(r.arena))
	copy(out, r.arena)
	return out
}

func (r *Registry) append(name string, base int) *Tag {
	t := &Tag{ID: ID(len(r.arena)), Name: name, base: base, reg: r}
	r.arena = append(r.arena, t)
	r.byName[name] = int(t.ID)
	return t
}

func (r *Registry) at(idx int) *Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.arena[idx]
}
