// Package script is the boundary to whatever executes override callbacks.
//
// The tag layer only needs to resolve an entry point by name, push cells and
// get one cell back. Hosts are loaded into a Registry and referenced weakly
// through a Ref, so an override bound to a script that has since been
// unloaded degrades to a failed call instead of touching freed state.
package script

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/funvibe/tagops/internal/cell"
)

var (
	// ErrNotFound is returned when an entry point cannot be resolved.
	ErrNotFound = errors.New("entry point not found")
	// ErrUnloaded is returned when a Ref no longer names a loaded host.
	ErrUnloaded = errors.New("script unloaded")
	// ErrDepth is returned when nested calls exceed a Machine's limit.
	ErrDepth = errors.New("call depth exceeded")
	// ErrPanic is returned when an entry point panics.
	ErrPanic = errors.New("entry point panicked")
)

// Callable is an entry point resolved by a Host. Its concrete type is
// private to the host that produced it.
type Callable any

// Host executes script entry points.
type Host interface {
	// Resolve looks up an entry point by name.
	Resolve(name string) (Callable, bool)
	// Invoke runs fn with stack, which is given in push order (the first
	// element is pushed first). It returns the single result cell.
	Invoke(fn Callable, stack []cell.Cell) (cell.Cell, error)
}

// Ref is a weak reference to a loaded host.
type Ref struct {
	id uuid.UUID
}

// NoRef is the zero Ref; it never resolves.
var NoRef Ref

// Valid reports whether the reference was ever issued.
func (r Ref) Valid() bool { return r.id != uuid.Nil }

func (r Ref) String() string {
	if !r.Valid() {
		return "script(none)"
	}
	return "script(" + r.id.String() + ")"
}

// Registry tracks loaded hosts.
type Registry struct {
	mu    sync.RWMutex
	hosts map[uuid.UUID]Host
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{hosts: make(map[uuid.UUID]Host)}
}

// Load registers h and returns a reference to it.
func (r *Registry) Load(h Host) Ref {
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[id] = h
	return Ref{id: id}
}

// Unload forgets the host. Every outstanding Ref to it becomes dangling.
func (r *Registry) Unload(ref Ref) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.hosts[ref.id]; !ok {
		return false
	}
	delete(r.hosts, ref.id)
	return true
}

// Host returns the host behind ref, if it is still loaded.
func (r *Registry) Host(ref Ref) (Host, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hosts[ref.id]
	return h, ok
}

// Call resolves name in the host behind ref and invokes it. The registry
// lock is released before the call so callbacks may load or unload hosts.
func (r *Registry) Call(ref Ref, name string, stack []cell.Cell) (result cell.Cell, err error) {
	h, ok := r.Host(ref)
	if !ok {
		return 0, fmt.Errorf("%s: %w", ref, ErrUnloaded)
	}
	fn, ok := h.Resolve(name)
	if !ok {
		return 0, fmt.Errorf("%s: %q: %w", ref, name, ErrNotFound)
	}
	defer func() {
		if p := recover(); p != nil {
			result, err = 0, fmt.Errorf("%s: %q: %w: %v", ref, name, ErrPanic, p)
		}
	}()
	return h.Invoke(fn, stack)
}
