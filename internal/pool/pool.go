// Package pool implements handle-indexed object stores.
//
// A pool owns its objects; a handle is a non-owning reference. Handle 0 is
// the null handle and is never allocated. Handles are handed out in
// increasing order, so a stale handle keeps reporting Missing after its
// object is removed. After the counter wraps, handles still live are skipped.
package pool

import (
	"fmt"
	"sync"

	"github.com/funvibe/tagops/internal/cell"
)

// Status is the outcome of a handle lookup.
type Status uint8

const (
	// Missing means the handle does not name a live object.
	Missing Status = iota
	// Null means the handle is the null handle.
	Null
	// Found means the handle names a live object.
	Found
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Null:
		return "null"
	case Found:
		return "found"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Pool is a handle-indexed store of *T.
//
// The mutex is never held while user callbacks run, so a clone function may
// itself use this pool.
type Pool[T any] struct {
	name string

	mu      sync.Mutex
	next    cell.Cell
	entries map[cell.Cell]*T
}

// New creates an empty pool. The name is used in diagnostics only.
func New[T any](name string) *Pool[T] {
	return &Pool[T]{name: name, next: 1, entries: make(map[cell.Cell]*T)}
}

// Name returns the diagnostic name of the pool.
func (p *Pool[T]) Name() string { return p.name }

// Add stores obj and returns its new handle.
func (p *Pool[T]) Add(obj *T) cell.Cell {
	if obj == nil {
		obj = new(T)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		h := p.next
		p.next++
		if p.next <= 0 {
			// wrapped; handles stay positive
			p.next = 1
		}
		if _, live := p.entries[h]; !live {
			p.entries[h] = obj
			return h
		}
	}
}

// Lookup resolves a handle to its object.
func (p *Pool[T]) Lookup(h cell.Cell) (*T, Status) {
	if h == cell.Null {
		return nil, Null
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if obj, ok := p.entries[h]; ok {
		return obj, Found
	}
	return nil, Missing
}

// Get returns the object for a live handle.
func (p *Pool[T]) Get(h cell.Cell) (*T, bool) {
	obj, st := p.Lookup(h)
	return obj, st == Found
}

// Contains reports whether h names a live object.
func (p *Pool[T]) Contains(h cell.Cell) bool {
	_, ok := p.Get(h)
	return ok
}

// Remove drops the object named by h.
func (p *Pool[T]) Remove(h cell.Cell) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[h]; !ok {
		return false
	}
	delete(p.entries, h)
	return true
}

// Clone stores a duplicate of the object named by h and returns the new
// handle. With a nil dup the object is copied by value.
func (p *Pool[T]) Clone(h cell.Cell, dup func(*T) *T) (cell.Cell, bool) {
	obj, ok := p.Get(h)
	if !ok {
		return cell.Null, false
	}
	var copied *T
	if dup != nil {
		copied = dup(obj)
	} else {
		v := *obj
		copied = &v
	}
	return p.Add(copied), true
}

// Len returns the number of live objects.
func (p *Pool[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
