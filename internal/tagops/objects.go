package tagops

import (
	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/hamt"
	"github.com/funvibe/tagops/internal/tags"
)

// List is an ordered sequence of boxed values.
type List struct {
	Items []Box
}

// Map associates boxed keys with boxed values. It is backed by a persistent
// trie, so a structural copy is O(1).
type Map struct {
	entries *hamt.Map[Box, Box]
}

// Len returns the number of entries.
func (m *Map) Len() int { return m.entries.Len() }

// Put sets key to value.
func (m *Map) Put(rt *Runtime, key, value Box) {
	m.entries = m.entries.Put(boxKeyer{rt}, key, value)
}

// Get returns the value stored under key.
func (m *Map) Get(rt *Runtime, key Box) (Box, bool) {
	return m.entries.Get(boxKeyer{rt}, key)
}

// Remove deletes key.
func (m *Map) Remove(rt *Runtime, key Box) {
	m.entries = m.entries.Remove(boxKeyer{rt}, key)
}

// Entries returns a snapshot of all pairs.
func (m *Map) Entries() []hamt.Entry[Box, Box] {
	return m.entries.Items()
}

// Iterator is a cursor over a pooled list or map.
type Iterator struct {
	Source tags.ID // config.TagList or config.TagMap
	Handle cell.Cell
	Pos    int
}

// Equal reports whether both cursors walk the same container at the same
// position.
func (it *Iterator) Equal(o *Iterator) bool {
	return it.Source == o.Source && it.Handle == o.Handle && it.Pos == o.Pos
}

func (it *Iterator) size(rt *Runtime) (int, bool) {
	switch it.Source {
	case config.TagList:
		if l, ok := rt.Lists.Get(it.Handle); ok {
			return len(l.Items), true
		}
	case config.TagMap:
		if m, ok := rt.Maps.Get(it.Handle); ok {
			return m.Len(), true
		}
	}
	return 0, false
}

// Valid reports whether the cursor points at an element of a live container.
func (it *Iterator) Valid(rt *Runtime) bool {
	n, ok := it.size(rt)
	return ok && it.Pos >= 0 && it.Pos < n
}

// Next advances the cursor and reports whether it is still valid.
func (it *Iterator) Next(rt *Runtime) bool {
	if !it.Valid(rt) {
		return false
	}
	it.Pos++
	return it.Valid(rt)
}

// Value returns the element under the cursor. For maps it returns the pair
// as key and value; for lists the key is empty.
func (it *Iterator) Value(rt *Runtime) (key, value Box, ok bool) {
	if !it.Valid(rt) {
		return Box{}, Box{}, false
	}
	switch it.Source {
	case config.TagList:
		l, _ := rt.Lists.Get(it.Handle)
		return Box{}, l.Items[it.Pos], true
	case config.TagMap:
		m, _ := rt.Maps.Get(it.Handle)
		e := m.Entries()[it.Pos]
		return e.Key, e.Value, true
	}
	return Box{}, Box{}, false
}

// Task is a pending asynchronous operation.
type Task struct {
	Name   string
	Done   bool
	Result cell.Cell
}

// Complete marks the task finished with result.
func (t *Task) Complete(result cell.Cell) {
	t.Done = true
	t.Result = result
}
