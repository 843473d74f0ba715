package tagops

import (
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/tags"
)

func (rt *Runtime) lookup(id tags.ID) (Operations, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	ops, ok := rt.tables[id]
	return ops, ok
}

// Resolve returns the table that interprets values of tag t: the table
// registered for t itself, else the nearest base's, else the unknown tag's.
// It never creates a table.
func (rt *Runtime) Resolve(t *tags.Tag) Operations {
	for cur := t; cur != nil; cur = cur.Base() {
		if ops, ok := rt.lookup(cur.ID); ok {
			return ops
		}
	}
	ops, _ := rt.lookup(config.TagUnknown)
	return ops
}

// GetOperations returns the authoritative table for t's own id. A tag
// without a built-in table gets an empty dynamic table on first request;
// from then on the same table is returned for the life of the runtime.
func (rt *Runtime) GetOperations(t *tags.Tag) Operations {
	if t == nil {
		t = rt.Tags.Unknown()
	}
	if ops, ok := rt.lookup(t.ID); ok {
		return ops
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if ops, ok := rt.tables[t.ID]; ok {
		return ops
	}
	d := newDynamicOps(rt, t.ID)
	rt.tables[t.ID] = d
	return d
}

// Control returns the dynamic table for t, creating it if needed. It
// returns nil for tags with a built-in table.
func (rt *Runtime) Control(t *tags.Tag) *DynamicOperations {
	d, _ := rt.GetOperations(t).(*DynamicOperations)
	return d
}

// IsBuiltin reports whether t's own id has a built-in table.
func (rt *Runtime) IsBuiltin(t *tags.Tag) bool {
	if t == nil {
		return false
	}
	ops, ok := rt.lookup(t.ID)
	if !ok {
		return false
	}
	_, dynamic := ops.(*DynamicOperations)
	return !dynamic
}

// HasTable reports whether t's own id has a table, built-in or dynamic.
func (rt *Runtime) HasTable(t *tags.Tag) bool {
	if t == nil {
		return false
	}
	_, ok := rt.lookup(t.ID)
	return ok
}
