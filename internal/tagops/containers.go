package tagops

import (
	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/hamt"
	"github.com/funvibe/tagops/internal/tags"
)

// Lists and maps compare by handle only; structural equality is not
// defined at this layer.

type listOps struct {
	nullOps
}

func newListOps(rt *Runtime) *listOps {
	o := &listOps{nullOps{uid: config.TagList, rt: rt}}
	o.self = o
	return o
}

func (o *listOps) Equals(t *tags.Tag, a, b cell.Cell) bool { return a == b }

func (o *listOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecList
}

func (o *listOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Lists.Remove(v)
}

func (o *listOps) Free(t *tags.Tag, v cell.Cell) bool {
	l, ok := o.rt.Lists.Get(v)
	if !ok || !o.rt.Lists.Remove(v) {
		return false
	}
	// Removed first so a list reachable from its own items is freed once.
	for _, item := range l.Items {
		item.Free(o.rt)
	}
	return true
}

func (o *listOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Lists.Clone(v, func(l *List) *List {
		items := make([]Box, len(l.Items))
		for i, item := range l.Items {
			items[i] = item.Copy()
		}
		return &List{Items: items}
	})
	if !ok {
		return 0
	}
	return h
}

func (o *listOps) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Lists.Clone(v, func(l *List) *List {
		items := make([]Box, len(l.Items))
		for i, item := range l.Items {
			items[i] = item.Clone(o.rt)
		}
		return &List{Items: items}
	})
	if !ok {
		return 0
	}
	return h
}

type mapOps struct {
	nullOps
}

func newMapOps(rt *Runtime) *mapOps {
	o := &mapOps{nullOps{uid: config.TagMap, rt: rt}}
	o.self = o
	return o
}

func (o *mapOps) Equals(t *tags.Tag, a, b cell.Cell) bool { return a == b }

func (o *mapOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecMap
}

func (o *mapOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Maps.Remove(v)
}

func (o *mapOps) Free(t *tags.Tag, v cell.Cell) bool {
	m, ok := o.rt.Maps.Get(v)
	if !ok || !o.rt.Maps.Remove(v) {
		return false
	}
	for _, e := range m.Entries() {
		e.Key.Free(o.rt)
		e.Value.Free(o.rt)
	}
	return true
}

// Copy shares the trie; later writes to either map do not affect the other.
func (o *mapOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Maps.Clone(v, nil)
	if !ok {
		return 0
	}
	return h
}

func (o *mapOps) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Maps.Clone(v, func(m *Map) *Map {
		kr := boxKeyer{o.rt}
		out := hamt.Empty[Box, Box]()
		for _, e := range m.Entries() {
			out = out.Put(kr, e.Key.Clone(o.rt), e.Value.Clone(o.rt))
		}
		return &Map{entries: out}
	})
	if !ok {
		return 0
	}
	return h
}

// iterOps: iterators own nothing, so Delete and Free match and Copy and
// Clone both duplicate the cursor.
type iterOps struct {
	nullOps
}

func newIterOps(rt *Runtime) *iterOps {
	o := &iterOps{nullOps{uid: config.TagIter, rt: rt}}
	o.self = o
	return o
}

func (o *iterOps) Equals(t *tags.Tag, a, b cell.Cell) bool {
	it1, ok := o.rt.Iters.Get(a)
	if !ok {
		return false
	}
	it2, ok := o.rt.Iters.Get(b)
	if !ok {
		return false
	}
	return it1.Equal(it2)
}

func (o *iterOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Iters.Remove(v)
}

func (o *iterOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Iters.Clone(v, nil)
	if !ok {
		return 0
	}
	return h
}
