package tagops

import (
	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/tags"
)

// Box is a tagged value: a scalar or an array of cells together with the
// tag that interprets them. The zero Box is empty.
//
// A Box does not own its cells' pooled objects by itself; Free and Clone
// reach them through the tag's operation table.
type Box struct {
	Tag   *tags.Tag
	Data  []cell.Cell
	Array bool
}

// Scalar boxes a single cell.
func Scalar(t *tags.Tag, v cell.Cell) Box {
	return Box{Tag: t, Data: []cell.Cell{v}}
}

// ArrayOf boxes a copy of vs.
func ArrayOf(t *tags.Tag, vs []cell.Cell) Box {
	data := make([]cell.Cell, len(vs))
	copy(data, vs)
	return Box{Tag: t, Data: data, Array: true}
}

// Empty reports whether the box holds nothing.
func (b Box) Empty() bool {
	return b.Tag == nil
}

// Cell returns the scalar value, or the first cell of an array.
func (b Box) Cell() cell.Cell {
	if len(b.Data) == 0 {
		return 0
	}
	return b.Data[0]
}

// common picks the tag both operands can be treated as: the same tag, or
// the base when one derives from the other.
func (b Box) common(o Box) *tags.Tag {
	if b.Empty() || o.Empty() {
		return nil
	}
	switch {
	case b.Tag.ID == o.Tag.ID:
		return b.Tag
	case o.Tag.InheritsFrom(b.Tag):
		return b.Tag
	case b.Tag.InheritsFrom(o.Tag):
		return o.Tag
	}
	return nil
}

func (b Box) binary(rt *Runtime, o Box, op func(Operations, *tags.Tag, cell.Cell, cell.Cell) cell.Cell) Box {
	t := b.common(o)
	if t == nil || b.Array != o.Array || len(b.Data) != len(o.Data) {
		return Box{}
	}
	ops := rt.Resolve(t)
	out := make([]cell.Cell, len(b.Data))
	for i := range b.Data {
		out[i] = op(ops, t, b.Data[i], o.Data[i])
	}
	return Box{Tag: t, Data: out, Array: b.Array}
}

func (b Box) Add(rt *Runtime, o Box) Box {
	return b.binary(rt, o, func(ops Operations, t *tags.Tag, x, y cell.Cell) cell.Cell { return ops.Add(t, x, y) })
}

func (b Box) Sub(rt *Runtime, o Box) Box {
	return b.binary(rt, o, func(ops Operations, t *tags.Tag, x, y cell.Cell) cell.Cell { return ops.Sub(t, x, y) })
}

func (b Box) Mul(rt *Runtime, o Box) Box {
	return b.binary(rt, o, func(ops Operations, t *tags.Tag, x, y cell.Cell) cell.Cell { return ops.Mul(t, x, y) })
}

func (b Box) Div(rt *Runtime, o Box) Box {
	return b.binary(rt, o, func(ops Operations, t *tags.Tag, x, y cell.Cell) cell.Cell { return ops.Div(t, x, y) })
}

func (b Box) Mod(rt *Runtime, o Box) Box {
	return b.binary(rt, o, func(ops Operations, t *tags.Tag, x, y cell.Cell) cell.Cell { return ops.Mod(t, x, y) })
}

func (b Box) Neg(rt *Runtime) Box {
	if b.Empty() {
		return Box{}
	}
	ops := rt.Resolve(b.Tag)
	out := make([]cell.Cell, len(b.Data))
	for i, c := range b.Data {
		out[i] = ops.Neg(b.Tag, c)
	}
	return Box{Tag: b.Tag, Data: out, Array: b.Array}
}

// Equal compares two boxes through their tag's table.
func (b Box) Equal(rt *Runtime, o Box) bool {
	if b.Empty() || o.Empty() {
		return b.Empty() && o.Empty()
	}
	t := b.common(o)
	if t == nil || b.Array != o.Array || len(b.Data) != len(o.Data) {
		return false
	}
	ops := rt.Resolve(t)
	if b.Array {
		return ops.EqualsArray(t, b.Data, o.Data)
	}
	return ops.Equals(t, b.Cell(), o.Cell())
}

// Hash combines the tag id with every cell's hash.
func (b Box) Hash(rt *Runtime) uint32 {
	if b.Empty() {
		return 0
	}
	ops := rt.Resolve(b.Tag)
	seed := uint32(b.Tag.ID)
	for _, c := range b.Data {
		seed = hashCombine(seed, ops.Hash(b.Tag, c))
	}
	return seed
}

// String renders the box through its tag's table.
func (b Box) String(rt *Runtime) cell.String {
	if b.Empty() {
		return nil
	}
	ops := rt.Resolve(b.Tag)
	if b.Array {
		return ops.StringArray(b.Tag, b.Data)
	}
	return ops.String(b.Tag, b.Cell())
}

// Free releases whatever the cells own.
func (b Box) Free(rt *Runtime) {
	if b.Empty() {
		return
	}
	ops := rt.Resolve(b.Tag)
	for _, c := range b.Data {
		ops.Free(b.Tag, c)
	}
}

// Copy duplicates the cells, sharing any pooled objects they name.
func (b Box) Copy() Box {
	if b.Empty() {
		return Box{}
	}
	data := make([]cell.Cell, len(b.Data))
	copy(data, b.Data)
	return Box{Tag: b.Tag, Data: data, Array: b.Array}
}

// Clone duplicates the cells and, through the tag's table, whatever they own.
func (b Box) Clone(rt *Runtime) Box {
	if b.Empty() {
		return Box{}
	}
	ops := rt.Resolve(b.Tag)
	data := make([]cell.Cell, len(b.Data))
	for i, c := range b.Data {
		data[i] = ops.Clone(b.Tag, c)
	}
	return Box{Tag: b.Tag, Data: data, Array: b.Array}
}

// boxKeyer hashes and compares boxes for maps.
type boxKeyer struct {
	rt *Runtime
}

func (k boxKeyer) Hash(b Box) uint32   { return b.Hash(k.rt) }
func (k boxKeyer) Equal(a, b Box) bool { return a.Equal(k.rt, b) }
