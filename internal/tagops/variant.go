package tagops

import (
	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/pool"
	"github.com/funvibe/tagops/internal/tags"
)

// variantOps works on handles into the variant pool.
type variantOps struct {
	nullOps
}

func newVariantOps(rt *Runtime) *variantOps {
	o := &variantOps{nullOps{uid: config.TagVariant, rt: rt}}
	o.self = o
	return o
}

// binary unboxes both operands and pools the result. An empty result means
// the operation is undefined for the boxed kinds and yields 0.
func (o *variantOps) binary(a, b cell.Cell, op func(x, y Box) Box) cell.Cell {
	v1, ok := o.rt.Variants.Get(a)
	if !ok {
		return 0
	}
	v2, ok := o.rt.Variants.Get(b)
	if !ok {
		return 0
	}
	result := op(*v1, *v2)
	if result.Empty() {
		return 0
	}
	return o.rt.NewVariant(result)
}

func (o *variantOps) Add(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.binary(a, b, func(x, y Box) Box { return x.Add(o.rt, y) })
}

func (o *variantOps) Sub(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.binary(a, b, func(x, y Box) Box { return x.Sub(o.rt, y) })
}

func (o *variantOps) Mul(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.binary(a, b, func(x, y Box) Box { return x.Mul(o.rt, y) })
}

func (o *variantOps) Div(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.binary(a, b, func(x, y Box) Box { return x.Div(o.rt, y) })
}

func (o *variantOps) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.binary(a, b, func(x, y Box) Box { return x.Mod(o.rt, y) })
}

func (o *variantOps) Neg(t *tags.Tag, a cell.Cell) cell.Cell {
	v, ok := o.rt.Variants.Get(a)
	if !ok {
		return 0
	}
	result := v.Neg(o.rt)
	if result.Empty() {
		return 0
	}
	return o.rt.NewVariant(result)
}

// Equals treats the null handle and an empty box alike.
func (o *variantOps) Equals(t *tags.Tag, a, b cell.Cell) bool {
	v1, st1 := o.rt.Variants.Lookup(a)
	v2, st2 := o.rt.Variants.Lookup(b)
	if st1 == pool.Missing || st2 == pool.Missing {
		return false
	}
	if v1 == nil || v1.Empty() {
		return v2 == nil || v2.Empty()
	}
	if v2 == nil {
		return false
	}
	return v1.Equal(o.rt, *v2)
}

func (o *variantOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecVariant
}

func (o *variantOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Variants.Remove(v)
}

func (o *variantOps) Free(t *tags.Tag, v cell.Cell) bool {
	b, ok := o.rt.Variants.Get(v)
	if !ok || !o.rt.Variants.Remove(v) {
		return false
	}
	b.Free(o.rt)
	return true
}

func (o *variantOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Variants.Clone(v, func(b *Box) *Box {
		c := b.Copy()
		return &c
	})
	if !ok {
		return 0
	}
	return h
}

func (o *variantOps) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Variants.Clone(v, func(b *Box) *Box {
		c := b.Clone(o.rt)
		return &c
	})
	if !ok {
		return 0
	}
	return h
}

func (o *variantOps) Hash(t *tags.Tag, v cell.Cell) uint32 {
	if b, ok := o.rt.Variants.Get(v); ok {
		return b.Hash(o.rt)
	}
	return o.nullOps.Hash(t, v)
}

func (o *variantOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	dst = append(dst, '(')
	if b, ok := o.rt.Variants.Get(v); ok {
		dst = append(dst, b.String(o.rt)...)
	}
	return append(dst, ')')
}
