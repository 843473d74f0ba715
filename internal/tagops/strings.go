package tagops

import (
	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/pool"
	"github.com/funvibe/tagops/internal/tags"
)

// stringOps works on handles into the string pool. The null handle is a
// valid empty string; a stale handle is not.
type stringOps struct {
	nullOps
}

func newStringOps(rt *Runtime) *stringOps {
	o := &stringOps{nullOps{uid: config.TagString, rt: rt}}
	o.self = o
	return o
}

// Add concatenates into a fresh pooled string owned by the caller.
func (o *stringOps) Add(t *tags.Tag, a, b cell.Cell) cell.Cell {
	s1, st1 := o.rt.Strings.Lookup(a)
	s2, st2 := o.rt.Strings.Lookup(b)
	if st1 == pool.Missing || st2 == pool.Missing {
		return 0
	}
	var out cell.String
	if s1 != nil {
		out = append(out, *s1...)
	}
	if s2 != nil {
		out = append(out, *s2...)
	}
	if out == nil {
		out = cell.String{}
	}
	return o.rt.Strings.Add(&out)
}

func (o *stringOps) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return o.Add(t, a, b)
}

func (o *stringOps) Equals(t *tags.Tag, a, b cell.Cell) bool {
	s1, st1 := o.rt.Strings.Lookup(a)
	s2, st2 := o.rt.Strings.Lookup(b)
	if st1 == pool.Missing || st2 == pool.Missing {
		return false
	}
	switch {
	case s1 == nil && s2 == nil:
		return true
	case s1 == nil:
		return len(*s2) == 0
	case s2 == nil:
		return len(*s1) == 0
	}
	return s1.Equal(*s2)
}

func (o *stringOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecString
}

func (o *stringOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Strings.Remove(v)
}

// Free is Delete: a string owns nothing else.
func (o *stringOps) Free(t *tags.Tag, v cell.Cell) bool {
	return o.Delete(t, v)
}

func (o *stringOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	h, ok := o.rt.Strings.Clone(v, func(s *cell.String) *cell.String {
		dup := make(cell.String, len(*s))
		copy(dup, *s)
		return &dup
	})
	if !ok {
		return 0
	}
	return h
}

func (o *stringOps) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	return o.Copy(t, v)
}

func (o *stringOps) Hash(t *tags.Tag, v cell.Cell) uint32 {
	s, ok := o.rt.Strings.Get(v)
	if !ok {
		return o.nullOps.Hash(t, v)
	}
	var seed uint32
	for _, c := range *s {
		seed = hashCombine(seed, uint32(c))
	}
	return seed
}

func (o *stringOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	if s, ok := o.rt.Strings.Get(v); ok {
		dst = append(dst, *s...)
	}
	return dst
}
