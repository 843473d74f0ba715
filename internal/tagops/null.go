package tagops

import (
	"strconv"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/tags"
)

// table is what nullOps calls back into, so that a concrete table's
// overrides take effect inside the shared default behaviour.
type table interface {
	Operations
	appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String
}

// nullOps is the default table. Arithmetic yields zero, equality is cell
// identity and nothing is pooled. It renders "<tag>:<value>" for tags other
// than its own.
type nullOps struct {
	uid  tags.ID
	rt   *Runtime
	self table
}

func newNullOps(rt *Runtime, uid tags.ID) *nullOps {
	o := &nullOps{uid: uid, rt: rt}
	o.self = o
	return o
}

func (o *nullOps) Add(t *tags.Tag, a, b cell.Cell) cell.Cell { return 0 }
func (o *nullOps) Sub(t *tags.Tag, a, b cell.Cell) cell.Cell { return 0 }
func (o *nullOps) Mul(t *tags.Tag, a, b cell.Cell) cell.Cell { return 0 }
func (o *nullOps) Div(t *tags.Tag, a, b cell.Cell) cell.Cell { return 0 }
func (o *nullOps) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell { return 0 }
func (o *nullOps) Neg(t *tags.Tag, a cell.Cell) cell.Cell    { return 0 }

func (o *nullOps) prefix(dst cell.String, t *tags.Tag) cell.String {
	if t != nil && !t.Is(o.uid) {
		dst = cell.AppendString(dst, t.Name)
		dst = append(dst, ':')
	}
	return dst
}

func (o *nullOps) String(t *tags.Tag, v cell.Cell) cell.String {
	var str cell.String
	str = o.prefix(str, t)
	return o.self.appendValue(str, t, v)
}

func (o *nullOps) StringArray(t *tags.Tag, v []cell.Cell) cell.String {
	var str cell.String
	str = o.prefix(str, t)
	str = append(str, '{')
	for i, c := range v {
		if i > 0 {
			str = append(str, ',', ' ')
		}
		str = o.self.appendValue(str, t, c)
	}
	return append(str, '}')
}

func (o *nullOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	return cell.AppendString(dst, strconv.Itoa(int(v)))
}

func (o *nullOps) Equals(t *tags.Tag, a, b cell.Cell) bool {
	return a == b
}

func (o *nullOps) EqualsArray(t *tags.Tag, a, b []cell.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !o.self.Equals(t, a[i], b[i]) {
			return false
		}
	}
	return true
}

func (o *nullOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecInt
}

func (o *nullOps) Delete(t *tags.Tag, v cell.Cell) bool { return false }

func (o *nullOps) Free(t *tags.Tag, v cell.Cell) bool {
	return o.self.Delete(t, v)
}

func (o *nullOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell { return v }

func (o *nullOps) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	return o.self.Copy(t, v)
}

func (o *nullOps) Hash(t *tags.Tag, v cell.Cell) uint32 {
	return uint32(v)
}
