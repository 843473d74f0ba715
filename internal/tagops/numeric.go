package tagops

import (
	"math"
	"strconv"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/tags"
)

// cellOps is plain two's-complement integer arithmetic.
type cellOps struct {
	nullOps
}

func newCellOps(rt *Runtime, uid tags.ID) *cellOps {
	o := &cellOps{nullOps{uid: uid, rt: rt}}
	o.self = o
	return o
}

func (o *cellOps) Add(t *tags.Tag, a, b cell.Cell) cell.Cell { return a + b }
func (o *cellOps) Sub(t *tags.Tag, a, b cell.Cell) cell.Cell { return a - b }
func (o *cellOps) Mul(t *tags.Tag, a, b cell.Cell) cell.Cell { return a * b }
func (o *cellOps) Neg(t *tags.Tag, a cell.Cell) cell.Cell    { return -a }

// Division by zero yields 0.
func (o *cellOps) Div(t *tags.Tag, a, b cell.Cell) cell.Cell {
	if b == 0 {
		return 0
	}
	return a / b
}

func (o *cellOps) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell {
	if b == 0 {
		return 0
	}
	return a % b
}

// EqualsArray compares raw cells; integers have no hidden structure.
func (o *cellOps) EqualsArray(t *tags.Tag, a, b []cell.Cell) bool {
	return rawEqual(a, b)
}

func rawEqual(a, b []cell.Cell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type boolOps struct {
	cellOps
}

func newBoolOps(rt *Runtime) *boolOps {
	o := &boolOps{cellOps{nullOps{uid: config.TagBool, rt: rt}}}
	o.self = o
	return o
}

// appendValue prints true/false for 1/0. Other values keep their number,
// marked with "bool:" unless the tag prefix already names a derived tag.
func (o *boolOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	switch v {
	case 1:
		return cell.AppendString(dst, "true")
	case 0:
		return cell.AppendString(dst, "false")
	}
	if t != nil && t.ID == o.uid {
		dst = cell.AppendString(dst, "bool:")
	}
	return cell.AppendString(dst, strconv.Itoa(int(v)))
}

// charOps renders a scalar as one character and an array as the string it
// spells, without prefix, braces or separators.
type charOps struct {
	cellOps
}

func newCharOps(rt *Runtime) *charOps {
	o := &charOps{cellOps{nullOps{uid: config.TagChar, rt: rt}}}
	o.self = o
	return o
}

func (o *charOps) String(t *tags.Tag, v cell.Cell) cell.String {
	return o.appendValue(nil, t, v)
}

func (o *charOps) StringArray(t *tags.Tag, v []cell.Cell) cell.String {
	str := make(cell.String, len(v))
	copy(str, v)
	return str
}

func (o *charOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecCharArray
	}
	return config.SpecChar
}

func (o *charOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	return append(dst, v)
}

// floatOps treats every cell as float32 bits.
type floatOps struct {
	cellOps
}

func newFloatOps(rt *Runtime) *floatOps {
	o := &floatOps{cellOps{nullOps{uid: config.TagFloat, rt: rt}}}
	o.self = o
	return o
}

func (o *floatOps) Add(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return cell.FromFloat(a.Float() + b.Float())
}

func (o *floatOps) Sub(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return cell.FromFloat(a.Float() - b.Float())
}

func (o *floatOps) Mul(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return cell.FromFloat(a.Float() * b.Float())
}

func (o *floatOps) Div(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return cell.FromFloat(a.Float() / b.Float())
}

func (o *floatOps) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell {
	return cell.FromFloat(float32(math.Mod(float64(a.Float()), float64(b.Float()))))
}

func (o *floatOps) Neg(t *tags.Tag, a cell.Cell) cell.Cell {
	return cell.FromFloat(-a.Float())
}

// Equals uses float comparison, so NaN != NaN.
func (o *floatOps) Equals(t *tags.Tag, a, b cell.Cell) bool {
	return a.Float() == b.Float()
}

// EqualsArray deliberately compares bit patterns, not float values.
func (o *floatOps) EqualsArray(t *tags.Tag, a, b []cell.Cell) bool {
	return rawEqual(a, b)
}

// Hash folds -0 onto +0 so that values Equals accepts hash alike.
func (o *floatOps) Hash(t *tags.Tag, v cell.Cell) uint32 {
	if v.Float() == 0 {
		return 0
	}
	return uint32(v)
}

func (o *floatOps) FormatSpec(t *tags.Tag, array bool) byte {
	if array {
		return config.SpecArray
	}
	return config.SpecFloat
}

func (o *floatOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	return cell.AppendString(dst, formatFloat(v.Float()))
}

// formatFloat prints six decimals, like C's %f.
func formatFloat(f float32) string {
	switch {
	case math.IsNaN(float64(f)):
		if math.Signbit(float64(f)) {
			return "-nan"
		}
		return "nan"
	case math.IsInf(float64(f), 1):
		return "inf"
	case math.IsInf(float64(f), -1):
		return "-inf"
	}
	return strconv.FormatFloat(float64(f), 'f', 6, 64)
}
