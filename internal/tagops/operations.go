// Package tagops binds type tags to operation tables.
//
// Every well-known tag has a built-in table. Any other tag gets a dynamic
// table on first request, whose operations can be overridden by script
// callbacks until the table is locked. Values are plain cells; heavy values
// (strings, variants, lists, maps, iterators, tasks) live in pools owned by
// the Runtime and are referenced by handle.
//
// Operation methods never fail. An invalid handle, a missing override or a
// failing callback yields the neutral result (0, false or an empty string).
package tagops

import (
	"errors"
	"strings"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/tags"
)

var (
	// ErrLocked is returned by SetOp once the table is locked.
	ErrLocked = errors.New("operation table is locked")
	// ErrAlreadyLocked is returned by a second Lock.
	ErrAlreadyLocked = errors.New("operation table already locked")
	// ErrBadFormat is returned when extra arguments do not match their encoding.
	ErrBadFormat = errors.New("bad argument format")
	// ErrBuiltin is returned when overriding a tag that has a built-in table.
	ErrBuiltin = errors.New("tag has a built-in operation table")
	// ErrUnknownOp is returned for an operation name that does not exist.
	ErrUnknownOp = errors.New("unknown operation")
)

// Operations is the operation table for one tag. The tag argument is the
// tag the operands are actually carrying, which may derive from the tag the
// table was built for.
type Operations interface {
	Add(t *tags.Tag, a, b cell.Cell) cell.Cell
	Sub(t *tags.Tag, a, b cell.Cell) cell.Cell
	Mul(t *tags.Tag, a, b cell.Cell) cell.Cell
	Div(t *tags.Tag, a, b cell.Cell) cell.Cell
	Mod(t *tags.Tag, a, b cell.Cell) cell.Cell
	Neg(t *tags.Tag, a cell.Cell) cell.Cell

	Equals(t *tags.Tag, a, b cell.Cell) bool
	EqualsArray(t *tags.Tag, a, b []cell.Cell) bool

	String(t *tags.Tag, v cell.Cell) cell.String
	StringArray(t *tags.Tag, v []cell.Cell) cell.String
	FormatSpec(t *tags.Tag, array bool) byte

	// Delete releases the pooled object only; Free also releases
	// everything it owns.
	Delete(t *tags.Tag, v cell.Cell) bool
	Free(t *tags.Tag, v cell.Cell) bool
	// Copy duplicates the pooled object sharing nested content; Clone
	// duplicates nested content too.
	Copy(t *tags.Tag, v cell.Cell) cell.Cell
	Clone(t *tags.Tag, v cell.Cell) cell.Cell

	Hash(t *tags.Tag, v cell.Cell) uint32
}

// OpKind names an overridable operation.
type OpKind uint8

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpEquals
	OpString
	OpDelete
	OpFree
	OpCopy
	OpClone
	OpHash

	numOpKinds
)

func (k OpKind) String() string {
	if k < numOpKinds {
		return config.OpNames[k]
	}
	return "op?"
}

// Binary reports whether the operation takes two operands.
func (k OpKind) Binary() bool {
	return k <= OpMod || k == OpEquals
}

// ParseOpKind maps an operation name to its kind.
func ParseOpKind(name string) (OpKind, bool) {
	name = strings.ToLower(name)
	for i, n := range config.OpNames {
		if n == name {
			return OpKind(i), true
		}
	}
	return 0, false
}

// hashCombine mixes v into seed, order-sensitively.
func hashCombine(seed, v uint32) uint32 {
	return seed ^ (v + 0x9e3779b9 + (seed << 6) + (seed >> 2))
}
