package tagops

import (
	"fmt"
	"sync"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/script"
	"github.com/funvibe/tagops/internal/tags"
)

// DynamicOperations is the table of a tag without a built-in table. Each
// operation can be bound to a script entry point; unbound operations behave
// like the default table. Once locked, the bindings are frozen.
type DynamicOperations struct {
	nullOps

	mu       sync.RWMutex
	locked   bool
	handlers map[OpKind]*handler
}

func newDynamicOps(rt *Runtime, uid tags.ID) *DynamicOperations {
	d := &DynamicOperations{
		nullOps:  nullOps{uid: uid, rt: rt},
		handlers: make(map[OpKind]*handler),
	}
	d.self = d
	return d
}

// handler is one override: the entry point plus its stored arguments.
type handler struct {
	kind   OpKind
	ref    script.Ref
	name   string
	params []param
}

// SetOp binds kind to the entry point name of the script behind ref,
// replacing any earlier binding. format describes the extra arguments
// passed to every call, one character per argument (see config.ArgFormats),
// with values taken from args in order.
func (d *DynamicOperations) SetOp(kind OpKind, ref script.Ref, name, format string, args ...any) error {
	if kind >= numOpKinds {
		return fmt.Errorf("%w: %d", ErrUnknownOp, kind)
	}
	if name == "" {
		return fmt.Errorf("%w: empty handler name", ErrBadFormat)
	}
	params, err := parseParams(format, args)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return ErrLocked
	}
	d.handlers[kind] = &handler{kind: kind, ref: ref, name: name, params: params}
	return nil
}

// Lock freezes the table. It fails if the table is already locked.
func (d *DynamicOperations) Lock() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.locked {
		return ErrAlreadyLocked
	}
	d.locked = true
	return nil
}

// Locked reports whether Lock has been called.
func (d *DynamicOperations) Locked() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locked
}

// Has reports whether kind is overridden.
func (d *DynamicOperations) Has(kind OpKind) bool {
	return d.handler(kind) != nil
}

// Kinds lists the overridden operations in kind order.
func (d *DynamicOperations) Kinds() []OpKind {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []OpKind
	for k := OpKind(0); k < numOpKinds; k++ {
		if _, ok := d.handlers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func (d *DynamicOperations) handler(kind OpKind) *handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[kind]
}

// call runs h with operands pushed last-first, then the stored arguments
// in reverse declaration order. Any failure yields 0.
func (d *DynamicOperations) call(t *tags.Tag, h *handler, operands ...cell.Cell) cell.Cell {
	stack := make([]cell.Cell, 0, len(operands)+len(h.params))
	for i := len(operands) - 1; i >= 0; i-- {
		stack = append(stack, operands[i])
	}

	var temps []cell.Cell
	for i := len(h.params) - 1; i >= 0; i-- {
		c, temp := h.params[i].push(d.rt, h.kind)
		if temp {
			temps = append(temps, c)
		}
		stack = append(stack, c)
	}
	defer func() {
		for _, c := range temps {
			d.rt.Strings.Remove(c)
		}
	}()

	result, err := d.rt.Scripts.Call(h.ref, h.name, stack)
	if err != nil {
		d.rt.tracef("%s %s: %s: %v", t, h.kind, h.name, err)
		return 0
	}
	return result
}

func (d *DynamicOperations) binary(t *tags.Tag, kind OpKind, a, b cell.Cell) (cell.Cell, bool) {
	h := d.handler(kind)
	if h == nil {
		return 0, false
	}
	return d.call(t, h, a, b), true
}

func (d *DynamicOperations) unary(t *tags.Tag, kind OpKind, a cell.Cell) (cell.Cell, bool) {
	h := d.handler(kind)
	if h == nil {
		return 0, false
	}
	return d.call(t, h, a), true
}

func (d *DynamicOperations) Add(t *tags.Tag, a, b cell.Cell) cell.Cell {
	r, _ := d.binary(t, OpAdd, a, b)
	return r
}

func (d *DynamicOperations) Sub(t *tags.Tag, a, b cell.Cell) cell.Cell {
	r, _ := d.binary(t, OpSub, a, b)
	return r
}

func (d *DynamicOperations) Mul(t *tags.Tag, a, b cell.Cell) cell.Cell {
	r, _ := d.binary(t, OpMul, a, b)
	return r
}

func (d *DynamicOperations) Div(t *tags.Tag, a, b cell.Cell) cell.Cell {
	r, _ := d.binary(t, OpDiv, a, b)
	return r
}

func (d *DynamicOperations) Mod(t *tags.Tag, a, b cell.Cell) cell.Cell {
	r, _ := d.binary(t, OpMod, a, b)
	return r
}

func (d *DynamicOperations) Neg(t *tags.Tag, a cell.Cell) cell.Cell {
	r, _ := d.unary(t, OpNeg, a)
	return r
}

func (d *DynamicOperations) Equals(t *tags.Tag, a, b cell.Cell) bool {
	if r, ok := d.binary(t, OpEquals, a, b); ok {
		return r != 0
	}
	return d.nullOps.Equals(t, a, b)
}

func (d *DynamicOperations) Delete(t *tags.Tag, v cell.Cell) bool {
	if r, ok := d.unary(t, OpDelete, v); ok {
		return r != 0
	}
	return d.nullOps.Delete(t, v)
}

func (d *DynamicOperations) Free(t *tags.Tag, v cell.Cell) bool {
	if r, ok := d.unary(t, OpFree, v); ok {
		return r != 0
	}
	return d.nullOps.Free(t, v)
}

func (d *DynamicOperations) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	if r, ok := d.unary(t, OpCopy, v); ok {
		return r
	}
	return d.nullOps.Copy(t, v)
}

func (d *DynamicOperations) Clone(t *tags.Tag, v cell.Cell) cell.Cell {
	if r, ok := d.unary(t, OpClone, v); ok {
		return r
	}
	return d.nullOps.Clone(t, v)
}

func (d *DynamicOperations) Hash(t *tags.Tag, v cell.Cell) uint32 {
	if r, ok := d.unary(t, OpHash, v); ok {
		return uint32(r)
	}
	return d.nullOps.Hash(t, v)
}

// appendValue copies the pooled string returned by a string override, or
// prints the number when there is none.
func (d *DynamicOperations) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	r, ok := d.unary(t, OpString, v)
	if !ok {
		return d.nullOps.appendValue(dst, t, v)
	}
	if s, found := d.rt.Strings.Get(r); found {
		dst = append(dst, *s...)
	}
	return dst
}
