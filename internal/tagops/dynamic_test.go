package tagops

import (
	"bytes"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/script"
	"github.com/funvibe/tagops/internal/tags"
)

// newScripted returns a runtime with one loaded machine and the dynamic
// table of a fresh tag.
func newScripted(t *testing.T, name string) (*Runtime, *script.Machine, script.Ref, *tags.Tag, *DynamicOperations) {
	t.Helper()
	rt := newTestRuntime(t)
	m := script.NewMachine()
	ref := rt.Scripts.Load(m)
	tag := rt.Tags.Register(name)
	d := rt.Control(tag)
	if d == nil {
		t.Fatalf("Control(%s) = nil", name)
	}
	return rt, m, ref, tag, d
}

func TestDynamicDefaults(t *testing.T) {
	rt, _, _, tag, d := newScripted(t, "Vec")

	if got := d.Add(tag, 3, 4); got != 0 {
		t.Errorf("Add = %d, want 0", got)
	}
	if !d.Equals(tag, 5, 5) || d.Equals(tag, 5, 6) {
		t.Error("unbound Equals must compare cells")
	}
	if d.Copy(tag, 9) != 9 || d.Clone(tag, 9) != 9 {
		t.Error("unbound Copy and Clone must return the cell")
	}
	if d.Delete(tag, 9) || d.Free(tag, 9) {
		t.Error("unbound Delete and Free must fail")
	}
	if d.Hash(tag, 9) != 9 {
		t.Errorf("Hash = %d, want 9", d.Hash(tag, 9))
	}
	if got := rt.Render(tag, 5); got != "5" {
		t.Errorf("Render = %q, want 5", got)
	}
	if d.Locked() || len(d.Kinds()) != 0 {
		t.Error("new table must be open and empty")
	}
}

func TestDynamicArgumentOrder(t *testing.T) {
	_, m, ref, tag, d := newScripted(t, "Vec")
	m.Define("concat", func(args []cell.Cell) (cell.Cell, error) {
		return args[0]*10 + args[1], nil
	})
	if err := d.SetOp(OpAdd, ref, "concat", ""); err != nil {
		t.Fatal(err)
	}
	if got := d.Add(tag, 3, 4); got != 34 {
		t.Errorf("Add(3, 4) = %d, want 34", got)
	}
	if !d.Has(OpAdd) || d.Has(OpSub) {
		t.Error("Has reports the wrong bindings")
	}
}

func TestDynamicExtraArguments(t *testing.T) {
	_, m, ref, tag, d := newScripted(t, "Vec")
	var seen []cell.Cell
	m.Define("probe", func(args []cell.Cell) (cell.Cell, error) {
		seen = append([]cell.Cell(nil), args...)
		return 1, nil
	})
	if err := d.SetOp(OpSub, ref, "probe", "ie", 7); err != nil {
		t.Fatal(err)
	}
	d.Sub(tag, 1, 2)

	want := []cell.Cell{7, cell.Cell(OpSub), 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("args = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("args[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestDynamicStringArgumentIsReleased(t *testing.T) {
	rt, m, ref, tag, d := newScripted(t, "Vec")
	var during string
	m.Define("named", func(args []cell.Cell) (cell.Cell, error) {
		s, ok := rt.StringValue(args[0])
		if !ok {
			return 0, errors.New("string argument not pooled")
		}
		during = s
		return args[1], nil
	})
	if err := d.SetOp(OpNeg, ref, "named", "sf", "label", 1.5); err != nil {
		t.Fatal(err)
	}

	before := rt.Strings.Len()
	got := d.Neg(tag, 3)
	if during != "label" {
		t.Errorf("string argument = %q, want label", during)
	}
	if got != cell.FromFloat(1.5) {
		t.Errorf("float argument = %v, want 1.5", got.Float())
	}
	if rt.Strings.Len() != before {
		t.Errorf("strings after call = %d, want %d", rt.Strings.Len(), before)
	}
}

func TestDynamicStringOverride(t *testing.T) {
	rt, m, ref, tag, d := newScripted(t, "Vec")
	m.Define("show", func(args []cell.Cell) (cell.Cell, error) {
		return rt.NewString("<" + rt.Render(rt.Tag(1), args[0]) + ">"), nil
	})
	if err := d.SetOp(OpString, ref, "show", ""); err != nil {
		t.Fatal(err)
	}

	if got := rt.Render(tag, 5); got != "<5>" {
		t.Errorf("Render = %q, want <5>", got)
	}
	if got := rt.RenderArray(tag, []cell.Cell{1, 2}); got != "{<1>, <2>}" {
		t.Errorf("RenderArray = %q, want {<1>, <2>}", got)
	}

	fast := rt.Tags.Register("Vec@Fast")
	if rt.Resolve(fast) != Operations(d) {
		t.Fatal("derived tag must use the base table")
	}
	if got := rt.Render(fast, 5); got != "Vec@Fast:<5>" {
		t.Errorf("Render(derived) = %q, want Vec@Fast:<5>", got)
	}
}

func TestDynamicLock(t *testing.T) {
	_, m, ref, tag, d := newScripted(t, "Vec")
	m.Define("one", func(args []cell.Cell) (cell.Cell, error) { return 1, nil })
	m.Define("two", func(args []cell.Cell) (cell.Cell, error) { return 2, nil })

	if err := d.SetOp(OpMul, ref, "one", ""); err != nil {
		t.Fatal(err)
	}
	if err := d.SetOp(OpMul, ref, "two", ""); err != nil {
		t.Fatalf("replacing while open: %v", err)
	}
	if got := d.Mul(tag, 0, 0); got != 2 {
		t.Errorf("Mul = %d, want the replacement result 2", got)
	}

	if err := d.Lock(); err != nil {
		t.Fatal(err)
	}
	if err := d.Lock(); !errors.Is(err, ErrAlreadyLocked) {
		t.Errorf("second Lock = %v, want ErrAlreadyLocked", err)
	}
	if err := d.SetOp(OpMul, ref, "one", ""); !errors.Is(err, ErrLocked) {
		t.Errorf("SetOp after Lock = %v, want ErrLocked", err)
	}
	if got := d.Mul(tag, 0, 0); got != 2 {
		t.Errorf("Mul after Lock = %d, want 2", got)
	}
	if !d.Locked() {
		t.Error("Locked() = false")
	}
}

func TestDynamicFailuresYieldZero(t *testing.T) {
	var buf bytes.Buffer
	rt := New(Options{Logger: log.New(&buf, "", 0), Trace: true})
	m := script.NewMachine()
	ref := rt.Scripts.Load(m)
	tag := rt.Tags.Register("Vec")
	d := rt.Control(tag)

	m.Define("boom", func(args []cell.Cell) (cell.Cell, error) {
		return 5, errors.New("boom")
	})
	if err := d.SetOp(OpAdd, ref, "boom", ""); err != nil {
		t.Fatal(err)
	}
	if err := d.SetOp(OpSub, ref, "missing", ""); err != nil {
		t.Fatal(err)
	}

	if got := d.Add(tag, 1, 2); got != 0 {
		t.Errorf("failing callback = %d, want 0", got)
	}
	if got := d.Sub(tag, 1, 2); got != 0 {
		t.Errorf("unresolved entry point = %d, want 0", got)
	}
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("trace output %q does not mention the failure", buf.String())
	}
	if !strings.Contains(buf.String(), "missing") {
		t.Errorf("trace output %q does not mention the missing entry point", buf.String())
	}

	rt.Scripts.Unload(ref)
	buf.Reset()
	if got := d.Add(tag, 1, 2); got != 0 {
		t.Errorf("unloaded script = %d, want 0", got)
	}
	if !strings.Contains(buf.String(), script.ErrUnloaded.Error()) {
		t.Errorf("trace output %q does not mention the unloaded script", buf.String())
	}

	rt.SetTrace(false)
	buf.Reset()
	d.Add(tag, 1, 2)
	if buf.Len() != 0 {
		t.Errorf("trace disabled but got %q", buf.String())
	}
}

func TestDynamicSetOpErrors(t *testing.T) {
	_, _, ref, _, d := newScripted(t, "Vec")

	tests := []struct {
		name   string
		kind   OpKind
		fn     string
		format string
		args   []any
		want   error
	}{
		{"unknown op", OpKind(99), "f", "", nil, ErrUnknownOp},
		{"empty name", OpAdd, "", "", nil, ErrBadFormat},
		{"missing value", OpAdd, "f", "i", nil, ErrBadFormat},
		{"unused value", OpAdd, "f", "", []any{1}, ErrBadFormat},
		{"wrong type", OpAdd, "f", "s", []any{1}, ErrBadFormat},
		{"unknown code", OpAdd, "f", "z", []any{1}, ErrBadFormat},
		{"int64 overflow", OpAdd, "f", "i", []any{int64(1) << 40}, ErrBadFormat},
		{"int underflow", OpAdd, "f", "d", []any{math.MinInt32 - 1}, ErrBadFormat},
		{"uint32 overflow", OpAdd, "f", "x", []any{uint32(math.MaxUint32)}, ErrBadFormat},
		{"uint64 overflow", OpAdd, "f", "i", []any{uint64(math.MaxUint64)}, ErrBadFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.SetOp(tt.kind, ref, tt.fn, tt.format, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetOp = %v, want %v", err, tt.want)
			}
		})
	}
	if len(d.Kinds()) != 0 {
		t.Errorf("rejected bindings were installed: %v", d.Kinds())
	}
}

func TestDynamicOverridesLifecycle(t *testing.T) {
	rt, m, ref, tag, d := newScripted(t, "Handle")
	freed := 0
	m.Define("eq", func(args []cell.Cell) (cell.Cell, error) {
		return cell.Bool(args[0]%10 == args[1]%10), nil
	})
	m.Define("free", func(args []cell.Cell) (cell.Cell, error) {
		freed++
		return 1, nil
	})
	m.Define("hash", func(args []cell.Cell) (cell.Cell, error) {
		return args[0] % 10, nil
	})
	m.Define("dup", func(args []cell.Cell) (cell.Cell, error) {
		return args[0] + 100, nil
	})
	for kind, fn := range map[OpKind]string{OpEquals: "eq", OpFree: "free", OpHash: "hash", OpCopy: "dup"} {
		if err := d.SetOp(kind, ref, fn, ""); err != nil {
			t.Fatal(err)
		}
	}

	if !d.Equals(tag, 13, 23) || d.Equals(tag, 13, 24) {
		t.Error("Equals must use the override")
	}
	if !d.EqualsArray(tag, []cell.Cell{1, 12}, []cell.Cell{11, 2}) {
		t.Error("EqualsArray must compare through the Equals override")
	}
	if d.Hash(tag, 47) != 7 {
		t.Errorf("Hash = %d, want 7", d.Hash(tag, 47))
	}
	if !d.Free(tag, 1) || freed != 1 {
		t.Error("Free must call the override")
	}
	if d.Delete(tag, 1) {
		t.Error("unbound Delete must fail")
	}
	if d.Copy(tag, 1) != 101 {
		t.Errorf("Copy = %d, want 101", d.Copy(tag, 1))
	}
	if d.Clone(tag, 1) != 101 {
		t.Errorf("unbound Clone must fall back to Copy, got %d", d.Clone(tag, 1))
	}

	box := Scalar(tag, 13)
	if !box.Equal(rt, Scalar(tag, 3)) {
		t.Error("boxes must compare through the override")
	}
}

func TestDynamicReentrantCallback(t *testing.T) {
	rt, m, ref, tag, d := newScripted(t, "Outer")
	m.Define("nested", func(args []cell.Cell) (cell.Cell, error) {
		inner := rt.Tags.Register("Inner")
		id := rt.Control(inner)
		if id == nil {
			return 0, errors.New("no inner table")
		}
		if err := id.SetOp(OpAdd, ref, "plain", ""); err != nil {
			return 0, err
		}
		return rt.Resolve(inner).Add(inner, args[0], args[1]) + 1, nil
	})
	m.Define("plain", func(args []cell.Cell) (cell.Cell, error) {
		return args[0] + args[1], nil
	})
	if err := d.SetOp(OpAdd, ref, "nested", ""); err != nil {
		t.Fatal(err)
	}
	if got := d.Add(tag, 2, 3); got != 6 {
		t.Errorf("Add = %d, want 6", got)
	}
}

func TestDynamicIntegerArguments(t *testing.T) {
	_, m, ref, tag, d := newScripted(t, "Vec")
	var seen []cell.Cell
	m.Define("probe", func(args []cell.Cell) (cell.Cell, error) {
		seen = append([]cell.Cell(nil), args...)
		return 0, nil
	})
	args := []any{int8(-8), int16(16), uint(7), uint16(65535), uint32(math.MaxInt32), int64(math.MinInt32), cell.Cell(3), true}
	if err := d.SetOp(OpNeg, ref, "probe", "iiiixdcb", args...); err != nil {
		t.Fatal(err)
	}
	d.Neg(tag, 0)

	want := []cell.Cell{-8, 16, 7, 65535, math.MaxInt32, math.MinInt32, 3, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("args = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("args[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestDynamicPanickingCallbackYieldsZero(t *testing.T) {
	var buf bytes.Buffer
	rt := New(Options{Logger: log.New(&buf, "", 0), Trace: true})
	m := script.NewMachine()
	ref := rt.Scripts.Load(m)
	tag := rt.Tags.Register("Vec")
	d := rt.Control(tag)

	m.Define("index", func(args []cell.Cell) (cell.Cell, error) {
		var xs []cell.Cell
		return xs[len(args)+3], nil
	})
	m.Define("deref", func(args []cell.Cell) (cell.Cell, error) {
		var s *cell.String
		return cell.Cell(len(*s)), nil
	})
	for kind, fn := range map[OpKind]string{OpAdd: "index", OpEquals: "index", OpString: "deref"} {
		if err := d.SetOp(kind, ref, fn, ""); err != nil {
			t.Fatal(err)
		}
	}

	if got := d.Add(tag, 1, 2); got != 0 {
		t.Errorf("Add = %d, want 0", got)
	}
	if d.Equals(tag, 1, 1) {
		t.Error("Equals must be false when the callback panics")
	}
	if got := rt.Render(tag, 1); got != "" {
		t.Errorf("Render = %q, want empty", got)
	}
	if !strings.Contains(buf.String(), script.ErrPanic.Error()) {
		t.Errorf("trace output %q does not mention the panic", buf.String())
	}

	m.Define("ok", func(args []cell.Cell) (cell.Cell, error) { return 9, nil })
	if err := d.SetOp(OpSub, ref, "ok", ""); err != nil {
		t.Fatal(err)
	}
	if got := d.Sub(tag, 1, 2); got != 9 {
		t.Errorf("calls after a panic = %d, want 9", got)
	}
}

func TestDynamicReentrantSameTag(t *testing.T) {
	rt, m, ref, tag, d := newScripted(t, "Self")
	m.Define("sub", func(args []cell.Cell) (cell.Cell, error) {
		return args[0] - args[1], nil
	})
	m.Define("add", func(args []cell.Cell) (cell.Cell, error) {
		own := rt.Control(tag)
		if err := own.SetOp(OpMul, ref, "sub", ""); err != nil {
			return 0, err
		}
		diff := rt.Resolve(tag).Sub(tag, args[0], args[1])
		return diff + own.Mul(tag, args[0], args[1])*100, nil
	})
	if err := d.SetOp(OpAdd, ref, "add", ""); err != nil {
		t.Fatal(err)
	}
	if err := d.SetOp(OpSub, ref, "sub", ""); err != nil {
		t.Fatal(err)
	}

	if got := d.Add(tag, 9, 4); got != 505 {
		t.Errorf("Add = %d, want 505", got)
	}
	if rt.Control(tag) != d {
		t.Error("re-entry replaced the table")
	}
	if got := d.Kinds(); len(got) != 3 {
		t.Errorf("Kinds() = %v, want add, sub and mul", got)
	}
	if err := d.Lock(); err != nil {
		t.Fatal(err)
	}
	if got := d.Add(tag, 9, 4); got != 0 {
		t.Errorf("Add after Lock = %d, want 0 because the nested SetOp fails", got)
	}
}
