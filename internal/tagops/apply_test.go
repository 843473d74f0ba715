package tagops

import (
	"errors"
	"testing"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/script"
)

const vecConfig = `
tags:
  - name: Vec
  - name: Point
    base: Vec
overrides:
  - tag: Vec
    lock: true
    ops:
      - op: add
        handler: vec_add
        format: "ie"
        args: [10]
      - op: string
        handler: vec_str
`

func TestApplyConfig(t *testing.T) {
	cfg, err := config.ParseConfig([]byte(vecConfig), "tagops.yaml")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}

	rt := newTestRuntime(t)
	m := script.NewMachine()
	m.Define("vec_add", func(args []cell.Cell) (cell.Cell, error) {
		// scale, op kind, a, b
		if args[1] != cell.Cell(OpAdd) {
			return 0, errors.New("wrong op kind")
		}
		return args[0]*args[2] + args[3], nil
	})
	m.Define("vec_str", func(args []cell.Cell) (cell.Cell, error) {
		return rt.NewString("vec"), nil
	})
	ref := rt.Scripts.Load(m)

	if err := Apply(rt, cfg, ref); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	vec := rt.Tags.FindByName("Vec")
	point := rt.Tags.FindByName("Point")
	if vec == nil || point == nil {
		t.Fatal("declared tags not registered")
	}
	if !point.InheritsFrom(vec) {
		t.Error("Point must derive from Vec")
	}

	d := rt.Control(vec)
	if !d.Locked() {
		t.Error("Vec table must be locked")
	}
	if got := rt.Resolve(point).Add(point, 2, 3); got != 23 {
		t.Errorf("Point Add = %d, want 23", got)
	}
	if got := rt.Render(point, 1); got != "Point:vec" {
		t.Errorf("Render = %q, want Point:vec", got)
	}
	if err := d.SetOp(OpSub, ref, "vec_add", ""); !errors.Is(err, ErrLocked) {
		t.Errorf("SetOp on locked table = %v, want ErrLocked", err)
	}

	if err := Apply(rt, cfg, ref); !errors.Is(err, ErrLocked) {
		t.Errorf("second Apply = %v, want ErrLocked", err)
	}
}

func TestApplyRejectsBuiltin(t *testing.T) {
	cfg := &config.Config{
		Overrides: []config.Override{{
			Tag: "Float",
			Ops: []config.OpDecl{{Op: "add", Handler: "f"}},
		}},
	}
	rt := newTestRuntime(t)
	err := Apply(rt, cfg, script.NoRef)
	if !errors.Is(err, ErrBuiltin) {
		t.Errorf("Apply = %v, want ErrBuiltin", err)
	}
}

func TestApplyUnknownBase(t *testing.T) {
	cfg := &config.Config{Tags: []config.TagDecl{{Name: "Child", Base: "Missing"}}}
	rt := newTestRuntime(t)
	if err := Apply(rt, cfg, script.NoRef); err == nil {
		t.Error("expected error for unregistered base")
	}
}

func TestApplyTrace(t *testing.T) {
	rt := newTestRuntime(t)
	if err := Apply(rt, &config.Config{Trace: true}, script.NoRef); err != nil {
		t.Fatal(err)
	}
	rt.mu.RLock()
	on := rt.trace
	rt.mu.RUnlock()
	if !on {
		t.Error("trace must be enabled")
	}
}
