package tagops

import (
	"fmt"

	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/script"
)

// Apply declares the tags of cfg and installs its overrides, binding every
// handler to the script behind ref.
func Apply(rt *Runtime, cfg *config.Config, ref script.Ref) error {
	if cfg.Trace {
		rt.SetTrace(true)
	}

	for _, decl := range cfg.Tags {
		if decl.Base == "" {
			rt.Tags.Register(decl.Name)
			continue
		}
		base := rt.Tags.FindByName(decl.Base)
		if base == nil {
			return fmt.Errorf("tag %s: base %q not registered", decl.Name, decl.Base)
		}
		rt.Tags.RegisterDerived(decl.Name, base)
	}

	for _, ov := range cfg.Overrides {
		t := rt.Tags.Register(ov.Tag)
		d := rt.Control(t)
		if d == nil {
			return fmt.Errorf("tag %s: %w", ov.Tag, ErrBuiltin)
		}
		for _, op := range ov.Ops {
			kind, ok := ParseOpKind(op.Op)
			if !ok {
				return fmt.Errorf("tag %s: %w %q", ov.Tag, ErrUnknownOp, op.Op)
			}
			if err := d.SetOp(kind, ref, op.Handler, op.Format, op.Args...); err != nil {
				return fmt.Errorf("tag %s: %s: %w", ov.Tag, op.Op, err)
			}
		}
		if ov.Lock {
			if err := d.Lock(); err != nil {
				return fmt.Errorf("tag %s: %w", ov.Tag, err)
			}
		}
	}
	return nil
}
