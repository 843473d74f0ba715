package tagops

import (
	"strings"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/tags"
)

// refOps renders "Ref@X" values through the table of X.
type refOps struct {
	nullOps
}

func newRefOps(rt *Runtime) *refOps {
	o := &refOps{nullOps{uid: config.TagRef, rt: rt}}
	o.self = o
	return o
}

func (o *refOps) appendValue(dst cell.String, t *tags.Tag, v cell.Cell) cell.String {
	base := o.rt.Tags.Find(o.uid)
	if t != nil && !t.Is(base.ID) && t.InheritsFrom(base) {
		if name, ok := strings.CutPrefix(t.Name, base.Name+string(config.TagSeparator)); ok {
			if sub := o.rt.Tags.FindByName(name); sub != nil {
				return append(dst, o.rt.Resolve(sub).String(sub, v)...)
			}
		}
	}
	return o.nullOps.appendValue(dst, t, v)
}

// taskOps works on handles into the task pool. A task cannot be
// duplicated, so Copy and Clone return the same handle.
type taskOps struct {
	nullOps
}

func newTaskOps(rt *Runtime) *taskOps {
	o := &taskOps{nullOps{uid: config.TagTask, rt: rt}}
	o.self = o
	return o
}

func (o *taskOps) Delete(t *tags.Tag, v cell.Cell) bool {
	return o.rt.Tasks.Remove(v)
}

func (o *taskOps) Copy(t *tags.Tag, v cell.Cell) cell.Cell {
	if o.rt.Tasks.Contains(v) {
		return v
	}
	return 0
}
