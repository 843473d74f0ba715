package tagops

import (
	"log"
	"os"
	"sync"

	"github.com/funvibe/tagops/internal/cell"
	"github.com/funvibe/tagops/internal/config"
	"github.com/funvibe/tagops/internal/pool"
	"github.com/funvibe/tagops/internal/script"
	"github.com/funvibe/tagops/internal/tags"
)

// Options configures a Runtime.
type Options struct {
	// Logger receives trace output. Defaults to stderr without flags.
	Logger *log.Logger
	// Trace logs every override callback that fails.
	Trace bool
}

// Runtime owns the tag registry, the object pools and the operation tables.
//
// Dispatch may re-enter: an override callback can run further operations on
// any tag. No lock is held across a callback.
type Runtime struct {
	Tags    *tags.Registry
	Scripts *script.Registry

	Strings  *pool.Pool[cell.String]
	Variants *pool.Pool[Box]
	Lists    *pool.Pool[List]
	Maps     *pool.Pool[Map]
	Iters    *pool.Pool[Iterator]
	Tasks    *pool.Pool[Task]

	mu     sync.RWMutex
	tables map[tags.ID]Operations
	trace  bool
	logger *log.Logger
}

// New creates a runtime with the built-in tables installed.
func New(opts Options) *Runtime {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "tagops: ", 0)
	}
	rt := &Runtime{
		Tags:     tags.NewRegistry(),
		Scripts:  script.NewRegistry(),
		Strings:  pool.New[cell.String]("strings"),
		Variants: pool.New[Box]("variants"),
		Lists:    pool.New[List]("lists"),
		Maps:     pool.New[Map]("maps"),
		Iters:    pool.New[Iterator]("iterators"),
		Tasks:    pool.New[Task]("tasks"),
		trace:    opts.Trace,
		logger:   logger,
	}
	rt.tables = map[tags.ID]Operations{
		config.TagUnknown: newNullOps(rt, config.TagUnknown),
		config.TagCell:    newCellOps(rt, config.TagCell),
		config.TagBool:    newBoolOps(rt),
		config.TagChar:    newCharOps(rt),
		config.TagFloat:   newFloatOps(rt),
		config.TagString:  newStringOps(rt),
		config.TagVariant: newVariantOps(rt),
		config.TagList:    newListOps(rt),
		config.TagMap:     newMapOps(rt),
		config.TagIter:    newIterOps(rt),
		config.TagRef:     newRefOps(rt),
		config.TagTask:    newTaskOps(rt),
	}
	return rt
}

// SetTrace toggles callback failure logging.
func (rt *Runtime) SetTrace(on bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.trace = on
}

func (rt *Runtime) tracef(format string, args ...any) {
	rt.mu.RLock()
	on := rt.trace
	rt.mu.RUnlock()
	if on {
		rt.logger.Printf(format, args...)
	}
}

// Tag returns the tag with id, falling back to the unknown tag.
func (rt *Runtime) Tag(id tags.ID) *tags.Tag {
	return rt.Tags.Resolve(id)
}

// Render converts a scalar to a Go string through its tag's table.
func (rt *Runtime) Render(t *tags.Tag, v cell.Cell) string {
	if t == nil {
		t = rt.Tags.Unknown()
	}
	return rt.Resolve(t).String(t, v).GoString()
}

// RenderArray converts an array to a Go string through its tag's table.
func (rt *Runtime) RenderArray(t *tags.Tag, v []cell.Cell) string {
	if t == nil {
		t = rt.Tags.Unknown()
	}
	return rt.Resolve(t).StringArray(t, v).GoString()
}

// NewString pools a copy of s and returns its handle.
func (rt *Runtime) NewString(s string) cell.Cell {
	str := cell.FromString(s)
	return rt.Strings.Add(&str)
}

// StringValue returns the content of a pooled string. The null handle is
// the empty string.
func (rt *Runtime) StringValue(h cell.Cell) (string, bool) {
	str, st := rt.Strings.Lookup(h)
	switch st {
	case pool.Found:
		return str.GoString(), true
	case pool.Null:
		return "", true
	default:
		return "", false
	}
}

// NewVariant pools a boxed value and returns its handle.
func (rt *Runtime) NewVariant(b Box) cell.Cell {
	return rt.Variants.Add(&b)
}

// NewList pools a list holding items.
func (rt *Runtime) NewList(items ...Box) cell.Cell {
	return rt.Lists.Add(&List{Items: items})
}

// NewMap pools an empty map.
func (rt *Runtime) NewMap() cell.Cell {
	return rt.Maps.Add(&Map{})
}

// NewIterator pools a cursor at the start of the list or map behind h.
// The source tag must be the list or map tag.
func (rt *Runtime) NewIterator(source tags.ID, h cell.Cell) cell.Cell {
	return rt.Iters.Add(&Iterator{Source: source, Handle: h})
}

// NewTask pools a pending task.
func (rt *Runtime) NewTask(name string) cell.Cell {
	return rt.Tasks.Add(&Task{Name: name})
}
