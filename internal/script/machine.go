package script

import (
	"fmt"
	"sync"

	"github.com/funvibe/tagops/internal/cell"
)

// DefaultMaxDepth bounds nested Invoke calls on a Machine.
const DefaultMaxDepth = 256

// Func is a Go implementation of a script entry point. It receives its
// parameters in declaration order, the reverse of the push order.
type Func func(args []cell.Cell) (cell.Cell, error)

// Machine is an in-process Host backed by Go functions.
type Machine struct {
	// MaxDepth limits nested calls; zero means DefaultMaxDepth.
	MaxDepth int

	mu    sync.RWMutex
	funcs map[string]Func
	depth int
	calls int
}

// NewMachine creates a machine with no entry points.
func NewMachine() *Machine {
	return &Machine{funcs: make(map[string]Func)}
}

// Define adds or replaces an entry point.
func (m *Machine) Define(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[name] = fn
}

// Remove deletes an entry point.
func (m *Machine) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.funcs, name)
}

// Calls returns how many invocations have started.
func (m *Machine) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

func (m *Machine) Resolve(name string) (Callable, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.funcs[name]
	if !ok {
		return nil, false
	}
	return fn, true
}

func (m *Machine) Invoke(c Callable, stack []cell.Cell) (result cell.Cell, err error) {
	fn, ok := c.(Func)
	if !ok || fn == nil {
		return 0, fmt.Errorf("invoke %T: %w", c, ErrNotFound)
	}

	limit := m.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}
	m.mu.Lock()
	if m.depth >= limit {
		m.mu.Unlock()
		return 0, fmt.Errorf("depth %d: %w", limit, ErrDepth)
	}
	m.depth++
	m.calls++
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.depth--
		m.mu.Unlock()
		if p := recover(); p != nil {
			result, err = 0, fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	args := make([]cell.Cell, len(stack))
	for i, c := range stack {
		args[len(stack)-1-i] = c
	}
	return fn(args)
}
