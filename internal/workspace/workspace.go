package workspace

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Workspace is the shared evaluation scope for user-defined values and
// functions. A single instance exists per process; compiled expressions
// resolve shared names against it at invocation time, so definitions loaded
// after an expression was compiled are still visible to it.
type Workspace struct {
	// compileMu serializes compilation and definition loading. Two
	// simultaneous compilations must not interleave their evaluation of
	// definitions into this scope.
	compileMu sync.Mutex

	mu        sync.RWMutex
	values    map[string]cty.Value
	functions map[string]function.Function
}

// New creates an empty workspace.
func New() *Workspace {
	return &Workspace{
		values:    make(map[string]cty.Value),
		functions: make(map[string]function.Function),
	}
}

// LockCompile acquires the compilation lock. Every compile and every
// definition load runs under it.
func (w *Workspace) LockCompile() {
	w.compileMu.Lock()
}

// UnlockCompile releases the compilation lock.
func (w *Workspace) UnlockCompile() {
	w.compileMu.Unlock()
}

// SetValue installs or replaces a shared value.
func (w *Workspace) SetValue(name string, value cty.Value) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.values[name] = value
}

// Value returns the shared value stored under name.
func (w *Workspace) Value(name string) (cty.Value, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.values[name]
	return v, ok
}

// SetFunction installs or replaces a shared function.
func (w *Workspace) SetFunction(name string, fn function.Function) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.functions[name] = fn
}

// Function returns the shared function stored under name.
func (w *Workspace) Function(name string) (function.Function, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	fn, ok := w.functions[name]
	return fn, ok
}

// EvalContext builds an evaluation context exposing the current workspace
// contents: every shared value as a variable, and the base function table
// merged with every shared function. The context is a snapshot of the
// values; functions are live (a user function body sees definitions loaded
// after it was).
func (w *Workspace) EvalContext() *hcl.EvalContext {
	w.mu.RLock()
	defer w.mu.RUnlock()

	vars := make(map[string]cty.Value, len(w.values))
	for name, v := range w.values {
		vars[name] = v
	}

	funcs := BaseFunctions()
	for name, fn := range w.functions {
		funcs[name] = fn
	}

	return &hcl.EvalContext{Variables: vars, Functions: funcs}
}
