package trigger

import (
	"sync"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/expr"
)

// SlotState is the lifecycle state of one expression slot.
type SlotState int

const (
	// SlotEmpty means no snippet is installed.
	SlotEmpty SlotState = iota
	// SlotCompiling means a recompile is in flight.
	SlotCompiling
	// SlotInstalled means a compiled expression is installed and invocable.
	SlotInstalled
	// SlotFailed means the last recompile failed. A previously installed
	// expression, if any, remains invocable.
	SlotFailed
)

// String returns a human-readable state name for logs and status output.
func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotCompiling:
		return "compiling"
	case SlotInstalled:
		return "installed"
	case SlotFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot is one logical expression slot: the compiled expression currently
// installed for it, plus the state machine the compiler's results drive.
// The compiler itself is stateless; this bookkeeping lives with the owner.
type Slot struct {
	title string

	mu       sync.Mutex
	state    SlotState
	compiled *expr.Compiled
	lastErr  error
}

// NewSlot creates an empty slot whose expressions compile under title.
func NewSlot(title string) *Slot {
	return &Slot{title: title}
}

// Title returns the diagnostic title snippets in this slot compile under.
func (s *Slot) Title() string {
	return s.title
}

// State returns the slot's current lifecycle state.
func (s *Slot) State() SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error from the last failed recompile, or nil.
func (s *Slot) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Recompile compiles src and, on success, installs the result in place of
// any prior expression. Empty source clears the slot. On failure the slot
// reports SlotFailed and returns the *expr.CompileError, but a previously
// installed expression stays installed and invocable.
func (s *Slot) Recompile(compiler *expr.Compiler, src string, set catalog.Set, opts expr.Options) error {
	s.mu.Lock()
	if src == "" {
		s.state = SlotEmpty
		s.compiled = nil
		s.lastErr = nil
		s.mu.Unlock()
		return nil
	}
	s.state = SlotCompiling
	s.mu.Unlock()

	opts.Title = s.title
	compiled, err := compiler.Compile(src, set, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = SlotFailed
		s.lastErr = err
		return err
	}
	s.state = SlotInstalled
	s.compiled = compiled
	s.lastErr = nil
	return nil
}

// Installed returns the currently installed compiled expression, or nil
// when the slot is empty or has never compiled successfully.
func (s *Slot) Installed() *expr.Compiled {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compiled
}
