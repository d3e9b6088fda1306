package trigger

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/event"
	"github.com/vk/beatgridgo/internal/expr"
	"github.com/vk/beatgridgo/internal/show"
	"github.com/vk/beatgridgo/internal/state"
)

// Trigger is one configured trigger: its expression slots, its owner
// context, and its tripped/untripped state.
type Trigger struct {
	Name    string
	Comment string
	On      catalog.Kind
	Owner   *state.Owner

	enabled       *Slot
	activation    *Slot
	deactivation  *Slot
	trackedUpdate *Slot

	mu     sync.Mutex
	active bool
}

// New compiles a trigger block's snippets and returns the trigger. Any
// snippet failing to compile fails the whole trigger; its error names the
// offending slot.
//
// The enabled expression is compiled nil-guarded, since the surrounding
// application also evaluates it when no event is available (for example
// when rendering status), and a binding generator must not raise then.
func New(block *show.TriggerBlock, compiler *expr.Compiler, cat *catalog.Catalog) (*Trigger, error) {
	kind := catalog.Kind(block.On)
	if !cat.HasKind(kind) {
		return nil, fmt.Errorf("trigger %q: unknown event kind %q", block.Name, block.On)
	}
	set, err := cat.Resolve(kind)
	if err != nil {
		return nil, fmt.Errorf("trigger %q: %w", block.Name, err)
	}

	t := &Trigger{
		Name:          block.Name,
		Comment:       block.Comment,
		On:            kind,
		Owner:         state.NewOwner(block.Name),
		enabled:       NewSlot(fmt.Sprintf("Enabled Expression for Trigger %s", block.Name)),
		activation:    NewSlot(fmt.Sprintf("Activation Expression for Trigger %s", block.Name)),
		deactivation:  NewSlot(fmt.Sprintf("Deactivation Expression for Trigger %s", block.Name)),
		trackedUpdate: NewSlot(fmt.Sprintf("Tracked Update Expression for Trigger %s", block.Name)),
	}

	slots := []struct {
		slot *Slot
		src  string
		opts expr.Options
	}{
		{t.enabled, block.Enabled, expr.Options{NilGuarded: true}},
		{t.activation, block.Activation, expr.Options{}},
		{t.deactivation, block.Deactivation, expr.Options{}},
		{t.trackedUpdate, block.TrackedUpdate, expr.Options{}},
	}
	for _, s := range slots {
		if err := s.slot.Recompile(compiler, s.src, set, s.opts); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Matches reports whether the trigger should see an event of the given
// kind: its own kind, or any kind inheriting from it (a trigger watching
// plain device updates sees beats and status packets too).
func (t *Trigger) Matches(cat *catalog.Catalog, kind catalog.Kind) bool {
	return kind == t.On || cat.InheritsFrom(kind, t.On)
}

// Active reports whether the trigger is currently tripped.
func (t *Trigger) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// HandleEvent evaluates the trigger for one event: the enabled expression
// decides the tripped state, activation/deactivation fire on the edges, and
// the tracked-update expression runs for every event while tripped. Runtime
// errors are logged against the slot's title and never propagate, so one
// misbehaving snippet cannot starve other triggers sharing the dispatch
// goroutine. The dispatcher serializes per device, not per trigger, so a
// trigger matching several devices runs HandleEvent concurrently; the
// mutexed flag swap keeps each was/now transition consistent, and the
// state bags behind set_local/set_global are themselves synchronized.
func (t *Trigger) HandleEvent(ctx context.Context, evt event.Event, globals *state.Bag) {
	logger := ctxlog.FromContext(ctx).With("trigger", t.Name)

	nowActive := t.evalEnabled(ctx, evt, globals)

	t.mu.Lock()
	wasActive := t.active
	t.active = nowActive
	t.mu.Unlock()

	switch {
	case nowActive && !wasActive:
		logger.Debug("Trigger activated.")
		t.fire(ctx, t.activation, evt, globals)
	case !nowActive && wasActive:
		logger.Debug("Trigger deactivated.")
		t.fire(ctx, t.deactivation, evt, globals)
	}

	if nowActive {
		t.fire(ctx, t.trackedUpdate, evt, globals)
	}
}

// evalEnabled evaluates the enabled slot and folds the result to a boolean.
// An empty slot means always enabled; a runtime failure means disabled for
// this event.
func (t *Trigger) evalEnabled(ctx context.Context, evt event.Event, globals *state.Bag) bool {
	compiled := t.enabled.Installed()
	if compiled == nil {
		return true
	}
	val, err := compiled.Invoke(ctx, evt.Value, t.Owner, globals)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Enabled expression failed; treating trigger as disabled for this event.",
			"trigger", t.Name, "error", err)
		return false
	}
	return truthy(val)
}

// fire invokes a slot's installed expression, if any, logging failures.
func (t *Trigger) fire(ctx context.Context, slot *Slot, evt event.Event, globals *state.Bag) {
	compiled := slot.Installed()
	if compiled == nil {
		return
	}
	if _, err := compiled.Invoke(ctx, evt.Value, t.Owner, globals); err != nil {
		ctxlog.FromContext(ctx).Error("Expression failed.", "title", slot.Title(), "error", err)
	}
}

// truthy folds an expression result to a boolean: null and false are
// falsey, everything else is truthy.
func truthy(val cty.Value) bool {
	if val.IsNull() {
		return false
	}
	if val.Type() == cty.Bool && val.IsKnown() {
		return val.True()
	}
	return true
}

// SlotStates returns the state of every slot keyed by a short slot name,
// for status output.
func (t *Trigger) SlotStates() map[string]SlotState {
	return map[string]SlotState{
		"enabled":        t.enabled.State(),
		"activation":     t.activation.State(),
		"deactivation":   t.deactivation.State(),
		"tracked_update": t.trackedUpdate.State(),
	}
}
