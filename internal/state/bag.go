package state

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Bag is a thread-safe name-to-value store. Expressions see its contents as
// an object value snapshot, and mutate it through the set_local/set_global
// functions the invoker exposes. A single RWMutex is enough here: bags hold
// a handful of user-defined entries and are touched once per invocation.
type Bag struct {
	mu     sync.RWMutex
	values map[string]cty.Value
}

// NewBag creates a new, empty bag.
func NewBag() *Bag {
	return &Bag{values: make(map[string]cty.Value)}
}

// Get returns the value stored under name, or cty.NilVal and false when absent.
func (b *Bag) Get(name string) (cty.Value, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[name]
	return v, ok
}

// Put stores value under name, replacing any previous entry.
func (b *Bag) Put(name string, value cty.Value) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[name] = value
}

// Delete removes the entry stored under name, if any.
func (b *Bag) Delete(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, name)
}

// Len returns the number of entries in the bag.
func (b *Bag) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.values)
}

// Snapshot renders the bag as a cty object value for expression reads. An
// empty bag snapshots to an empty object, so attribute lookups on it fail
// with a normal evaluation diagnostic rather than a null traversal.
func (b *Bag) Snapshot() cty.Value {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.values) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(b.values))
	for k, v := range b.values {
		attrs[k] = v
	}
	return cty.ObjectVal(attrs)
}

// Owner identifies the owner of one expression slot (a trigger, a track, a
// cue) together with its locals bag. It is supplied by the caller at
// invocation time; the compiler never retains one.
type Owner struct {
	// ID names the owning configuration, e.g. a trigger name. It appears in
	// runtime error titles and log attributes.
	ID string

	// Locals is the owner-scoped mutable state shared by every expression
	// belonging to the same owner.
	Locals *Bag
}

// NewOwner creates an owner context with a fresh locals bag.
func NewOwner(id string) *Owner {
	return &Owner{ID: id, Locals: NewBag()}
}
