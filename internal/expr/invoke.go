package expr

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/state"
)

// Invoke evaluates the compiled expression for one event. The prelude is
// evaluated in order into the scope, then the body; the body's value is
// returned. evt may be a null value when the expression was compiled
// nil-guarded, in which case every prelude name binds to null without its
// generator running.
//
// The scope exposes `event`, `globals`, the prelude names, and (unless the
// expression was compiled with NoOwnerLocals) `locals`, plus the builtin
// and shared function tables and the set_local/get_local and
// set_global/get_global state functions.
//
// Any failure, including a panic out of the evaluation machinery, is
// returned as a *RuntimeError carrying the compile-time title; Invoke never
// panics across the call boundary, so one failing expression cannot take
// down the dispatch goroutine servicing other owners.
func (c *Compiled) Invoke(ctx context.Context, evt cty.Value, owner *state.Owner, globals *state.Bag) (result cty.Value, err error) {
	prog := c.program

	defer func() {
		if r := recover(); r != nil {
			ctxlog.FromContext(ctx).Error("Expression invocation panicked.", "title", prog.Title, "panic", r)
			result = cty.NilVal
			err = &RuntimeError{Title: prog.Title, Err: fmt.Errorf("panic during evaluation: %v", r)}
		}
	}()

	ectx := c.scope(evt, owner, globals)

	for _, binding := range prog.Prelude {
		if prog.NilGuarded && evt.IsNull() {
			ectx.Variables[binding.Name] = cty.NullVal(cty.DynamicPseudoType)
			continue
		}
		val, diags := binding.Generator.Value(ectx)
		if diags.HasErrors() {
			return cty.NilVal, &RuntimeError{Title: prog.Title, Diags: diags}
		}
		ectx.Variables[binding.Name] = val
	}

	if prog.Body == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	val, diags := prog.Body.Value(ectx)
	if diags.HasErrors() {
		return cty.NilVal, &RuntimeError{Title: prog.Title, Diags: diags}
	}
	return val, nil
}

// scope builds the flat evaluation context for one invocation: workspace
// values and functions, the event and state bags, and the state mutator
// functions bound to the supplied bags. A single flat context (rather than
// a parent chain) keeps function lookup simple, since HCL consults only the
// nearest function table.
func (c *Compiled) scope(evt cty.Value, owner *state.Owner, globals *state.Bag) *hcl.EvalContext {
	ectx := c.ws.EvalContext()

	ectx.Variables["event"] = evt
	if globals != nil {
		ectx.Variables["globals"] = globals.Snapshot()
		ectx.Functions["set_global"] = setBagFunc(globals)
		ectx.Functions["get_global"] = getBagFunc(globals)
	}
	if !c.program.NoOwnerLocals && owner != nil {
		ectx.Variables["locals"] = owner.Locals.Snapshot()
		ectx.Functions["set_local"] = setBagFunc(owner.Locals)
		ectx.Functions["get_local"] = getBagFunc(owner.Locals)
	}

	return ectx
}

// setBagFunc returns a function storing a value in bag under a name and
// yielding the stored value, so it can be used inline in larger expressions.
func setBagFunc(bag *state.Bag) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
			{Name: "value", Type: cty.DynamicPseudoType, AllowNull: true, AllowDynamicType: true},
		},
		Type: func(args []cty.Value) (cty.Type, error) {
			return args[1].Type(), nil
		},
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			bag.Put(args[0].AsString(), args[1])
			return args[1], nil
		},
	})
}

// getBagFunc returns a function reading a value from bag by name, yielding
// the supplied default when the name has never been set.
func getBagFunc(bag *state.Bag) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "name", Type: cty.String},
			{Name: "default", Type: cty.DynamicPseudoType, AllowNull: true, AllowDynamicType: true},
		},
		Type: func(args []cty.Value) (cty.Type, error) {
			return cty.DynamicPseudoType, nil
		},
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			if v, ok := bag.Get(args[0].AsString()); ok {
				return v, nil
			}
			return args[1], nil
		},
	})
}
