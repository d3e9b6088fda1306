package expr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/state"
)

func TestInvokeScenarios(t *testing.T) {
	ctx := context.Background()
	set := scenarioSet(t)
	c := newTestCompiler()
	globals := state.NewBag()

	t.Run("requires chain evaluates in order", func(t *testing.T) {
		compiled, err := c.Compile("y", set, Options{Title: "test"})
		require.NoError(t, err)

		val, err := compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), globals)
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.NumberIntVal(20)), "got %#v", val)
	})

	t.Run("literal body needs no bindings", func(t *testing.T) {
		compiled, err := c.Compile("42", set, Options{Title: "test"})
		require.NoError(t, err)

		val, err := compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), globals)
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.NumberIntVal(42)))
	})

	t.Run("empty source yields null", func(t *testing.T) {
		compiled, err := c.Compile("", set, Options{Title: "test"})
		require.NoError(t, err)

		val, err := compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), globals)
		require.NoError(t, err)
		assert.True(t, val.IsNull())
	})
}

func TestInvokeNilGuard(t *testing.T) {
	ctx := context.Background()
	cat, err := catalog.NewBuilder().
		AddKind("status", nil, []catalog.Spec{
			{Name: "x", Source: "event.field"},
		}).
		Build()
	require.NoError(t, err)
	set, err := cat.Resolve("status")
	require.NoError(t, err)

	c := newTestCompiler()
	nullEvent := cty.NullVal(cty.DynamicPseudoType)

	t.Run("guarded generator never runs against a null event", func(t *testing.T) {
		compiled, err := c.Compile("x", set, Options{NilGuarded: true, Title: "test"})
		require.NoError(t, err)

		val, err := compiled.Invoke(ctx, nullEvent, state.NewOwner("t"), state.NewBag())
		require.NoError(t, err)
		assert.True(t, val.IsNull(), "guarded binding evaluates to an empty result")
	})

	t.Run("unguarded generator fails against a null event", func(t *testing.T) {
		compiled, err := c.Compile("x", set, Options{Title: "test"})
		require.NoError(t, err)

		_, err = compiled.Invoke(ctx, nullEvent, state.NewOwner("t"), state.NewBag())
		var runtimeErr *RuntimeError
		require.True(t, errors.As(err, &runtimeErr))
		assert.Equal(t, "test", runtimeErr.Title)
	})

	t.Run("guarded generator still runs for a present event", func(t *testing.T) {
		compiled, err := c.Compile("x", set, Options{NilGuarded: true, Title: "test"})
		require.NoError(t, err)

		evt := cty.ObjectVal(map[string]cty.Value{"field": cty.StringVal("hello")})
		val, err := compiled.Invoke(ctx, evt, state.NewOwner("t"), state.NewBag())
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.StringVal("hello")))
	})
}

func TestInvokeState(t *testing.T) {
	ctx := context.Background()
	set := scenarioSet(t)
	c := newTestCompiler()

	t.Run("locals persist across invocations of one owner", func(t *testing.T) {
		compiled, err := c.Compile(`set_local("count", get_local("count", 0) + 1)`, set, Options{Title: "test"})
		require.NoError(t, err)

		owner := state.NewOwner("t")
		globals := state.NewBag()

		val, err := compiled.Invoke(ctx, cty.EmptyObjectVal, owner, globals)
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.NumberIntVal(1)))

		val, err = compiled.Invoke(ctx, cty.EmptyObjectVal, owner, globals)
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.NumberIntVal(2)))
	})

	t.Run("locals are per owner, globals are shared", func(t *testing.T) {
		bump, err := c.Compile(`set_global("total", get_global("total", 0) + get_local("n", 1))`, set, Options{Title: "test"})
		require.NoError(t, err)

		globals := state.NewBag()
		_, err = bump.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("a"), globals)
		require.NoError(t, err)
		_, err = bump.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("b"), globals)
		require.NoError(t, err)

		total, ok := globals.Get("total")
		require.True(t, ok)
		assert.True(t, total.RawEquals(cty.NumberIntVal(2)))
	})

	t.Run("snapshot reads see earlier writes", func(t *testing.T) {
		compiled, err := c.Compile(`locals.mood`, set, Options{Title: "test"})
		require.NoError(t, err)

		owner := state.NewOwner("t")
		owner.Locals.Put("mood", cty.StringVal("ready"))

		val, err := compiled.Invoke(ctx, cty.EmptyObjectVal, owner, state.NewBag())
		require.NoError(t, err)
		assert.True(t, val.RawEquals(cty.StringVal("ready")))
	})

	t.Run("no-owner-locals hides the locals scope", func(t *testing.T) {
		compiled, err := c.Compile(`get_local("n", 0)`, set, Options{NoOwnerLocals: true, Title: "test"})
		require.NoError(t, err)

		_, err = compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), state.NewBag())
		var runtimeErr *RuntimeError
		require.True(t, errors.As(err, &runtimeErr), "set_local/get_local are not defined without owner locals")
	})
}

func TestInvokeErrorContainment(t *testing.T) {
	ctx := context.Background()
	set := scenarioSet(t)
	c := newTestCompiler()

	t.Run("runtime failure carries the title", func(t *testing.T) {
		compiled, err := c.Compile("event.missing.deeper", set, Options{Title: "Tracked Update for Trigger 7"})
		require.NoError(t, err)

		_, err = compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), state.NewBag())
		var runtimeErr *RuntimeError
		require.True(t, errors.As(err, &runtimeErr))
		assert.Equal(t, "Tracked Update for Trigger 7", runtimeErr.Title)
	})

	t.Run("a failing invocation leaves the compiled expression reusable", func(t *testing.T) {
		compiled, err := c.Compile("event.flag", set, Options{Title: "test"})
		require.NoError(t, err)

		_, err = compiled.Invoke(ctx, cty.EmptyObjectVal, state.NewOwner("t"), state.NewBag())
		require.Error(t, err, "unknown attribute fails")

		evt := cty.ObjectVal(map[string]cty.Value{"flag": cty.True})
		val, err := compiled.Invoke(ctx, evt, state.NewOwner("t"), state.NewBag())
		require.NoError(t, err)
		assert.True(t, val.True())
	})
}
