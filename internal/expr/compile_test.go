package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/workspace"
)

// scenarioSet builds the two-kind catalog used throughout: kind "base"
// provides x, kind "child" adds y which requires x.
func scenarioSet(t *testing.T) catalog.Set {
	t.Helper()
	cat, err := catalog.NewBuilder().
		AddKind("base", nil, []catalog.Spec{
			{Name: "x", Source: "1 + 1"},
		}).
		AddKind("child", []catalog.Kind{"base"}, []catalog.Spec{
			{Name: "y", Source: "x * 10", Requires: "x"},
		}).
		Build()
	require.NoError(t, err)

	set, err := cat.Resolve("child")
	require.NoError(t, err)
	return set
}

func newTestCompiler() *Compiler {
	return NewCompiler(workspace.New())
}

func TestCompilePrelude(t *testing.T) {
	set := scenarioSet(t)
	c := newTestCompiler()

	t.Run("requires target is pulled in and ordered first", func(t *testing.T) {
		compiled, err := c.Compile("y", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, compiled.PreludeNames())
	})

	t.Run("no referenced bindings means empty prelude", func(t *testing.T) {
		compiled, err := c.Compile("42", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Empty(t, compiled.PreludeNames())
	})

	t.Run("prelude is minimal", func(t *testing.T) {
		compiled, err := c.Compile("x + 1", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, compiled.PreludeNames(), "y is not referenced and must not be bound")
	})

	t.Run("deeply nested references are found", func(t *testing.T) {
		compiled, err := c.Compile(`upper(format("%v", [{ n = y }]))`, set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, compiled.PreludeNames())
	})

	t.Run("binding referenced in both positions binds once", func(t *testing.T) {
		compiled, err := c.Compile("x + x + y", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, compiled.PreludeNames())
	})

	t.Run("lookalike names do not match", func(t *testing.T) {
		compiled, err := c.Compile(`"x" == "y" ? 1 : 2`, set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Empty(t, compiled.PreludeNames(), "string literals are not references")
	})

	t.Run("recompilation is idempotent", func(t *testing.T) {
		first, err := c.Compile("y + x", set, Options{Title: "test"})
		require.NoError(t, err)
		second, err := c.Compile("y + x", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Equal(t, first.PreludeNames(), second.PreludeNames())
	})
}

func TestCompileErrors(t *testing.T) {
	set := scenarioSet(t)
	c := newTestCompiler()

	t.Run("malformed source reports the supplied title", func(t *testing.T) {
		compiled, err := c.Compile("(foo", set, Options{Title: "Enabled Expression for Trigger 3"})
		require.Error(t, err)
		assert.Nil(t, compiled, "no compiled expression on failure")

		var compileErr *CompileError
		require.True(t, errors.As(err, &compileErr))
		assert.Equal(t, "Enabled Expression for Trigger 3", compileErr.Title)
		assert.ErrorContains(t, err, "Enabled Expression for Trigger 3")
		assert.True(t, compileErr.Diags.HasErrors(), "parse diagnostics carry positions")
	})

	t.Run("empty source compiles to a null-yielding expression", func(t *testing.T) {
		compiled, err := c.Compile("   \n\t", set, Options{Title: "test"})
		require.NoError(t, err)
		assert.Empty(t, compiled.PreludeNames())
	})
}

func TestCompileTitle(t *testing.T) {
	set := scenarioSet(t)
	c := newTestCompiler()

	compiled, err := c.Compile("y", set, Options{Title: "Beat Expression for Trigger lights"})
	require.NoError(t, err)
	assert.Equal(t, "Beat Expression for Trigger lights", compiled.Title())
}
