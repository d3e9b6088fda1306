package workspace

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestWorkspaceValues(t *testing.T) {
	w := New()

	_, ok := w.Value("missing")
	assert.False(t, ok)

	w.SetValue("tempo", cty.NumberIntVal(128))
	v, ok := w.Value("tempo")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(128)))

	w.SetValue("tempo", cty.NumberIntVal(140))
	v, _ = w.Value("tempo")
	assert.True(t, v.RawEquals(cty.NumberIntVal(140)), "redefinition replaces")
}

func TestEvalContext(t *testing.T) {
	w := New()
	w.SetValue("threshold", cty.NumberIntVal(120))

	eval := func(src string) (cty.Value, hcl.Diagnostics) {
		expr, diags := hclsyntax.ParseExpression([]byte(src), "test", hcl.InitialPos)
		require.False(t, diags.HasErrors())
		return expr.Value(w.EvalContext())
	}

	t.Run("workspace values are variables", func(t *testing.T) {
		v, diags := eval("threshold + 1")
		require.False(t, diags.HasErrors())
		assert.True(t, v.RawEquals(cty.NumberIntVal(121)))
	})

	t.Run("base functions are available", func(t *testing.T) {
		v, diags := eval(`upper("abc")`)
		require.False(t, diags.HasErrors())
		assert.True(t, v.RawEquals(cty.StringVal("ABC")))

		v, diags = eval(`max(1, 5, 3)`)
		require.False(t, diags.HasErrors())
		assert.True(t, v.RawEquals(cty.NumberIntVal(5)))
	})

	t.Run("context mutation does not leak back", func(t *testing.T) {
		ectx := w.EvalContext()
		ectx.Variables["threshold"] = cty.NumberIntVal(999)

		v, ok := w.Value("threshold")
		require.True(t, ok)
		assert.True(t, v.RawEquals(cty.NumberIntVal(120)))
	})
}

func TestBaseFunctionsIsolated(t *testing.T) {
	a := BaseFunctions()
	b := BaseFunctions()
	delete(a, "upper")
	_, ok := b["upper"]
	assert.True(t, ok, "each call returns a fresh table")
}
