package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderValidation(t *testing.T) {
	t.Run("duplicate kind is rejected", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, nil).
			AddKind("base", nil, nil).
			Build()
		assert.ErrorContains(t, err, "declared twice")
	})

	t.Run("duplicate binding is rejected", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{
				{Name: "x", Source: "1"},
				{Name: "x", Source: "2"},
			}).
			Build()
		assert.ErrorContains(t, err, `binding "x" declared twice`)
	})

	t.Run("invalid binding name is rejected", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{{Name: "not a name", Source: "1"}}).
			Build()
		assert.ErrorContains(t, err, "not a valid identifier")
	})

	t.Run("unparsable generator is rejected", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{{Name: "x", Source: "(1 +"}}).
			Build()
		assert.ErrorContains(t, err, `binding "x" generator`)
	})

	t.Run("unknown inherited kind is rejected", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("child", []Kind{"ghost"}, nil).
			Build()
		assert.ErrorContains(t, err, `inherits unknown kind "ghost"`)
	})

	t.Run("cyclic inheritance fails fast", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("a", []Kind{"b"}, nil).
			AddKind("b", []Kind{"a"}, nil).
			Build()
		assert.ErrorContains(t, err, "cycle")
	})

	t.Run("requires target must exist in the resolved set", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{{Name: "y", Source: "1", Requires: "x"}}).
			Build()
		assert.ErrorContains(t, err, `requires unknown binding "x"`)
	})

	t.Run("requires target may come from an inherited kind", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{{Name: "x", Source: "1 + 1"}}).
			AddKind("child", []Kind{"base"}, []Spec{{Name: "y", Source: "x * 10", Requires: "x"}}).
			Build()
		assert.NoError(t, err)
	})

	t.Run("cyclic requires fails fast", func(t *testing.T) {
		_, err := NewBuilder().
			AddKind("base", nil, []Spec{
				{Name: "a", Source: "b", Requires: "b"},
				{Name: "b", Source: "a", Requires: "a"},
			}).
			Build()
		assert.ErrorContains(t, err, "cycle")
	})
}

func TestInheritsFrom(t *testing.T) {
	cat, err := NewBuilder().
		AddKind("base", nil, nil).
		AddKind("mid", []Kind{"base"}, nil).
		AddKind("leaf", []Kind{"mid"}, nil).
		AddKind("other", nil, nil).
		Build()
	require.NoError(t, err)

	assert.True(t, cat.InheritsFrom("mid", "base"))
	assert.True(t, cat.InheritsFrom("leaf", "base"), "inheritance is transitive")
	assert.False(t, cat.InheritsFrom("base", "leaf"))
	assert.False(t, cat.InheritsFrom("base", "base"), "a kind does not inherit from itself")
	assert.False(t, cat.InheritsFrom("other", "base"))
}

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	for _, kind := range []Kind{KindDeviceUpdate, KindBeat, KindMixerStatus, KindCDJStatus, KindBeatPosition} {
		assert.True(t, cat.HasKind(kind), "kind %s should be registered", kind)
	}

	t.Run("cdj status inherits device update bindings", func(t *testing.T) {
		set, err := cat.Resolve(KindCDJStatus)
		require.NoError(t, err)
		assert.Contains(t, set, "device_name")
		assert.Contains(t, set, "metadata")
		assert.Contains(t, set, "track_title")
		assert.Equal(t, "metadata", set["track_title"].Requires)
	})

	t.Run("beat position inherits through beat", func(t *testing.T) {
		set, err := cat.Resolve(KindBeatPosition)
		require.NoError(t, err)
		assert.Contains(t, set, "effective_tempo")
		assert.Contains(t, set, "device_number")
		assert.Contains(t, set, "track_time_reached")
		assert.Equal(t, "track_position", set["track_time_reached"].Requires)
	})

	t.Run("docs are exposed", func(t *testing.T) {
		assert.NotEmpty(t, cat.Doc(KindBeat, "effective_tempo"))
		assert.Empty(t, cat.Doc(KindBeat, "no_such_binding"))
		assert.Empty(t, cat.Doc("no-such-kind", "effective_tempo"))
	})
}
