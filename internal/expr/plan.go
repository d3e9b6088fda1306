package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/depgraph"
)

// PlannedBinding is one entry of a compiled expression's binding prelude.
type PlannedBinding struct {
	Name      string
	Source    string
	Generator hclsyntax.Expression
}

// planPrelude orders the discovered bindings into the prelude. A binding's
// requires target is pulled in even when the user never referenced it
// directly, and always lands strictly earlier in the result. The full
// resolved set is consulted to look up targets that were not themselves
// discovered. Bindings with no ordering relation keep first-reference
// order, so recompiling the same source yields an identical prelude.
func planPrelude(discovered []string, set catalog.Set) ([]PlannedBinding, error) {
	g := depgraph.New()

	// Add discovered bindings in reference order, pulling in their requires
	// chains as they appear. The catalog has validated that every target
	// exists and that chains are acyclic, but a hand-built set passed
	// directly to Compile may not have been through that, so resolve
	// defensively here too.
	var addChain func(name string) error
	addChain = func(name string) error {
		if g.HasNode(name) {
			return nil
		}
		binding, ok := set[name]
		if !ok {
			return fmt.Errorf("planning prelude: binding %q is not in the resolved set", name)
		}
		g.AddNode(name)
		if binding.Requires == "" {
			return nil
		}
		if err := addChain(binding.Requires); err != nil {
			return err
		}
		return g.AddEdge(binding.Requires, name)
	}

	for _, name := range discovered {
		if err := addChain(name); err != nil {
			return nil, err
		}
	}

	ordered, err := g.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("planning prelude: %w", err)
	}

	prelude := make([]PlannedBinding, 0, len(ordered))
	for _, name := range ordered {
		binding := set[name]
		prelude = append(prelude, PlannedBinding{
			Name:      binding.Name,
			Source:    binding.Source,
			Generator: binding.Generator,
		})
	}
	return prelude, nil
}
