package expr

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/beatgridgo/internal/catalog"
)

// discoverBindings returns the names from the resolved binding set that the
// parsed expression references, in first-reference order. Variables()
// reports every variable traversal in the tree regardless of depth or
// position, so a binding used as a bare value deep inside a template or a
// function argument is still found. Names that merely resemble a binding
// (a longer identifier, a string literal) never match, because matching is
// against the traversal root name, not the source text.
func discoverBindings(body hcl.Expression, set catalog.Set) []string {
	if body == nil {
		return nil
	}

	seen := make(map[string]bool)
	var discovered []string
	for _, traversal := range body.Variables() {
		root := traversal.RootName()
		if seen[root] {
			continue
		}
		if _, ok := set[root]; !ok {
			continue
		}
		seen[root] = true
		discovered = append(discovered, root)
	}
	return discovered
}
