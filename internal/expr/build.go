package expr

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Program is the assembled shape of a compiled expression: the ordered
// binding prelude followed by the user body, plus the flags controlling how
// the invoker materializes the evaluation scope. Building a Program is pure
// assembly; nothing is evaluated until Invoke.
type Program struct {
	// Title identifies the snippet in diagnostics.
	Title string

	// Prelude is the ordered list of bindings evaluated before the body.
	Prelude []PlannedBinding

	// Body is the parsed user expression; nil when the source was empty,
	// in which case invocation yields a null value.
	Body hclsyntax.Expression

	// NilGuarded makes every prelude binding evaluate to a null value when
	// the event is absent, instead of running its generator.
	NilGuarded bool

	// NoOwnerLocals omits the owner-scoped locals from the evaluation
	// scope. Set for process-wide setup and shutdown style expressions,
	// which have no meaningful owner.
	NoOwnerLocals bool
}

// buildProgram assembles the program for a compiled expression.
func buildProgram(title string, body hclsyntax.Expression, prelude []PlannedBinding, nilGuarded, noOwnerLocals bool) *Program {
	return &Program{
		Title:         title,
		Prelude:       prelude,
		Body:          body,
		NilGuarded:    nilGuarded,
		NoOwnerLocals: noOwnerLocals,
	}
}

// PreludeNames returns the prelude's binding names in evaluation order.
// Exposed for editors and tests that want to inspect what a compiled
// expression will bind.
func (p *Program) PreludeNames() []string {
	names := make([]string, len(p.Prelude))
	for i, b := range p.Prelude {
		names[i] = b.Name
	}
	return names
}
