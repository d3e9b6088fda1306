package expr

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/workspace"
)

// Options control one compilation.
type Options struct {
	// NilGuarded compiles the prelude so that an absent event binds every
	// name to null instead of raising inside a generator. Set for
	// expressions that can run when no event is available, such as a
	// trigger's enabled expression evaluated at load time.
	NilGuarded bool

	// NoOwnerLocals omits the owner locals from the evaluation scope.
	NoOwnerLocals bool

	// Title identifies the snippet in errors, e.g. "Activation Expression
	// for Trigger drop-lights". It is also used as the diagnostic filename,
	// so parse positions read naturally in a UI dialog.
	Title string
}

// Compiler is the front end turning raw source text into compiled
// expressions. It is stateless apart from its reference to the process-wide
// shared workspace, which compiled expressions resolve shared names against
// and which serializes all compilation.
type Compiler struct {
	ws *workspace.Workspace
}

// NewCompiler creates a compiler bound to the given shared workspace.
func NewCompiler(ws *workspace.Workspace) *Compiler {
	return &Compiler{ws: ws}
}

// Workspace returns the shared workspace this compiler is bound to.
func (c *Compiler) Workspace() *workspace.Workspace {
	return c.ws
}

// Compile parses src as a single HCL expression, discovers which bindings
// of set it references, plans the prelude, and returns the compiled
// expression. On any failure it returns a *CompileError and no compiled
// value; it never installs anything, so the caller decides whether a
// previously compiled expression stays in place.
//
// Empty (or whitespace-only) source compiles successfully to an expression
// that yields a null value, so cleared editor panes stay cheap to handle.
func (c *Compiler) Compile(src string, set catalog.Set, opts Options) (*Compiled, error) {
	c.ws.LockCompile()
	defer c.ws.UnlockCompile()

	var body hclsyntax.Expression
	if strings.TrimSpace(src) != "" {
		parsed, diags := hclsyntax.ParseExpression([]byte(src), opts.Title, hcl.InitialPos)
		if diags.HasErrors() {
			return nil, &CompileError{Title: opts.Title, Diags: diags}
		}
		body = parsed
	}

	discovered := discoverBindings(body, set)
	prelude, err := planPrelude(discovered, set)
	if err != nil {
		return nil, &CompileError{Title: opts.Title, Err: err}
	}

	program := buildProgram(opts.Title, body, prelude, opts.NilGuarded, opts.NoOwnerLocals)
	return &Compiled{program: program, ws: c.ws}, nil
}

// Compiled is a reusable compiled expression. It is immutable after
// compilation and safe to invoke concurrently from multiple goroutines.
type Compiled struct {
	program *Program
	ws      *workspace.Workspace
}

// Title returns the diagnostic title the expression was compiled with.
func (c *Compiled) Title() string {
	return c.program.Title
}

// PreludeNames returns the prelude's binding names in evaluation order.
func (c *Compiled) PreludeNames() []string {
	return c.program.PreludeNames()
}
