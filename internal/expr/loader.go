package expr

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/userfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// LoadSharedDefinitions evaluates a block of user-submitted top-level
// definitions into the shared workspace. The source is an HCL body:
// `function "name" { params = [...] result = ... }` blocks define shared
// functions, and top-level attributes define shared values, evaluated in
// source order against the workspace scope (so later definitions can use
// earlier ones, and any load can use definitions from previous loads).
//
// Function blocks take effect before the value attributes of the same call.
// A failure aborts the remaining definitions of this call and is returned
// as a *CompileError carrying title; definitions already installed stay
// installed. There is no rollback.
func (c *Compiler) LoadSharedDefinitions(src string, title string) error {
	c.ws.LockCompile()
	defer c.ws.UnlockCompile()

	file, diags := hclsyntax.ParseConfig([]byte(src), title, hcl.InitialPos)
	if diags.HasErrors() {
		return &CompileError{Title: title, Diags: diags}
	}

	// Function bodies are evaluated lazily at call time against the live
	// workspace scope, which is what lets them call each other and recurse.
	funcs, _, diags := userfunc.DecodeUserFunctions(file.Body, "function", c.ws.EvalContext)
	if diags.HasErrors() {
		return &CompileError{Title: title, Diags: diags}
	}
	for name, fn := range funcs {
		c.ws.SetFunction(name, fn)
	}

	// The value attributes are read off the syntax body directly; asking the
	// decoder's remaining body for its attributes would report the function
	// blocks it already consumed as unexpected.
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return &CompileError{Title: title, Err: fmt.Errorf("unexpected body type %T", file.Body)}
	}
	for _, block := range body.Blocks {
		if block.Type != "function" {
			return &CompileError{Title: title, Err: fmt.Errorf("unexpected %q block at %s; only function blocks and value attributes are allowed", block.Type, block.TypeRange.String())}
		}
	}

	ordered := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		ordered = append(ordered, attr)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SrcRange.Start.Byte < ordered[j].SrcRange.Start.Byte
	})

	for _, attr := range ordered {
		val, diags := attr.Expr.Value(c.ws.EvalContext())
		if diags.HasErrors() {
			return &CompileError{Title: title, Diags: diags}
		}
		c.ws.SetValue(attr.Name, val)
	}

	return nil
}
