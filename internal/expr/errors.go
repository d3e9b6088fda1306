package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// CompileError reports a failure to turn source text into a compiled
// expression, or to load shared definitions. Title identifies the snippet
// the way the user knows it ("Activation Expression for Trigger 2"); Diags
// carry source positions when the failure came out of the HCL toolchain.
type CompileError struct {
	Title string
	Diags hcl.Diagnostics
	Err   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("compiling %s: %s", e.Title, e.detail())
}

// Unwrap exposes the underlying cause chain.
func (e *CompileError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Diags.HasErrors() {
		return e.Diags
	}
	return nil
}

func (e *CompileError) detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Diags.HasErrors() {
		return e.Diags.Error()
	}
	return "unknown error"
}

// RuntimeError reports a failure while invoking an already-compiled
// expression. It carries the same title the expression was compiled with.
type RuntimeError struct {
	Title string
	Diags hcl.Diagnostics
	Err   error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("invoking %s: %s", e.Title, e.detail())
}

// Unwrap exposes the underlying cause chain.
func (e *RuntimeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	if e.Diags.HasErrors() {
		return e.Diags
	}
	return nil
}

func (e *RuntimeError) detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Diags.HasErrors() {
		return e.Diags.Error()
	}
	return "unknown error"
}
