// Package expr is the expression compilation engine. It turns raw user
// source text into reusable compiled expressions: it discovers which
// convenience bindings the snippet references, orders them into a prelude
// honoring their requires links, and binds the result to the shared
// workspace so snippets can call user-defined functions.
//
// Compilation is a pure function of its inputs; the package keeps no
// per-slot state. Slot bookkeeping (which compiled expression is currently
// installed where) belongs to the owning trigger.
package expr
