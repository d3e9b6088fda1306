// Package catalog models the registry of convenience bindings available to
// user expressions, keyed by the kind of event that triggered evaluation.
//
// A binding pairs a name with a generator expression that computes its value
// from the incoming event (or from bindings bound earlier in the same
// prelude). Kinds can inherit bindings from other kinds; a kind's full
// binding set is resolved by flattening that inheritance. The catalog is
// built once at startup and never mutated afterwards, so resolution results
// are cached.
package catalog
