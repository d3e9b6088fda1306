// Package depgraph implements a small directed graph used to validate and
// order dependency relations: the inheritance links between event kinds in
// the binding catalog and the requires links between bindings in a compiled
// prelude. It offers cycle detection and a deterministic topological sort.
package depgraph
