package depgraph

import (
	"fmt"
	"sort"
)

// node is a single vertex plus its adjacency sets. The insertion order is
// kept so topological sorts are stable for equal-rank nodes.
type node struct {
	id         string
	order      int
	deps       map[string]*node
	dependents map[string]*node
}

// Graph is a directed graph of string-identified nodes. An edge from A to B
// means B depends on A. The zero value is not usable; call New.
type Graph struct {
	nodes map[string]*node
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &node{
		id:         id,
		order:      len(g.nodes),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `toID` depends on `fromID`. An error is returned if either node
// does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	return nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, naming the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	// Classic depth-first search with three sets of nodes:
	// permanent: fully visited, known not to be part of a cycle.
	// temporary: currently in the recursion stack.
	// unvisited: everything else.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true

		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}

		delete(temporary, n.id)
		permanent[n.id] = true

		return nil
	}

	for _, n := range g.sortedNodes() {
		if !permanent[n.id] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}

	return nil
}

// TopoSort returns all node IDs in dependency order: every node appears
// after all of its dependencies. Nodes of equal rank keep their insertion
// order, so repeated sorts of the same graph yield identical output. An
// error is returned when the graph contains a cycle.
func (g *Graph) TopoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		inDegree[id] = len(n.deps)
	}

	var ready []*node
	for _, n := range g.sortedNodes() {
		if inDegree[n.id] == 0 {
			ready = append(ready, n)
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		// Pop the oldest ready node to keep the order stable.
		n := ready[0]
		ready = ready[1:]
		sorted = append(sorted, n.id)

		for _, dependent := range sortedSlice(n.dependents) {
			inDegree[dependent.id]--
			if inDegree[dependent.id] == 0 {
				ready = insertByOrder(ready, dependent)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, fmt.Errorf("cannot sort: graph contains a cycle among %d remaining nodes", len(g.nodes)-len(sorted))
	}
	return sorted, nil
}

// sortedNodes returns all nodes in insertion order.
func (g *Graph) sortedNodes() []*node {
	nodes := make([]*node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].order < nodes[j].order })
	return nodes
}

// sortedSlice returns the nodes of an adjacency set in insertion order.
func sortedSlice(m map[string]*node) []*node {
	nodes := make([]*node, 0, len(m))
	for _, n := range m {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].order < nodes[j].order })
	return nodes
}

// insertByOrder inserts n into ready keeping the slice sorted by insertion order.
func insertByOrder(ready []*node, n *node) []*node {
	i := sort.Search(len(ready), func(i int) bool { return ready[i].order > n.order })
	ready = append(ready, nil)
	copy(ready[i+1:], ready[i:])
	ready[i] = n
	return ready
}
