package graph

import (
	"sort"
)

// EdgeKey identifies an edge by its endpoints. Parallel edges between the
// same pair share a key.
type EdgeKey struct {
	Source string
	Target string
}

type EdgeSet map[EdgeKey]struct{}

// Sorted returns the keys ordered by source, then target.
func (s EdgeSet) Sorted() []EdgeKey {
	keys := make([]EdgeKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}

// Aggregator holds the leaf-edge set of every node in a graph. All sets are
// computed by NewAggregator; the graph must not be modified afterwards.
type Aggregator struct {
	g    Graph
	memo map[string]EdgeSet
	// expanded counts how often each node's edges were walked.
	expanded map[string]int
}

// NewAggregator validates g and computes the leaf-edge set of each node:
// the edges (u, v) with v a leaf and u reachable from the node. Each node
// is expanded once, so shared descendants are not recomputed.
func NewAggregator(g Graph) (*Aggregator, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	a := &Aggregator{
		g:        g,
		memo:     make(map[string]EdgeSet, len(g.Nodes)),
		expanded: make(map[string]int, len(g.Nodes)),
	}
	onPath := map[string]bool{}
	var path []string
	for _, name := range g.Names() {
		if _, err := a.leafEdgeSet(name, onPath, path); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Aggregator) leafEdgeSet(name string, onPath map[string]bool, path []string) (EdgeSet, error) {
	if set, ok := a.memo[name]; ok {
		return set, nil
	}
	path = append(path, name)
	if onPath[name] {
		return nil, &CyclicGraphError{Path: cyclePath(path)}
	}
	onPath[name] = true
	defer delete(onPath, name)
	a.expanded[name]++

	set := EdgeSet{}
	for _, e := range a.g.Nodes[name].Edges {
		child := a.g.Nodes[e.Target]
		if child.IsLeaf() {
			set[EdgeKey{Source: name, Target: e.Target}] = struct{}{}
			continue
		}
		childSet, err := a.leafEdgeSet(e.Target, onPath, path)
		if err != nil {
			return nil, err
		}
		for k := range childSet {
			set[k] = struct{}{}
		}
	}
	a.memo[name] = set
	return set, nil
}

// cyclePath trims path to the part between the two occurrences of its last element.
func cyclePath(path []string) []string {
	last := path[len(path)-1]
	for i, name := range path[:len(path)-1] {
		if name == last {
			cycle := make([]string, len(path)-i)
			copy(cycle, path[i:])
			return cycle
		}
	}
	return path
}

// LeafEdgeSet returns the leaf-edge set of name. The returned set is shared
// and must not be modified.
func (a *Aggregator) LeafEdgeSet(name string) (EdgeSet, bool) {
	set, ok := a.memo[name]
	return set, ok
}

// LeafEdgeCount returns the size of name's leaf-edge set, or nil when name
// is a leaf or unknown.
func (a *Aggregator) LeafEdgeCount(name string) *int {
	n, ok := a.g.Nodes[name]
	if !ok || n.IsLeaf() {
		return nil
	}
	count := len(a.memo[name])
	return &count
}

// AnnotatedNode is a node as handed to renderers, extended with its
// leaf-edge count. LeafEdgeCount is nil for leaves.
type AnnotatedNode struct {
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	LeafEdgeCount *int   `json:"leafEdgeCount"`
}

// Annotate returns one AnnotatedNode per node of g in Names order. g is not
// modified.
func Annotate(g Graph) ([]AnnotatedNode, error) {
	a, err := NewAggregator(g)
	if err != nil {
		return nil, err
	}
	return a.Annotate(), nil
}

func (a *Aggregator) Annotate() []AnnotatedNode {
	names := a.g.Names()
	nodes := make([]AnnotatedNode, 0, len(names))
	for _, name := range names {
		nodes = append(nodes, AnnotatedNode{
			Name:          name,
			Type:          a.g.Nodes[name].Type,
			LeafEdgeCount: a.LeafEdgeCount(name),
		})
	}
	return nodes
}

// Counts maps each internal node name to its leaf-edge count.
func Counts(nodes []AnnotatedNode) map[string]int {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if n.LeafEdgeCount != nil {
			counts[n.Name] = *n.LeafEdgeCount
		}
	}
	return counts
}
