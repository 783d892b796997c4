package graph

import (
	"sort"
)

// Graph is a directed graph of named nodes. Edges are stored on their
// source node.
type Graph struct {
	Nodes map[string]*Node

	order []string
}

type Node struct {
	Name  string
	Type  string
	Edges []*Edge
}

type Edge struct {
	Target    string
	Operation string
	Value     float64
}

// Link is a flattened edge as renderers consume it.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

func NewGraph() Graph {
	return Graph{Nodes: map[string]*Node{}}
}

// AddNode adds or replaces n. The first insertion of a name fixes its
// position in Names.
func (g *Graph) AddNode(n *Node) {
	if _, ok := g.Nodes[n.Name]; !ok {
		g.order = append(g.order, n.Name)
	}
	g.Nodes[n.Name] = n
}

func (n *Node) AddEdge(to *Edge) {
	n.Edges = append(n.Edges, to)
}

func (n *Node) IsLeaf() bool {
	return len(n.Edges) == 0
}

// Names returns the names added with AddNode in insertion order, followed
// by any other names in Nodes sorted. Names recorded by AddNode but since
// removed from Nodes are skipped. Graphs built as literals therefore return
// their names sorted.
func (g Graph) Names() []string {
	names := make([]string, 0, len(g.Nodes))
	seen := make(map[string]bool, len(g.Nodes))
	for _, name := range g.order {
		if _, ok := g.Nodes[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var rest []string
	for name := range g.Nodes {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Links flattens the graph into source/target/value triples, ordered by
// source name (see Names) and then by edge insertion.
func Links(g Graph) []Link {
	var links []Link
	for _, name := range g.Names() {
		for _, e := range g.Nodes[name].Edges {
			links = append(links, Link{Source: name, Target: e.Target, Value: e.Value})
		}
	}
	return links
}

// Validate reports the first edge whose target is not a declared node.
func (g Graph) Validate() error {
	for _, name := range g.Names() {
		for _, e := range g.Nodes[name].Edges {
			if _, ok := g.Nodes[e.Target]; !ok {
				return &DanglingEdgeError{Source: name, Target: e.Target, Missing: e.Target}
			}
		}
	}
	return nil
}
