package graph

import (
	"fmt"
	"strings"
)

// DanglingEdgeError is returned when an edge references a node name that
// was never declared.
type DanglingEdgeError struct {
	Source  string
	Target  string
	Missing string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edge %s -> %s references undeclared node %q", e.Source, e.Target, e.Missing)
}

// CyclicGraphError is returned when following outbound edges leads back to
// a node already on the current path. Path starts and ends on the same node.
type CyclicGraphError struct {
	Path []string
}

func (e *CyclicGraphError) Error() string {
	return "graph contains a cycle: " + strings.Join(e.Path, " -> ")
}
