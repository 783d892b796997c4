package visjs

import (
	"fmt"
	"strconv"

	"github.com/bjorngylling/flowviz/graph"
)

type nodeShape string

var (
	ShapeBox     nodeShape = "box"
	ShapeEllipse nodeShape = "ellipse"

	ColorGreen = color{Background: "#6ef091", Highlight: highlight{Background: "#ccffda"}}
	ColorBlue  = color{Background: "#97c2fc", Highlight: highlight{Background: "#d2e5ff"}}
)

type highlight struct {
	Background string `json:"background"`
}
type color struct {
	Background string    `json:"background"`
	Highlight  highlight `json:"highlight"`
}

type Node struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Shape nodeShape `json:"shape"`
	Color color     `json:"color"`
	Type  string    `json:"type"`
	Title string    `json:"title,omitempty"`
	Level *int      `json:"level,omitempty"`
}

type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Arrows string  `json:"arrows"`
	Dashes bool    `json:"dashes,omitempty"`
	Title  string  `json:"title,omitempty"`
	Value  float64 `json:"value,omitempty"`
}

// CreateNetwork converts g to vis.js nodes and edges in declaration order.
// counts holds the leaf-edge count of every internal node; nodes missing
// from it are leaves and are drawn as ellipses.
func CreateNetwork(g graph.Graph, counts map[string]int) ([]Node, []Edge) {
	var nodes []Node
	var edges []Edge

	for _, id := range g.Names() {
		node := g.Nodes[id]
		labelPrefix := ""
		c := color{}
		switch node.Type {
		case "user", "producer", "consumer":
			labelPrefix = "🤖 "
			c = ColorGreen
		case "topic":
			labelPrefix = "🗒 "
		case "cluster":
			labelPrefix = "🗄 "
		}

		n := Node{
			ID:    id,
			Label: labelPrefix + node.Name,
			Shape: ShapeEllipse,
			Color: c,
			Type:  node.Type,
		}
		if count, ok := counts[id]; ok {
			n.Label = fmt.Sprintf("%s%s (%d)", labelPrefix, node.Name, count)
			n.Title = "leaf edges in subtree: " + strconv.Itoa(count)
			n.Shape = ShapeBox
			if node.Type == "" {
				n.Color = ColorBlue
			}
		}
		nodes = append(nodes, n)

		for _, edge := range node.Edges {
			edges = append(edges, Edge{
				From:   id,
				To:     edge.Target,
				Arrows: "to",
				Title:  edgeTitle(edge),
				Value:  edge.Value,
			})
		}
	}

	return nodes, edges
}

func edgeTitle(e *graph.Edge) string {
	switch {
	case e.Operation != "" && e.Value != 0:
		return fmt.Sprintf("%s (%g)", e.Operation, e.Value)
	case e.Operation != "":
		return e.Operation
	case e.Value != 0:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	}
	return ""
}
