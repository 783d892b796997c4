package graph

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bjorngylling/flowviz/errors"
)

// Document is the on-disk form of a flow graph:
//
//	{"nodes": [{"name": "A"}], "links": [{"source": "A", "target": "B", "value": 1}]}
type Document struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
	Links []LinkSpec `json:"links" yaml:"links"`
}

type NodeSpec struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
}

type LinkSpec struct {
	Source string  `json:"source" yaml:"source"`
	Target string  `json:"target" yaml:"target"`
	Value  float64 `json:"value" yaml:"value"`
}

// Graph builds a Graph from the document. Links naming an undeclared node
// fail with a DanglingEdgeError.
func (d Document) Graph() (Graph, error) {
	g := NewGraph()
	for _, n := range d.Nodes {
		if n.Name == "" {
			return Graph{}, errors.New("node with empty name")
		}
		if _, dup := g.Nodes[n.Name]; dup {
			return Graph{}, errors.WithHint(errors.Newf("node %q declared twice", n.Name), "node names must be unique within a document")
		}
		g.AddNode(&Node{Name: n.Name, Type: n.Type, Edges: []*Edge{}})
	}
	for _, l := range d.Links {
		src, ok := g.Nodes[l.Source]
		if !ok {
			return Graph{}, &DanglingEdgeError{Source: l.Source, Target: l.Target, Missing: l.Source}
		}
		if _, ok := g.Nodes[l.Target]; !ok {
			return Graph{}, &DanglingEdgeError{Source: l.Source, Target: l.Target, Missing: l.Target}
		}
		src.AddEdge(&Edge{Target: l.Target, Value: l.Value})
	}
	return g, nil
}

// Decode reads a JSON document, or a YAML one when format is "yaml".
func Decode(r io.Reader, format string) (Document, error) {
	var doc Document
	switch format {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, errors.Wrap(err, "decode yaml graph")
		}
	case "json", "":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, errors.Wrap(err, "decode json graph")
		}
	default:
		return Document{}, errors.WithHint(errors.Newf("unsupported graph format %q", format), "use a .json, .yaml or .yml file")
	}
	return doc, nil
}

// LoadFile decodes the document at path, picking the format from its
// extension, and builds the graph.
func LoadFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return Graph{}, err
	}
	defer f.Close()

	doc, err := Decode(f, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return Graph{}, errors.Wrapf(err, "%s", path)
	}
	return doc.Graph()
}
