package visjs

import (
	"reflect"
	"testing"

	"github.com/bjorngylling/flowviz/graph"
)

func Test_createNetwork(t *testing.T) {
	type args struct {
		graph  graph.Graph
		counts map[string]int
	}

	flow := graph.NewGraph()
	flow.AddNode(&graph.Node{Name: "A", Edges: []*graph.Edge{{Target: "B", Value: 2}}})
	flow.AddNode(&graph.Node{Name: "B"})

	tests := []struct {
		name      string
		args      args
		wantNodes []Node
		wantEdges []Edge
	}{
		{
			name: "acl",
			args: args{
				graph: graph.Graph{
					Nodes: map[string]*graph.Node{
						"user-1": {
							Name: "user-1",
							Type: "user",
						},
						"topic-1": {
							Name:  "topic-1",
							Edges: []*graph.Edge{{Target: "user-1", Operation: "Read"}},
							Type:  "topic",
						},
					},
				},
				counts: map[string]int{"topic-1": 1},
			},
			wantNodes: []Node{
				{
					ID:    "topic-1",
					Label: "🗒 topic-1 (1)",
					Shape: "box",
					Color: color{"", highlight{""}},
					Type:  "topic",
					Title: "leaf edges in subtree: 1",
				},
				{
					ID:    "user-1",
					Label: "🤖 user-1",
					Shape: "ellipse",
					Color: color{"#6ef091", highlight{Background: "#ccffda"}},
					Type:  "user",
				},
			},
			wantEdges: []Edge{
				{
					From:   "topic-1",
					To:     "user-1",
					Arrows: "to",
					Title:  "Read",
				},
			},
		},
		{
			name: "producer",
			args: args{
				graph: graph.Graph{Nodes: map[string]*graph.Node{
					"svc (producer)": {Name: "svc (producer)", Type: "producer", Edges: []*graph.Edge{{Target: "orders", Operation: "Write"}}},
					"orders":         {Name: "orders", Type: "topic"},
				}},
				counts: map[string]int{"svc (producer)": 1},
			},
			wantNodes: []Node{
				{ID: "orders", Label: "🗒 orders", Shape: "ellipse", Type: "topic"},
				{
					ID:    "svc (producer)",
					Label: "🤖 svc (producer) (1)",
					Shape: "box",
					Color: ColorGreen,
					Type:  "producer",
					Title: "leaf edges in subtree: 1",
				},
			},
			wantEdges: []Edge{
				{From: "svc (producer)", To: "orders", Arrows: "to", Title: "Write"},
			},
		},
		{
			name: "flow",
			args: args{graph: flow, counts: map[string]int{"A": 1}},
			wantNodes: []Node{
				{ID: "A", Label: "A (1)", Shape: "box", Color: ColorBlue, Title: "leaf edges in subtree: 1"},
				{ID: "B", Label: "B", Shape: "ellipse"},
			},
			wantEdges: []Edge{
				{From: "A", To: "B", Arrows: "to", Title: "2", Value: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, got1 := CreateNetwork(tt.args.graph, tt.args.counts)

			if !reflect.DeepEqual(got, tt.wantNodes) {
				t.Errorf("CreateNetwork() got = %v, wantNodes %v", got, tt.wantNodes)
			}
			if !reflect.DeepEqual(got1, tt.wantEdges) {
				t.Errorf("CreateNetwork() got1 = %v, wantEdges %v", got1, tt.wantEdges)
			}
		})
	}
}

func Test_edgeTitle(t *testing.T) {
	tests := []struct {
		edge graph.Edge
		want string
	}{
		{graph.Edge{Operation: "Write", Value: 1.5}, "Write (1.5)"},
		{graph.Edge{Operation: "Write"}, "Write"},
		{graph.Edge{Value: 3}, "3"},
		{graph.Edge{}, ""},
	}
	for _, tt := range tests {
		if got := edgeTitle(&tt.edge); got != tt.want {
			t.Errorf("edgeTitle(%+v) = %q, want %q", tt.edge, got, tt.want)
		}
	}
}
