package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjorngylling/flowviz/errors"
)

var diamondLinks = []LinkSpec{
	{Source: "A", Target: "A1", Value: 1},
	{Source: "A1", Target: "C", Value: 1},
	{Source: "A", Target: "A2", Value: 1},
	{Source: "A2", Target: "C", Value: 1},
	{Source: "B", Target: "B1", Value: 1},
	{Source: "B1", Target: "C", Value: 1},
	{Source: "A1", Target: "B", Value: 1},
	{Source: "A2", Target: "D", Value: 1},
}

func diamondDoc(links []LinkSpec) Document {
	return Document{
		Nodes: []NodeSpec{{Name: "A"}, {Name: "A1"}, {Name: "A2"}, {Name: "B"}, {Name: "B1"}, {Name: "C"}, {Name: "D"}},
		Links: links,
	}
}

func mustGraph(t *testing.T, doc Document) Graph {
	t.Helper()
	g, err := doc.Graph()
	require.NoError(t, err)
	return g
}

func intp(n int) *int { return &n }

func TestAnnotate_Diamond(t *testing.T) {
	nodes, err := Annotate(mustGraph(t, diamondDoc(diamondLinks)))
	require.NoError(t, err)

	want := []AnnotatedNode{
		{Name: "A", LeafEdgeCount: intp(4)},
		{Name: "A1", LeafEdgeCount: intp(2)},
		{Name: "A2", LeafEdgeCount: intp(2)},
		{Name: "B", LeafEdgeCount: intp(1)},
		{Name: "B1", LeafEdgeCount: intp(1)},
		{Name: "C"},
		{Name: "D"},
	}
	assert.Equal(t, want, nodes)
}

func TestAggregator_LeafEdgeSet(t *testing.T) {
	a, err := NewAggregator(mustGraph(t, diamondDoc(diamondLinks)))
	require.NoError(t, err)

	tests := []struct {
		node string
		want []EdgeKey
	}{
		{node: "A", want: []EdgeKey{{"A1", "C"}, {"A2", "C"}, {"A2", "D"}, {"B1", "C"}}},
		{node: "A1", want: []EdgeKey{{"A1", "C"}, {"B1", "C"}}},
		{node: "A2", want: []EdgeKey{{"A2", "C"}, {"A2", "D"}}},
		{node: "B", want: []EdgeKey{{"B1", "C"}}},
		{node: "B1", want: []EdgeKey{{"B1", "C"}}},
		{node: "C", want: []EdgeKey{}},
	}
	for _, tt := range tests {
		t.Run(tt.node, func(t *testing.T) {
			set, ok := a.LeafEdgeSet(tt.node)
			require.True(t, ok)
			assert.Equal(t, tt.want, set.Sorted())
		})
	}

	_, ok := a.LeafEdgeSet("missing")
	assert.False(t, ok)
	assert.Nil(t, a.LeafEdgeCount("missing"))
}

func TestAnnotate_LeavesCarryNoCount(t *testing.T) {
	g := mustGraph(t, diamondDoc(diamondLinks))
	nodes, err := Annotate(g)
	require.NoError(t, err)

	for _, n := range nodes {
		if g.Nodes[n.Name].IsLeaf() {
			assert.Nil(t, n.LeafEdgeCount, n.Name)
		} else {
			assert.NotNil(t, n.LeafEdgeCount, n.Name)
		}
	}
}

// sharedDescendant has P1 and P2 both reaching Q, and P1 reaching Q along
// two paths.
func sharedDescendant() Document {
	return Document{
		Nodes: []NodeSpec{{Name: "P1"}, {Name: "P2"}, {Name: "M"}, {Name: "Q"}, {Name: "L1"}, {Name: "L2"}},
		Links: []LinkSpec{
			{Source: "P1", Target: "Q"},
			{Source: "P1", Target: "M"},
			{Source: "M", Target: "Q"},
			{Source: "P2", Target: "Q"},
			{Source: "Q", Target: "L1"},
			{Source: "Q", Target: "L2"},
		},
	}
}

func TestAnnotate_SharedDescendantCountedOnce(t *testing.T) {
	counts := Counts(mustAnnotate(t, sharedDescendant()))

	assert.Equal(t, 2, counts["Q"])
	assert.Equal(t, 2, counts["M"])
	assert.Equal(t, 2, counts["P1"])
	assert.Equal(t, 2, counts["P2"])
}

func TestNewAggregator_ExpandsEachNodeOnce(t *testing.T) {
	g, err := sharedDescendant().Graph()
	require.NoError(t, err)

	a, err := NewAggregator(g)
	require.NoError(t, err)

	want := map[string]int{"P1": 1, "P2": 1, "M": 1, "Q": 1, "L1": 1, "L2": 1}
	assert.Equal(t, want, a.expanded)
}

func TestAnnotate_ParallelEdgesCountOnce(t *testing.T) {
	doc := Document{
		Nodes: []NodeSpec{{Name: "A"}, {Name: "B"}},
		Links: []LinkSpec{{Source: "A", Target: "B", Value: 1}, {Source: "A", Target: "B", Value: 5}},
	}
	g := mustGraph(t, doc)

	assert.Len(t, Links(g), 2)
	assert.Equal(t, map[string]int{"A": 1}, Counts(mustAnnotate(t, doc)))
}

func TestAnnotate_Idempotent(t *testing.T) {
	g := mustGraph(t, diamondDoc(diamondLinks))

	first, err := Annotate(g)
	require.NoError(t, err)
	second, err := Annotate(g)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnnotate_DoesNotModifyGraph(t *testing.T) {
	g := mustGraph(t, diamondDoc(diamondLinks))
	before := Links(g)

	_, err := Annotate(g)
	require.NoError(t, err)

	assert.Equal(t, before, Links(g))
	assert.Len(t, g.Nodes, 7)
}

func TestAnnotate_OrderIndependent(t *testing.T) {
	want := Counts(mustAnnotate(t, diamondDoc(diamondLinks)))

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		links := append([]LinkSpec(nil), diamondLinks...)
		r.Shuffle(len(links), func(i, j int) { links[i], links[j] = links[j], links[i] })

		assert.Equal(t, want, Counts(mustAnnotate(t, diamondDoc(links))), "permutation %d", i)
	}
}

func TestAnnotate_DanglingEdge(t *testing.T) {
	tests := []struct {
		name        string
		doc         Document
		wantMissing string
	}{
		{
			name: "undeclared_target",
			doc: Document{
				Nodes: []NodeSpec{{Name: "X"}},
				Links: []LinkSpec{{Source: "X", Target: "Y"}},
			},
			wantMissing: "Y",
		},
		{
			name: "undeclared_source",
			doc: Document{
				Nodes: []NodeSpec{{Name: "Y"}},
				Links: []LinkSpec{{Source: "X", Target: "Y"}},
			},
			wantMissing: "X",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Graph()

			var dangling *DanglingEdgeError
			require.True(t, errors.As(err, &dangling), "got %v", err)
			assert.Equal(t, tt.wantMissing, dangling.Missing)
			assert.Contains(t, err.Error(), tt.wantMissing)
		})
	}
}

func TestAnnotate_DanglingEdgeInLiteralGraph(t *testing.T) {
	g := Graph{Nodes: map[string]*Node{
		"X": {Name: "X", Edges: []*Edge{{Target: "Y"}}},
	}}

	_, err := Annotate(g)

	var dangling *DanglingEdgeError
	require.True(t, errors.As(err, &dangling))
	assert.Equal(t, "Y", dangling.Missing)
}

func TestAnnotate_Cycle(t *testing.T) {
	tests := []struct {
		name      string
		doc       Document
		wantCycle []string
	}{
		{
			name: "two_nodes",
			doc: Document{
				Nodes: []NodeSpec{{Name: "A"}, {Name: "B"}},
				Links: []LinkSpec{{Source: "A", Target: "B"}, {Source: "B", Target: "A"}},
			},
			wantCycle: []string{"A", "B", "A"},
		},
		{
			name: "self_loop",
			doc: Document{
				Nodes: []NodeSpec{{Name: "A"}, {Name: "L"}},
				Links: []LinkSpec{{Source: "A", Target: "L"}, {Source: "A", Target: "A"}},
			},
			wantCycle: []string{"A", "A"},
		},
		{
			name: "below_entry",
			doc: Document{
				Nodes: []NodeSpec{{Name: "R"}, {Name: "X"}, {Name: "Y"}, {Name: "Z"}},
				Links: []LinkSpec{
					{Source: "R", Target: "X"},
					{Source: "X", Target: "Y"},
					{Source: "Y", Target: "Z"},
					{Source: "Z", Target: "X"},
				},
			},
			wantCycle: []string{"X", "Y", "Z", "X"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Annotate(mustGraph(t, tt.doc))

			var cyclic *CyclicGraphError
			require.True(t, errors.As(err, &cyclic), "got %v", err)
			assert.Equal(t, tt.wantCycle, cyclic.Path)
		})
	}
}

func mustAnnotate(t *testing.T, doc Document) []AnnotatedNode {
	t.Helper()
	nodes, err := Annotate(mustGraph(t, doc))
	require.NoError(t, err)
	return nodes
}
