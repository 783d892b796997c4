package churn

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: DefaultOptions()},
		{name: "no_hubs", opts: Options{Agents: 3}, wantErr: true},
		{name: "no_agents", opts: Options{Hubs: DefaultOptions().Hubs}, wantErr: true},
		{name: "bad_probability", opts: Options{Hubs: DefaultOptions().Hubs, Agents: 1, AddProbability: 1.5}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshot_Nodes(t *testing.T) {
	topo, err := New(Options{Hubs: []NodeState{{ID: "-1", Name: "A"}}, Agents: 2})
	require.NoError(t, err)

	want := []NodeState{
		{ID: "-1", Name: "A", Role: RoleHub},
		{ID: "agent-1", Name: "agent-1", Role: RoleAgent},
		{ID: "agent-2", Name: "agent-2", Role: RoleAgent},
	}
	assert.Equal(t, want, topo.Snapshot().Nodes)
	assert.Empty(t, topo.Snapshot().Edges)
}

func TestPanelOptions(t *testing.T) {
	topo, err := New(PanelOptions())
	require.NoError(t, err)

	nodes := topo.Snapshot().Nodes
	require.Len(t, nodes, 34)
	assert.Equal(t, NodeState{ID: "-1", Name: "A", Role: RoleHub}, nodes[0])
	assert.Equal(t, NodeState{ID: "-2", Name: "B", Role: RoleHub}, nodes[1])
	assert.Equal(t, NodeState{ID: "1", Name: "agent-1", Role: RoleAgent}, nodes[2])
	assert.Equal(t, NodeState{ID: "32", Name: "agent-32", Role: RoleAgent}, nodes[33])

	change := topo.Step(rand.New(rand.NewSource(1)))
	assert.Contains(t, []string{"-1", "-2"}, change.Edge.Source)
}

func TestStep_AlwaysAdd(t *testing.T) {
	opts := DefaultOptions()
	opts.Agents = 5
	opts.AddProbability = 1
	topo, err := New(opts)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		topo.Step(r)
	}

	// Every agent ends up with exactly one inbound edge.
	inbound := map[string]int{}
	for _, e := range topo.Snapshot().Edges {
		inbound[e.Target]++
	}
	assert.Len(t, inbound, 5)
	for agent, n := range inbound {
		assert.Equal(t, 1, n, agent)
	}
}

func TestStep_AddThenRemove(t *testing.T) {
	opts := Options{Hubs: []NodeState{{ID: "x"}}, Agents: 1, AddProbability: 1}
	topo, err := New(opts)
	require.NoError(t, err)
	r := rand.New(rand.NewSource(1))

	change := topo.Step(r)
	assert.Equal(t, Change{Action: ActionAdd, Edge: EdgeState{Source: "x", Target: "agent-1"}}, change)
	assert.Equal(t, "x-agent-1", change.Edge.ID())

	change = topo.Step(r)
	assert.Equal(t, ActionNone, change.Action, "agent already connected")

	topo.opts.AddProbability = 0
	change = topo.Step(r)
	assert.Equal(t, ActionRemove, change.Action)
	assert.Zero(t, topo.EdgeCount())

	change = topo.Step(r)
	assert.Equal(t, ActionNone, change.Action, "nothing left to remove")
}

func TestSnapshot_IsCopy(t *testing.T) {
	opts := Options{Hubs: []NodeState{{ID: "x"}}, Agents: 1, AddProbability: 1}
	topo, err := New(opts)
	require.NoError(t, err)
	topo.Step(rand.New(rand.NewSource(1)))

	s := topo.Snapshot()
	s.Edges[0].Target = "changed"

	assert.Equal(t, "agent-1", topo.Snapshot().Edges[0].Target)
}

func TestRunner_PublishesChanges(t *testing.T) {
	opts := Options{Hubs: []NodeState{{ID: "x"}}, Agents: 3, AddProbability: 1}
	topo, err := New(opts)
	require.NoError(t, err)

	var mu sync.Mutex
	var published []Snapshot
	runner := &Runner{
		Topology: topo,
		Interval: time.Millisecond,
		Rand:     rand.New(rand.NewSource(3)),
		Publish: func(s Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, s)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool { return topo.EdgeCount() == 3 }, 2*time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, published, 3, "one publish per added edge")
	assert.Len(t, published[2].Edges, 3)
}
