// Package churn keeps the hub/agent topology shown on the live graph view
// and mutates its edges one step per tick.
package churn

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	"github.com/bjorngylling/flowviz/errors"
)

type Role string

const (
	RoleHub   Role = "hub"
	RoleAgent Role = "agent"
)

type NodeState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

type EdgeState struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ID is the edge's stable identifier, "<source>-<target>".
func (e EdgeState) ID() string {
	return e.Source + "-" + e.Target
}

// Snapshot is an immutable copy of the topology.
type Snapshot struct {
	Nodes []NodeState `json:"nodes"`
	Edges []EdgeState `json:"edges"`
}

type Options struct {
	// Hubs are the fixed endpoints edges start from, as id to display name.
	Hubs []NodeState
	// Agents is the number of agent nodes, named agent-1..agent-N.
	Agents int
	// AddProbability is the chance a step tries to add an edge rather than remove one.
	AddProbability float64
	// NumericAgentIDs gives agents the ids "1".."N" instead of "agent-1".."agent-N".
	// Display names are always agent-N.
	NumericAgentIDs bool
}

func DefaultOptions() Options {
	return Options{
		Hubs: []NodeState{
			{ID: "x", Name: "node-1", Role: RoleHub},
			{ID: "y", Name: "node-2", Role: RoleHub},
		},
		Agents:         40,
		AddProbability: 0.2,
	}
}

// PanelOptions is the dashboard panel node set: hubs A and B and 32
// agents with numeric ids.
func PanelOptions() Options {
	return Options{
		Hubs: []NodeState{
			{ID: "-1", Name: "A", Role: RoleHub},
			{ID: "-2", Name: "B", Role: RoleHub},
		},
		Agents:          32,
		AddProbability:  0.2,
		NumericAgentIDs: true,
	}
}

type Action string

const (
	ActionNone   Action = "none"
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Change describes what a Step did.
type Change struct {
	Action Action
	Edge   EdgeState
}

// Topology is the owned, mutable state behind the live view. It is safe
// for concurrent use.
type Topology struct {
	mu     sync.RWMutex
	opts   Options
	nodes  []NodeState
	edges  []EdgeState
	agents []string
}

func New(opts Options) (*Topology, error) {
	if len(opts.Hubs) == 0 {
		return nil, errors.New("topology needs at least one hub")
	}
	if opts.Agents <= 0 {
		return nil, errors.Newf("topology needs at least one agent, got %d", opts.Agents)
	}
	if opts.AddProbability < 0 || opts.AddProbability > 1 {
		return nil, errors.Newf("add probability %v outside [0, 1]", opts.AddProbability)
	}

	t := &Topology{opts: opts}
	for _, h := range opts.Hubs {
		h.Role = RoleHub
		t.nodes = append(t.nodes, h)
	}
	for i := 1; i <= opts.Agents; i++ {
		name := fmt.Sprintf("agent-%d", i)
		id := name
		if opts.NumericAgentIDs {
			id = strconv.Itoa(i)
		}
		t.nodes = append(t.nodes, NodeState{ID: id, Name: name, Role: RoleAgent})
		t.agents = append(t.agents, id)
	}
	return t, nil
}

// Step applies one random mutation: pick a hub and an agent, then either
// connect them (only when the agent has no inbound edge yet) or drop the
// edge between them if it exists.
func (t *Topology) Step(r *rand.Rand) Change {
	hub := t.opts.Hubs[r.Intn(len(t.opts.Hubs))].ID
	agent := t.agents[r.Intn(len(t.agents))]
	edge := EdgeState{Source: hub, Target: agent}

	t.mu.Lock()
	defer t.mu.Unlock()

	if r.Float64() < t.opts.AddProbability {
		for _, e := range t.edges {
			if e.Target == agent {
				return Change{Action: ActionNone, Edge: edge}
			}
		}
		t.edges = append(t.edges, edge)
		return Change{Action: ActionAdd, Edge: edge}
	}

	for i, e := range t.edges {
		if e == edge {
			t.edges = append(t.edges[:i:i], t.edges[i+1:]...)
			return Change{Action: ActionRemove, Edge: edge}
		}
	}
	return Change{Action: ActionNone, Edge: edge}
}

func (t *Topology) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Snapshot{
		Nodes: make([]NodeState, len(t.nodes)),
		Edges: make([]EdgeState, len(t.edges)),
	}
	copy(s.Nodes, t.nodes)
	copy(s.Edges, t.edges)
	return s
}

func (t *Topology) EdgeCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.edges)
}
