// Package flow keeps the served flow graph current. Sources feed graphs
// into a State, which annotates them and keeps the last good result.
package flow

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
)

var (
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flowviz_flow_refresh_duration_seconds",
		Help:    "Time spent loading and annotating the flow graph.",
		Buckets: prometheus.DefBuckets,
	})
	refreshFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowviz_flow_refresh_failures_total",
		Help: "Flow graph refreshes that failed, by kind.",
	}, []string{"kind"})
	flowNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flowviz_flow_nodes",
		Help: "Nodes in the currently served flow graph.",
	})
)

// Failure kinds
const (
	KindLoad     = "load"
	KindDangling = "dangling"
	KindCycle    = "cycle"
)

// Result is one successfully annotated graph.
type Result struct {
	Graph     graph.Graph
	Nodes     []graph.AnnotatedNode
	Counts    map[string]int
	UpdatedAt time.Time
}

type State struct {
	mu     sync.RWMutex
	result *Result
	err    error
	now    func() time.Time
	log    *zap.SugaredLogger
}

func NewState(log *zap.SugaredLogger) *State {
	return &State{now: time.Now, log: log}
}

// Update annotates g and makes it current. A failed load or annotation
// is recorded but the previous result keeps being served.
func (s *State) Update(g graph.Graph, loadErr error) error {
	start := s.now()
	defer func() { refreshDuration.Observe(time.Since(start).Seconds()) }()

	err := loadErr
	var nodes []graph.AnnotatedNode
	if err == nil {
		nodes, err = graph.Annotate(g)
	}
	if err != nil {
		kind := FailureKind(err)
		refreshFailures.WithLabelValues(kind).Inc()
		s.log.Warnw("Flow refresh failed", "kind", kind, "error", err)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		return err
	}

	result := &Result{Graph: g, Nodes: nodes, Counts: graph.Counts(nodes), UpdatedAt: s.now()}
	flowNodes.Set(float64(len(nodes)))
	s.log.Infow("Flow refreshed", "nodes", len(nodes), "links", len(graph.Links(g)))

	s.mu.Lock()
	s.result = result
	s.err = nil
	s.mu.Unlock()
	return nil
}

// Current returns the last good result, nil before the first success, and
// the error of the most recent refresh if it failed.
func (s *State) Current() (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.err
}

func FailureKind(err error) string {
	var dangling *graph.DanglingEdgeError
	var cyclic *graph.CyclicGraphError
	switch {
	case errors.As(err, &dangling):
		return KindDangling
	case errors.As(err, &cyclic):
		return KindCycle
	}
	return KindLoad
}
