package churn

import (
	"context"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flowviz_churn_steps_total",
		Help: "Topology mutation steps by resulting action",
	}, []string{"action"})

	edgesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flowviz_churn_edges",
		Help: "Current number of edges in the live topology",
	})
)

// Runner drives a Topology from a ticker and hands every changed snapshot
// to Publish. At most one step runs at a time.
type Runner struct {
	Topology *Topology
	Interval time.Duration
	Rand     *rand.Rand
	Publish  func(Snapshot)
	Log      *zap.SugaredLogger
}

// Run steps the topology until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Runner) tick() {
	change := r.Topology.Step(r.Rand)
	stepsTotal.WithLabelValues(string(change.Action)).Inc()
	if change.Action == ActionNone {
		return
	}
	edgesGauge.Set(float64(r.Topology.EdgeCount()))
	if r.Log != nil {
		r.Log.Debugw("topology changed", "action", change.Action, "source", change.Edge.Source, "target", change.Edge.Target)
	}
	if r.Publish != nil {
		r.Publish(r.Topology.Snapshot())
	}
}
