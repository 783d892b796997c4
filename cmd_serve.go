package main

import (
	"context"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bjorngylling/flowviz/calendar"
	"github.com/bjorngylling/flowviz/churn"
	"github.com/bjorngylling/flowviz/config"
	"github.com/bjorngylling/flowviz/echarts"
	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/flow"
	"github.com/bjorngylling/flowviz/graph"
	"github.com/bjorngylling/flowviz/kafka"
	"github.com/bjorngylling/flowviz/live"
	"github.com/bjorngylling/flowviz/logger"
	"github.com/bjorngylling/flowviz/timeseries"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart views and keep them current",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("listen-addr", "", "address to listen on for the web interface")
	cmd.Flags().String("flow-file", "", "flow graph document (JSON or YAML)")
	cmd.Flags().String("source", "", "flow source: file or kafka")
	cmd.Flags().StringSlice("brokers", nil, "Kafka bootstrap brokers")
	return cmd
}

// churnOptions starts from the node set of the configured preset. A zero
// agent count keeps the preset's own.
func churnOptions(c config.ChurnConfig) churn.Options {
	o := churn.DefaultOptions()
	if c.Preset == string(echarts.PresetPanel) {
		o = churn.PanelOptions()
	}
	if c.Agents > 0 {
		o.Agents = c.Agents
	}
	o.AddProbability = c.AddProbability
	return o
}

func topologyOptions(c config.ChurnConfig) echarts.TopologyOptions {
	o := echarts.DefaultTopologyOptions()
	o.Preset = echarts.TopologyPreset(c.Preset)
	return o
}

func calendarOptions(c config.CalendarConfig) calendar.Options {
	o := calendar.DefaultOptions()
	o.Month = c.Month
	o.CellSize = c.CellSize
	o.FirstDay = c.FirstDay
	o.NameMap = c.NameMap
	return o
}

// flowTask picks the flow source. File sources are watched rather than polled.
func (a *app) flowTask(state *flow.State) (func(ctx context.Context) error, func(), error) {
	log := logger.Named("flow")
	switch a.cfg.Flow.Source {
	case config.SourceKafka:
		kc := a.cfg.Kafka
		client, err := kafka.NewAdminClient(kafka.Options{
			Brokers:  kc.Brokers,
			Version:  kc.Version,
			ClientID: kc.ClientID,
			Verbose:  kc.Verbose,
			TLS:      kafka.TLSOptions{CAFile: kc.CAFile, CertFile: kc.CertFile, KeyFile: kc.KeyFile},
		}, logger.Logger)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("Connected to Kafka", "brokers", kc.Brokers, "fetch_interval", kc.FetchInterval)
		load := func(context.Context) (graph.Graph, error) {
			return kafka.FetchGraph(client)
		}
		run := func(ctx context.Context) error {
			return flow.Poll(ctx, kc.FetchInterval, load, state)
		}
		return run, func() { _ = client.Close() }, nil
	default:
		fw := flow.NewFileWatcher(a.cfg.Flow.File, a.cfg.Flow.Debounce, state, log)
		return fw.Run, func() {}, nil
	}
}

func (a *app) seriesSource() (timeseries.Source, func(), error) {
	ts := a.cfg.TimeSeries
	switch ts.Source {
	case "file":
		return timeseries.FileSource{Path: ts.File}, func() {}, nil
	case "influx":
		queries := make([]timeseries.Query, 0, len(ts.Influx.Queries))
		for _, q := range ts.Influx.Queries {
			queries = append(queries, timeseries.Query{Ref: q.Ref, Measurement: q.Measurement, Field: q.Field})
		}
		src := timeseries.NewInfluxSource(timeseries.InfluxOptions{
			URL:     ts.Influx.URL,
			Token:   ts.Influx.Token,
			Org:     ts.Influx.Org,
			Bucket:  ts.Influx.Bucket,
			Queries: queries,
			Every:   ts.Influx.Every,
		})
		return src, src.Close, nil
	}
	return nil, func() {}, nil
}

func (a *app) serve(ctx context.Context) error {
	log := logger.Named("serve")
	state := flow.NewState(logger.Named("flow"))

	flowRun, closeFlow, err := a.flowTask(state)
	if err != nil {
		return err
	}
	defer closeFlow()

	series, closeSeries, err := a.seriesSource()
	if err != nil {
		return err
	}
	defer closeSeries()
	if src, ok := series.(*timeseries.InfluxSource); ok {
		if err := src.Ready(ctx); err != nil {
			log.Warnw("InfluxDB not ready, time series queries will fail until it is", "error", err)
		}
	}

	s := &server{
		Flow:         state,
		Series:       series,
		Sankey:       echarts.DefaultSankeyOptions(),
		TopologyUI:   topologyOptions(a.cfg.Churn),
		TimeSeries:   echarts.DefaultTimeSeriesOptions(),
		Calendar:     calendarOptions(a.cfg.Calendar),
		CalendarSeed: a.cfg.Calendar.Seed,
		Log:          log,
		Now:          time.Now,
	}
	s.Sankey.Vertical = a.cfg.Flow.Vertical

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(flowRun(ctx)) })

	if a.cfg.Churn.Enabled {
		topology, err := churn.New(churnOptions(a.cfg.Churn))
		if err != nil {
			return errors.Wrap(err, "build topology")
		}
		hub := live.NewHub("topology", a.cfg.Churn.BroadcastPerSecond, logger.Named("live"))
		publish := func(snap churn.Snapshot) {
			if err := hub.Publish(echarts.NewTopologyUpdate(snap, s.TopologyUI)); err != nil {
				log.Warnw("Publish topology failed", "error", err)
			}
		}
		publish(topology.Snapshot())
		runner := &churn.Runner{
			Topology: topology,
			Interval: a.cfg.Churn.Interval,
			Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
			Publish:  publish,
			Log:      logger.Named("churn"),
		}
		s.Topology, s.Hub = topology, hub

		g.Go(func() error { hub.Run(ctx); return nil })
		g.Go(func() error { return ignoreCanceled(runner.Run(ctx)) })
	}

	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Infow("Listening", "addr", srv.Addr, "flow_source", a.cfg.Flow.Source)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Infow("Stopped")
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
