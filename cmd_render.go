package main

import (
	"context"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"

	"github.com/bjorngylling/flowviz/churn"
	"github.com/bjorngylling/flowviz/echarts"
	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
	"github.com/bjorngylling/flowviz/timeseries"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		input  string
	)
	cmd := &cobra.Command{
		Use:       "render <sankey|topology|timeseries>",
		Short:     "Write a standalone chart page",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sankey", "topology", "timeseries"},
		RunE: func(cmd *cobra.Command, args []string) error {
			chart, err := a.buildChart(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrap(err, "create output")
				}
				defer f.Close()
				w = f
			}
			return echarts.RenderPage(w, "flowviz "+args[0], chart)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&input, "input", "i", "", "input file; defaults to flow.file or timeseries.file")
	return cmd
}

func (a *app) buildChart(ctx context.Context, kind, input string) (components.Charter, error) {
	switch kind {
	case "sankey":
		if input == "" {
			input = a.cfg.Flow.File
		}
		g, err := graph.LoadFile(input)
		if err != nil {
			return nil, err
		}
		nodes, err := graph.Annotate(g)
		if err != nil {
			return nil, err
		}
		o := echarts.DefaultSankeyOptions()
		o.Vertical = a.cfg.Flow.Vertical
		return echarts.Sankey(g, nodes, o)

	case "topology":
		t, err := churn.New(churnOptions(a.cfg.Churn))
		if err != nil {
			return nil, err
		}
		return echarts.Topology(t.Snapshot(), topologyOptions(a.cfg.Churn)), nil

	case "timeseries":
		if input == "" {
			input = a.cfg.TimeSeries.File
		}
		if input == "" {
			return nil, errors.WithHint(errors.New("no time series input"), "pass --input or set timeseries.file")
		}
		all := timeseries.Range{From: time.Time{}, To: time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)}
		series, err := timeseries.FileSource{Path: input}.Query(ctx, all)
		if err != nil {
			return nil, err
		}
		return echarts.TimeSeries(series, echarts.DefaultTimeSeriesOptions()), nil
	}
	return nil, errors.Newf("unknown chart %q", kind)
}
