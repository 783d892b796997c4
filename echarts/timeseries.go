package echarts

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bjorngylling/flowviz/timeseries"
)

type TimeSeriesOptions struct {
	Title   string
	ChartID string
	Width   string
	Height  string
	// ZoomPath is navigated to with from/to (epoch ms) after a zoom selection.
	ZoomPath string
}

func DefaultTimeSeriesOptions() TimeSeriesOptions {
	return TimeSeriesOptions{
		Title:    "Time series",
		ChartID:  "timeseries",
		Width:    "100%",
		Height:   "90vh",
		ZoomPath: "/timeseries",
	}
}

// LineData converts points to [epoch ms, value] pairs without symbols.
func LineData(points []timeseries.Point) []opts.LineData {
	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		data = append(data, opts.LineData{
			Value:  []interface{}{p.Time.UnixMilli(), timeseries.Round2(p.Value)},
			Symbol: "none",
		})
	}
	return data
}

// TimeSeries draws one line per series with the zoom toolbox enabled.
// Finishing a zoom selection reloads the page for the selected range.
func TimeSeries(series []timeseries.Series, o TimeSeriesOptions) *charts.Line {
	names := make([]string, 0, len(series))
	for _, s := range series {
		names = append(names, s.Name)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       o.Title,
			ChartID:         o.ChartID,
			Width:           o.Width,
			Height:          o.Height,
			BackgroundColor: "transparent",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{
			Show:      true,
			Left:      "0",
			Bottom:    "0",
			Data:      names,
			TextStyle: &opts.TextStyle{Color: "rgba(128, 128, 128, .9)"},
		}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: true,
			Feature: &opts.ToolBoxFeature{
				DataZoom:    &opts.ToolBoxFeatureDataZoom{Show: true, YAxisIndex: "none"},
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: true},
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: "dataMin"}),
		charts.WithGridOpts(opts.Grid{Left: "2%", Right: "2%", Top: "2%", Bottom: "24", ContainLabel: true}),
	)
	line.SetXAxis(nil)
	for _, s := range series {
		line.AddSeries(s.Name, LineData(s.Points),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: 0.1}),
			charts.WithLineStyleOpts(opts.LineStyle{Width: 1}),
		)
	}
	line.AddJSFuncs(zoomToRange(o))
	return line
}

func zoomToRange(o TimeSeriesOptions) string {
	return fmt.Sprintf(`(function () {
  const chart = goecharts_%[1]s;
  setTimeout(function () {
    chart.dispatchAction({ type: "takeGlobalCursor", key: "dataZoomSelect", dataZoomSelectActive: true });
  }, 500);
  chart.on("datazoom", function (params) {
    const batch = params.batch && params.batch[0];
    if (!batch || batch.startValue === undefined || batch.endValue === undefined) {
      return;
    }
    const q = new URLSearchParams({ from: Math.round(batch.startValue), to: Math.round(batch.endValue) });
    window.location.assign(%[2]q + "?" + q.toString());
  });
})();`, o.ChartID, o.ZoomPath)
}
