// Package echarts turns flowviz data into ECharts options using go-echarts.
// Behaviour go-echarts has no option for (formatter callbacks, vertical
// sankey, live updates) is attached as a small setOption patch script.
package echarts

import (
	"encoding/json"
	"fmt"
	"html"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bjorngylling/flowviz/graph"
)

type SankeyOptions struct {
	Title    string
	ChartID  string
	Vertical bool
	Width    string
	Height   string
}

func DefaultSankeyOptions() SankeyOptions {
	return SankeyOptions{
		Title:    "Flow",
		ChartID:  "sankey",
		Vertical: true,
		Width:    "100%",
		Height:   "90vh",
	}
}

// NodeLabel is the text drawn next to a flow node: "name (count)" for
// internal nodes, the bare name for leaves.
func NodeLabel(n graph.AnnotatedNode) string {
	if n.LeafEdgeCount == nil {
		return n.Name
	}
	return fmt.Sprintf("%s (%d)", n.Name, *n.LeafEdgeCount)
}

// NodeTooltip is the hover text for internal nodes. Leaves get none.
func NodeTooltip(n graph.AnnotatedNode) (string, bool) {
	if n.LeafEdgeCount == nil {
		return "", false
	}
	return fmt.Sprintf("%s<br/>leaf edges in subtree: %d", html.EscapeString(n.Name), *n.LeafEdgeCount), true
}

// Sankey builds the flow diagram for g. annotated must come from
// graph.Annotate(g).
func Sankey(g graph.Graph, annotated []graph.AnnotatedNode, o SankeyOptions) (*charts.Sankey, error) {
	nodes := make([]opts.SankeyNode, 0, len(annotated))
	labels := make(map[string]string, len(annotated))
	tips := map[string]string{}
	for _, n := range annotated {
		nodes = append(nodes, opts.SankeyNode{Name: n.Name})
		labels[n.Name] = NodeLabel(n)
		if tip, ok := NodeTooltip(n); ok {
			tips[n.Name] = tip
		}
	}

	var links []opts.SankeyLink
	for _, l := range graph.Links(g) {
		// Unweighted edges, such as ACL grants, draw at unit width.
		v := l.Value
		if v == 0 {
			v = 1
		}
		links = append(links, opts.SankeyLink{Source: l.Source, Target: l.Target, Value: float32(v)})
	}

	sankey := charts.NewSankey()
	sankey.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			ChartID:   o.ChartID,
			Width:     o.Width,
			Height:    o.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
	)
	sankey.AddSeries("flow", nodes, links,
		charts.WithLabelOpts(opts.Label{Show: true}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: "source", Curveness: 0.5}),
	)

	patch, err := sankeyPatch(o, labels, tips)
	if err != nil {
		return nil, err
	}
	sankey.AddJSFuncs(patch)
	return sankey, nil
}

func sankeyPatch(o SankeyOptions, labels, tips map[string]string) (string, error) {
	labelJSON, err := json.Marshal(labels)
	if err != nil {
		return "", err
	}
	tipJSON, err := json.Marshal(tips)
	if err != nil {
		return "", err
	}
	orient := "horizontal"
	if o.Vertical {
		orient = "vertical"
	}
	return fmt.Sprintf(`(function () {
  const labels = %s;
  const tips = %s;
  goecharts_%s.setOption({
    tooltip: {
      trigger: "item",
      formatter: function (p) {
        if (p.dataType === "node" && tips[p.name] !== undefined) {
          return tips[p.name];
        }
        if (p.dataType === "edge") {
          return p.data.source + " &rarr; " + p.data.target + ": " + p.data.value;
        }
      }
    },
    series: [{
      orient: %q,
      emphasis: { focus: "adjacency" },
      label: { formatter: function (p) { return labels[p.name] || p.name; } }
    }]
  });
})();`, labelJSON, tipJSON, o.ChartID, orient), nil
}
