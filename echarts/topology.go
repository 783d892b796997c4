package echarts

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bjorngylling/flowviz/churn"
)

// TopologyPreset selects how hubs and agents are drawn.
type TopologyPreset string

const (
	// PresetChart draws colored circles, hubs at a quarter of the width from each side.
	PresetChart TopologyPreset = "chart"
	// PresetPanel draws agents as labelled rectangles, hubs at thirds.
	PresetPanel TopologyPreset = "panel"
)

type TopologyOptions struct {
	Title   string
	ChartID string
	Preset  TopologyPreset
	// Width and Height are the chart size in pixels; fixed hubs are placed from them.
	Width  int
	Height int
	// SocketPath is the websocket path the page subscribes to for updates.
	SocketPath string
	HubColors  []string
}

func DefaultTopologyOptions() TopologyOptions {
	return TopologyOptions{
		Title:      "Topology",
		ChartID:    "topology",
		Preset:     PresetChart,
		Width:      1200,
		Height:     800,
		SocketPath: "/ws/topology",
		HubColors:  []string{"red", "orange"},
	}
}

// TopologyUpdate is the websocket message for one snapshot.
type TopologyUpdate struct {
	Series []TopologySeries `json:"series"`
}

type TopologySeries struct {
	Data  []opts.GraphNode `json:"data"`
	Links []opts.GraphLink `json:"links"`
}

// TopologyNodes positions hubs and styles agents for s. Nodes show their
// display name and keep the order of s.Nodes, which TopologyLinks refers to.
func TopologyNodes(s churn.Snapshot, o TopologyOptions) []opts.GraphNode {
	var hubs int
	for _, n := range s.Nodes {
		if n.Role == churn.RoleHub {
			hubs++
		}
	}

	nodes := make([]opts.GraphNode, 0, len(s.Nodes))
	hub := 0
	for _, n := range s.Nodes {
		if n.Role == churn.RoleHub {
			node := opts.GraphNode{
				Name:       n.Name,
				Fixed:      true,
				X:          hubX(hub, hubs, o),
				Y:          float32(o.Height) / 2,
				Symbol:     "circle",
				SymbolSize: 50,
			}
			if hub < len(o.HubColors) {
				node.ItemStyle = &opts.ItemStyle{Color: o.HubColors[hub]}
			}
			nodes = append(nodes, node)
			hub++
			continue
		}
		node := opts.GraphNode{Name: n.Name, Symbol: "circle", SymbolSize: 30, ItemStyle: &opts.ItemStyle{Color: "green"}}
		if o.Preset == PresetPanel {
			node.Symbol = "rect"
			node.SymbolSize = 10
			node.ItemStyle = &opts.ItemStyle{Color: "black"}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// hubX spreads hubs evenly: quarters for the chart preset with two hubs,
// otherwise (i+1)/(n+1) of the width.
func hubX(i, n int, o TopologyOptions) float32 {
	w := float32(o.Width)
	if o.Preset == PresetChart && n == 2 {
		return w/4 + float32(i)*w/2
	}
	return w * float32(i+1) / float32(n+1)
}

// TopologyLinks refers to nodes by their index in s.Nodes, since display
// names need not be unique. Edges naming unknown ids are skipped.
func TopologyLinks(s churn.Snapshot) []opts.GraphLink {
	index := make(map[string]int, len(s.Nodes))
	for i, n := range s.Nodes {
		index[n.ID] = i
	}
	links := make([]opts.GraphLink, 0, len(s.Edges))
	for _, e := range s.Edges {
		src, ok := index[e.Source]
		if !ok {
			continue
		}
		dst, ok := index[e.Target]
		if !ok {
			continue
		}
		links = append(links, opts.GraphLink{Source: src, Target: dst})
	}
	return links
}

func NewTopologyUpdate(s churn.Snapshot, o TopologyOptions) TopologyUpdate {
	return TopologyUpdate{Series: []TopologySeries{{Data: TopologyNodes(s, o), Links: TopologyLinks(s)}}}
}

// Topology builds the force-directed view of s. The page keeps itself
// current by applying TopologyUpdate messages from o.SocketPath.
func Topology(s churn.Snapshot, o TopologyOptions) *charts.Graph {
	g := charts.NewGraph()
	g.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: o.Title,
			ChartID:   o.ChartID,
			Width:     fmt.Sprintf("%dpx", o.Width),
			Height:    fmt.Sprintf("%dpx", o.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title}),
	)

	force := &opts.GraphForce{EdgeLength: 100, Gravity: 0.02}
	if o.Preset == PresetPanel {
		force = &opts.GraphForce{EdgeLength: 50, Gravity: 0.1, Repulsion: 150}
	}
	label := opts.Label{Show: true}
	if o.Preset == PresetPanel {
		label = opts.Label{Show: true, Position: "inside", Color: "white", Formatter: "{b}"}
	}

	g.AddSeries("topology", TopologyNodes(s, o), TopologyLinks(s),
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout: "force",
			Force:  force,
			Roam:   true,
		}),
		charts.WithLabelOpts(label),
	)
	g.AddJSFuncs(topologySocket(o))
	return g
}

func topologySocket(o TopologyOptions) string {
	return fmt.Sprintf(`(function () {
  goecharts_%[1]s.setOption({ animation: false, series: [{ layoutAnimation: false }] });
  const scheme = window.location.protocol === "https:" ? "wss://" : "ws://";
  function connect() {
    const ws = new WebSocket(scheme + window.location.host + %[2]q);
    ws.onmessage = function (ev) { goecharts_%[1]s.setOption(JSON.parse(ev.data)); };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();`, o.ChartID, o.SocketPath)
}
