package main

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bjorngylling/flowviz/calendar"
	"github.com/bjorngylling/flowviz/churn"
	"github.com/bjorngylling/flowviz/echarts"
	"github.com/bjorngylling/flowviz/flow"
	"github.com/bjorngylling/flowviz/graph"
	"github.com/bjorngylling/flowviz/live"
	"github.com/bjorngylling/flowviz/timeseries"
	"github.com/bjorngylling/flowviz/visjs"
)

// server serves every view. Topology, Hub and Series are optional; their
// routes answer 404 when unset.
type server struct {
	Flow     *flow.State
	Topology *churn.Topology
	Hub      *live.Hub
	Series   timeseries.Source

	Sankey     echarts.SankeyOptions
	TopologyUI echarts.TopologyOptions
	TimeSeries echarts.TimeSeriesOptions
	Calendar   calendar.Options
	// CalendarSeed fixes the generated calendar; 0 draws a new one per request.
	CalendarSeed int64

	Log *zap.SugaredLogger
	Now func() time.Time
}

var indexLinks = []indexLink{
	{Path: "/sankey", Title: "Flow (sankey)"},
	{Path: "/network", Title: "Flow (network)"},
	{Path: "/topology", Title: "Live topology"},
	{Path: "/timeseries", Title: "Time series"},
	{Path: "/calendar", Title: "Calendar"},
	{Path: "/api/flow", Title: "Annotated flow (JSON)"},
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/sankey", s.handleSankey)
	mux.HandleFunc("/network", s.handleNetwork)
	mux.HandleFunc("/topology", s.handleTopology)
	mux.HandleFunc("/timeseries", s.handleTimeSeries)
	mux.HandleFunc("/calendar", s.handleCalendar)
	mux.HandleFunc("/api/flow", s.handleFlowAPI)
	mux.HandleFunc("/api/topology", s.handleTopologyAPI)
	if s.Hub != nil {
		mux.Handle("/ws/topology", s.Hub)
	}
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, indexTemplate, indexLinks)
}

// currentFlow writes 503 and returns nil until a graph has loaded.
func (s *server) currentFlow(w http.ResponseWriter) (*flow.Result, error) {
	res, err := s.Flow.Current()
	if res == nil {
		msg := "flow graph not loaded yet"
		if err != nil {
			msg = err.Error()
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
	}
	return res, err
}

func (s *server) handleSankey(w http.ResponseWriter, r *http.Request) {
	res, _ := s.currentFlow(w)
	if res == nil {
		return
	}
	chart, err := echarts.Sankey(res.Graph, res.Nodes, s.Sankey)
	if err != nil {
		s.fail(w, "build sankey", err)
		return
	}
	s.write(w, "text/html; charset=utf-8", chart.Render)
}

func (s *server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	res, refreshErr := s.currentFlow(w)
	if res == nil {
		return
	}
	nodes, edges := visjs.CreateNetwork(res.Graph, res.Counts)
	jsonNodes, err := json.Marshal(nodes)
	if err != nil {
		s.fail(w, "marshal nodes", err)
		return
	}
	jsonEdges, err := json.Marshal(edges)
	if err != nil {
		s.fail(w, "marshal edges", err)
		return
	}
	data := graphTemplateData{
		Title: "Flow network",
		Nodes: template.JS(jsonNodes),
		Edges: template.JS(jsonEdges),
	}
	if refreshErr != nil {
		data.Error = "showing last good graph: " + refreshErr.Error()
	}
	s.render(w, graphTemplate, data)
}

func (s *server) handleTopology(w http.ResponseWriter, r *http.Request) {
	if s.Topology == nil {
		http.NotFound(w, r)
		return
	}
	chart := echarts.Topology(s.Topology.Snapshot(), s.TopologyUI)
	s.write(w, "text/html; charset=utf-8", chart.Render)
}

func (s *server) handleTopologyAPI(w http.ResponseWriter, r *http.Request) {
	if s.Topology == nil {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, http.StatusOK, s.Topology.Snapshot())
}

func (s *server) handleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if s.Series == nil {
		http.NotFound(w, r)
		return
	}
	rng, err := timeseries.ParseRange(r.URL.Query(), s.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	series, err := s.Series.Query(r.Context(), rng)
	if err != nil {
		s.Log.Warnw("Time series query failed", "from", rng.From, "to", rng.To, "error", err)
		http.Error(w, "time series query failed", http.StatusBadGateway)
		return
	}
	chart := echarts.TimeSeries(series, s.TimeSeries)
	s.write(w, "text/html; charset=utf-8", chart.Render)
}

func (s *server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	o := s.Calendar
	if m := r.URL.Query().Get("month"); m != "" {
		o.Month = m
	}
	from, to, err := calendar.MonthRange(o.Month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	seed := s.CalendarSeed
	if seed == 0 {
		seed = s.Now().UnixNano()
	}
	days := calendar.Generate(from, to, rand.New(rand.NewSource(seed)), len(o.Glyphs))
	view, err := json.Marshal(calendar.BuildView(days, o))
	if err != nil {
		s.fail(w, "marshal calendar", err)
		return
	}
	s.render(w, calendarTemplate, calendarTemplateData{Title: "Calendar " + o.Month, View: template.JS(view)})
}

type flowResponse struct {
	Nodes     []graph.AnnotatedNode `json:"nodes"`
	Links     []graph.Link          `json:"links"`
	UpdatedAt time.Time             `json:"updatedAt"`
	Error     string                `json:"error,omitempty"`
}

func (s *server) handleFlowAPI(w http.ResponseWriter, r *http.Request) {
	res, err := s.Flow.Current()
	if res == nil {
		resp := flowResponse{Error: "flow graph not loaded yet"}
		if err != nil {
			resp.Error = err.Error()
		}
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp := flowResponse{Nodes: res.Nodes, Links: graph.Links(res.Graph), UpdatedAt: res.UpdatedAt}
	if err != nil {
		resp.Error = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// write renders into a buffer first so a failed render still gets a 500.
func (s *server) write(w http.ResponseWriter, contentType string, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.fail(w, "render", err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}

func (s *server) render(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	s.write(w, "text/html; charset=utf-8", func(w io.Writer) error {
		return tmpl.Execute(w, data)
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.fail(w, "marshal response", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *server) fail(w http.ResponseWriter, what string, err error) {
	s.Log.Errorw("Request failed", "step", what, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
