package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bjorngylling/flowviz/calendar"
	"github.com/bjorngylling/flowviz/churn"
	"github.com/bjorngylling/flowviz/echarts"
	"github.com/bjorngylling/flowviz/flow"
	"github.com/bjorngylling/flowviz/graph"
	"github.com/bjorngylling/flowviz/timeseries"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	log := zap.NewNop().Sugar()

	state := flow.NewState(log)
	g, err := graph.LoadFile(filepath.Join("graph", "testdata", "diamond.json"))
	require.NoError(t, err)
	require.NoError(t, state.Update(g, nil))

	topology, err := churn.New(churn.DefaultOptions())
	require.NoError(t, err)

	return &server{
		Flow:         state,
		Topology:     topology,
		Series:       timeseries.FileSource{Path: filepath.Join("timeseries", "testdata", "series.json")},
		Sankey:       echarts.DefaultSankeyOptions(),
		TopologyUI:   echarts.DefaultTopologyOptions(),
		TimeSeries:   echarts.DefaultTimeSeriesOptions(),
		Calendar:     calendar.DefaultOptions(),
		CalendarSeed: 7,
		Log:          log,
		Now:          func() time.Time { return time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC) },
	}
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t).routes()

	tests := []struct {
		target     string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, `href="/sankey"`},
		{"/nope", http.StatusNotFound, ""},
		{"/sankey", http.StatusOK, `"A":"A (4)"`},
		{"/network", http.StatusOK, `A (4)`},
		{"/topology", http.StatusOK, "goecharts_topology"},
		{"/api/topology", http.StatusOK, `"id":"agent-40"`},
		{"/timeseries", http.StatusOK, "goecharts_timeseries"},
		{"/timeseries?from=1714557600000&to=1714557660000", http.StatusOK, "dataZoomSelect"},
		{"/timeseries?from=20&to=10", http.StatusBadRequest, "empty range"},
		{"/timeseries?from=abc", http.StatusBadRequest, "from"},
		{"/calendar", http.StatusOK, `"range":"2017-03"`},
		{"/calendar?month=2024-02", http.StatusOK, `"range":"2024-02"`},
		{"/calendar?month=feb", http.StatusBadRequest, ""},
		{"/metrics", http.StatusOK, "flowviz_flow_nodes"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			status, body := get(t, h, tt.target)
			assert.Equal(t, tt.wantStatus, status)
			assert.Contains(t, body, tt.wantBody)
		})
	}
}

func TestFlowAPI(t *testing.T) {
	s := newTestServer(t)

	status, body := get(t, s.routes(), "/api/flow")
	require.Equal(t, http.StatusOK, status)

	var resp flowResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Nodes, 7)
	assert.Equal(t, "A", resp.Nodes[0].Name)
	require.NotNil(t, resp.Nodes[0].LeafEdgeCount)
	assert.Equal(t, 4, *resp.Nodes[0].LeafEdgeCount)
	assert.Len(t, resp.Links, 8)
	assert.Empty(t, resp.Error)

	cyclic := graph.NewGraph()
	cyclic.AddNode(&graph.Node{Name: "A", Edges: []*graph.Edge{{Target: "A"}}})
	require.Error(t, s.Flow.Update(cyclic, nil))

	status, body = get(t, s.routes(), "/api/flow")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Len(t, resp.Nodes, 7)
	assert.Contains(t, resp.Error, "cycle")
}

func TestFlowNotLoaded(t *testing.T) {
	s := newTestServer(t)
	s.Flow = flow.NewState(zap.NewNop().Sugar())
	h := s.routes()

	for _, target := range []string{"/sankey", "/network", "/api/flow"} {
		status, _ := get(t, h, target)
		assert.Equal(t, http.StatusServiceUnavailable, status, target)
	}
}

func TestOptionalViews(t *testing.T) {
	s := newTestServer(t)
	s.Topology = nil
	s.Series = nil
	h := s.routes()

	for _, target := range []string{"/topology", "/api/topology", "/timeseries", "/ws/topology"} {
		status, _ := get(t, h, target)
		assert.Equal(t, http.StatusNotFound, status, target)
	}
}
