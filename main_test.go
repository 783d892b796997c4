package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjorngylling/flowviz/config"
	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func Test_annotateCmd(t *testing.T) {
	out, err := execute(t, "annotate", filepath.Join("graph", "testdata", "diamond.yaml"))
	require.NoError(t, err)

	var nodes []graph.AnnotatedNode
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	counts := graph.Counts(nodes)
	assert.Equal(t, map[string]int{"A": 4, "A1": 2, "A2": 2, "B": 1, "B1": 1}, counts)
	assert.Contains(t, out, `"leafEdgeCount": null`)
}

func Test_annotateCmdRejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, err error)
	}{
		{
			name: "cycle",
			doc:  `{"nodes":[{"name":"A"},{"name":"B"}],"links":[{"source":"A","target":"B","value":1},{"source":"B","target":"A","value":1}]}`,
			check: func(t *testing.T, err error) {
				var cyclic *graph.CyclicGraphError
				require.True(t, errors.As(err, &cyclic), "got %v", err)
				assert.Equal(t, []string{"A", "B", "A"}, cyclic.Path)
			},
		},
		{
			name: "dangling",
			doc:  `{"nodes":[{"name":"A"}],"links":[{"source":"A","target":"Z","value":1}]}`,
			check: func(t *testing.T, err error) {
				var dangling *graph.DanglingEdgeError
				require.True(t, errors.As(err, &dangling), "got %v", err)
				assert.Equal(t, "Z", dangling.Missing)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "flow.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.doc), 0o600))
			_, err := execute(t, "annotate", path)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func Test_renderCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		wants string
	}{
		{"sankey", []string{"render", "sankey", "-i", filepath.Join("graph", "testdata", "diamond.json")}, "goecharts_sankey"},
		{"topology", []string{"render", "topology"}, "goecharts_topology"},
		{"timeseries", []string{"render", "timeseries", "-i", filepath.Join("timeseries", "testdata", "series.json")}, "goecharts_timeseries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.html")
			_, err := execute(t, append(tt.args, "-o", path)...)
			require.NoError(t, err)

			page, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(page), tt.wants)
		})
	}
}

func Test_renderCmdUnknownChart(t *testing.T) {
	_, err := execute(t, "render", "pie")
	require.Error(t, err)
}

func Test_churnOptions(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.ChurnConfig
		wantHubs   []string
		wantAgents int
	}{
		{"chart default", config.ChurnConfig{Preset: "chart"}, []string{"x", "y"}, 40},
		{"panel default", config.ChurnConfig{Preset: "panel"}, []string{"-1", "-2"}, 32},
		{"agents override", config.ChurnConfig{Preset: "panel", Agents: 5}, []string{"-1", "-2"}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := churnOptions(tt.cfg)
			var hubs []string
			for _, h := range o.Hubs {
				hubs = append(hubs, h.ID)
			}
			assert.Equal(t, tt.wantHubs, hubs)
			assert.Equal(t, tt.wantAgents, o.Agents)
		})
	}
}
