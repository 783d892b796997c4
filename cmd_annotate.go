package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/bjorngylling/flowviz/errors"
	"github.com/bjorngylling/flowviz/graph"
)

func newAnnotateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "annotate <graph-file>",
		Short: "Print every node of a flow graph with its leaf-edge count",
		Long: `Reads a JSON or YAML flow document and prints its nodes as JSON.
Internal nodes carry the number of distinct edges into leaves reachable
below them; leaves carry null. Dangling or cyclic graphs are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.LoadFile(args[0])
			if err != nil {
				return err
			}
			nodes, err := graph.Annotate(g)
			if err != nil {
				return errors.Wrapf(err, "annotate %s", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(nodes)
		},
	}
}
