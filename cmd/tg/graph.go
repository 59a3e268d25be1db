package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/graph"
)

var (
	graphDot     bool
	graphMermaid bool
)

var graphCmd = &cobra.Command{
	Use:   "graph <plan-id>",
	Short: "Export a plan's task graph as Mermaid or DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		nodes, edges, err := s.PlanGraph(rootCtx, args[0])
		if err != nil {
			return err
		}
		if graphDot && !graphMermaid {
			fmt.Print(graph.DOT(nodes, edges))
			return nil
		}
		fmt.Print(graph.Mermaid(nodes, edges))
		return nil
	},
}

func init() {
	graphCmd.Flags().BoolVar(&graphDot, "dot", false, "Emit Graphviz DOT instead of Mermaid")
	graphCmd.Flags().BoolVar(&graphMermaid, "mermaid", false, "Emit Mermaid (the default)")
	rootCmd.AddCommand(graphCmd)
}
