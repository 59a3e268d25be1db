package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	depRelates bool
	depReason  string
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage edges between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add <blocker-id> <blocked-id>",
	Short: "Add an edge: the first task blocks the second",
	Long: `Adds a blocks edge from the first task to the second, meaning the first
must reach done or canceled before the second becomes runnable. The insert is
rejected if it would close a cycle. With --relates the edge carries no
ordering constraint.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		edge := types.Edge{
			FromTaskID: args[0],
			ToTaskID:   args[1],
			Type:       types.EdgeBlocks,
			Reason:     depReason,
		}
		if depRelates {
			edge.Type = types.EdgeRelates
		}
		if err := s.AddEdge(rootCtx, edge, true); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("add %s edge %s -> %s", edge.Type, edge.FromTaskID, edge.ToTaskID)); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(edge)
		}
		fmt.Printf("Added %s edge %s -> %s\n", edge.Type, shortID(edge.FromTaskID), shortID(edge.ToTaskID))
		return nil
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List edges touching a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		edges, err := s.ListEdgesForTask(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(edges)
		}
		if len(edges) == 0 {
			fmt.Println("No edges.")
			return nil
		}
		for _, e := range edges {
			line := fmt.Sprintf("%s %s %s", shortID(e.FromTaskID), e.Type, shortID(e.ToTaskID))
			if e.Reason != "" {
				line += dim("  (" + e.Reason + ")")
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	depAddCmd.Flags().BoolVar(&depRelates, "relates", false, "Add a relates edge instead of a blocks edge")
	depAddCmd.Flags().StringVar(&depReason, "reason", "", "Why the edge exists")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depListCmd)
	rootCmd.AddCommand(depCmd)
}
