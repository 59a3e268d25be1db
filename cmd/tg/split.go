package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var splitTitles []string

var splitCmd = &cobra.Command{
	Use:   "split <task-id>",
	Short: "Split a task into child tasks that block it",
	Long: `Creates one child task per --into title in the same plan. Each child
blocks the parent, so the parent stays unrunnable until all children finish,
and a relates edge records the lineage. One split event is appended to the
parent listing the children.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if len(splitTitles) == 0 {
			return fmt.Errorf("at least one --into title is required")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		children, err := s.SplitTask(rootCtx, args[0], splitTitles, actorKind())
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("split task %s into %d children", args[0], len(children))); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(children)
		}
		fmt.Printf("Split %s into %d tasks:\n", shortID(args[0]), len(children))
		for _, c := range children {
			printTaskLine(c)
		}
		return nil
	},
}

func init() {
	splitCmd.Flags().StringArrayVar(&splitTitles, "into", nil, "Child task title (repeatable)")
	rootCmd.AddCommand(splitCmd)
}
