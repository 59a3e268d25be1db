package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	readyPlan  string
	readyLimit int
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List runnable tasks (todo with no live blockers)",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		tasks, err := s.ListReadyTasks(rootCtx, readyPlan, readyLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No ready tasks.")
			return nil
		}
		for _, t := range tasks {
			printTaskLine(t)
		}
		return nil
	},
}

func init() {
	readyCmd.Flags().StringVar(&readyPlan, "plan", "", "Restrict to one plan")
	readyCmd.Flags().IntVar(&readyLimit, "limit", 0, "Maximum tasks to return (0 = all)")
	rootCmd.AddCommand(readyCmd)
}
