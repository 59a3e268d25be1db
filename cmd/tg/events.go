package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events <task-id>",
	Short: "Show a task's audit trail, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		if _, err := s.GetTask(rootCtx, args[0]); err != nil {
			return err
		}
		events, err := s.ListEvents(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(events)
		}
		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}
		for _, ev := range events {
			line := fmt.Sprintf("%s  %-8s  %-15s", ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Actor, ev.Kind)
			if len(ev.Body) > 0 {
				if body, err := json.Marshal(ev.Body); err == nil {
					line += "  " + dim(string(body))
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
