package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	planNewIntent   string
	planNewPriority int
	planNewActive   bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage plans",
}

var planNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		plan := &types.Plan{
			Title:    args[0],
			Intent:   planNewIntent,
			Priority: planNewPriority,
		}
		if planNewActive {
			plan.Status = types.PlanActive
		}
		if err := s.CreatePlan(rootCtx, plan); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("create plan %s: %s", plan.ID, plan.Title)); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(plan)
		}
		fmt.Printf("Created plan %s (%s)\n", plan.ID, renderPlanStatus(plan.Status))
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plans by priority",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		plans, err := s.ListPlans(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(plans)
		}
		if len(plans) == 0 {
			fmt.Println("No plans.")
			return nil
		}
		for _, p := range plans {
			fmt.Printf("%s  p%d  %-9s  %s\n", dim(shortID(p.ID)), p.Priority, renderPlanStatus(p.Status), p.Title)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a plan and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		plan, err := s.GetPlan(rootCtx, args[0])
		if err != nil {
			return err
		}
		tasks, err := s.ListTasks(rootCtx, types.TaskFilter{PlanID: plan.ID})
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(struct {
				*types.Plan
				Tasks []*types.Task `json:"tasks"`
			}{plan, tasks})
		}
		fmt.Printf("%s  %s\n", bold(plan.Title), renderPlanStatus(plan.Status))
		fmt.Printf("  id: %s  priority: %d\n", plan.ID, plan.Priority)
		if plan.Intent != "" {
			fmt.Printf("  intent: %s\n", plan.Intent)
		}
		if plan.SourcePath != "" {
			fmt.Printf("  source: %s\n", plan.SourcePath)
		}
		if len(tasks) > 0 {
			fmt.Println()
			for _, t := range tasks {
				printTaskLine(t)
			}
		}
		return nil
	},
}

var planStatusCmd = &cobra.Command{
	Use:   "status <plan-id> <draft|active|paused|done|abandoned>",
	Short: "Set a plan's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		status := types.PlanStatus(args[1])
		if err := s.SetPlanStatus(rootCtx, args[0], status); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("plan %s status -> %s", args[0], status)); err != nil {
			return err
		}
		fmt.Printf("Plan %s is now %s\n", shortID(args[0]), renderPlanStatus(status))
		return nil
	},
}

var planPriorityCmd = &cobra.Command{
	Use:   "priority <plan-id> <n>",
	Short: "Set a plan's priority (lower runs first)",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		priority, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("priority must be an integer: %q", args[1])
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		if err := s.SetPlanPriority(rootCtx, args[0], priority); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("plan %s priority -> %d", args[0], priority)); err != nil {
			return err
		}
		fmt.Printf("Plan %s priority set to %d\n", shortID(args[0]), priority)
		return nil
	},
}

func init() {
	planNewCmd.Flags().StringVar(&planNewIntent, "intent", "", "Why this plan exists")
	planNewCmd.Flags().IntVar(&planNewPriority, "priority", 0, "Plan priority (lower runs first)")
	planNewCmd.Flags().BoolVar(&planNewActive, "active", false, "Create the plan active instead of draft")
	planCmd.AddCommand(planNewCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planShowCmd)
	planCmd.AddCommand(planStatusCmd)
	planCmd.AddCommand(planPriorityCmd)
	rootCmd.AddCommand(planCmd)
}
