package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	taskNewPlan       string
	taskNewIntent     string
	taskNewFeature    string
	taskNewArea       string
	taskNewRisk       string
	taskNewOwner      string
	taskNewScopeIn    string
	taskNewScopeOut   string
	taskNewAcceptance []string
	taskNewEstimate   int

	taskListStatus string
	taskListPlan   string
	taskListArea   string
	taskListLimit  int
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a task in a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if taskNewPlan == "" {
			return fmt.Errorf("--plan is required")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		task := &types.Task{
			PlanID:     taskNewPlan,
			Title:      args[0],
			Intent:     taskNewIntent,
			FeatureKey: taskNewFeature,
			Area:       taskNewArea,
			ScopeIn:    taskNewScopeIn,
			ScopeOut:   taskNewScopeOut,
			Acceptance: taskNewAcceptance,
			Risk:       types.Risk(taskNewRisk),
			Owner:      types.Owner(taskNewOwner),
		}
		if taskNewEstimate > 0 {
			task.EstimateMins = &taskNewEstimate
		}
		if err := s.CreateTask(rootCtx, task, actorKind()); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("create task %s: %s", task.ID, task.Title)); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(task)
		}
		fmt.Printf("Created task %s (%s)\n", task.ID, renderStatus(task.Status))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered",
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		filter := types.TaskFilter{
			PlanID: taskListPlan,
			Area:   taskListArea,
			Limit:  taskListLimit,
		}
		if taskListStatus != "" {
			status := types.TaskStatus(taskListStatus)
			if !status.IsValid() {
				return fmt.Errorf("invalid status %q", taskListStatus)
			}
			filter.Status = &status
		}
		tasks, err := s.ListTasks(rootCtx, filter)
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}
		for _, t := range tasks {
			printTaskLine(t)
		}
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its blockers and dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		detail, err := s.TaskDetail(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(detail)
		}
		printTaskDetail(detail)
		return nil
	},
}

func printTaskLine(t *types.Task) {
	owner := ""
	if t.Owner == types.OwnerAgent {
		owner = "  [agent]"
	}
	fmt.Printf("%s  %-8s  %s%s\n", dim(shortID(t.ID)), renderStatus(t.Status), t.Title, dim(owner))
}

func printTaskDetail(d *types.TaskWithBlockers) {
	fmt.Printf("%s  %s\n", bold(d.Title), renderStatus(d.Status))
	fmt.Printf("  id: %s  plan: %s\n", d.ID, d.PlanID)
	fmt.Printf("  owner: %s  risk: %s\n", d.Owner, d.Risk)
	if d.FeatureKey != "" {
		fmt.Printf("  feature: %s\n", d.FeatureKey)
	}
	if d.Area != "" {
		fmt.Printf("  area: %s\n", d.Area)
	}
	if d.Intent != "" {
		fmt.Printf("  intent: %s\n", d.Intent)
	}
	if d.ScopeIn != "" {
		fmt.Printf("  in scope: %s\n", d.ScopeIn)
	}
	if d.ScopeOut != "" {
		fmt.Printf("  out of scope: %s\n", d.ScopeOut)
	}
	for _, a := range d.Acceptance {
		fmt.Printf("  - %s\n", a)
	}
	if d.EstimateMins != nil {
		fmt.Printf("  estimate: %dm\n", *d.EstimateMins)
	}
	if d.ExternalKey != "" {
		fmt.Printf("  external key: %s\n", d.ExternalKey)
	}
	if len(d.BlockedBy) > 0 {
		fmt.Printf("  blocked by: %s\n", strings.Join(d.BlockedBy, ", "))
	}
	if len(d.Blocks) > 0 {
		fmt.Printf("  blocks: %s\n", strings.Join(d.Blocks, ", "))
	}
}

func init() {
	taskNewCmd.Flags().StringVar(&taskNewPlan, "plan", "", "Plan id the task belongs to (required)")
	taskNewCmd.Flags().StringVar(&taskNewIntent, "intent", "", "Why this task exists")
	taskNewCmd.Flags().StringVar(&taskNewFeature, "feature", "", "Feature key grouping related tasks")
	taskNewCmd.Flags().StringVar(&taskNewArea, "area", "", "Codebase area label")
	taskNewCmd.Flags().StringVar(&taskNewRisk, "risk", "low", "Risk level: low, medium, high")
	taskNewCmd.Flags().StringVar(&taskNewOwner, "owner", "human", "Owner kind: human or agent")
	taskNewCmd.Flags().StringVar(&taskNewScopeIn, "scope-in", "", "What the task includes")
	taskNewCmd.Flags().StringVar(&taskNewScopeOut, "scope-out", "", "What the task excludes")
	taskNewCmd.Flags().StringArrayVar(&taskNewAcceptance, "accept", nil, "Acceptance criterion (repeatable)")
	taskNewCmd.Flags().IntVar(&taskNewEstimate, "estimate", 0, "Estimate in minutes")

	taskListCmd.Flags().StringVar(&taskListStatus, "status", "", "Filter by status")
	taskListCmd.Flags().StringVar(&taskListPlan, "plan", "", "Filter by plan id")
	taskListCmd.Flags().StringVar(&taskListArea, "area", "", "Filter by area")
	taskListCmd.Flags().IntVar(&taskListLimit, "limit", 0, "Maximum tasks to return (0 = all)")

	taskCmd.AddCommand(taskNewCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	rootCmd.AddCommand(taskCmd)
}
