package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/debug"
	"github.com/danalexilewis/taskgraph/internal/rules"
	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	blockReason  string
	cancelReason string
	progressNote string
	noteText     string
	startForce   bool
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Claim a runnable task and move it to doing",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		if !startForce {
			if err := rules.CheckRunnable(rootCtx, s.Builder(), args[0]); err != nil {
				return err
			}
		}
		task, err := s.TransitionTask(rootCtx, args[0], types.StatusDoing, actorKind(), nil)
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("start task %s", task.ID)); err != nil {
			return err
		}
		return reportTransition(task)
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		task, err := s.TransitionTask(rootCtx, args[0], types.StatusDone, actorKind(), nil)
		if err != nil {
			return err
		}
		completed, err := s.MaybeAutoCompletePlan(rootCtx, task.PlanID)
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("complete task %s", task.ID)); err != nil {
			return err
		}
		if completed && !jsonOutput {
			debug.PrintNormal("Plan %s is complete.\n", shortID(task.PlanID))
		}
		return reportTransition(task)
	},
}

var blockCmd = &cobra.Command{
	Use:   "block <task-id>",
	Short: "Mark a task blocked on something external",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		var body map[string]interface{}
		if blockReason != "" {
			body = map[string]interface{}{"reason": blockReason}
		}
		task, err := s.TransitionTask(rootCtx, args[0], types.StatusBlocked, actorKind(), body)
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("block task %s", task.ID)); err != nil {
			return err
		}
		return reportTransition(task)
	},
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <task-id>",
	Short: "Return a blocked task to todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		task, err := s.TransitionTask(rootCtx, args[0], types.StatusTodo, actorKind(), nil)
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("unblock task %s", task.ID)); err != nil {
			return err
		}
		return reportTransition(task)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <task-id>",
	Short: "Cancel a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		var body map[string]interface{}
		if cancelReason != "" {
			body = map[string]interface{}{"reason": cancelReason}
		}
		task, err := s.TransitionTask(rootCtx, args[0], types.StatusCanceled, actorKind(), body)
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("cancel task %s", task.ID)); err != nil {
			return err
		}
		return reportTransition(task)
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <task-id>",
	Short: "Record progress on a task without changing its status",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if progressNote == "" {
			return fmt.Errorf("--note is required")
		}
		return appendTaskEvent(args[0], types.EventProgress, progressNote)
	},
}

var noteCmd = &cobra.Command{
	Use:   "note <task-id>",
	Short: "Attach a free-form note to a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if noteText == "" {
			return fmt.Errorf("--note is required")
		}
		return appendTaskEvent(args[0], types.EventNote, noteText)
	},
}

// appendTaskEvent verifies the task exists, appends a body-carrying event,
// and commits.
func appendTaskEvent(taskID string, kind types.EventKind, note string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	if _, err := s.GetTask(rootCtx, taskID); err != nil {
		return err
	}
	ev := &types.Event{
		TaskID: taskID,
		Kind:   kind,
		Actor:  actorKind(),
		Body:   map[string]interface{}{"note": note},
	}
	if err := s.AppendEvent(rootCtx, ev); err != nil {
		return err
	}
	if err := s.Commit(rootCtx, fmt.Sprintf("%s on task %s", kind, taskID)); err != nil {
		return err
	}
	if jsonOutput {
		return outputJSON(ev)
	}
	fmt.Printf("Recorded %s on %s\n", kind, shortID(taskID))
	return nil
}

func reportTransition(task *types.Task) error {
	if jsonOutput {
		return outputJSON(task)
	}
	if debug.IsQuiet() {
		return nil
	}
	fmt.Printf("Task %s is now %s\n", shortID(task.ID), renderStatus(task.Status))
	return nil
}

func init() {
	startCmd.Flags().BoolVar(&startForce, "force", false, "Skip the runnability check")
	blockCmd.Flags().StringVar(&blockReason, "reason", "", "Why the task is blocked")
	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "Why the task was canceled")
	progressCmd.Flags().StringVar(&progressNote, "note", "", "Progress description")
	noteCmd.Flags().StringVar(&noteText, "note", "", "Note text")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(unblockCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(noteCmd)
}
