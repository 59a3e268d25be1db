package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	decisionPlan         string
	decisionTask         string
	decisionSummary      string
	decisionContext      string
	decisionOptions      []string
	decisionConsequences string
	decisionSourceRef    string
)

var decisionCmd = &cobra.Command{
	Use:   "decision",
	Short: "Record and list decisions",
}

var decisionAddCmd = &cobra.Command{
	Use:   "add <decision-text>",
	Short: "Record a decision against a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if decisionPlan == "" {
			return fmt.Errorf("--plan is required")
		}
		if decisionSummary == "" {
			return fmt.Errorf("--summary is required")
		}
		s, err := openStore()
		if err != nil {
			return err
		}
		d := &types.Decision{
			PlanID:       decisionPlan,
			TaskID:       decisionTask,
			Summary:      decisionSummary,
			Context:      decisionContext,
			Options:      decisionOptions,
			Decision:     args[0],
			Consequences: decisionConsequences,
			SourceRef:    decisionSourceRef,
		}
		if err := s.AddDecision(rootCtx, d); err != nil {
			return err
		}
		if err := s.Commit(rootCtx, fmt.Sprintf("record decision %s: %s", d.ID, d.Summary)); err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(d)
		}
		fmt.Printf("Recorded decision %s\n", d.ID)
		return nil
	},
}

var decisionListCmd = &cobra.Command{
	Use:   "list <plan-id>",
	Short: "List a plan's decisions, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		decisions, err := s.ListDecisions(rootCtx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(decisions)
		}
		if len(decisions) == 0 {
			fmt.Println("No decisions.")
			return nil
		}
		for _, d := range decisions {
			fmt.Printf("%s  %s\n", dim(shortID(d.ID)), bold(d.Summary))
			fmt.Printf("    %s\n", d.Decision)
			if d.Consequences != "" {
				fmt.Printf("    consequences: %s\n", d.Consequences)
			}
		}
		return nil
	},
}

func init() {
	decisionAddCmd.Flags().StringVar(&decisionPlan, "plan", "", "Plan id the decision belongs to (required)")
	decisionAddCmd.Flags().StringVar(&decisionTask, "task", "", "Task id the decision applies to")
	decisionAddCmd.Flags().StringVar(&decisionSummary, "summary", "", "One-line summary (required)")
	decisionAddCmd.Flags().StringVar(&decisionContext, "context", "", "What prompted the decision")
	decisionAddCmd.Flags().StringArrayVar(&decisionOptions, "option", nil, "Considered option (repeatable)")
	decisionAddCmd.Flags().StringVar(&decisionConsequences, "consequences", "", "Expected consequences")
	decisionAddCmd.Flags().StringVar(&decisionSourceRef, "source-ref", "", "Pointer to the discussion or document")
	decisionCmd.AddCommand(decisionAddCmd)
	decisionCmd.AddCommand(decisionListCmd)
	rootCmd.AddCommand(decisionCmd)
}
