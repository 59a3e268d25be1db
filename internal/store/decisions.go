package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// AddDecision records a choice made during planning or execution.
func (s *Store) AddDecision(ctx context.Context, d *types.Decision) error {
	if d.Summary == "" {
		return fault.New(fault.ValidationFailed, "decision requires a summary")
	}
	if d.Decision == "" {
		return fault.New(fault.ValidationFailed, "decision requires an outcome")
	}
	if d.PlanID == "" {
		return fault.New(fault.ValidationFailed, "decision requires a plan id")
	}
	if _, err := s.GetPlan(ctx, d.PlanID); err != nil {
		return err
	}
	if d.TaskID != "" {
		if _, err := s.GetTask(ctx, d.TaskID); err != nil {
			return err
		}
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cols := map[string]interface{}{
		"decision_id": d.ID,
		"plan_id":     d.PlanID,
		"summary":     d.Summary,
		"decision":    d.Decision,
		"created_at":  s.timestamp(),
	}
	if d.TaskID != "" {
		cols["task_id"] = d.TaskID
	}
	if d.Context != "" {
		cols["context"] = d.Context
	}
	if len(d.Options) > 0 {
		cols["options"] = d.Options
	}
	if d.Consequences != "" {
		cols["consequences"] = d.Consequences
	}
	if d.SourceRef != "" {
		cols["source_ref"] = d.SourceRef
	}
	return s.b.Insert(ctx, "decision", cols)
}

// ListDecisions returns a plan's decisions, oldest first.
func (s *Store) ListDecisions(ctx context.Context, planID string) ([]*types.Decision, error) {
	rows, err := s.b.Select(ctx, "decision", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"plan_id": planID},
		OrderBy: "`created_at` ASC, `decision_id` ASC",
	})
	if err != nil {
		return nil, err
	}
	decisions := make([]*types.Decision, 0, len(rows))
	for _, row := range rows {
		decisions = append(decisions, scanDecision(row))
	}
	return decisions, nil
}

func scanDecision(row backend.Row) *types.Decision {
	return &types.Decision{
		ID:           rowString(row, "decision_id"),
		PlanID:       rowString(row, "plan_id"),
		TaskID:       rowString(row, "task_id"),
		Summary:      rowString(row, "summary"),
		Context:      rowString(row, "context"),
		Options:      rowStringSlice(row, "options"),
		Decision:     rowString(row, "decision"),
		Consequences: rowString(row, "consequences"),
		SourceRef:    rowString(row, "source_ref"),
		CreatedAt:    rowTime(row, "created_at"),
	}
}
