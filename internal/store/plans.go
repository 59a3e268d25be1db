package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// CreatePlan inserts a new plan. Missing ID, status, and timestamps are
// filled in; the caller's struct is updated in place.
func (s *Store) CreatePlan(ctx context.Context, plan *types.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = types.PlanDraft
	}
	if !plan.Status.IsValid() {
		return fault.New(fault.ValidationFailed, "invalid plan status: %s", plan.Status)
	}
	now := s.timestamp()
	cols := map[string]interface{}{
		"plan_id":    plan.ID,
		"title":      plan.Title,
		"intent":     plan.Intent,
		"status":     string(plan.Status),
		"priority":   plan.Priority,
		"created_at": now,
		"updated_at": now,
	}
	if plan.SourcePath != "" {
		cols["source_path"] = plan.SourcePath
	}
	if plan.SourceCommit != "" {
		cols["source_commit"] = plan.SourceCommit
	}
	return s.b.Insert(ctx, "plan", cols)
}

// GetPlan fetches a plan by id.
func (s *Store) GetPlan(ctx context.Context, id string) (*types.Plan, error) {
	rows, err := s.b.Select(ctx, "plan", sqlgen.SelectOpts{
		Where: map[string]interface{}{"plan_id": id},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fault.New(fault.PlanNotFound, "plan %s not found", id)
	}
	return scanPlan(rows[0]), nil
}

// ListPlans returns all plans ordered by priority then creation time.
func (s *Store) ListPlans(ctx context.Context) ([]*types.Plan, error) {
	rows, err := s.b.Select(ctx, "plan", sqlgen.SelectOpts{
		OrderBy: "`priority` ASC, `created_at` ASC",
	})
	if err != nil {
		return nil, err
	}
	plans := make([]*types.Plan, 0, len(rows))
	for _, row := range rows {
		plans = append(plans, scanPlan(row))
	}
	return plans, nil
}

// FindPlanBySourcePath returns the plan imported from the given file, or nil
// when no plan matches. Used by the importer to recognize re-imports.
func (s *Store) FindPlanBySourcePath(ctx context.Context, path string) (*types.Plan, error) {
	rows, err := s.b.Select(ctx, "plan", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"source_path": path},
		OrderBy: "`created_at` ASC",
		Limit:   1,
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return scanPlan(rows[0]), nil
}

// SetPlanStatus updates a plan's status and bumps updated_at.
func (s *Store) SetPlanStatus(ctx context.Context, id string, status types.PlanStatus) error {
	if !status.IsValid() {
		return fault.New(fault.ValidationFailed, "invalid plan status: %s", status)
	}
	if _, err := s.GetPlan(ctx, id); err != nil {
		return err
	}
	return s.b.Update(ctx, "plan",
		map[string]interface{}{"status": string(status), "updated_at": s.timestamp()},
		map[string]interface{}{"plan_id": id})
}

// SetPlanPriority updates a plan's priority and bumps updated_at.
func (s *Store) SetPlanPriority(ctx context.Context, id string, priority int) error {
	if _, err := s.GetPlan(ctx, id); err != nil {
		return err
	}
	return s.b.Update(ctx, "plan",
		map[string]interface{}{"priority": priority, "updated_at": s.timestamp()},
		map[string]interface{}{"plan_id": id})
}

// UpdatePlanSource converges a plan's title and intent to the latest parsed
// values from its source document.
func (s *Store) UpdatePlanSource(ctx context.Context, id, title, intent string) error {
	return s.b.Update(ctx, "plan",
		map[string]interface{}{"title": title, "intent": intent, "updated_at": s.timestamp()},
		map[string]interface{}{"plan_id": id})
}

// MaybeAutoCompletePlan marks an active plan done when every one of its
// tasks has reached a terminal state. A plan with no tasks is left alone.
// Returns true if the plan was completed.
func (s *Store) MaybeAutoCompletePlan(ctx context.Context, planID string) (bool, error) {
	total, err := s.b.Count(ctx, "task", map[string]interface{}{"plan_id": planID})
	if err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	live, err := s.countLiveTasks(ctx, planID)
	if err != nil {
		return false, err
	}
	if live > 0 {
		return false, nil
	}
	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return false, err
	}
	if plan.Status != types.PlanActive && plan.Status != types.PlanDraft {
		return false, nil
	}
	if err := s.SetPlanStatus(ctx, planID, types.PlanDone); err != nil {
		return false, err
	}
	return true, nil
}

// countLiveTasks counts the plan's tasks still outside a terminal state.
func (s *Store) countLiveTasks(ctx context.Context, planID string) (int, error) {
	stmt := "SELECT COUNT(*) AS cnt FROM `task` WHERE `plan_id` = " +
		sqlgen.EscapeString(planID) + " AND `status` NOT IN ('done', 'canceled')"
	rows, err := s.b.Raw(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fault.New(fault.DBParseFailed, "live task count returned no rows")
	}
	n, ok := sqlgen.AsInt(rows[0]["cnt"])
	if !ok {
		return 0, fault.New(fault.DBParseFailed, "live task count returned non-numeric value %v", rows[0]["cnt"])
	}
	return n, nil
}

func scanPlan(row backend.Row) *types.Plan {
	return &types.Plan{
		ID:           rowString(row, "plan_id"),
		Title:        rowString(row, "title"),
		Intent:       rowString(row, "intent"),
		Status:       types.PlanStatus(rowString(row, "status")),
		Priority:     rowInt(row, "priority"),
		SourcePath:   rowString(row, "source_path"),
		SourceCommit: rowString(row, "source_commit"),
		CreatedAt:    rowTime(row, "created_at"),
		UpdatedAt:    rowTime(row, "updated_at"),
	}
}
