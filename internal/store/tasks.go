package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/rules"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// CreateTask inserts a new task and appends its created event. Defaults are
// applied in place (status todo, owner human, risk low); missing IDs are
// generated.
func (s *Store) CreateTask(ctx context.Context, task *types.Task, actor types.Owner) error {
	if task.PlanID == "" {
		return fault.New(fault.ValidationFailed, "task requires a plan id")
	}
	if _, err := s.GetPlan(ctx, task.PlanID); err != nil {
		return err
	}
	task.SetDefaults()
	if err := task.Validate(); err != nil {
		return fault.Wrap(fault.ValidationFailed, err, "invalid task")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := s.timestamp()
	cols := map[string]interface{}{
		"task_id":    task.ID,
		"plan_id":    task.PlanID,
		"title":      task.Title,
		"status":     string(task.Status),
		"owner":      string(task.Owner),
		"risk":       string(task.Risk),
		"created_at": now,
		"updated_at": now,
	}
	if task.FeatureKey != "" {
		cols["feature_key"] = task.FeatureKey
	}
	if task.Intent != "" {
		cols["intent"] = task.Intent
	}
	if task.ScopeIn != "" {
		cols["scope_in"] = task.ScopeIn
	}
	if task.ScopeOut != "" {
		cols["scope_out"] = task.ScopeOut
	}
	if len(task.Acceptance) > 0 {
		cols["acceptance"] = task.Acceptance
	}
	if task.Area != "" {
		cols["area"] = task.Area
	}
	if task.EstimateMins != nil {
		cols["estimate_mins"] = *task.EstimateMins
	}
	if task.ExternalKey != "" {
		cols["external_key"] = task.ExternalKey
	}
	if err := s.b.Insert(ctx, "task", cols); err != nil {
		return err
	}
	return s.AppendEvent(ctx, &types.Event{
		TaskID: task.ID,
		Kind:   types.EventCreated,
		Actor:  actor,
		Body:   map[string]interface{}{"title": task.Title},
	})
}

// GetTask fetches a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	rows, err := s.b.Select(ctx, "task", sqlgen.SelectOpts{
		Where: map[string]interface{}{"task_id": id},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fault.New(fault.TaskNotFound, "task %s not found", id)
	}
	return scanTask(rows[0]), nil
}

// ListTasks returns tasks matching the filter, oldest first.
func (s *Store) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	where := map[string]interface{}{}
	if filter.PlanID != "" {
		where["plan_id"] = filter.PlanID
	}
	if filter.Status != nil {
		where["status"] = string(*filter.Status)
	}
	if filter.Owner != nil {
		where["owner"] = string(*filter.Owner)
	}
	if filter.Area != "" {
		where["area"] = filter.Area
	}
	rows, err := s.b.Select(ctx, "task", sqlgen.SelectOpts{
		Where:   where,
		OrderBy: "`created_at` ASC, `task_id` ASC",
		Limit:   filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	tasks := make([]*types.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, scanTask(row))
	}
	return tasks, nil
}

// ExternalKeyMap loads the external_key -> task_id map for a plan. The
// importer builds this once, before touching any rows, and resolves every
// blocker reference against it.
func (s *Store) ExternalKeyMap(ctx context.Context, planID string) (map[string]string, error) {
	rows, err := s.b.Select(ctx, "task", sqlgen.SelectOpts{
		Columns: []string{"task_id", "external_key"},
		Where: map[string]interface{}{
			"plan_id":      planID,
			"external_key": sqlgen.Cond{Op: "IS NOT", Value: nil},
		},
	})
	if err != nil {
		return nil, err
	}
	keys := make(map[string]string, len(rows))
	for _, row := range rows {
		key := rowString(row, "external_key")
		if key == "" {
			continue
		}
		keys[key] = rowString(row, "task_id")
	}
	return keys, nil
}

// TransitionTask moves a task to the next status with a conditional write.
// The UPDATE carries the expected current status in its WHERE clause and the
// affected-row count is checked, so a concurrent writer racing between the
// read and the write loses cleanly instead of clobbering. Exactly one event
// is appended per successful transition.
func (s *Store) TransitionTask(ctx context.Context, taskID string, next types.TaskStatus, actor types.Owner, body map[string]interface{}) (*types.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := rules.CheckValidTransition(task.Status, next); err != nil {
		return nil, err
	}
	now := s.timestamp()
	err = s.b.Update(ctx, "task",
		map[string]interface{}{"status": string(next), "updated_at": now},
		map[string]interface{}{"task_id": taskID, "status": string(task.Status)})
	if err != nil {
		return nil, err
	}
	affected, err := s.affectedRows(ctx)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fault.New(fault.InvalidTransition,
			"task %s was modified concurrently (expected status '%s'); re-read and retry", taskID, task.Status)
	}
	if next == types.StatusCanceled {
		if body == nil {
			body = map[string]interface{}{}
		}
		body["status"] = string(types.StatusCanceled)
	}
	if err := s.AppendEvent(ctx, &types.Event{
		TaskID: taskID,
		Kind:   types.KindForTransition(next),
		Actor:  actor,
		Body:   body,
	}); err != nil {
		return nil, err
	}
	task.Status = next
	task.UpdatedAt = parseSQLTime(now)
	return task, nil
}

// UpdateTaskFields updates mutable columns and bumps updated_at. Status is
// not accepted here; status changes go through TransitionTask.
func (s *Store) UpdateTaskFields(ctx context.Context, taskID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fault.New(fault.ValidationFailed, "no fields to update")
	}
	if _, ok := fields["status"]; ok {
		return fault.New(fault.ValidationFailed, "status cannot be updated directly")
	}
	if _, err := s.GetTask(ctx, taskID); err != nil {
		return err
	}
	cols := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		cols[k] = v
	}
	cols["updated_at"] = s.timestamp()
	return s.b.Update(ctx, "task", cols, map[string]interface{}{"task_id": taskID})
}

// TaskDetail fetches a task together with its blocker and dependent task ids.
// The two edge fetches are raw statements composed through EscapeString; this
// is the sanctioned exception to builder-only SQL.
func (s *Store) TaskDetail(ctx context.Context, id string) (*types.TaskWithBlockers, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	blockedBy, err := s.edgeEndpoints(ctx,
		"SELECT `from_task_id` AS id FROM `edge` WHERE `to_task_id` = "+
			sqlgen.EscapeString(id)+" AND `type` = 'blocks' ORDER BY `from_task_id` ASC")
	if err != nil {
		return nil, err
	}
	blocks, err := s.edgeEndpoints(ctx,
		"SELECT `to_task_id` AS id FROM `edge` WHERE `from_task_id` = "+
			sqlgen.EscapeString(id)+" AND `type` = 'blocks' ORDER BY `to_task_id` ASC")
	if err != nil {
		return nil, err
	}
	return &types.TaskWithBlockers{Task: *task, BlockedBy: blockedBy, Blocks: blocks}, nil
}

// ListReadyTasks returns todo tasks with no live incoming blocks edge,
// optionally scoped to one plan. This is the query behind ready-work
// surfacing, so its definition of "live" must match the runnability check.
func (s *Store) ListReadyTasks(ctx context.Context, planID string, limit int) ([]*types.Task, error) {
	stmt := "SELECT t.* FROM `task` t WHERE t.`status` = 'todo'"
	if planID != "" {
		stmt += " AND t.`plan_id` = " + sqlgen.EscapeString(planID)
	}
	stmt += " AND NOT EXISTS (" +
		"SELECT 1 FROM `edge` e JOIN `task` b ON b.`task_id` = e.`from_task_id`" +
		" WHERE e.`to_task_id` = t.`task_id` AND e.`type` = 'blocks'" +
		" AND b.`status` NOT IN ('done', 'canceled'))" +
		" ORDER BY t.`created_at` ASC, t.`task_id` ASC"
	if limit > 0 {
		stmt += " LIMIT " + sqlgen.Literal(limit)
	}
	rows, err := s.b.Raw(ctx, stmt)
	if err != nil {
		return nil, err
	}
	tasks := make([]*types.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, scanTask(row))
	}
	return tasks, nil
}

// SplitTask carves a task into child tasks in the same plan. Each child
// blocks the parent (cycle-checked like any other blocks insertion) and gets
// a relates edge from the parent recording the lineage. One split event is
// appended to the parent naming the children.
func (s *Store) SplitTask(ctx context.Context, parentID string, titles []string, actor types.Owner) ([]*types.Task, error) {
	if len(titles) == 0 {
		return nil, fault.New(fault.ValidationFailed, "split requires at least one child title")
	}
	parent, err := s.GetTask(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent.Status.IsTerminal() {
		return nil, fault.New(fault.InvalidTransition,
			"cannot split task %s in terminal status '%s'", parentID, parent.Status)
	}
	children := make([]*types.Task, 0, len(titles))
	childIDs := make([]interface{}, 0, len(titles))
	for _, title := range titles {
		child := &types.Task{
			PlanID:     parent.PlanID,
			FeatureKey: parent.FeatureKey,
			Title:      title,
			Owner:      parent.Owner,
			Area:       parent.Area,
			Risk:       parent.Risk,
		}
		if err := s.CreateTask(ctx, child, actor); err != nil {
			return nil, err
		}
		if err := s.AddEdge(ctx, types.Edge{
			FromTaskID: child.ID,
			ToTaskID:   parentID,
			Type:       types.EdgeBlocks,
			Reason:     "split",
		}, true); err != nil {
			return nil, err
		}
		if err := s.AddEdge(ctx, types.Edge{
			FromTaskID: parentID,
			ToTaskID:   child.ID,
			Type:       types.EdgeRelates,
			Reason:     "split",
		}, false); err != nil {
			return nil, err
		}
		children = append(children, child)
		childIDs = append(childIDs, child.ID)
	}
	if err := s.AppendEvent(ctx, &types.Event{
		TaskID: parentID,
		Kind:   types.EventSplit,
		Actor:  actor,
		Body:   map[string]interface{}{"children": childIDs},
	}); err != nil {
		return nil, err
	}
	return children, nil
}

// affectedRows reads ROW_COUNT() for the previous statement. The backend
// pins a single connection, so the counter refers to this session's last
// write.
func (s *Store) affectedRows(ctx context.Context) (int, error) {
	rows, err := s.b.Raw(ctx, "SELECT ROW_COUNT() AS affected")
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fault.New(fault.DBParseFailed, "ROW_COUNT() returned no rows")
	}
	n, ok := sqlgen.AsInt(rows[0]["affected"])
	if !ok {
		return 0, fault.New(fault.DBParseFailed, "ROW_COUNT() returned non-numeric value %v", rows[0]["affected"])
	}
	return n, nil
}

func (s *Store) edgeEndpoints(ctx context.Context, stmt string) ([]string, error) {
	rows, err := s.b.Raw(ctx, stmt)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, rowString(row, "id"))
	}
	return ids, nil
}

func scanTask(row backend.Row) *types.Task {
	return &types.Task{
		ID:           rowString(row, "task_id"),
		PlanID:       rowString(row, "plan_id"),
		FeatureKey:   rowString(row, "feature_key"),
		Title:        rowString(row, "title"),
		Intent:       rowString(row, "intent"),
		ScopeIn:      rowString(row, "scope_in"),
		ScopeOut:     rowString(row, "scope_out"),
		Acceptance:   rowStringSlice(row, "acceptance"),
		Status:       types.TaskStatus(rowString(row, "status")),
		Owner:        types.Owner(rowString(row, "owner")),
		Area:         rowString(row, "area"),
		Risk:         types.Risk(rowString(row, "risk")),
		EstimateMins: rowIntPtr(row, "estimate_mins"),
		CreatedAt:    rowTime(row, "created_at"),
		UpdatedAt:    rowTime(row, "updated_at"),
		ExternalKey:  rowString(row, "external_key"),
	}
}
