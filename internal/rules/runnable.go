package rules

import (
	"context"
	"fmt"

	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// CheckRunnable reports whether the task may begin work: it must exist, be
// exactly in todo, and have zero incoming blocks edges whose source task is
// still live (not done/canceled).
//
// The check is read-only and race-tolerant: it takes no lock, so a check and
// the write that follows it are not atomic as a unit. The store's conditional
// status update is what catches the losing side of that race.
func CheckRunnable(ctx context.Context, b *sqlgen.Builder, taskID string) error {
	rows, err := b.Select(ctx, "task", sqlgen.SelectOpts{
		Columns: []string{"status"},
		Where:   map[string]interface{}{"task_id": taskID},
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fault.New(fault.TaskNotFound, "task %s not found", taskID)
	}
	status := types.TaskStatus(fmt.Sprintf("%v", rows[0]["status"]))
	if status != types.StatusTodo {
		return fault.New(fault.InvalidTransition, "task %s is '%s', not 'todo'", taskID, status)
	}

	unmet, err := countUnmetBlockers(ctx, b, taskID)
	if err != nil {
		return err
	}
	if unmet > 0 {
		return fault.New(fault.TaskNotRunnable, "task %s has %d unmet blocker(s)", taskID, unmet)
	}
	return nil
}

// countUnmetBlockers counts incoming blocks edges whose source task has not
// reached a terminal state. Needs a join, so it goes through Raw with every
// value rendered by the escaping primitive.
func countUnmetBlockers(ctx context.Context, b *sqlgen.Builder, taskID string) (int, error) {
	stmt := "SELECT COUNT(*) AS cnt FROM `edge` e" +
		" JOIN `task` t ON t.`task_id` = e.`from_task_id`" +
		" WHERE e.`to_task_id` = " + sqlgen.EscapeString(taskID) +
		" AND e.`type` = 'blocks'" +
		" AND t.`status` NOT IN ('done', 'canceled')"
	rows, err := b.Raw(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fault.New(fault.DBParseFailed, "blocker count query returned no rows")
	}
	n, ok := sqlgen.AsInt(rows[0]["cnt"])
	if !ok {
		return 0, fault.New(fault.DBParseFailed, "blocker count query returned non-numeric value %v", rows[0]["cnt"])
	}
	return n, nil
}
