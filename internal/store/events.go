package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// AppendEvent inserts an audit record. Events are append-only; there is no
// update or delete path anywhere in this package.
func (s *Store) AppendEvent(ctx context.Context, ev *types.Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.TaskID == "" {
		return fault.New(fault.ValidationFailed, "event requires a task id")
	}
	if !ev.Kind.IsValid() {
		return fault.New(fault.ValidationFailed, "invalid event kind: %s", ev.Kind)
	}
	if ev.Actor == "" {
		ev.Actor = types.OwnerHuman
	}
	cols := map[string]interface{}{
		"event_id":   ev.ID,
		"task_id":    ev.TaskID,
		"kind":       string(ev.Kind),
		"actor":      string(ev.Actor),
		"created_at": s.timestamp(),
	}
	if len(ev.Body) > 0 {
		cols["body"] = ev.Body
	}
	return s.b.Insert(ctx, "event", cols)
}

// ListEvents returns a task's audit trail, oldest first.
func (s *Store) ListEvents(ctx context.Context, taskID string) ([]*types.Event, error) {
	rows, err := s.b.Select(ctx, "event", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"task_id": taskID},
		OrderBy: "`created_at` ASC, `event_id` ASC",
	})
	if err != nil {
		return nil, err
	}
	events := make([]*types.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, scanEvent(row))
	}
	return events, nil
}

func scanEvent(row backend.Row) *types.Event {
	return &types.Event{
		ID:        rowString(row, "event_id"),
		TaskID:    rowString(row, "task_id"),
		Kind:      types.EventKind(rowString(row, "kind")),
		Body:      rowJSONMap(row, "body"),
		Actor:     types.Owner(rowString(row, "actor")),
		CreatedAt: rowTime(row, "created_at"),
	}
}
