package store

import (
	"context"
	"time"

	"github.com/danalexilewis/taskgraph/internal/backend"
)

// fakeBackend replays canned rows positionally: the Nth Execute call gets
// replies[N]. Store operations issue statements in a fixed order, so tests
// script responses by position and then assert on the recorded SQL.
type fakeBackend struct {
	replies []backend.Rows
	errAt   map[int]error
	stmts   []string
	commits []string
}

func (f *fakeBackend) Execute(_ context.Context, sql string) (backend.Rows, error) {
	i := len(f.stmts)
	f.stmts = append(f.stmts, sql)
	if err := f.errAt[i]; err != nil {
		return nil, err
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return backend.Rows{}, nil
}

func (f *fakeBackend) Commit(_ context.Context, message string) error {
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeBackend) Close() error { return nil }

func newTestStore(fb *fakeBackend) *Store {
	s := New(fb)
	s.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return s
}

func taskRow(id, planID, status string) backend.Row {
	return backend.Row{
		"task_id":    id,
		"plan_id":    planID,
		"title":      "some task",
		"status":     status,
		"owner":      "human",
		"risk":       "low",
		"created_at": "2026-03-01 08:00:00",
		"updated_at": "2026-03-01 08:00:00",
	}
}

func planRow(id, status string) backend.Row {
	return backend.Row{
		"plan_id":    id,
		"title":      "some plan",
		"status":     status,
		"priority":   int64(0),
		"created_at": "2026-03-01 08:00:00",
		"updated_at": "2026-03-01 08:00:00",
	}
}
