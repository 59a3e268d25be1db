package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/planmd"
	"github.com/danalexilewis/taskgraph/internal/store"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// fakeBackend replays canned rows positionally, like the store tests do.
type fakeBackend struct {
	replies []backend.Rows
	stmts   []string
	commits []string
}

func (f *fakeBackend) Execute(_ context.Context, sql string) (backend.Rows, error) {
	i := len(f.stmts)
	f.stmts = append(f.stmts, sql)
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

func planRow(id string) backend.Row {
	return backend.Row{
		"plan_id": id, "title": "checkout", "status": "active",
		"priority": int64(0),
		"created_at": "2026-03-01 08:00:00", "updated_at": "2026-03-01 08:00:00",
	}
}

func taskRow(id, key string) backend.Row {
	return backend.Row{
		"task_id": id, "plan_id": "p-1", "title": "t", "status": "todo",
		"owner": "human", "risk": "low", "external_key": key,
		"created_at": "2026-03-01 08:00:00", "updated_at": "2026-03-01 08:00:00",
	}
}

var parsedTasks = []planmd.ParsedTask{
	{StableKey: "api", Title: "Build API", FeatureKey: "checkout", Area: "backend"},
	{StableKey: "ui", Title: "Wire UI", BlockedBy: []string{"api"}},
}

func TestFreshImportInsertsAndWarns(t *testing.T) {
	fb := &fakeBackend{replies: []backend.Rows{
		{}, // external key map: empty plan
		{planRow("p-1")},
		{}, {}, // task api insert + created event
		{planRow("p-1")},
		{}, {}, // task ui insert + created event
	}}
	st := store.New(fb)
	res, err := UpsertTasksAndEdges(context.Background(), st, "p-1", parsedTasks, types.OwnerAgent)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Updated)
	// The blocker map predates the batch, so "api" does not resolve yet.
	assert.Equal(t, 0, res.Edges)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"api"`)
	require.Len(t, fb.commits, 1)
	assert.Contains(t, fb.commits[0], "2 new")
}

func TestReimportConvergesAndLinks(t *testing.T) {
	fb := &fakeBackend{replies: []backend.Rows{
		{taskRow("t-api", "api"), taskRow("t-ui", "ui")}, // key map
		{taskRow("t-api", "api")}, {}, // api: fetch + update
		{taskRow("t-ui", "ui")}, {}, // ui: fetch + update
		{{"cnt": int64(0)}}, // edge existence
		{},                  // edge insert
	}}
	st := store.New(fb)
	res, err := UpsertTasksAndEdges(context.Background(), st, "p-1", parsedTasks, types.OwnerAgent)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Edges)
	assert.Empty(t, res.Warnings)

	edgeInsert := fb.stmts[6]
	for _, frag := range []string{"INSERT INTO `edge`", "'t-api'", "'t-ui'", "'blocks'"} {
		assert.Contains(t, edgeInsert, frag)
	}
	// Import-sourced blockers skip the cycle check.
	joined := strings.Join(fb.stmts, "\n")
	assert.NotContains(t, joined, "`type` = 'blocks' ORDER BY")
	update := fb.stmts[2]
	for _, frag := range []string{"UPDATE `task` SET", "'Build API'", "`updated_at` ="} {
		assert.Contains(t, update, frag)
	}
}

func TestReimportExistingEdgeSkipped(t *testing.T) {
	fb := &fakeBackend{replies: []backend.Rows{
		{taskRow("t-api", "api"), taskRow("t-ui", "ui")},
		{taskRow("t-api", "api")}, {},
		{taskRow("t-ui", "ui")}, {},
		{{"cnt": int64(1)}}, // edge already present
	}}
	st := store.New(fb)
	res, err := UpsertTasksAndEdges(context.Background(), st, "p-1", parsedTasks, types.OwnerAgent)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Edges)
	for _, stmt := range fb.stmts {
		assert.NotContains(t, stmt, "INSERT INTO `edge`")
	}
	require.Len(t, fb.commits, 1)
}

func TestImportFileCreatesPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	doc := "# Checkout\nINTENT: rework checkout\n\nTASK: api\nTITLE: Build API\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	fb := &fakeBackend{replies: []backend.Rows{
		{},              // no plan with this source_path
		{},              // plan insert
		{},              // external key map
		{planRow("p-1")}, // plan fetch inside CreateTask
		{}, {},          // task insert + created event
	}}
	st := store.New(fb)
	res, err := ImportFile(context.Background(), st, path, types.OwnerHuman)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	planInsert := fb.stmts[1]
	for _, frag := range []string{"INSERT INTO `plan`", "'Checkout'", "'active'", "'rework checkout'"} {
		assert.Contains(t, planInsert, frag)
	}
	assert.Contains(t, planInsert, "`source_path`")
}
