// Package store implements the typed persistence operations for plans,
// tasks, edges, events, and decisions.
//
// Every statement is rendered by the sqlgen builder; the handful of joined
// reads (task detail, blockers, dependents, ready work) compose raw SQL
// through the same escaping primitive. The store performs no locking: the
// conditional status update is the only concurrency guard (see
// UpdateTaskStatus).
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
)

// sqlTimeFormat is the MySQL DATETIME layout. All timestamps are stored UTC.
const sqlTimeFormat = "2006-01-02 15:04:05"

// Store wraps a query builder with domain operations.
type Store struct {
	b *sqlgen.Builder

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Store over the given backend.
func New(be backend.Backend) *Store {
	return &Store{b: sqlgen.New(be), now: time.Now}
}

// Builder exposes the underlying query builder (the invariant engine's
// runnability check reads through it).
func (s *Store) Builder() *sqlgen.Builder { return s.b }

// Commit snapshots the current state in the versioned backend.
func (s *Store) Commit(ctx context.Context, message string) error {
	return s.b.Backend().Commit(ctx, message)
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(sqlTimeFormat)
}

// Row scan helpers. Driver values arrive as string, []byte, time.Time, or
// numeric types depending on mode (embedded vs server), so every accessor
// normalizes.

func rowString(row backend.Row, col string) string {
	switch v := row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowInt(row backend.Row, col string) int {
	n, _ := sqlgen.AsInt(row[col])
	return n
}

func rowIntPtr(row backend.Row, col string) *int {
	if row[col] == nil {
		return nil
	}
	n, ok := sqlgen.AsInt(row[col])
	if !ok {
		return nil
	}
	return &n
}

func rowTime(row backend.Row, col string) time.Time {
	switch v := row[col].(type) {
	case time.Time:
		return v
	case string:
		return parseSQLTime(v)
	case []byte:
		return parseSQLTime(string(v))
	}
	return time.Time{}
}

func parseSQLTime(s string) time.Time {
	for _, layout := range []string{sqlTimeFormat, time.RFC3339, "2006-01-02 15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// rowStringSlice decodes a JSON array column (e.g. task.acceptance).
func rowStringSlice(row backend.Row, col string) []string {
	raw := rowString(row, col)
	if raw == "" || raw == "null" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// rowJSONMap decodes a JSON object column (e.g. event.body).
func rowJSONMap(row backend.Row, col string) map[string]interface{} {
	raw := rowString(row, col)
	if raw == "" || raw == "null" {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}
