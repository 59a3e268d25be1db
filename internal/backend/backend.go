// Package backend defines the boundary to the versioned SQL store.
//
// The core never assumes a specific binary or driver: any SQL-capable store
// that can execute a statement and create a named commit satisfies the
// contract. The concrete Dolt implementation lives in the dolt sub-package.
package backend

import "context"

// Row is one result row, keyed by column name. Values are whatever the
// driver produced: string, int64, float64, bool, time.Time, []byte, or nil.
type Row = map[string]interface{}

// Rows is an ordered result set.
type Rows = []Row

// Backend executes SQL against the store and snapshots state via Commit.
//
// Execute takes a complete statement; all literal rendering and escaping
// happens upstream in sqlgen. Statements that return no result set yield an
// empty Rows.
type Backend interface {
	Execute(ctx context.Context, sql string) (Rows, error)
	Commit(ctx context.Context, message string) error
	Close() error
}
