// Package sqlgen renders and executes SQL statements against a backend.
//
// It is the single choke point between the domain layer and storage: every
// mutation and nearly every read funnels through Builder. Identifiers are
// backtick-quoted and all scalar values rendered through Literal, so no
// caller ever concatenates raw values into SQL.
package sqlgen

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
)

// Cond expresses a non-equality comparison in a where map, e.g.
// {"priority": Cond{Op: ">", Value: 2}}.
type Cond struct {
	Op    string
	Value interface{}
}

// SelectOpts controls Select statement composition. Zero values are omitted.
type SelectOpts struct {
	Columns []string
	Where   map[string]interface{}
	GroupBy []string
	Having  string
	OrderBy string
	Limit   int
	Offset  int
}

// Builder composes SQL statements and delegates execution to the backend.
type Builder struct {
	be backend.Backend
}

// New creates a Builder over the given backend.
func New(be backend.Backend) *Builder {
	return &Builder{be: be}
}

// Backend exposes the underlying backend for commit calls.
func (b *Builder) Backend() backend.Backend { return b.be }

// Insert executes INSERT INTO table (cols...) VALUES (literals...).
func (b *Builder) Insert(ctx context.Context, table string, colVals map[string]interface{}) error {
	if len(colVals) == 0 {
		return fault.New(fault.ValidationFailed, "insert into %s with no columns", table)
	}
	keys := sortedKeys(colVals)
	cols := make([]string, len(keys))
	vals := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = QuoteIdent(k)
		vals[i] = Literal(colVals[k])
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(table), strings.Join(cols, ", "), strings.Join(vals, ", "))
	_, err := b.exec(ctx, stmt)
	return err
}

// Update executes UPDATE table SET ... WHERE equality conditions.
func (b *Builder) Update(ctx context.Context, table string, colVals, where map[string]interface{}) error {
	if len(colVals) == 0 {
		return fault.New(fault.ValidationFailed, "update %s with no columns", table)
	}
	sets := make([]string, 0, len(colVals))
	for _, k := range sortedKeys(colVals) {
		sets = append(sets, fmt.Sprintf("%s = %s", QuoteIdent(k), Literal(colVals[k])))
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s%s",
		QuoteIdent(table), strings.Join(sets, ", "), whereClause(where))
	_, err := b.exec(ctx, stmt)
	return err
}

// Select executes a composed SELECT and returns the rows.
func (b *Builder) Select(ctx context.Context, table string, opts SelectOpts) (backend.Rows, error) {
	cols := "*"
	if len(opts.Columns) > 0 {
		quoted := make([]string, len(opts.Columns))
		for i, c := range opts.Columns {
			quoted[i] = QuoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, QuoteIdent(table))
	sb.WriteString(whereClause(opts.Where))
	if len(opts.GroupBy) > 0 {
		quoted := make([]string, len(opts.GroupBy))
		for i, c := range opts.GroupBy {
			quoted[i] = QuoteIdent(c)
		}
		fmt.Fprintf(&sb, " GROUP BY %s", strings.Join(quoted, ", "))
	}
	if opts.Having != "" {
		fmt.Fprintf(&sb, " HAVING %s", opts.Having)
	}
	if opts.OrderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", opts.OrderBy)
	}
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", opts.Offset)
	}
	return b.exec(ctx, sb.String())
}

// Count executes SELECT COUNT(*) with equality conditions and parses the result.
func (b *Builder) Count(ctx context.Context, table string, where map[string]interface{}) (int, error) {
	stmt := fmt.Sprintf("SELECT COUNT(*) AS cnt FROM %s%s", QuoteIdent(table), whereClause(where))
	rows, err := b.exec(ctx, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fault.New(fault.DBParseFailed, "count query returned no rows")
	}
	n, ok := AsInt(rows[0]["cnt"])
	if !ok {
		return 0, fault.New(fault.DBParseFailed, "count query returned non-numeric value %v", rows[0]["cnt"])
	}
	return n, nil
}

// Raw executes a caller-assembled statement. The only sanctioned callers are
// the store's detail/blocker/dependent fetches, which build their SQL through
// EscapeString.
func (b *Builder) Raw(ctx context.Context, stmt string) (backend.Rows, error) {
	return b.exec(ctx, stmt)
}

func (b *Builder) exec(ctx context.Context, stmt string) (backend.Rows, error) {
	rows, err := b.be.Execute(ctx, stmt)
	if err != nil {
		// Backend errors already carry a fault code; don't double-wrap.
		if fault.CodeOf(err) != fault.Unknown {
			return nil, err
		}
		return nil, fault.Wrap(fault.DBQueryFailed, err, "query failed")
	}
	return rows, nil
}

// whereClause renders a WHERE clause from a condition map, ANDed in sorted
// key order. Values may be direct equality targets or Cond comparisons;
// nil renders as IS NULL.
func whereClause(where map[string]interface{}) string {
	if len(where) == 0 {
		return ""
	}
	conds := make([]string, 0, len(where))
	for _, k := range sortedKeys(where) {
		switch v := where[k].(type) {
		case Cond:
			conds = append(conds, fmt.Sprintf("%s %s %s", QuoteIdent(k), v.Op, Literal(v.Value)))
		case nil:
			conds = append(conds, fmt.Sprintf("%s IS NULL", QuoteIdent(k)))
		default:
			conds = append(conds, fmt.Sprintf("%s = %s", QuoteIdent(k), Literal(v)))
		}
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsInt coerces a driver-produced value to int. Drivers variously hand back
// int64, uint64, float64, []byte, or string for COUNT results.
func AsInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case []byte:
		return parseIntString(string(n))
	case string:
		return parseIntString(n)
	}
	return 0, false
}

func parseIntString(s string) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}
