// Package dolt implements the backend contract over a Dolt database.
//
// Two connection modes:
//   - Embedded: no server required, database/sql via github.com/dolthub/driver
//   - Server: connect to a running dolt sql-server via the MySQL protocol
//
// Either way the pool is pinned to a single connection: ROW_COUNT() probes
// and DOLT_COMMIT must observe the same session that ran the preceding
// writes.
package dolt

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	embedded "github.com/dolthub/driver"
	_ "github.com/go-sql-driver/mysql"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/debug"
	"github.com/danalexilewis/taskgraph/internal/fault"
)

// Config holds Dolt connection settings.
type Config struct {
	Path           string // embedded database directory
	Database       string // database name (default: "taskgraph")
	CommitterName  string
	CommitterEmail string

	ServerMode     bool // connect to dolt sql-server instead of embedded
	ServerHost     string
	ServerPort     int
	ServerUser     string
	ServerPassword string
}

// DefaultSQLPort is the dolt sql-server default.
const DefaultSQLPort = 3306

const openMaxElapsed = 30 * time.Second

func newOpenBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = openMaxElapsed
	return bo
}

// Backend is a Dolt-backed implementation of backend.Backend.
type Backend struct {
	db             *sql.DB
	closed         atomic.Bool
	committerName  string
	committerEmail string

	// connector is non-nil only in embedded mode. It must be closed to
	// release filesystem locks held by the embedded engine.
	connector *embedded.Connector
}

// Open connects to the database, creating it when missing.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Database == "" {
		cfg.Database = "taskgraph"
	}
	if cfg.CommitterName == "" {
		cfg.CommitterName = os.Getenv("GIT_AUTHOR_NAME")
		if cfg.CommitterName == "" {
			cfg.CommitterName = "taskgraph"
		}
	}
	if cfg.CommitterEmail == "" {
		cfg.CommitterEmail = os.Getenv("GIT_AUTHOR_EMAIL")
		if cfg.CommitterEmail == "" {
			cfg.CommitterEmail = "taskgraph@local"
		}
	}

	var db *sql.DB
	var connector *embedded.Connector
	var err error
	if cfg.ServerMode {
		db, err = openServer(ctx, cfg)
	} else {
		db, connector, err = openEmbedded(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}

	b := &Backend{
		db:             db,
		connector:      connector,
		committerName:  cfg.CommitterName,
		committerEmail: cfg.CommitterEmail,
	}

	// In embedded mode, don't ping with a caller-supplied ctx: the embedded
	// driver derives a session context from the first Connect and reuses it
	// across statements, so a short-lived ctx would poison the pool.
	pingCtx := ctx
	if connector != nil {
		pingCtx = context.Background()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = b.Close()
		return nil, fault.Wrap(fault.DBQueryFailed, err, "failed to ping dolt database")
	}
	return b, nil
}

func openEmbedded(ctx context.Context, cfg Config) (*sql.DB, *embedded.Connector, error) {
	if cfg.Path == "" {
		return nil, nil, fault.New(fault.ValidationFailed, "database path is required")
	}
	if info, err := os.Stat(cfg.Path); err == nil && !info.IsDir() {
		return nil, nil, fault.New(fault.ValidationFailed, "database path %q is a file, not a directory", cfg.Path)
	}
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, nil, fault.Wrap(fault.DBQueryFailed, err, "failed to create database directory")
	}
	// The embedded driver sets its internal working directory to the DSN
	// path; a relative path gets stacked twice, so resolve it first.
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, nil, fault.Wrap(fault.DBQueryFailed, err, "failed to resolve database path")
	}

	initDSN := fmt.Sprintf("file://%s?commitname=%s&commitemail=%s",
		absPath, cfg.CommitterName, cfg.CommitterEmail)
	dbDSN := initDSN + "&database=" + cfg.Database

	// Ensure the database exists as its own unit of work, with a fresh
	// connector, before opening the long-lived connection.
	if err := withEmbedded(ctx, initDSN, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Database))
		return err
	}); err != nil {
		return nil, nil, fault.Wrap(fault.DBQueryFailed, err, "failed to create dolt database")
	}

	openCfg, err := embedded.ParseDSN(dbDSN)
	if err != nil {
		return nil, nil, fault.Wrap(fault.DBQueryFailed, err, "failed to parse dolt DSN")
	}
	openCfg.BackOff = newOpenBackoff()
	connector, err := embedded.NewConnector(openCfg)
	if err != nil {
		return nil, nil, fault.Wrap(fault.DBQueryFailed, err, "failed to create dolt connector")
	}
	db := sql.OpenDB(connector)
	// Embedded dolt is single-writer, like SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, connector, nil
}

// withEmbedded runs one unit of work against a throwaway embedded connector.
func withEmbedded(ctx context.Context, dsn string, fn func(context.Context, *sql.DB) error) error {
	cfg, err := embedded.ParseDSN(dsn)
	if err != nil {
		return err
	}
	cfg.BackOff = newOpenBackoff()
	connector, err := embedded.NewConnector(cfg)
	if err != nil {
		return err
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	defer func() {
		_ = db.Close()
		_ = connector.Close()
	}()
	return fn(ctx, db)
}

func openServer(ctx context.Context, cfg Config) (*sql.DB, error) {
	if cfg.ServerHost == "" {
		cfg.ServerHost = "127.0.0.1"
	}
	if cfg.ServerPort == 0 {
		cfg.ServerPort = DefaultSQLPort
	}
	if cfg.ServerUser == "" {
		cfg.ServerUser = "root"
	}
	if cfg.ServerPassword == "" {
		cfg.ServerPassword = os.Getenv("TG_DOLT_PASSWORD")
	}

	// Fail-fast TCP probe so a missing server surfaces immediately instead
	// of after MySQL protocol timeouts.
	addr := net.JoinHostPort(cfg.ServerHost, fmt.Sprintf("%d", cfg.ServerPort))
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return nil, fault.Wrap(fault.DBQueryFailed, err,
			"dolt server unreachable at %s (is 'dolt sql-server' running?)", addr)
	}
	_ = conn.Close()

	// Create the database through a connection that selects none.
	initDB, err := sql.Open("mysql", serverDSN(cfg, ""))
	if err != nil {
		return nil, fault.Wrap(fault.DBQueryFailed, err, "failed to open init connection")
	}
	defer func() { _ = initDB.Close() }()
	_, err = initDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.Database))
	if err != nil {
		// Dolt may return error 1007 even with IF NOT EXISTS.
		low := strings.ToLower(err.Error())
		if !strings.Contains(low, "database exists") && !strings.Contains(low, "1007") {
			return nil, fault.Wrap(fault.DBQueryFailed, err, "failed to create database")
		}
	}

	db, err := sql.Open("mysql", serverDSN(cfg, cfg.Database))
	if err != nil {
		return nil, fault.Wrap(fault.DBQueryFailed, err, "failed to open dolt server connection")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func serverDSN(cfg Config, database string) string {
	userPart := cfg.ServerUser
	if cfg.ServerPassword != "" {
		userPart = cfg.ServerUser + ":" + cfg.ServerPassword
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true",
		userPart, cfg.ServerHost, cfg.ServerPort, database)
}

// Execute runs one statement and returns its rows. Statements that produce
// no result set return an empty row list.
func (b *Backend) Execute(ctx context.Context, stmt string) (backend.Rows, error) {
	if b.closed.Load() {
		return nil, fault.New(fault.DBQueryFailed, "backend is closed")
	}
	if debug.Enabled() {
		debug.Logf("sql> %s\n", logStmt(stmt))
	}
	if producesRows(stmt) {
		rows, err := b.db.QueryContext(ctx, stmt)
		if err != nil {
			return nil, fault.Wrap(fault.DBQueryFailed, err, "query failed")
		}
		defer func() { _ = rows.Close() }()
		return collectRows(rows)
	}
	if _, err := b.db.ExecContext(ctx, stmt); err != nil {
		return nil, fault.Wrap(fault.DBQueryFailed, err, "statement failed")
	}
	return backend.Rows{}, nil
}

// Commit records a Dolt commit covering all pending changes. An empty
// working set is not an error; repeated idempotent operations commit nothing.
func (b *Backend) Commit(ctx context.Context, message string) error {
	if b.closed.Load() {
		return fault.New(fault.DBCommitFailed, "backend is closed")
	}
	// Dolt defaults the author to the SQL user in procedure mode; pass one
	// explicitly for deterministic history.
	author := fmt.Sprintf("%s <%s>", b.committerName, b.committerEmail)
	_, err := b.db.ExecContext(ctx, "CALL DOLT_COMMIT('-Am', ?, '--author', ?)", message, author)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "nothing to commit") {
			return nil
		}
		return fault.Wrap(fault.DBCommitFailed, err, "dolt commit failed")
	}
	return nil
}

// Close releases the connection and, in embedded mode, the filesystem locks.
func (b *Backend) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	err := b.db.Close()
	if b.connector != nil {
		if cerr := b.connector.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// logStmt collapses a statement to one line and caps its logged length.
func logStmt(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > 200 {
		stmt = stmt[:200] + "..."
	}
	return stmt
}

func producesRows(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH":
		return true
	}
	return false
}

func collectRows(rows *sql.Rows) (backend.Rows, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fault.Wrap(fault.DBParseFailed, err, "failed to read result columns")
	}
	var out backend.Rows
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fault.Wrap(fault.DBParseFailed, err, "failed to scan row")
		}
		row := make(backend.Row, len(cols))
		for i, col := range cols {
			// Drivers hand back []byte for most text columns; normalize to
			// string so consumers see stable types across modes.
			if raw, ok := vals[i].([]byte); ok {
				row[col] = string(raw)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrap(fault.DBParseFailed, err, "failed to iterate rows")
	}
	if out == nil {
		out = backend.Rows{}
	}
	return out, nil
}
