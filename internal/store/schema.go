package store

import (
	"context"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
)

// schemaStatements is the canonical five-table schema, MySQL/Dolt dialect.
// ENUM value lists mirror the domain enums exactly; existing databases depend
// on the spellings, so changes here require a migration, not an edit.
var schemaStatements = []string{
	"CREATE TABLE IF NOT EXISTS `plan` (" + `
    plan_id VARCHAR(36) PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    intent TEXT,
    status ENUM('draft', 'active', 'paused', 'done', 'abandoned') NOT NULL DEFAULT 'draft',
    priority INT NOT NULL DEFAULT 0,
    source_path VARCHAR(1024),
    source_commit VARCHAR(64),
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS task (
    task_id VARCHAR(36) PRIMARY KEY,
    plan_id VARCHAR(36) NOT NULL,
    feature_key VARCHAR(255),
    title VARCHAR(500) NOT NULL,
    intent TEXT,
    scope_in TEXT,
    scope_out TEXT,
    acceptance JSON,
    status ENUM('todo', 'doing', 'blocked', 'done', 'canceled') NOT NULL DEFAULT 'todo',
    owner ENUM('human', 'agent') NOT NULL DEFAULT 'human',
    area VARCHAR(255),
    risk ENUM('low', 'medium', 'high') NOT NULL DEFAULT 'low',
    estimate_mins INT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    external_key VARCHAR(255),
    UNIQUE KEY uniq_task_external_key (external_key),
    KEY idx_task_plan (plan_id),
    KEY idx_task_status (status)
)`,
	`CREATE TABLE IF NOT EXISTS edge (
    from_task_id VARCHAR(36) NOT NULL,
    to_task_id VARCHAR(36) NOT NULL,
    type ENUM('blocks', 'relates') NOT NULL,
    reason VARCHAR(500),
    PRIMARY KEY (from_task_id, to_task_id, type),
    KEY idx_edge_to (to_task_id)
)`,
	`CREATE TABLE IF NOT EXISTS event (
    event_id VARCHAR(36) PRIMARY KEY,
    task_id VARCHAR(36) NOT NULL,
    kind ENUM('created', 'started', 'progress', 'blocked', 'unblocked', 'done', 'split', 'decision_needed', 'note') NOT NULL,
    body JSON,
    actor ENUM('human', 'agent') NOT NULL DEFAULT 'human',
    created_at DATETIME NOT NULL,
    KEY idx_event_task (task_id)
)`,
	`CREATE TABLE IF NOT EXISTS decision (
    decision_id VARCHAR(36) PRIMARY KEY,
    plan_id VARCHAR(36) NOT NULL,
    task_id VARCHAR(36),
    summary VARCHAR(500) NOT NULL,
    context TEXT,
    options JSON,
    decision TEXT NOT NULL,
    consequences TEXT,
    source_ref VARCHAR(500),
    created_at DATETIME NOT NULL,
    KEY idx_decision_plan (plan_id)
)`,
}

// Bootstrap creates the schema if it does not exist. Idempotent; run on
// every open so a fresh clone works without a separate migrate step.
func Bootstrap(ctx context.Context, be backend.Backend) error {
	for _, stmt := range schemaStatements {
		if _, err := be.Execute(ctx, stmt); err != nil {
			return fault.Wrap(fault.DBQueryFailed, err, "schema bootstrap failed")
		}
	}
	return nil
}
