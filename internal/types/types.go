// Package types defines core data structures for the taskgraph tracker.
package types

import (
	"fmt"
	"time"
)

// Plan is the root aggregate: a top-level unit of intent owning zero or more tasks.
type Plan struct {
	ID           string     `json:"plan_id"`
	Title        string     `json:"title"`
	Intent       string     `json:"intent,omitempty"`
	Status       PlanStatus `json:"status"`
	Priority     int        `json:"priority"`
	SourcePath   string     `json:"source_path,omitempty"`
	SourceCommit string     `json:"source_commit,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PlanStatus represents the lifecycle state of a plan.
type PlanStatus string

// Plan status constants. The value strings are stored in an ENUM column and
// must stay exactly as spelled here.
const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanPaused    PlanStatus = "paused"
	PlanDone      PlanStatus = "done"
	PlanAbandoned PlanStatus = "abandoned"
)

// IsValid checks if the plan status value is valid.
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanDraft, PlanActive, PlanPaused, PlanDone, PlanAbandoned:
		return true
	}
	return false
}

// Task is an individually trackable unit of work with a lifecycle status.
type Task struct {
	ID           string     `json:"task_id"`
	PlanID       string     `json:"plan_id"`
	FeatureKey   string     `json:"feature_key,omitempty"`
	Title        string     `json:"title"`
	Intent       string     `json:"intent,omitempty"`
	ScopeIn      string     `json:"scope_in,omitempty"`
	ScopeOut     string     `json:"scope_out,omitempty"`
	Acceptance   []string   `json:"acceptance,omitempty"`
	Status       TaskStatus `json:"status"`
	Owner        Owner      `json:"owner"`
	Area         string     `json:"area,omitempty"`
	Risk         Risk       `json:"risk"`
	EstimateMins *int       `json:"estimate_mins,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// ExternalKey is the stable identity the importer uses to recognize the
	// same logical task across repeated imports of an evolving source file.
	// Unique when present.
	ExternalKey string `json:"external_key,omitempty"`
}

// Validate checks if the task has valid field values.
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if !t.Owner.IsValid() {
		return fmt.Errorf("invalid owner: %s", t.Owner)
	}
	if !t.Risk.IsValid() {
		return fmt.Errorf("invalid risk: %s", t.Risk)
	}
	if t.EstimateMins != nil && *t.EstimateMins < 0 {
		return fmt.Errorf("estimate_mins cannot be negative")
	}
	return nil
}

// SetDefaults applies default values for fields omitted at creation time.
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Owner == "" {
		t.Owner = OwnerHuman
	}
	if t.Risk == "" {
		t.Risk = RiskLow
	}
}

// TaskStatus represents the current state of a task.
type TaskStatus string

// Task status constants
const (
	StatusTodo     TaskStatus = "todo"
	StatusDoing    TaskStatus = "doing"
	StatusBlocked  TaskStatus = "blocked"
	StatusDone     TaskStatus = "done"
	StatusCanceled TaskStatus = "canceled"
)

// IsValid checks if the status value is valid.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusBlocked, StatusDone, StatusCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether the status is absorbing: done and canceled
// tasks never transition again and no longer block their dependents.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled
}

// Owner identifies which kind of actor holds a task.
type Owner string

// Owner constants
const (
	OwnerHuman Owner = "human"
	OwnerAgent Owner = "agent"
)

// IsValid checks if the owner value is valid.
func (o Owner) IsValid() bool {
	return o == OwnerHuman || o == OwnerAgent
}

// Risk grades the expected blast radius of a task.
type Risk string

// Risk constants
const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// IsValid checks if the risk value is valid.
func (r Risk) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Edge is a typed relationship between two tasks, composite-keyed on
// (from, to, type). Edges are immutable: existence-checked insert only.
type Edge struct {
	FromTaskID string   `json:"from_task_id"`
	ToTaskID   string   `json:"to_task_id"`
	Type       EdgeType `json:"type"`
	Reason     string   `json:"reason,omitempty"`
}

// EdgeType categorizes the relationship.
type EdgeType string

// Edge type constants
const (
	// EdgeBlocks means From must reach a terminal state (done/canceled)
	// before To may become runnable. The blocks-subgraph must stay a DAG.
	EdgeBlocks EdgeType = "blocks"
	// EdgeRelates carries no ordering constraint; used for lineage
	// (task-split provenance) and cross-referencing.
	EdgeRelates EdgeType = "relates"
)

// IsValid checks if the edge type value is valid.
func (e EdgeType) IsValid() bool {
	return e == EdgeBlocks || e == EdgeRelates
}

// AffectsRunnability returns true if this edge type gates ready work.
// Only blocks edges participate in cycle detection and runnability.
func (e EdgeType) AffectsRunnability() bool {
	return e == EdgeBlocks
}

// Event is an immutable audit record of a task lifecycle transition.
// One event is appended for every state-changing operation on a task.
type Event struct {
	ID        string                 `json:"event_id"`
	TaskID    string                 `json:"task_id"`
	Kind      EventKind              `json:"kind"`
	Body      map[string]interface{} `json:"body,omitempty"`
	Actor     Owner                  `json:"actor"`
	CreatedAt time.Time              `json:"created_at"`
}

// EventKind categorizes audit trail events.
type EventKind string

// Event kind constants
const (
	EventCreated        EventKind = "created"
	EventStarted        EventKind = "started"
	EventProgress       EventKind = "progress"
	EventBlocked        EventKind = "blocked"
	EventUnblocked      EventKind = "unblocked"
	EventDone           EventKind = "done"
	EventSplit          EventKind = "split"
	EventDecisionNeeded EventKind = "decision_needed"
	EventNote           EventKind = "note"
)

// IsValid checks if the event kind value is valid.
func (k EventKind) IsValid() bool {
	switch k {
	case EventCreated, EventStarted, EventProgress, EventBlocked,
		EventUnblocked, EventDone, EventSplit, EventDecisionNeeded, EventNote:
		return true
	}
	return false
}

// KindForTransition maps a status transition to the event kind recorded for it.
// Cancellation is terminal and recorded as a done-kind closure with the
// canceled status carried in the event body.
func KindForTransition(next TaskStatus) EventKind {
	switch next {
	case StatusDoing:
		return EventStarted
	case StatusBlocked:
		return EventBlocked
	case StatusTodo:
		return EventUnblocked
	case StatusDone, StatusCanceled:
		return EventDone
	}
	return EventNote
}

// Decision records a choice made during planning or execution.
type Decision struct {
	ID           string    `json:"decision_id"`
	PlanID       string    `json:"plan_id"`
	TaskID       string    `json:"task_id,omitempty"`
	Summary      string    `json:"summary"`
	Context      string    `json:"context,omitempty"`
	Options      []string  `json:"options,omitempty"`
	Decision     string    `json:"decision"`
	Consequences string    `json:"consequences,omitempty"`
	SourceRef    string    `json:"source_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskWithBlockers extends Task with its blocker and dependent IDs.
type TaskWithBlockers struct {
	Task
	BlockedBy []string `json:"blocked_by,omitempty"`
	Blocks    []string `json:"blocks,omitempty"`
}

// GraphNode is the node shape consumed by the graph exporters.
type GraphNode struct {
	ID     string
	Label  string
	Status TaskStatus
}

// GraphEdge is the edge shape consumed by the graph exporters.
type GraphEdge struct {
	From string
	To   string
	Type EdgeType
}

// TaskFilter is used to filter task list queries.
type TaskFilter struct {
	PlanID string
	Status *TaskStatus
	Owner  *Owner
	Area   string
	Limit  int
}
