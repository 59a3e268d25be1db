package types

import (
	"testing"
)

func TestTaskStatusIsValid(t *testing.T) {
	valid := []TaskStatus{StatusTodo, StatusDoing, StatusBlocked, StatusDone, StatusCanceled}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	invalid := []TaskStatus{"", "open", "in_progress", "TODO", "cancelled"}
	for _, s := range invalid {
		if s.IsValid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestTaskStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   TaskStatus
		terminal bool
	}{
		{StatusTodo, false},
		{StatusDoing, false},
		{StatusBlocked, false},
		{StatusDone, true},
		{StatusCanceled, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{
			name: "valid task",
			task: Task{Title: "Do a thing", Status: StatusTodo, Owner: OwnerHuman, Risk: RiskLow},
		},
		{
			name:    "missing title",
			task:    Task{Status: StatusTodo, Owner: OwnerHuman, Risk: RiskLow},
			wantErr: true,
		},
		{
			name:    "bad status",
			task:    Task{Title: "x", Status: "open", Owner: OwnerHuman, Risk: RiskLow},
			wantErr: true,
		},
		{
			name:    "bad owner",
			task:    Task{Title: "x", Status: StatusTodo, Owner: "robot", Risk: RiskLow},
			wantErr: true,
		},
		{
			name:    "bad risk",
			task:    Task{Title: "x", Status: StatusTodo, Owner: OwnerAgent, Risk: "extreme"},
			wantErr: true,
		},
		{
			name: "negative estimate",
			task: func() Task {
				neg := -5
				return Task{Title: "x", Status: StatusTodo, Owner: OwnerHuman, Risk: RiskLow, EstimateMins: &neg}
			}(),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTaskSetDefaults(t *testing.T) {
	task := Task{Title: "x"}
	task.SetDefaults()
	if task.Status != StatusTodo {
		t.Errorf("default status = %s, want todo", task.Status)
	}
	if task.Owner != OwnerHuman {
		t.Errorf("default owner = %s, want human", task.Owner)
	}
	if task.Risk != RiskLow {
		t.Errorf("default risk = %s, want low", task.Risk)
	}

	// Defaults never override explicit values.
	task = Task{Title: "x", Status: StatusBlocked, Owner: OwnerAgent, Risk: RiskHigh}
	task.SetDefaults()
	if task.Status != StatusBlocked || task.Owner != OwnerAgent || task.Risk != RiskHigh {
		t.Error("SetDefaults overwrote explicit fields")
	}
}

func TestKindForTransition(t *testing.T) {
	tests := []struct {
		next TaskStatus
		want EventKind
	}{
		{StatusDoing, EventStarted},
		{StatusBlocked, EventBlocked},
		{StatusTodo, EventUnblocked},
		{StatusDone, EventDone},
		{StatusCanceled, EventDone},
	}
	for _, tt := range tests {
		if got := KindForTransition(tt.next); got != tt.want {
			t.Errorf("KindForTransition(%s) = %s, want %s", tt.next, got, tt.want)
		}
	}
}

func TestEdgeTypeAffectsRunnability(t *testing.T) {
	if !EdgeBlocks.AffectsRunnability() {
		t.Error("blocks edges must affect runnability")
	}
	if EdgeRelates.AffectsRunnability() {
		t.Error("relates edges must not affect runnability")
	}
}
