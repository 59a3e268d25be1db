package rules

import (
	"strings"
	"testing"

	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/types"
)

var allStatuses = []types.TaskStatus{
	types.StatusTodo, types.StatusDoing, types.StatusBlocked,
	types.StatusDone, types.StatusCanceled,
}

// The allowed set, spelled out pair by pair. Everything else must fail.
var allowedPairs = map[[2]types.TaskStatus]bool{
	{types.StatusTodo, types.StatusDoing}:       true,
	{types.StatusTodo, types.StatusBlocked}:     true,
	{types.StatusTodo, types.StatusCanceled}:    true,
	{types.StatusDoing, types.StatusDone}:       true,
	{types.StatusDoing, types.StatusBlocked}:    true,
	{types.StatusDoing, types.StatusCanceled}:   true,
	{types.StatusBlocked, types.StatusTodo}:     true,
	{types.StatusBlocked, types.StatusCanceled}: true,
}

func TestCheckValidTransitionCompleteTable(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := CheckValidTransition(from, to)
			want := allowedPairs[[2]types.TaskStatus{from, to}]
			if want && err != nil {
				t.Errorf("%s -> %s: expected ok, got %v", from, to, err)
			}
			if !want && err == nil {
				t.Errorf("%s -> %s: expected INVALID_TRANSITION, got ok", from, to)
			}
			if !want && fault.CodeOf(err) != fault.InvalidTransition {
				t.Errorf("%s -> %s: wrong code %s", from, to, fault.CodeOf(err))
			}
		}
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	for _, terminal := range []types.TaskStatus{types.StatusDone, types.StatusCanceled} {
		for _, to := range allStatuses {
			if err := CheckValidTransition(terminal, to); err == nil {
				t.Errorf("%s -> %s: terminal state must reject every transition", terminal, to)
			}
		}
	}
}

func TestTransitionErrorNamesPair(t *testing.T) {
	err := CheckValidTransition(types.StatusDone, types.StatusTodo)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, frag := range []string{"done", "todo"} {
		if !strings.Contains(msg, frag) {
			t.Errorf("error %q does not name %q", msg, frag)
		}
	}
}
