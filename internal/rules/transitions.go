// Package rules implements the task-graph consistency checks: status
// transition legality, blocking-cycle detection, and runnability.
//
// The transition and cycle checks are pure functions; the runnability check
// reads through the query builder. None of them mutate state, and callers
// must run the relevant check before every state-changing write.
package rules

import (
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// validTransitions is the complete directed transition table. done and
// canceled are absorbing: nothing leaves them.
var validTransitions = map[types.TaskStatus][]types.TaskStatus{
	types.StatusTodo:     {types.StatusDoing, types.StatusBlocked, types.StatusCanceled},
	types.StatusDoing:    {types.StatusDone, types.StatusBlocked, types.StatusCanceled},
	types.StatusBlocked:  {types.StatusTodo, types.StatusCanceled},
	types.StatusDone:     {},
	types.StatusCanceled: {},
}

// CheckValidTransition reports whether current -> next is a legal status
// transition. Any pair not in the table fails with INVALID_TRANSITION.
func CheckValidTransition(current, next types.TaskStatus) error {
	for _, allowed := range validTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fault.New(fault.InvalidTransition, "cannot transition from '%s' to '%s'", current, next)
}
