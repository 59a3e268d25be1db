package rules

import (
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// CheckNoBlockerCycle reports whether adding the blocks edge from -> to would
// create a cycle in the blocking subgraph. existing should contain the
// current edge set; relates edges are ignored entirely, so a mutual relates
// pair can never trigger this error.
//
// A direct self-loop (from == to) is caught by the same walk: the node shows
// up on its own recursion stack.
func CheckNoBlockerCycle(from, to string, existing []types.Edge) error {
	adj := make(map[string][]string)
	for _, e := range existing {
		if e.Type != types.EdgeBlocks {
			continue
		}
		adj[e.FromTaskID] = append(adj[e.FromTaskID], e.ToTaskID)
	}
	// Hypothetical new edge.
	adj[from] = append(adj[from], to)

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		onStack[node] = true
		for _, next := range adj[node] {
			if onStack[next] {
				return true
			}
			if !visited[next] && dfs(next) {
				return true
			}
		}
		onStack[node] = false
		return false
	}

	for node := range adj {
		if !visited[node] && dfs(node) {
			return fault.New(fault.CycleDetected,
				"adding blocks edge %s -> %s would create a dependency cycle", from, to)
		}
	}
	return nil
}
