package rules

import (
	"testing"

	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/types"
)

func blocks(from, to string) types.Edge {
	return types.Edge{FromTaskID: from, ToTaskID: to, Type: types.EdgeBlocks}
}

func relates(from, to string) types.Edge {
	return types.Edge{FromTaskID: from, ToTaskID: to, Type: types.EdgeRelates}
}

func TestCheckNoBlockerCycle(t *testing.T) {
	tests := []struct {
		name     string
		existing []types.Edge
		from, to string
		wantErr  bool
	}{
		{
			name:     "empty graph ok",
			existing: nil,
			from:     "A", to: "B",
		},
		{
			name:     "self loop",
			existing: nil,
			from:     "A", to: "A",
			wantErr: true,
		},
		{
			name:     "direct back edge",
			existing: []types.Edge{blocks("A", "B")},
			from:     "B", to: "A",
			wantErr: true,
		},
		{
			name:     "unrelated edge ok",
			existing: []types.Edge{blocks("A", "B")},
			from:     "C", to: "D",
		},
		{
			name:     "long cycle",
			existing: []types.Edge{blocks("A", "B"), blocks("B", "C"), blocks("C", "D")},
			from:     "D", to: "A",
			wantErr: true,
		},
		{
			name:     "diamond is acyclic",
			existing: []types.Edge{blocks("A", "B"), blocks("A", "C"), blocks("B", "D")},
			from:     "C", to: "D",
		},
		{
			name:     "relates cycle never counts",
			existing: []types.Edge{relates("A", "B"), relates("B", "A")},
			from:     "A", to: "B",
		},
		{
			name:     "mixed types only blocks participate",
			existing: []types.Edge{blocks("A", "B"), relates("B", "A")},
			from:     "B", to: "C",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNoBlockerCycle(tt.from, tt.to, tt.existing)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected CYCLE_DETECTED, got ok")
				}
				if fault.CodeOf(err) != fault.CycleDetected {
					t.Errorf("wrong code: %s", fault.CodeOf(err))
				}
			} else if err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
		})
	}
}

// The existing edge set is assumed acyclic; the check must stay correct when
// the candidate edge reconnects two large components.
func TestCheckNoBlockerCycleChains(t *testing.T) {
	var edges []types.Edge
	// A0 -> A1 -> ... -> A49
	for i := 0; i < 49; i++ {
		edges = append(edges, blocks(node("A", i), node("A", i+1)))
	}
	if err := CheckNoBlockerCycle(node("A", 49), node("B", 0), edges); err != nil {
		t.Fatalf("appending to chain tail should be fine: %v", err)
	}
	if err := CheckNoBlockerCycle(node("A", 49), node("A", 0), edges); err == nil {
		t.Fatal("closing the chain must be detected")
	}
}

func node(prefix string, i int) string {
	return prefix + string(rune('0'+i/10)) + string(rune('0'+i%10))
}
