package graph

import (
	"strings"
	"testing"

	"github.com/danalexilewis/taskgraph/internal/types"
)

var sampleNodes = []types.GraphNode{
	{ID: "a1b2-c3", Label: "Build API", Status: types.StatusTodo},
	{ID: "d4e5-f6", Label: `Say "hi"`, Status: types.StatusDoing},
}

var sampleEdges = []types.GraphEdge{
	{From: "a1b2-c3", To: "d4e5-f6", Type: types.EdgeBlocks},
	{From: "d4e5-f6", To: "a1b2-c3", Type: types.EdgeRelates},
}

func TestMermaidOutput(t *testing.T) {
	got := Mermaid(sampleNodes, sampleEdges)
	want := "graph TD\n" +
		"  a1b2c3[\"Build API\"]\n" +
		"  d4e5f6[\"Say \\\"hi\\\"\"]\n" +
		"  a1b2c3 --> d4e5f6\n" +
		"  d4e5f6 --- a1b2c3\n"
	if got != want {
		t.Errorf("Mermaid output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestMermaidEmptyInput(t *testing.T) {
	if got := Mermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("empty Mermaid = %q, want minimal skeleton", got)
	}
}

func TestMermaidUnknownEdgeTypeOmitted(t *testing.T) {
	edges := []types.GraphEdge{{From: "a", To: "b", Type: "duplicates"}}
	got := Mermaid(nil, edges)
	if got != "graph TD\n" {
		t.Errorf("unknown edge type should be silently omitted, got %q", got)
	}
}

func TestMermaidSanitizesIDs(t *testing.T) {
	nodes := []types.GraphNode{{ID: "task-123/sub.4", Label: "x"}}
	got := Mermaid(nodes, nil)
	if !strings.Contains(got, "task123sub4[") {
		t.Errorf("id not sanitized: %q", got)
	}
}

func TestDOTOutput(t *testing.T) {
	got := DOT(sampleNodes, sampleEdges)
	want := "digraph TaskGraph {\n" +
		"  rankdir=LR;\n" +
		"  node [shape=box];\n" +
		"  \"a1b2-c3\" [label=\"Build API\"];\n" +
		"  \"d4e5-f6\" [label=\"Say \\\"hi\\\"\"];\n" +
		"  \"a1b2-c3\" -> \"d4e5-f6\" [label=\"blocks\"];\n" +
		"  \"d4e5-f6\" -> \"a1b2-c3\" [label=\"relates\"];\n" +
		"}\n"
	if got != want {
		t.Errorf("DOT output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDOTEmptyInput(t *testing.T) {
	want := "digraph TaskGraph {\n  rankdir=LR;\n  node [shape=box];\n}\n"
	if got := DOT(nil, nil); got != want {
		t.Errorf("empty DOT = %q, want %q", got, want)
	}
}

func TestExportersAreDeterministic(t *testing.T) {
	m1, m2 := Mermaid(sampleNodes, sampleEdges), Mermaid(sampleNodes, sampleEdges)
	if m1 != m2 {
		t.Error("Mermaid output not deterministic")
	}
	d1, d2 := DOT(sampleNodes, sampleEdges), DOT(sampleNodes, sampleEdges)
	if d1 != d2 {
		t.Error("DOT output not deterministic")
	}
}
