// Package graph renders a loaded node/edge list as Mermaid or Graphviz DOT
// text. Both renderers are pure: identical input yields byte-identical
// output, and no internal sorting happens, so callers control ordering via
// the upstream query.
package graph

import (
	"fmt"
	"strings"

	"github.com/danalexilewis/taskgraph/internal/types"
)

// Mermaid renders a `graph TD` flowchart. Node ids are sanitized down to
// [A-Za-z0-9] because Mermaid chokes on most punctuation; labels are emitted
// inside quoted brackets. blocks edges render as `-->`, relates as `---`, and
// unrecognized types are silently omitted.
func Mermaid(nodes []types.GraphNode, edges []types.GraphEdge) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", mermaidID(n.ID), escapeMermaidLabel(n.Label))
	}
	for _, e := range edges {
		var arrow string
		switch e.Type {
		case types.EdgeBlocks:
			arrow = "-->"
		case types.EdgeRelates:
			arrow = "---"
		default:
			continue
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", mermaidID(e.From), arrow, mermaidID(e.To))
	}
	return sb.String()
}

// DOT renders a Graphviz digraph. Node ids are used verbatim inside quotes;
// they are quote-safe by construction (UUIDs), and labels are escaped.
func DOT(nodes []types.GraphNode, edges []types.GraphEdge) string {
	var sb strings.Builder
	sb.WriteString("digraph TaskGraph {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  \"%s\" [label=\"%s\"];\n", n.ID, escapeDOT(n.Label))
	}
	for _, e := range edges {
		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\" [label=\"%s\"];\n", e.From, e.To, e.Type)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// mermaidID strips every character outside [A-Za-z0-9] from the raw id.
func mermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escapeMermaidLabel(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	return strings.ReplaceAll(label, `"`, `\"`)
}

func escapeDOT(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	return strings.ReplaceAll(label, `"`, `\"`)
}
