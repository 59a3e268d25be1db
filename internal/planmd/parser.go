// Package planmd parses structured markdown plan documents.
//
// The format is line-oriented: a `# ` heading names the plan, `INTENT:` sets
// its intent, and each `TASK: <stable-key>` opens a task block whose fields
// are set by `TITLE:`, `FEATURE:`, `AREA:`, `BLOCKED_BY:` and an
// `ACCEPTANCE:` bullet list. See testdata for a worked example.
package planmd

import (
	"os"
	"strings"

	"github.com/danalexilewis/taskgraph/internal/fault"
)

// ParsedTask is one TASK: block from a plan document. StableKey becomes the
// task's external_key on import.
type ParsedTask struct {
	StableKey  string
	Title      string
	FeatureKey string
	Area       string
	BlockedBy  []string
	Acceptance []string
}

// ParsedPlan is the in-memory form of a plan document.
type ParsedPlan struct {
	Title  string
	Intent string
	Tasks  []ParsedTask
}

// ParsePlanFile reads and parses a plan markdown file. The only failure mode
// is FILE_READ_FAILED; a syntactically empty or task-less document is a valid
// parse yielding an empty task list.
func ParsePlanFile(path string) (*ParsedPlan, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI invocation
	if err != nil {
		return nil, fault.Wrap(fault.FileReadFailed, err, "cannot read plan file %s", path)
	}
	return Parse(string(data)), nil
}

// Parse runs the line state machine over a plan document body.
func Parse(doc string) *ParsedPlan {
	plan := &ParsedPlan{}
	var cur *ParsedTask
	inAcceptance := false

	flush := func() {
		// A block without a stable key never acquired an identity; drop it.
		if cur != nil && cur.StableKey != "" {
			plan.Tasks = append(plan.Tasks, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "# "):
			// Last heading wins if repeated.
			plan.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			inAcceptance = false

		case strings.HasPrefix(line, "INTENT:"):
			plan.Intent = strings.TrimSpace(strings.TrimPrefix(line, "INTENT:"))
			inAcceptance = false

		case strings.HasPrefix(trimmed, "TASK:"):
			flush()
			cur = &ParsedTask{StableKey: strings.TrimSpace(strings.TrimPrefix(trimmed, "TASK:"))}
			inAcceptance = false

		case cur != nil && strings.HasPrefix(trimmed, "TITLE:"):
			cur.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "TITLE:"))
			inAcceptance = false

		case cur != nil && strings.HasPrefix(trimmed, "FEATURE:"):
			cur.FeatureKey = strings.TrimSpace(strings.TrimPrefix(trimmed, "FEATURE:"))
			inAcceptance = false

		case cur != nil && strings.HasPrefix(trimmed, "AREA:"):
			cur.Area = strings.TrimSpace(strings.TrimPrefix(trimmed, "AREA:"))
			inAcceptance = false

		case cur != nil && strings.HasPrefix(trimmed, "BLOCKED_BY:"):
			// Repeated BLOCKED_BY lines append, not replace.
			list := strings.TrimSpace(strings.TrimPrefix(trimmed, "BLOCKED_BY:"))
			for _, key := range strings.Split(list, ",") {
				if key = strings.TrimSpace(key); key != "" {
					cur.BlockedBy = append(cur.BlockedBy, key)
				}
			}
			inAcceptance = false

		case cur != nil && strings.HasPrefix(trimmed, "ACCEPTANCE:"):
			inAcceptance = true

		case cur != nil && inAcceptance && strings.HasPrefix(trimmed, "-"):
			item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
			cur.Acceptance = append(cur.Acceptance, item)

		case trimmed == "":
			// Blank lines keep bullet-list mode open.

		default:
			inAcceptance = false
		}
	}
	flush()

	return plan
}
