// Package importer reconciles a parsed markdown plan against existing rows.
//
// The reconciliation is keyed by external_key: a task keeps its identity
// across repeated imports of an evolving source document, so running the same
// import twice is a no-op apart from field convergence. Blocker references
// are resolved against the key map loaded before the batch touched anything;
// a key introduced by the batch itself therefore does not resolve until the
// next run. Documents are expected to list blockers after the tasks they
// name (see DESIGN.md).
package importer

import (
	"context"
	"fmt"

	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/planmd"
	"github.com/danalexilewis/taskgraph/internal/store"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// Result summarizes one import batch.
type Result struct {
	PlanID   string   `json:"plan_id"`
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Edges    int      `json:"edges_added"`
	Warnings []string `json:"warnings,omitempty"`
}

// UpsertTasksAndEdges merges parsed tasks into the plan and links their
// blockers, committing once at the end of the batch.
//
// New tasks (stable key absent from the pre-load map) are inserted with a
// created event; existing tasks have title, feature_key, area, and
// acceptance converged to the parsed values. Blocks edges are inserted
// idempotently; no cycle check runs here because import-sourced blockers are
// taken to be acyclic by construction of the document.
func UpsertTasksAndEdges(ctx context.Context, st *store.Store, planID string, parsed []planmd.ParsedTask, actor types.Owner) (*Result, error) {
	keys, err := st.ExternalKeyMap(ctx, planID)
	if err != nil {
		return nil, err
	}
	res := &Result{PlanID: planID}

	// Task ids per parsed index; updated rows resolve via the map, inserted
	// rows via the freshly generated id.
	ids := make([]string, len(parsed))
	for i, pt := range parsed {
		if id, ok := keys[pt.StableKey]; ok {
			fields := map[string]interface{}{
				"title":       pt.Title,
				"feature_key": pt.FeatureKey,
				"area":        pt.Area,
			}
			if len(pt.Acceptance) > 0 {
				fields["acceptance"] = pt.Acceptance
			} else {
				fields["acceptance"] = nil
			}
			if err := st.UpdateTaskFields(ctx, id, fields); err != nil {
				return nil, err
			}
			ids[i] = id
			res.Updated++
			continue
		}
		task := &types.Task{
			PlanID:      planID,
			FeatureKey:  pt.FeatureKey,
			Title:       pt.Title,
			Acceptance:  pt.Acceptance,
			Area:        pt.Area,
			ExternalKey: pt.StableKey,
		}
		if err := st.CreateTask(ctx, task, actor); err != nil {
			return nil, err
		}
		ids[i] = task.ID
		res.Imported++
	}

	for i, pt := range parsed {
		for _, blockerKey := range pt.BlockedBy {
			blockerID, ok := keys[blockerKey]
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"task %q: blocker %q not found; listed before it was imported?", pt.StableKey, blockerKey))
				continue
			}
			err := st.AddEdge(ctx, types.Edge{
				FromTaskID: blockerID,
				ToTaskID:   ids[i],
				Type:       types.EdgeBlocks,
			}, false)
			if err != nil {
				if fault.Is(err, fault.EdgeExists) {
					continue
				}
				return nil, err
			}
			res.Edges++
		}
	}

	message := fmt.Sprintf("import plan %s: %d new, %d updated, %d edge(s)",
		planID, res.Imported, res.Updated, res.Edges)
	if err := st.Commit(ctx, message); err != nil {
		return nil, err
	}
	return res, nil
}

// ImportFile parses a markdown plan and merges it. A plan already imported
// from the same path is reused; otherwise a new active plan is created with
// the document's title and intent.
func ImportFile(ctx context.Context, st *store.Store, path string, actor types.Owner) (*Result, error) {
	parsed, err := planmd.ParsePlanFile(path)
	if err != nil {
		return nil, err
	}
	plan, err := st.FindPlanBySourcePath(ctx, path)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		title := parsed.Title
		if title == "" {
			title = path
		}
		plan = &types.Plan{
			Title:      title,
			Intent:     parsed.Intent,
			Status:     types.PlanActive,
			SourcePath: path,
		}
		if err := st.CreatePlan(ctx, plan); err != nil {
			return nil, err
		}
	} else if parsed.Title != "" && (plan.Title != parsed.Title || plan.Intent != parsed.Intent) {
		err := st.UpdatePlanSource(ctx, plan.ID, parsed.Title, parsed.Intent)
		if err != nil {
			return nil, err
		}
	}
	return UpsertTasksAndEdges(ctx, st, plan.ID, parsed.Tasks, actor)
}
