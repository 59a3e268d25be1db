package store

import (
	"context"

	"github.com/danalexilewis/taskgraph/internal/backend"
	"github.com/danalexilewis/taskgraph/internal/fault"
	"github.com/danalexilewis/taskgraph/internal/rules"
	"github.com/danalexilewis/taskgraph/internal/sqlgen"
	"github.com/danalexilewis/taskgraph/internal/types"
)

// EdgeExists reports whether the exact (from, to, type) triple is present.
func (s *Store) EdgeExists(ctx context.Context, from, to string, typ types.EdgeType) (bool, error) {
	n, err := s.b.Count(ctx, "edge", map[string]interface{}{
		"from_task_id": from,
		"to_task_id":   to,
		"type":         string(typ),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddEdge inserts a new edge after existence and (for blocks edges) cycle
// checks. Edges are immutable; a duplicate triple fails with EDGE_EXISTS.
// checkCycle is false only on the importer path, where blockers come from a
// source document assumed acyclic by construction.
func (s *Store) AddEdge(ctx context.Context, edge types.Edge, checkCycle bool) error {
	if !edge.Type.IsValid() {
		return fault.New(fault.ValidationFailed, "invalid edge type: %s", edge.Type)
	}
	if edge.FromTaskID == "" || edge.ToTaskID == "" {
		return fault.New(fault.ValidationFailed, "edge requires both endpoints")
	}
	exists, err := s.EdgeExists(ctx, edge.FromTaskID, edge.ToTaskID, edge.Type)
	if err != nil {
		return err
	}
	if exists {
		return fault.New(fault.EdgeExists, "edge %s -> %s (%s) already exists",
			edge.FromTaskID, edge.ToTaskID, edge.Type)
	}
	if checkCycle && edge.Type.AffectsRunnability() {
		existing, err := s.ListBlocksEdges(ctx)
		if err != nil {
			return err
		}
		if err := rules.CheckNoBlockerCycle(edge.FromTaskID, edge.ToTaskID, existing); err != nil {
			return err
		}
	}
	cols := map[string]interface{}{
		"from_task_id": edge.FromTaskID,
		"to_task_id":   edge.ToTaskID,
		"type":         string(edge.Type),
	}
	if edge.Reason != "" {
		cols["reason"] = edge.Reason
	}
	return s.b.Insert(ctx, "edge", cols)
}

// ListBlocksEdges loads every blocks edge. The cycle check needs the whole
// blocks-subgraph, not just one plan's slice of it.
func (s *Store) ListBlocksEdges(ctx context.Context) ([]types.Edge, error) {
	rows, err := s.b.Select(ctx, "edge", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"type": string(types.EdgeBlocks)},
		OrderBy: "`from_task_id` ASC, `to_task_id` ASC",
	})
	if err != nil {
		return nil, err
	}
	return scanEdges(rows), nil
}

// ListEdgesForTask returns every edge touching the task, incoming and
// outgoing, in a stable order.
func (s *Store) ListEdgesForTask(ctx context.Context, taskID string) ([]types.Edge, error) {
	out, err := s.b.Select(ctx, "edge", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"from_task_id": taskID},
		OrderBy: "`to_task_id` ASC, `type` ASC",
	})
	if err != nil {
		return nil, err
	}
	in, err := s.b.Select(ctx, "edge", sqlgen.SelectOpts{
		Where:   map[string]interface{}{"to_task_id": taskID},
		OrderBy: "`from_task_id` ASC, `type` ASC",
	})
	if err != nil {
		return nil, err
	}
	edges := scanEdges(out)
	for _, e := range scanEdges(in) {
		if e.FromTaskID == taskID {
			// Self-referential rows already came back in the outgoing set.
			continue
		}
		edges = append(edges, e)
	}
	return edges, nil
}

// PlanGraph loads a plan's tasks and the edges between them in the node/edge
// shape the exporters consume. Ordering is fixed by the queries so exports
// are reproducible.
func (s *Store) PlanGraph(ctx context.Context, planID string) ([]types.GraphNode, []types.GraphEdge, error) {
	if _, err := s.GetPlan(ctx, planID); err != nil {
		return nil, nil, err
	}
	tasks, err := s.ListTasks(ctx, types.TaskFilter{PlanID: planID})
	if err != nil {
		return nil, nil, err
	}
	nodes := make([]types.GraphNode, 0, len(tasks))
	inPlan := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, types.GraphNode{ID: t.ID, Label: t.Title, Status: t.Status})
		inPlan[t.ID] = true
	}
	rows, err := s.b.Select(ctx, "edge", sqlgen.SelectOpts{
		OrderBy: "`from_task_id` ASC, `to_task_id` ASC, `type` ASC",
	})
	if err != nil {
		return nil, nil, err
	}
	var edges []types.GraphEdge
	for _, e := range scanEdges(rows) {
		if !inPlan[e.FromTaskID] || !inPlan[e.ToTaskID] {
			continue
		}
		edges = append(edges, types.GraphEdge{From: e.FromTaskID, To: e.ToTaskID, Type: e.Type})
	}
	return nodes, edges, nil
}

func scanEdges(rows backend.Rows) []types.Edge {
	edges := make([]types.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, types.Edge{
			FromTaskID: rowString(row, "from_task_id"),
			ToTaskID:   rowString(row, "to_task_id"),
			Type:       types.EdgeType(rowString(row, "type")),
			Reason:     rowString(row, "reason"),
		})
	}
	return edges
}
