package driver

import (
	"context"
	"fmt"

	"github.com/agenthands/triage/internal/core/graph"
)

// ExportGraph mirrors the in-memory symptom graph into the backing store so
// it can be inspected with Cypher. The export is idempotent: nodes and edges
// are MERGEd, edge weights overwritten.
func ExportGraph(ctx context.Context, d GraphDriver, g *graph.SymptomGraph) error {
	if g == nil || g.Empty() {
		return nil
	}

	nodes := g.Nodes()
	for _, name := range nodes {
		_, err := d.ExecuteQuery(ctx, SaveSymptomNodeQuery, map[string]interface{}{
			"name": name,
		})
		if err != nil {
			return fmt.Errorf("failed to save symptom node %q: %w", name, err)
		}
	}

	for _, source := range nodes {
		for target, edge := range g.Neighbors(source) {
			_, err := d.ExecuteQuery(ctx, SaveRelationQuery, map[string]interface{}{
				"source": source,
				"target": target,
				"kind":   edge.Kind,
				"weight": edge.Weight,
			})
			if err != nil {
				return fmt.Errorf("failed to save relation %s->%s: %w", source, target, err)
			}
		}
	}

	return d.BuildIndices(ctx)
}
