package graph

import (
	"sort"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/vocab"
)

// Edge kinds.
const (
	KindCooccurrence = "co-occurrence"
	KindHierarchy    = "hierarchy"
)

// Hierarchy overlay weights: general->specific vs the weak reverse direction.
const (
	parentToChildWeight = 2.0
	childToParentWeight = 0.5
)

type Edge struct {
	Weight float64 `json:"weight"`
	Kind   string  `json:"kind"`
}

// SymptomGraph is a directed weighted graph over canonical symptom tokens.
// It is built once at startup and read-only afterwards, so concurrent readers
// need no locking.
type SymptomGraph struct {
	adj map[string]map[string]Edge
}

// Build constructs the graph from the training corpus plus the curated
// hierarchy table. Co-occurrence edges are symmetric with weight equal to the
// joint row count; hierarchy edges are directed and asymmetric. Row order does
// not affect the result, duplicate rows do (corpus frequency is signal).
func Build(rows []model.TrainingRow, hierarchy []config.HierarchyEdge) *SymptomGraph {
	g := &SymptomGraph{adj: make(map[string]map[string]Edge)}

	for _, row := range rows {
		symptoms := vocab.NormalizeAll(row.Symptoms)
		for _, s := range symptoms {
			g.ensureNode(s)
		}
		for i := 0; i < len(symptoms); i++ {
			for j := i + 1; j < len(symptoms); j++ {
				g.bump(symptoms[i], symptoms[j])
				g.bump(symptoms[j], symptoms[i])
			}
		}
	}

	// Hierarchy overlay. Creates missing nodes so curated parents like "pain"
	// exist even when the corpus never names them directly.
	for _, h := range hierarchy {
		parent := vocab.Normalize(h.Parent)
		if parent == "" {
			continue
		}
		g.ensureNode(parent)
		for _, c := range h.Children {
			child := vocab.Normalize(c)
			if child == "" {
				continue
			}
			g.ensureNode(child)
			g.adj[parent][child] = Edge{Weight: parentToChildWeight, Kind: KindHierarchy}
			g.adj[child][parent] = Edge{Weight: childToParentWeight, Kind: KindHierarchy}
		}
	}

	return g
}

func (g *SymptomGraph) ensureNode(s string) {
	if _, ok := g.adj[s]; !ok {
		g.adj[s] = make(map[string]Edge)
	}
}

func (g *SymptomGraph) bump(from, to string) {
	e := g.adj[from][to]
	e.Weight++
	e.Kind = KindCooccurrence
	g.adj[from][to] = e
}

// EnsureNodes adds isolated nodes for any symptom missing from the graph.
// Used once after classifier training so the classifier vocabulary is always
// a subset of the graph nodes; not called again after startup.
func (g *SymptomGraph) EnsureNodes(symptoms []string) {
	for _, s := range symptoms {
		n := vocab.Normalize(s)
		if n != "" {
			g.ensureNode(n)
		}
	}
}

// Nodes returns every symptom in the graph, sorted for determinism.
func (g *SymptomGraph) Nodes() []string {
	nodes := make([]string, 0, len(g.adj))
	for s := range g.adj {
		nodes = append(nodes, s)
	}
	sort.Strings(nodes)
	return nodes
}

// Neighbors returns the outgoing edges of a symptom. The returned map is a
// copy; callers may not mutate the graph through it.
func (g *SymptomGraph) Neighbors(s string) map[string]Edge {
	edges, ok := g.adj[s]
	if !ok {
		return nil
	}
	out := make(map[string]Edge, len(edges))
	for k, v := range edges {
		out[k] = v
	}
	return out
}

// Weight returns the weight of the edge from a to b, or 0 if absent.
func (g *SymptomGraph) Weight(a, b string) float64 {
	return g.adj[a][b].Weight
}

func (g *SymptomGraph) Has(s string) bool {
	_, ok := g.adj[s]
	return ok
}

func (g *SymptomGraph) Len() int { return len(g.adj) }

func (g *SymptomGraph) Empty() bool { return len(g.adj) == 0 }
