package rank

import (
	"math"
	"sort"

	"github.com/agenthands/triage/internal/core/graph"
)

// Ranker scores not-yet-asked symptoms by a personalized PageRank over the
// symptom graph, biased toward the neighborhood of already-confirmed symptoms.
type Ranker struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
	Boost         float64
}

func NewRanker() *Ranker {
	return &Ranker{
		Damping:       0.85,
		Tolerance:     1e-6,
		MaxIterations: 100,
		Boost:         3.0,
	}
}

// Rank returns all graph symptoms ordered by descending importance for this
// patient, with confirmed symptoms filtered out. An empty graph yields an
// empty ranking; the interview falls back to vocabulary order in that case.
func (r *Ranker) Rank(g *graph.SymptomGraph, confirmed []string) []string {
	if g == nil || g.Empty() {
		return nil
	}

	nodes := g.Nodes()
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	confirmedSet := make(map[string]bool, len(confirmed))
	for _, c := range confirmed {
		confirmedSet[c] = true
	}

	weights := r.boostedWeights(g, nodes, confirmedSet)
	restart := r.restartVector(g, nodes, index, confirmedSet)
	scores := powerIterate(nodes, index, weights, restart, r.Damping, r.Tolerance, r.MaxIterations)

	ranked := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if !confirmedSet[n] {
			ranked = append(ranked, n)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[index[ranked[i]]], scores[index[ranked[j]]]
		if si != sj {
			return si > sj
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}

// boostedWeights copies the outgoing edge weights of every node, multiplying
// edges out of confirmed symptoms by the boost factor. The shared graph is
// never touched.
func (r *Ranker) boostedWeights(g *graph.SymptomGraph, nodes []string, confirmed map[string]bool) []map[string]float64 {
	weights := make([]map[string]float64, len(nodes))
	for i, n := range nodes {
		edges := g.Neighbors(n)
		w := make(map[string]float64, len(edges))
		factor := 1.0
		if confirmed[n] {
			factor = r.Boost
		}
		for to, e := range edges {
			w[to] = e.Weight * factor
		}
		weights[i] = w
	}
	return weights
}

// restartVector builds the teleportation distribution: a uniform 0.1 floor
// plus 0.9 split across the neighbor sets of confirmed symptoms, renormalized.
// With nothing confirmed the distribution is uniform.
func (r *Ranker) restartVector(g *graph.SymptomGraph, nodes []string, index map[string]int, confirmed map[string]bool) []float64 {
	n := len(nodes)
	restart := make([]float64, n)

	hasPersonalization := false
	for c := range confirmed {
		if g.Has(c) && len(g.Neighbors(c)) > 0 {
			hasPersonalization = true
			break
		}
	}
	if !hasPersonalization {
		for i := range restart {
			restart[i] = 1.0 / float64(n)
		}
		return restart
	}

	for i := range restart {
		restart[i] = 0.1 / float64(n)
	}
	for c := range confirmed {
		neighbors := g.Neighbors(c)
		if len(neighbors) == 0 {
			continue
		}
		share := 0.9 / float64(len(neighbors))
		for to := range neighbors {
			restart[index[to]] += share
		}
	}

	sum := 0.0
	for _, v := range restart {
		sum += v
	}
	for i := range restart {
		restart[i] /= sum
	}
	return restart
}

// powerIterate runs the standard PageRank iteration with the restart vector
// as the teleportation distribution. Dangling mass is redistributed through
// the restart vector so scores keep summing to 1.
func powerIterate(nodes []string, index map[string]int, weights []map[string]float64, restart []float64, damping, tolerance float64, maxIter int) []float64 {
	n := len(nodes)
	scores := make([]float64, n)
	copy(scores, restart)

	outSums := make([]float64, n)
	for i, w := range weights {
		for _, v := range w {
			outSums[i] += v
		}
	}

	next := make([]float64, n)
	for iter := 0; iter < maxIter; iter++ {
		dangling := 0.0
		for i := range next {
			next[i] = 0
		}
		for i := range nodes {
			if outSums[i] == 0 {
				dangling += scores[i]
				continue
			}
			share := scores[i] / outSums[i]
			for to, w := range weights[i] {
				next[index[to]] += share * w
			}
		}

		delta := 0.0
		for i := range next {
			v := damping*(next[i]+dangling*restart[i]) + (1-damping)*restart[i]
			delta += math.Abs(v - scores[i])
			next[i] = v
		}
		scores, next = next, scores

		if delta < tolerance {
			break
		}
	}
	return scores
}
