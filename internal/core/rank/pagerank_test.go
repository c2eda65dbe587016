package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agenthands/triage/internal/core/graph"
	"github.com/agenthands/triage/internal/core/model"
)

func buildFixture() *graph.SymptomGraph {
	// Two clusters: respiratory (fever/cough/fatigue, tightly connected) and
	// neuro (headache/nausea/dizziness).
	rows := []model.TrainingRow{
		{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "flu", Symptoms: []string{"fever", "cough"}},
		{Disease: "cold", Symptoms: []string{"cough", "fatigue"}},
		{Disease: "migraine", Symptoms: []string{"headache", "nausea", "dizziness"}},
	}
	return graph.Build(rows, nil)
}

func TestRank_NeverReturnsConfirmed(t *testing.T) {
	g := buildFixture()
	r := NewRanker()

	cases := [][]string{
		nil,
		{"fever"},
		{"fever", "cough"},
		{"headache", "nausea", "dizziness"},
	}
	for _, confirmed := range cases {
		ranked := r.Rank(g, confirmed)
		for _, c := range confirmed {
			assert.NotContains(t, ranked, c)
		}
	}
}

func TestRank_PersonalizationPrefersNeighborhood(t *testing.T) {
	g := buildFixture()
	r := NewRanker()

	ranked := r.Rank(g, []string{"fever"})
	assert.NotEmpty(t, ranked)

	pos := func(s string) int {
		for i, v := range ranked {
			if v == s {
				return i
			}
		}
		return len(ranked)
	}

	// Neighbors of fever should outrank the unrelated neuro cluster.
	assert.Less(t, pos("cough"), pos("headache"))
	assert.Less(t, pos("cough"), pos("nausea"))
	assert.Less(t, pos("fatigue"), pos("dizziness"))
}

func TestRank_UniformWithoutConfirmed(t *testing.T) {
	g := buildFixture()
	r := NewRanker()

	ranked := r.Rank(g, nil)
	assert.Len(t, ranked, g.Len())
	// cough has the highest total co-occurrence weight, so plain PageRank
	// puts it first.
	assert.Equal(t, "cough", ranked[0])
}

func TestRank_EmptyGraph(t *testing.T) {
	r := NewRanker()
	assert.Nil(t, r.Rank(graph.Build(nil, nil), []string{"fever"}))
	assert.Nil(t, r.Rank(nil, nil))
}

func TestRank_ConfirmedNotInGraph(t *testing.T) {
	g := buildFixture()
	r := NewRanker()

	// Unknown confirmed symptom degrades to uniform restart, still ranks.
	ranked := r.Rank(g, []string{"no_such_symptom"})
	assert.Len(t, ranked, g.Len())
}

func TestRank_Deterministic(t *testing.T) {
	g := buildFixture()
	r := NewRanker()

	first := r.Rank(g, []string{"cough"})
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Rank(g, []string{"cough"}))
	}
}
