package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "high_fever", Normalize("  High Fever "))
	assert.Equal(t, "chest_pain", Normalize("chest   pain"))
	assert.Equal(t, "", Normalize("   "))
	// Typo/OCR corrections apply before underscoring.
	assert.Equal(t, "fever", Normalize("Feaver"))
	assert.Equal(t, "headache", Normalize("head ache"))
}

func TestNormalize_Idempotent(t *testing.T) {
	canonical := []string{"fever", "high_fever", "chest_pain", "loss_of_appetite"}
	for _, s := range canonical {
		assert.Equal(t, s, Normalize(s))
	}
}

func TestNormalizeAll_DropsBlanksAndDuplicates(t *testing.T) {
	got := NormalizeAll([]string{"Fever", " fever ", "", "cough", "FEVER"})
	assert.Equal(t, []string{"fever", "cough"}, got)
}

func TestMatch(t *testing.T) {
	vocabulary := []string{"fever", "cough", "fatigue", "headache", "chest_pain"}

	// Exact membership after normalization.
	m, ok := Match("Fever", vocabulary, DefaultThreshold)
	assert.True(t, ok)
	assert.Equal(t, "fever", m)

	// Known misspelling resolves through the correction table.
	m, ok = Match("feaver", vocabulary, DefaultThreshold)
	assert.True(t, ok)
	assert.Equal(t, "fever", m)

	// Near miss within edit-similarity threshold.
	m, ok = Match("coughe", vocabulary, 80)
	assert.True(t, ok)
	assert.Equal(t, "cough", m)

	// Nonsense stays unmatched.
	_, ok = Match("xyzxyz", vocabulary, DefaultThreshold)
	assert.False(t, ok)

	// Blank input never matches and never panics.
	_, ok = Match("   ", vocabulary, DefaultThreshold)
	assert.False(t, ok)

	// Empty vocabulary is fine too.
	_, ok = Match("fever", nil, DefaultThreshold)
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 100, Similarity("fever", "fever"))
	assert.Equal(t, 0, Similarity("abc", "xyz"))
	assert.Greater(t, Similarity("cough", "coughe"), 80)
}
