package vocab

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum 0-100 similarity for a fuzzy match.
const DefaultThreshold = 85

// corrections maps frequent typos and OCR misreads seen in uploaded reports
// to their canonical token. Applied after lowercasing, before underscoring.
var corrections = map[string]string{
	"feaver":    "fever",
	"fevar":     "fever",
	"cofe":      "cough",
	"coughing":  "cough",
	"headach":   "headache",
	"head ache": "headache",
	"vomitting": "vomiting",
	"nausia":    "nausea",
	"diarrhoea": "diarrhea",
	"tiredness": "fatigue",
	"dizzyness": "dizziness",
}

// Normalize canonicalizes a free-text symptom mention: lowercase, trim,
// internal whitespace collapsed to underscores. Idempotent; returns "" for
// blank input.
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	if fixed, ok := corrections[s]; ok {
		s = fixed
	}
	return strings.ReplaceAll(s, " ", "_")
}

// NormalizeAll normalizes a batch, dropping blanks and duplicates while
// preserving first-seen order.
func NormalizeAll(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	var out []string
	for _, t := range texts {
		n := Normalize(t)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Match resolves free text against the vocabulary. Exact membership wins;
// otherwise the closest entry by edit similarity is accepted iff its score
// reaches the threshold. Returns ("", false) for blank input or no match.
func Match(freeText string, vocabulary []string, threshold int) (string, bool) {
	candidate := Normalize(freeText)
	if candidate == "" {
		return "", false
	}

	best := ""
	bestScore := -1
	for _, entry := range vocabulary {
		if entry == candidate {
			return entry, true
		}
		score := Similarity(candidate, entry)
		if score > bestScore {
			best = entry
			bestScore = score
		}
	}

	if bestScore >= threshold && best != "" {
		return best, true
	}
	return "", false
}

// Similarity scores two strings on a 0-100 scale from their edit distance.
func Similarity(a, b string) int {
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 100 - (100*dist+longest/2)/longest
	if score < 0 {
		score = 0
	}
	return score
}
