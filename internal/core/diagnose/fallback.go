package diagnose

import (
	"sort"

	"github.com/agenthands/triage/internal/core/model"
)

// fallbackCondition is one entry of the short curated list used when the
// advisory source is down or returns garbage.
type fallbackCondition struct {
	disease  string
	severity string
	keywords []string
}

var fallbackConditions = []fallbackCondition{
	{disease: "influenza", severity: model.SeverityMedium,
		keywords: []string{"fever", "cough", "fatigue", "body_aches", "chills"}},
	{disease: "common cold", severity: model.SeverityLow,
		keywords: []string{"cough", "runny_nose", "sneezing", "sore_throat", "congestion"}},
	{disease: "migraine", severity: model.SeverityMedium,
		keywords: []string{"headache", "nausea", "light_sensitivity", "dizziness"}},
	{disease: "gastroenteritis", severity: model.SeverityMedium,
		keywords: []string{"nausea", "vomiting", "diarrhea", "abdominal_pain", "fever"}},
	{disease: "allergic reaction", severity: model.SeverityMedium,
		keywords: []string{"skin_rash", "itching", "sneezing", "swelling", "watery_eyes"}},
	{disease: "pneumonia", severity: model.SeverityHigh,
		keywords: []string{"cough", "fever", "chest_pain", "shortness_of_breath", "fatigue"}},
}

// keywordFallback scores each curated condition by how many of its keywords
// appear among the patient's symptoms, rapid-triage style. Conditions with no
// overlap are dropped; at most three are returned.
func keywordFallback(symptoms []string) []model.DiagnosisResult {
	have := make(map[string]bool, len(symptoms))
	for _, s := range symptoms {
		have[s] = true
	}

	var results []model.DiagnosisResult
	for _, c := range fallbackConditions {
		var matched []string
		for _, k := range c.keywords {
			if have[k] {
				matched = append(matched, k)
			}
		}
		if len(matched) == 0 {
			continue
		}
		score := float64(len(matched)) / float64(len(c.keywords))
		results = append(results, model.DiagnosisResult{
			Disease:         c.disease,
			Confidence:      clamp(score*100, 0, 100),
			Severity:        c.severity,
			SymptomCoverage: clamp(float64(len(matched))/float64(len(symptoms))*100, 0, 100),
			KeySymptoms:     matched,
			Explanation:     "Matched against the built-in condition list while the advisory source was unavailable.",
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Disease < results[j].Disease
	})
	if len(results) > 3 {
		results = results[:3]
	}
	return results
}

// placeholderResults is the very last resort: the caller must never see an
// empty list.
func placeholderResults() []model.DiagnosisResult {
	return []model.DiagnosisResult{
		{
			Disease:     "nonspecific viral illness",
			Confidence:  20,
			Severity:    model.SeverityLow,
			Explanation: "Symptoms were too nonspecific for a closer match.",
		},
		{
			Disease:     "general fatigue or stress",
			Confidence:  15,
			Severity:    model.SeverityLow,
			Explanation: "Consider rest and monitoring; seek care if symptoms worsen.",
		},
	}
}
