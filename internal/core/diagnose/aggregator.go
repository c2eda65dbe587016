package diagnose

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/agenthands/triage/internal/core/common"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/vocab"
	"github.com/agenthands/triage/internal/llm"
)

// Disclaimer is appended to every diagnosis report, no exceptions.
const Disclaimer = "This assessment is generated by software and is not a medical diagnosis. " +
	"Always consult a qualified healthcare professional about your symptoms."

// StatisticalClassifier is the slice of the trained model the aggregator uses
// for its independent second opinion.
type StatisticalClassifier interface {
	Classify(symptoms []string) ([]model.Prediction, error)
}

// Aggregator merges the advisory source's refined list (when one is
// configured and behaves) with the classifier's statistical view. The
// advisory path degrades through a keyword heuristic down to generic
// placeholders; the caller never receives an empty result list.
type Aggregator struct {
	Advisory       llm.AdvisoryClient
	Classifier     StatisticalClassifier
	Vocabulary     []string
	FuzzyThreshold int
	Timeout        time.Duration
}

func NewAggregator(advisory llm.AdvisoryClient, clf StatisticalClassifier, vocabulary []string, threshold int) *Aggregator {
	if threshold <= 0 {
		threshold = vocab.DefaultThreshold
	}
	return &Aggregator{
		Advisory:       advisory,
		Classifier:     clf,
		Vocabulary:     vocabulary,
		FuzzyThreshold: threshold,
	}
}

// advisoryEntry is the strict response schema requested from the advisory
// source. Confidence may legitimately arrive as a 0-1 fraction or as a
// percentage; validation sorts that out.
type advisoryEntry struct {
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	Severity        string   `json:"severity"`
	SymptomCoverage float64  `json:"symptom_coverage"`
	KeySymptoms     []string `json:"key_symptoms"`
	Rationale       string   `json:"rationale"`
}

// Diagnose produces the full report for a confirmed-symptom set. The only
// hard failure is zero usable symptoms; everything else degrades locally.
func (a *Aggregator) Diagnose(ctx context.Context, symptoms []string, background string) (*model.DiagnosisReport, error) {
	usable := a.resolve(symptoms)
	if len(usable) == 0 {
		return nil, model.ErrInsufficientSymptoms
	}

	report := &model.DiagnosisReport{Disclaimer: Disclaimer}

	results, err := a.advisoryResults(ctx, usable, background)
	if err != nil {
		log.Printf("advisory path degraded: %v", err)
		results = keywordFallback(usable)
		if len(results) == 0 {
			results = placeholderResults()
		}
	} else {
		report.AdvisoryAvailable = true
	}
	report.Results = results

	// The statistical view is computed regardless of the advisory outcome.
	preds, err := a.Classifier.Classify(usable)
	if err != nil {
		log.Printf("statistical path unavailable: %v", err)
	}
	report.Statistical = preds

	if !report.AdvisoryAvailable && len(report.Statistical) == 0 {
		// Both paths empty-handed: say so explicitly instead of presenting
		// placeholders as a finding.
		report.Results = []model.DiagnosisResult{{
			Disease:     "diagnosis unavailable",
			Severity:    model.SeverityLow,
			Explanation: "Neither the advisory source nor the statistical model could assess these symptoms.",
		}}
	}

	return report, nil
}

// resolve normalizes and fuzzy-matches the raw inputs against the known
// vocabulary. Unmatched mentions are kept in normalized form rather than
// discarded; they still carry signal for the advisory path.
func (a *Aggregator) resolve(symptoms []string) []string {
	seen := make(map[string]bool, len(symptoms))
	var out []string
	for _, raw := range symptoms {
		s, ok := vocab.Match(raw, a.Vocabulary, a.FuzzyThreshold)
		if !ok {
			s = vocab.Normalize(raw)
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (a *Aggregator) advisoryResults(ctx context.Context, symptoms []string, background string) ([]model.DiagnosisResult, error) {
	if a.Advisory == nil {
		return nil, fmt.Errorf("%w: no advisory source configured", model.ErrAdvisoryUnavailable)
	}

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := a.Advisory.Generate(ctx, buildPrompt(symptoms, background))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAdvisoryUnavailable, err)
	}

	entries, err := common.ParseJSONList[advisoryEntry](response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAdvisoryUnavailable, err)
	}

	var results []model.DiagnosisResult
	for _, e := range entries {
		if strings.TrimSpace(e.Disease) == "" {
			continue
		}
		results = append(results, sanitize(e))
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty advisory result", model.ErrAdvisoryUnavailable)
	}
	return results, nil
}

// sanitize clamps every advisory field into its allowed range.
func sanitize(e advisoryEntry) model.DiagnosisResult {
	confidence := e.Confidence
	if confidence <= 1.0 {
		confidence *= 100
	}
	confidence = clamp(confidence, 0, 100)

	severity := strings.ToLower(strings.TrimSpace(e.Severity))
	switch severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
	default:
		severity = model.SeverityMedium
	}

	return model.DiagnosisResult{
		Disease:         strings.TrimSpace(e.Disease),
		Confidence:      confidence,
		Severity:        severity,
		SymptomCoverage: clamp(e.SymptomCoverage, 0, 100),
		KeySymptoms:     vocab.NormalizeAll(e.KeySymptoms),
		Explanation:     strings.TrimSpace(e.Rationale),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func buildPrompt(symptoms []string, background string) string {
	var b strings.Builder
	b.WriteString("You are assisting a medical triage system. Given the patient's confirmed symptoms")
	if background != "" {
		b.WriteString(" and background")
	}
	b.WriteString(", list the most likely conditions.\n\nSymptoms:\n")
	for _, s := range symptoms {
		fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(s, "_", " "))
	}
	if background != "" {
		fmt.Fprintf(&b, "\nBackground:\n%s\n", background)
	}
	b.WriteString(`
Respond with ONLY a JSON array, up to 3 entries, each shaped exactly like:
[
  {
    "disease": "condition name",
    "confidence": 0.0,
    "severity": "low|medium|high",
    "symptom_coverage": 0,
    "key_symptoms": ["symptom"],
    "rationale": "one short sentence"
  }
]
confidence is a fraction between 0 and 1; symptom_coverage is a percentage between 0 and 100.`)
	return b.String()
}
