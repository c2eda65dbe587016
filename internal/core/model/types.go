package model

// TrainingRow is one record of the disease/symptom corpus: a single disease
// label with the symptoms observed alongside it. Symptoms are normalized
// before the row enters the engine.
type TrainingRow struct {
	Disease  string   `json:"disease"`
	Symptoms []string `json:"symptoms"`
}

// Severity levels allowed on a diagnosis result.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// DiagnosisResult is one ranked entry of a differential diagnosis.
// Confidence and SymptomCoverage are percentages in [0,100].
type DiagnosisResult struct {
	Disease         string   `json:"disease"`
	Confidence      float64  `json:"confidence"`
	Severity        string   `json:"severity"`
	SymptomCoverage float64  `json:"symptom_coverage"`
	KeySymptoms     []string `json:"key_symptoms,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
}

// Prediction is a single classifier output: disease plus confidence percent.
type Prediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// DiagnosisReport is what the aggregator hands back to the caller: the
// refined result list, the classifier's independent view, and the disclaimer.
type DiagnosisReport struct {
	Results           []DiagnosisResult `json:"results"`
	Statistical       []Prediction      `json:"statistical,omitempty"`
	AdvisoryAvailable bool              `json:"advisory_available"`
	Disclaimer        string            `json:"disclaimer"`
}

// Question is the next thing the interview wants to know. Terminal turns carry
// the final results instead of a symptom.
type Question struct {
	Symptom  string       `json:"symptom,omitempty"`
	Text     string       `json:"text"`
	Terminal bool         `json:"terminal"`
	Results  []Prediction `json:"results,omitempty"`
}
