package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core/classifier"
	"github.com/agenthands/triage/internal/core/diagnose"
	"github.com/agenthands/triage/internal/core/graph"
	"github.com/agenthands/triage/internal/core/interview"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/rank"
	"github.com/agenthands/triage/internal/core/vocab"
	"github.com/agenthands/triage/internal/llm"
)

// Engine wires the immutable artifacts (symptom graph, trained classifier)
// to the per-session interview machinery and the diagnosis aggregator. The
// graph and model are read-only after construction; sessions carry all
// mutable state and are serialized by the store.
type Engine struct {
	Graph      *graph.SymptomGraph
	Model      *classifier.Model
	Machine    *interview.Machine
	Store      *interview.Store
	Aggregator *diagnose.Aggregator

	fuzzyThreshold int
}

// NewEngine builds the runtime from training rows plus config. The advisory
// client may be nil; the engine then runs on the statistical path alone.
func NewEngine(cfg *config.Config, rows []model.TrainingRow, advisory llm.AdvisoryClient) (*Engine, error) {
	m, err := classifier.LoadOrTrain(cfg.Data.ModelPath, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare classifier: %w", err)
	}

	g := graph.Build(rows, cfg.Hierarchy)
	// Classifier vocabulary is always a subset of the graph nodes.
	g.EnsureNodes(m.Vocabulary)

	machine := interview.NewMachine(g, rank.NewRanker(), m, m.Vocabulary)
	machine.MaxConfirmed = cfg.Interview.MaxConfirmed
	machine.MaxQuestions = cfg.Interview.MaxQuestions

	agg := diagnose.NewAggregator(advisory, m, m.Vocabulary, cfg.Interview.FuzzyThreshold)
	agg.Timeout = cfg.Advisory.Timeout()

	return &Engine{
		Graph:          g,
		Model:          m,
		Machine:        machine,
		Store:          interview.NewStore(),
		Aggregator:     agg,
		fuzzyThreshold: cfg.Interview.FuzzyThreshold,
	}, nil
}

// StartInterview opens a session seeded with the patient's initial
// complaints and returns the first follow-up question.
func (e *Engine) StartInterview(sessionID string, initialSymptoms []string) (model.Question, error) {
	if sessionID == "" {
		return model.Question{}, model.ErrSessionNotFound
	}

	e.Store.Create(sessionID)

	var question model.Question
	err := e.Store.With(sessionID, func(sess *interview.Session) error {
		for _, raw := range initialSymptoms {
			e.Machine.Confirm(sess, e.resolveSymptom(raw))
		}
		question = e.Machine.NextQuestion(sess)
		return nil
	})
	return question, err
}

// AnswerAndAdvance consumes one patient reply, free text or yes/no, and
// returns the next question or the terminal results.
func (e *Engine) AnswerAndAdvance(ctx context.Context, sessionID string, input string) (model.Question, error) {
	var question model.Question
	err := e.Store.With(sessionID, func(sess *interview.Session) error {
		if affirmed, ok := parseYesNo(input); ok {
			e.Machine.Answer(sess, affirmed)
		} else if symptom := e.resolveSymptom(input); symptom != "" {
			// A volunteered symptom counts as a confirmation of itself; the
			// outstanding question, if any, stays outstanding.
			e.Machine.Confirm(sess, symptom)
		}
		question = e.Machine.NextQuestion(sess)
		return nil
	})
	return question, err
}

// EndInterview drops the session. Callers that want the conversation's
// results should read them from the terminal question first.
func (e *Engine) EndInterview(sessionID string) {
	e.Store.Delete(sessionID)
}

// Diagnose runs the full aggregation for an ad hoc symptom list, outside of
// any interview session.
func (e *Engine) Diagnose(ctx context.Context, symptoms []string, background string) (*model.DiagnosisReport, error) {
	return e.Aggregator.Diagnose(ctx, symptoms, background)
}

// SymptomVocabulary returns the classifier's ordered feature vocabulary.
func (e *Engine) SymptomVocabulary() []string {
	out := make([]string, len(e.Model.Vocabulary))
	copy(out, e.Model.Vocabulary)
	return out
}

// resolveSymptom fuzzy-matches free text into the vocabulary, keeping the
// normalized raw string when nothing matches.
func (e *Engine) resolveSymptom(raw string) string {
	if s, ok := vocab.Match(raw, e.Model.Vocabulary, e.fuzzyThreshold); ok {
		return s
	}
	return vocab.Normalize(raw)
}

var yesWords = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "true": true,
}

var noWords = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "false": true,
}

func parseYesNo(input string) (affirmed, ok bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if yesWords[s] {
		return true, true
	}
	if noWords[s] {
		return false, true
	}
	return false, false
}
