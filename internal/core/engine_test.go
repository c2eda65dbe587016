package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core/diagnose"
	"github.com/agenthands/triage/internal/core/interview"
	"github.com/agenthands/triage/internal/core/model"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Data.ModelPath = filepath.Join(t.TempDir(), "model.json")
	return cfg
}

func testRows() []model.TrainingRow {
	var rows []model.TrainingRow
	for i := 0; i < 3; i++ {
		rows = append(rows,
			model.TrainingRow{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
			model.TrainingRow{Disease: "migraine", Symptoms: []string{"headache", "nausea", "light_sensitivity"}},
			model.TrainingRow{Disease: "gastroenteritis", Symptoms: []string{"nausea", "vomiting", "abdominal_pain"}},
		)
	}
	return rows
}

func TestNewEngine_VocabularySubsetOfGraph(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	for _, s := range e.SymptomVocabulary() {
		assert.True(t, e.Graph.Has(s), "classifier symptom %q missing from graph", s)
	}
	// The curated hierarchy contributed nodes beyond the corpus.
	assert.True(t, e.Graph.Has("pain"))
}

func TestInterviewFlow_EndToEnd(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	q, err := e.StartInterview("visit-1", []string{"fever"})
	require.NoError(t, err)
	require.False(t, q.Terminal)
	assert.NotEqual(t, "fever", q.Symptom)

	ctx := context.Background()
	for turns := 0; !q.Terminal; turns++ {
		require.LessOrEqual(t, turns, 25, "interview did not terminate")
		q, err = e.AnswerAndAdvance(ctx, "visit-1", "yes")
		require.NoError(t, err)
	}

	require.NotEmpty(t, q.Results)
	assert.Equal(t, "flu", q.Results[0].Disease)
	for _, p := range q.Results {
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 100.0)
	}
}

func TestAnswerAndAdvance_FreeTextVolunteersSymptom(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	_, err = e.StartInterview("visit-2", nil)
	require.NoError(t, err)

	// "head ache" normalizes and fuzzy-matches into the vocabulary.
	q, err := e.AnswerAndAdvance(context.Background(), "visit-2", "head ache")
	require.NoError(t, err)
	assert.NotEqual(t, "headache", q.Symptom)

	err = e.Store.With("visit-2", func(sess *interview.Session) error {
		assert.Contains(t, sess.Confirmed, "headache")
		return nil
	})
	require.NoError(t, err)
}

func TestAnswerAndAdvance_UnknownSession(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	_, err = e.AnswerAndAdvance(context.Background(), "ghost", "yes")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestDiagnose_StatisticalOnly(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	report, err := e.Diagnose(context.Background(), []string{"fever", "cough", "fatigue"}, "")
	require.NoError(t, err)
	assert.False(t, report.AdvisoryAvailable)
	assert.NotEmpty(t, report.Statistical)
	assert.Equal(t, "flu", report.Statistical[0].Disease)
	assert.Equal(t, diagnose.Disclaimer, report.Disclaimer)
}

func TestDiagnose_ZeroUsableSymptoms(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	_, err = e.Diagnose(context.Background(), []string{" ", ""}, "")
	assert.ErrorIs(t, err, model.ErrInsufficientSymptoms)
}

func TestEndInterview_DropsSession(t *testing.T) {
	e, err := NewEngine(testConfig(t), testRows(), nil)
	require.NoError(t, err)

	_, err = e.StartInterview("visit-3", []string{"nausea"})
	require.NoError(t, err)

	e.EndInterview("visit-3")
	_, err = e.AnswerAndAdvance(context.Background(), "visit-3", "yes")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}
