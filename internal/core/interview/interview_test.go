package interview

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/triage/internal/config"
	"github.com/agenthands/triage/internal/core/graph"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/rank"
)

type stubClassifier struct {
	preds []model.Prediction
	err   error
}

func (s *stubClassifier) Classify(symptoms []string) ([]model.Prediction, error) {
	return s.preds, s.err
}

func fixtureGraph() *graph.SymptomGraph {
	rows := []model.TrainingRow{
		{Disease: "migraine", Symptoms: []string{"headache", "nausea", "light_sensitivity"}},
		{Disease: "migraine", Symptoms: []string{"headache", "nausea"}},
		{Disease: "flu", Symptoms: []string{"fever", "cough", "fatigue"}},
		{Disease: "flu", Symptoms: []string{"fever", "cough"}},
	}
	hierarchy := []config.HierarchyEdge{
		{Parent: "pain", Children: []string{"headache"}},
	}
	return graph.Build(rows, hierarchy)
}

func fixtureMachine(c Classifier) *Machine {
	g := fixtureGraph()
	return NewMachine(g, rank.NewRanker(), c, g.Nodes())
}

func TestNextQuestion_NeverRepeatsAndPrefersNeighborhood(t *testing.T) {
	m := fixtureMachine(&stubClassifier{preds: []model.Prediction{{Disease: "migraine", Confidence: 90}}})
	sess := newSession("s1")

	m.Confirm(sess, "headache")

	q := m.NextQuestion(sess)
	require.False(t, q.Terminal)
	// The confirmed symptom is never re-asked.
	assert.NotEqual(t, "headache", q.Symptom)
	// Neighbors of headache outrank unrelated symptoms: nausea co-occurs
	// twice, so it is the heaviest pending candidate.
	assert.Equal(t, "nausea", q.Symptom)

	// Asked set only grows, and no symptom is asked twice.
	seen := map[string]bool{q.Symptom: true}
	prev := sess.QuestionsAsked()
	for i := 0; i < 20; i++ {
		m.Answer(sess, false)
		q = m.NextQuestion(sess)
		if q.Terminal {
			break
		}
		if q.Symptom != "" {
			assert.False(t, seen[q.Symptom], "symptom %q asked twice", q.Symptom)
			seen[q.Symptom] = true
		}
		assert.GreaterOrEqual(t, sess.QuestionsAsked(), prev)
		prev = sess.QuestionsAsked()
	}
}

func TestInterview_TerminatesWithinQuestionBudget(t *testing.T) {
	for _, affirmEverything := range []bool{true, false} {
		m := fixtureMachine(&stubClassifier{preds: []model.Prediction{{Disease: "flu", Confidence: 80}}})
		sess := newSession("s1")
		m.Confirm(sess, "fever")

		turns := 0
		q := m.NextQuestion(sess)
		for !q.Terminal {
			turns++
			require.LessOrEqual(t, turns, 25, "interview did not terminate")
			m.Answer(sess, affirmEverything)
			q = m.NextQuestion(sess)
		}

		assert.Equal(t, StatusTerminal, sess.Status)
		assert.LessOrEqual(t, sess.QuestionsAsked(), 10)
		if affirmEverything {
			// Five confirmations (initial plus four yeses) stop the interview
			// before the question budget runs out.
			assert.GreaterOrEqual(t, len(sess.Confirmed), 5)
		}
		assert.NotEmpty(t, q.Results)
	}
}

func TestNextQuestion_DeniedAnswersExpandNothing(t *testing.T) {
	m := fixtureMachine(&stubClassifier{})
	sess := newSession("s1")
	m.Confirm(sess, "fever")

	q := m.NextQuestion(sess)
	require.NotEmpty(t, q.Symptom)
	before := len(sess.Pending)

	m.Answer(sess, false)
	assert.Contains(t, sess.Denied, q.Symptom)
	assert.Equal(t, "", sess.Current)
	// A denial neither confirms nor enqueues neighbors.
	assert.LessOrEqual(t, len(sess.Pending), before)
	assert.Len(t, sess.Confirmed, 1)
}

func TestNextQuestion_EmptyGraphFallsBackToVocabulary(t *testing.T) {
	g := graph.Build(nil, nil)
	m := NewMachine(g, rank.NewRanker(), &stubClassifier{}, []string{"fever", "cough", "aches"})
	sess := newSession("s1")

	q := m.NextQuestion(sess)
	require.False(t, q.Terminal)
	// Lexicographic vocabulary order when there is no graph to rank.
	assert.Equal(t, "aches", q.Symptom)

	m.Answer(sess, false)
	q = m.NextQuestion(sess)
	assert.Equal(t, "cough", q.Symptom)
}

func TestNextQuestion_ClassifierFailureDegrades(t *testing.T) {
	m := fixtureMachine(&stubClassifier{err: errors.New("model exploded")})
	m.MaxConfirmed = 1
	sess := newSession("s1")
	m.Confirm(sess, "fever")

	q := m.NextQuestion(sess)
	assert.True(t, q.Terminal)
	assert.Empty(t, q.Results)
	assert.NotEmpty(t, q.Text)
	assert.Equal(t, StatusTerminal, sess.Status)
}

func TestNextQuestion_TerminalIsSticky(t *testing.T) {
	preds := []model.Prediction{{Disease: "flu", Confidence: 75}}
	m := fixtureMachine(&stubClassifier{preds: preds})
	m.MaxConfirmed = 1
	sess := newSession("s1")
	m.Confirm(sess, "fever")

	first := m.NextQuestion(sess)
	require.True(t, first.Terminal)
	second := m.NextQuestion(sess)
	assert.True(t, second.Terminal)
	assert.Equal(t, first.Results, second.Results)
}

func TestStore_UnknownSession(t *testing.T) {
	st := NewStore()
	err := st.With("nope", func(*Session) error { return nil })
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
}

func TestStore_SerializesPerSession(t *testing.T) {
	st := NewStore()
	st.Create("s1")

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With("s1", func(sess *Session) error {
				// Unsynchronized read-modify-write; the per-session lock must
				// make it safe.
				v := counter
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestStore_Sweep(t *testing.T) {
	st := NewStore()
	st.Create("old")
	st.Create("fresh")

	_ = st.With("old", func(sess *Session) error {
		sess.UpdatedAt = time.Now().UTC().Add(-2 * time.Hour)
		return nil
	})

	removed := st.SweepOlderThan(time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, st.Len())
	assert.ErrorIs(t, st.With("old", func(*Session) error { return nil }), model.ErrSessionNotFound)
	assert.NoError(t, st.With("fresh", func(*Session) error { return nil }))
}
