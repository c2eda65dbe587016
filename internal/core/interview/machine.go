package interview

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/agenthands/triage/internal/core/graph"
	"github.com/agenthands/triage/internal/core/model"
	"github.com/agenthands/triage/internal/core/rank"
)

// Classifier is the slice of the statistical model the machine needs to close
// out an interview.
type Classifier interface {
	Classify(symptoms []string) ([]model.Prediction, error)
}

const genericPrompt = "Is there anything else you can tell me about how you have been feeling?"

// Machine drives interview turns. It owns no session state itself; the
// caller passes sessions in under the store's per-session lock, so the
// machine is safe to share.
type Machine struct {
	Graph        *graph.SymptomGraph
	Ranker       *rank.Ranker
	Classifier   Classifier
	Vocabulary   []string
	MaxConfirmed int
	MaxQuestions int
}

func NewMachine(g *graph.SymptomGraph, r *rank.Ranker, c Classifier, vocabulary []string) *Machine {
	return &Machine{
		Graph:        g,
		Ranker:       r,
		Classifier:   c,
		Vocabulary:   vocabulary,
		MaxConfirmed: 5,
		MaxQuestions: 10,
	}
}

// Confirm records a symptom the patient reported or affirmed, and queues its
// graph neighborhood as follow-up candidates.
func (m *Machine) Confirm(sess *Session, symptom string) {
	if symptom == "" || sess.hasConfirmed(symptom) {
		return
	}
	sess.Confirmed = append(sess.Confirmed, symptom)
	sess.touch()

	for neighbor, edge := range m.Graph.Neighbors(symptom) {
		if sess.Asked(neighbor) || sess.hasConfirmed(neighbor) {
			continue
		}
		m.enqueue(sess, PendingQuestion{Symptom: neighbor, Weight: edge.Weight, Origin: OriginNeighbor})
	}
}

// Answer consumes the reply to the outstanding question. A yes confirms the
// symptom and expands its neighborhood; a no is recorded and expands nothing.
// The outstanding question clears either way.
func (m *Machine) Answer(sess *Session, affirmed bool) {
	if sess.Current == "" {
		return
	}
	symptom := sess.Current
	sess.Current = ""

	if affirmed {
		m.Confirm(sess, symptom)
		return
	}
	sess.Denied = append(sess.Denied, symptom)
	sess.touch()
}

// NextQuestion advances the turn: terminate if the stopping criteria hold,
// otherwise pick the heaviest eligible pending candidate, falling back to the
// cached personalized ranking and finally to a generic open prompt. The
// conversation always gets some next message.
func (m *Machine) NextQuestion(sess *Session) model.Question {
	if sess.Status == StatusTerminal {
		return m.terminalQuestion(sess)
	}
	if m.shouldTerminate(sess) {
		return m.finalize(sess)
	}

	if len(sess.Pending) == 0 {
		if candidate, ok := m.nextFromRanking(sess); ok {
			m.enqueue(sess, PendingQuestion{Symptom: candidate, Weight: 1.0, Origin: OriginRanking})
		}
	}

	// Heaviest first; already-asked entries are discarded, not requeued, so
	// the queue cannot grow without bound.
	sort.SliceStable(sess.Pending, func(i, j int) bool {
		if sess.Pending[i].Weight != sess.Pending[j].Weight {
			return sess.Pending[i].Weight > sess.Pending[j].Weight
		}
		return sess.Pending[i].Symptom < sess.Pending[j].Symptom
	})

	for len(sess.Pending) > 0 {
		head := sess.Pending[0]
		sess.Pending = sess.Pending[1:]
		if sess.Asked(head.Symptom) || sess.hasConfirmed(head.Symptom) {
			continue
		}
		return m.ask(sess, head.Symptom)
	}

	// Pending drained entirely to already-asked entries; pull straight from
	// the ranking before giving up on this turn.
	if candidate, ok := m.nextFromRanking(sess); ok {
		return m.ask(sess, candidate)
	}

	// Nothing anywhere. Either the stopping rule fires now (ranking exhausted
	// with confirmations in hand) or we degrade to a generic prompt rather
	// than dead-ending.
	if m.shouldTerminate(sess) {
		return m.finalize(sess)
	}
	return model.Question{Text: genericPrompt}
}

func (m *Machine) ask(sess *Session, symptom string) model.Question {
	sess.markAsked(symptom)
	sess.Current = symptom
	sess.touch()
	return model.Question{
		Symptom: symptom,
		Text:    fmt.Sprintf("Are you also experiencing %s?", strings.ReplaceAll(symptom, "_", " ")),
	}
}

// shouldTerminate checks the stopping rule: enough confirmations, the
// question budget spent, or nothing left to ask with at least one
// confirmation. The two counters are deliberately independent.
func (m *Machine) shouldTerminate(sess *Session) bool {
	if len(sess.Confirmed) >= m.MaxConfirmed {
		return true
	}
	if sess.QuestionsAsked() >= m.MaxQuestions {
		return true
	}
	return len(sess.Pending) == 0 && m.rankingExhausted(sess) && len(sess.Confirmed) >= 1
}

func (m *Machine) finalize(sess *Session) model.Question {
	sess.Status = StatusTerminal
	sess.Current = ""
	sess.touch()

	preds, err := m.Classifier.Classify(sess.Confirmed)
	if err != nil {
		log.Printf("interview %s: classification degraded: %v", sess.ID, err)
	}
	sess.Results = preds
	return m.terminalQuestion(sess)
}

func (m *Machine) terminalQuestion(sess *Session) model.Question {
	text := "Thank you. Based on your answers I have prepared a preliminary assessment."
	if len(sess.Results) == 0 {
		text = "Thank you. I could not narrow your symptoms down to a likely condition; please describe anything else you are experiencing."
	}
	return model.Question{Terminal: true, Results: sess.Results, Text: text}
}

// nextFromRanking advances the cursor through the session's cached
// personalized ranking. The ranking is computed once, lazily, on first need;
// an empty graph degrades to the vocabulary in lexicographic order.
func (m *Machine) nextFromRanking(sess *Session) (string, bool) {
	if !sess.rankingReady {
		sess.ranking = m.Ranker.Rank(m.Graph, sess.Confirmed)
		if len(sess.ranking) == 0 {
			sess.ranking = append([]string(nil), m.Vocabulary...)
			sort.Strings(sess.ranking)
		}
		sess.rankingReady = true
		sess.cursor = 0
	}

	for sess.cursor < len(sess.ranking) {
		candidate := sess.ranking[sess.cursor]
		sess.cursor++
		if sess.Asked(candidate) || sess.hasConfirmed(candidate) {
			continue
		}
		return candidate, true
	}
	return "", false
}

func (m *Machine) rankingExhausted(sess *Session) bool {
	return sess.rankingReady && sess.cursor >= len(sess.ranking)
}

// enqueue adds a candidate, deduplicating by symptom and keeping the larger
// weight.
func (m *Machine) enqueue(sess *Session, q PendingQuestion) {
	for i, existing := range sess.Pending {
		if existing.Symptom == q.Symptom {
			if q.Weight > existing.Weight {
				sess.Pending[i].Weight = q.Weight
				sess.Pending[i].Origin = q.Origin
			}
			return
		}
	}
	sess.Pending = append(sess.Pending, q)
}
