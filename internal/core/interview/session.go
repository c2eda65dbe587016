package interview

import (
	"time"

	"github.com/agenthands/triage/internal/core/model"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusTerminal Status = "terminal"
)

// Pending question origins.
const (
	OriginNeighbor = "neighbor"
	OriginRanking  = "ranking"
)

// PendingQuestion is one queued follow-up candidate, prioritized by weight.
type PendingQuestion struct {
	Symptom string  `json:"symptom"`
	Weight  float64 `json:"weight"`
	Origin  string  `json:"origin"`
}

// Session is the mutable per-conversation interview state. All mutation goes
// through the Machine while the owning Store holds the per-session lock.
type Session struct {
	ID        string
	Confirmed []string
	Denied    []string
	Pending   []PendingQuestion
	Current   string
	Status    Status
	Results   []model.Prediction
	CreatedAt time.Time
	UpdatedAt time.Time

	asked        map[string]bool
	ranking      []string
	rankingReady bool
	cursor       int
}

func newSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		asked:     make(map[string]bool),
	}
}

// Asked reports whether a symptom was ever set as a question in this session.
func (s *Session) Asked(symptom string) bool {
	return s.asked[symptom]
}

// QuestionsAsked is the count of distinct symptoms ever asked about. It only
// grows; nothing is ever removed from the asked set.
func (s *Session) QuestionsAsked() int {
	return len(s.asked)
}

func (s *Session) markAsked(symptom string) {
	s.asked[symptom] = true
}

func (s *Session) hasConfirmed(symptom string) bool {
	for _, c := range s.Confirmed {
		if c == symptom {
			return true
		}
	}
	return false
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
