package attempt

import (
	"sync"

	"github.com/google/uuid"
)

// AnswerEntry is one recorded (question, selected option) pair.
type AnswerEntry struct {
	QuestionID uuid.UUID `json:"question_id"`
	OptionID   string    `json:"option_id"`
}

// Ledger stores the current selected option per question for one attempt.
// It is a dumb store: option ids are not validated against the question's
// options here — the scorer handles unknown entries defensively.
type Ledger struct {
	mu      sync.Mutex
	entries map[uuid.UUID]string
	order   []uuid.UUID // first-answered order, drives Snapshot
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[uuid.UUID]string)}
}

// Record upserts the selected option for a question. Re-answering replaces
// the previous selection; the question keeps its original position in the
// snapshot order.
func (l *Ledger) Record(questionID uuid.UUID, optionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, seen := l.entries[questionID]; !seen {
		l.order = append(l.order, questionID)
	}
	l.entries[questionID] = optionID
}

// Get returns the selected option for a question, if any.
func (l *Ledger) Get(questionID uuid.UUID) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	opt, ok := l.entries[questionID]
	return opt, ok
}

// Count returns the number of distinct answered questions.
func (l *Ledger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Snapshot returns the entries in stable first-answered order. This exact
// ordering is persisted verbatim inside the ScoreReport.
func (l *Ledger) Snapshot() []AnswerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AnswerEntry, 0, len(l.order))
	for _, qid := range l.order {
		out = append(out, AnswerEntry{QuestionID: qid, OptionID: l.entries[qid]})
	}
	return out
}
