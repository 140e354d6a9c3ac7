package triage

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// State is the controller state of a session.
type State string

const (
	StateAwaitingQuestion State = "awaiting_question"
	StateQuestionAsked    State = "question_asked"
	StateAnswerRecorded   State = "answer_recorded"
	StateTerminated       State = "terminated"
)

// TerminationReason says why a session stopped.
type TerminationReason string

const (
	ReasonNone      TerminationReason = ""
	ReasonConfident TerminationReason = "confident"
	ReasonExhausted TerminationReason = "exhausted"
	ReasonEmergency TerminationReason = "emergency"
)

// Answer is a recorded response. Order is its 1-based position in the session.
type Answer struct {
	QuestionID string    `json:"question_id"`
	Value      Value     `json:"value"`
	Order      int       `json:"order"`
	AnsweredAt time.Time `json:"answered_at"`
}

// Session is the live state of one patient's triage. Only the Engine mutates it;
// callers read it through accessors and Snapshot.
type Session struct {
	id             string
	patientRef     string
	createdAt      time.Time
	answers        []Answer
	index          map[string]int
	state          State
	pending        string
	score          float64
	classification Classification
	confidence     float64
	breakdown      Breakdown
	reason         TerminationReason
	criticalSigns  []string
}

func newSession(patientRef string) *Session {
	return &Session{
		id:             uuid.NewString(),
		patientRef:     patientRef,
		createdAt:      time.Now(),
		index:          make(map[string]int),
		state:          StateAwaitingQuestion,
		classification: ClassBaixo,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) PatientRef() string { return s.patientRef }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) State() State { return s.state }

func (s *Session) Terminated() bool { return s.state == StateTerminated }

func (s *Session) Reason() TerminationReason { return s.reason }

func (s *Session) PendingQuestion() string { return s.pending }

func (s *Session) Len() int { return len(s.answers) }

func (s *Session) Score() float64 { return s.score }

func (s *Session) Confidence() float64 { return s.confidence }

func (s *Session) Breakdown() Breakdown { return s.breakdown }

func (s *Session) Classification() Classification { return s.classification }

// Answers returns the answers in interrogation order.
func (s *Session) Answers() []Answer {
	return append([]Answer(nil), s.answers...)
}

// Answer returns the recorded answer for a question, if any.
func (s *Session) Answer(questionID string) (Answer, bool) {
	return s.answer(questionID)
}

func (s *Session) answer(questionID string) (Answer, bool) {
	i, ok := s.lookup()[questionID]
	if !ok {
		return Answer{}, false
	}
	return s.answers[i], true
}

func (s *Session) has(questionID string) bool {
	_, ok := s.lookup()[questionID]
	return ok
}

func (s *Session) lookup() map[string]int {
	if s.index == nil || len(s.index) != len(s.answers) {
		s.index = make(map[string]int, len(s.answers))
		for i, a := range s.answers {
			s.index[a.QuestionID] = i
		}
	}
	return s.index
}

func (s *Session) record(questionID string, v Value) {
	s.lookup()
	s.answers = append(s.answers, Answer{
		QuestionID: questionID,
		Value:      v,
		Order:      len(s.answers) + 1,
		AnsweredAt: time.Now(),
	})
	s.index[questionID] = len(s.answers) - 1
}

// Snapshot is the state returned to the caller after each submission.
type Snapshot struct {
	SessionID      string            `json:"session_id"`
	State          State             `json:"state"`
	Score          float64           `json:"current_score"`
	Classification Classification    `json:"current_classification"`
	Confidence     float64           `json:"current_confidence"`
	Terminated     bool              `json:"terminated"`
	Reason         TerminationReason `json:"termination_reason,omitempty"`
	AnsweredCount  int               `json:"answered_count"`
	Pending        string            `json:"pending_question,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:      s.id,
		State:          s.state,
		Score:          s.score,
		Classification: s.classification,
		Confidence:     s.confidence,
		Terminated:     s.state == StateTerminated,
		Reason:         s.reason,
		AnsweredCount:  len(s.answers),
		Pending:        s.pending,
	}
}

// sessionDoc is the persisted form used by session stores.
type sessionDoc struct {
	ID             string            `json:"id"`
	PatientRef     string            `json:"patient_ref"`
	CreatedAt      time.Time         `json:"created_at"`
	Answers        []Answer          `json:"answers"`
	State          State             `json:"state"`
	Pending        string            `json:"pending,omitempty"`
	Score          float64           `json:"score"`
	Classification Classification    `json:"classification"`
	Confidence     float64           `json:"confidence"`
	Breakdown      Breakdown         `json:"breakdown"`
	Reason         TerminationReason `json:"reason,omitempty"`
	CriticalSigns  []string          `json:"critical_signs,omitempty"`
}

func (s *Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(sessionDoc{
		ID:             s.id,
		PatientRef:     s.patientRef,
		CreatedAt:      s.createdAt,
		Answers:        s.answers,
		State:          s.state,
		Pending:        s.pending,
		Score:          s.score,
		Classification: s.classification,
		Confidence:     s.confidence,
		Breakdown:      s.breakdown,
		Reason:         s.reason,
		CriticalSigns:  s.criticalSigns,
	})
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = Session{
		id:             doc.ID,
		patientRef:     doc.PatientRef,
		createdAt:      doc.CreatedAt,
		answers:        doc.Answers,
		state:          doc.State,
		pending:        doc.Pending,
		score:          doc.Score,
		classification: doc.Classification,
		confidence:     doc.Confidence,
		breakdown:      doc.Breakdown,
		reason:         doc.Reason,
		criticalSigns:  doc.CriticalSigns,
	}
	if s.state == "" {
		s.state = StateAwaitingQuestion
	}
	s.lookup()
	return nil
}
