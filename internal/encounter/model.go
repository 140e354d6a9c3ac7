package encounter

import (
	"time"

	"dengue-triage/internal/triage"

	"github.com/google/uuid"
)

// Record is the archived outcome of a finished triage session.
type Record struct {
	ID             uuid.UUID          `json:"id" db:"id"`
	SessionID      string             `json:"session_id" db:"session_id"`
	PatientRef     string             `json:"patient_ref,omitempty" db:"patient_ref"`
	Result         triage.FinalResult `json:"result" db:"result"`
	Abstention     triage.Abstain     `json:"abstention" db:"abstention"`
	Recommendation string             `json:"recommendation" db:"recommendation"`
	ReportKey      string             `json:"report_key,omitempty" db:"report_key"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" db:"updated_at"`
}

// QuestionView is the part of a question shown to whoever answers it.
type QuestionView struct {
	ID           string            `json:"id"`
	Text         string            `json:"text"`
	Help         string            `json:"help,omitempty"`
	Unit         string            `json:"unit,omitempty"`
	Category     triage.Category   `json:"category"`
	AnswerType   triage.AnswerType `json:"answer_type"`
	Options      []string          `json:"options,omitempty"`
	Min          *float64          `json:"min,omitempty"`
	Max          *float64          `json:"max,omitempty"`
	AllowUnknown bool              `json:"allow_unknown,omitempty"`
}

// NewQuestionView returns nil for a nil question.
func NewQuestionView(q *triage.Question) *QuestionView {
	if q == nil {
		return nil
	}
	v := &QuestionView{
		ID:           q.ID,
		Text:         q.Text,
		Help:         q.Help,
		Unit:         q.Unit,
		Category:     q.Category,
		AnswerType:   q.AnswerType,
		Min:          q.Min,
		Max:          q.Max,
		AllowUnknown: q.AllowUnknown,
	}
	for _, o := range q.Options {
		v.Options = append(v.Options, o.Value)
	}
	return v
}

// CompletedEvent is published once per finished session.
type CompletedEvent struct {
	RecordID       uuid.UUID                 `json:"record_id"`
	SessionID      string                    `json:"session_id"`
	PatientRef     string                    `json:"patient_ref,omitempty"`
	Classification triage.Classification     `json:"classification"`
	Score          float64                   `json:"score"`
	Confidence     float64                   `json:"confidence"`
	Emergency      bool                      `json:"emergency"`
	Abstain        bool                      `json:"abstain"`
	Reason         triage.TerminationReason  `json:"termination_reason"`
	Answers        []triage.AnsweredQuestion `json:"answers"`
	Recommendation string                    `json:"recommendation"`
	ReportKey      string                    `json:"report_key,omitempty"`
	CompletedAt    time.Time                 `json:"completed_at"`
}

const EventTriageCompleted = "triage.completed"

func newCompletedEvent(r Record) CompletedEvent {
	return CompletedEvent{
		RecordID:       r.ID,
		SessionID:      r.SessionID,
		PatientRef:     r.PatientRef,
		Classification: r.Result.Classification,
		Score:          r.Result.Score,
		Confidence:     r.Result.Confidence,
		Emergency:      r.Result.Emergency,
		Abstain:        r.Abstention.Abstain,
		Reason:         r.Result.Reason,
		Answers:        r.Result.Answers,
		Recommendation: r.Recommendation,
		ReportKey:      r.ReportKey,
		CompletedAt:    r.UpdatedAt,
	}
}
