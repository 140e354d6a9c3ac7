package triage

import "time"

// AnsweredQuestion is one line of the final answer list.
type AnsweredQuestion struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text,omitempty"`
	Value      Value  `json:"value"`
}

// FinalResult is the plain record produced when a session terminates.
type FinalResult struct {
	SessionID      string             `json:"session_id"`
	PatientRef     string             `json:"patient_ref,omitempty"`
	Classification Classification     `json:"classification"`
	Color          string             `json:"color"`
	Conduct        string             `json:"conduct"`
	Score          float64            `json:"score"`
	Confidence     float64            `json:"confidence"`
	Breakdown      Breakdown          `json:"breakdown"`
	LowConfidence  bool               `json:"low_confidence"`
	Reason         TerminationReason  `json:"termination_reason"`
	Emergency      bool               `json:"emergency"`
	CriticalSigns  []string           `json:"critical_signs"`
	Answers        []AnsweredQuestion `json:"answers"`
	StartedAt      time.Time          `json:"started_at"`
}

// Value returns the recorded value for a question id.
func (r FinalResult) Value(questionID string) (Value, bool) {
	for _, a := range r.Answers {
		if a.QuestionID == questionID {
			return a.Value, true
		}
	}
	return Value{}, false
}
