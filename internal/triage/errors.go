package triage

import (
	"errors"
	"fmt"
)

// ErrNoMoreQuestions is returned by the selector when nothing is left to ask.
// The engine treats it as a termination signal, never as a failure.
var ErrNoMoreQuestions = errors.New("no more questions")

// ErrSessionOpen is returned when a final result is requested before termination.
var ErrSessionOpen = errors.New("triage session is still open")

// ConfigurationError reports a malformed question bank or engine configuration.
// It is only produced at load time.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "triage configuration: " + e.Reason
	}
	return fmt.Sprintf("triage configuration: %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidAnswerError rejects an answer without touching the session.
type InvalidAnswerError struct {
	QuestionID string
	Reason     string
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("invalid answer for %q: %s", e.QuestionID, e.Reason)
}

func invalidAnswer(questionID, format string, args ...any) *InvalidAnswerError {
	return &InvalidAnswerError{QuestionID: questionID, Reason: fmt.Sprintf(format, args...)}
}

// SessionClosedError is returned for any mutation after termination.
type SessionClosedError struct {
	SessionID string
	Reason    TerminationReason
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("triage session %s is closed (%s)", e.SessionID, e.Reason)
}
