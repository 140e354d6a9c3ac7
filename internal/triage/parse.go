package triage

import (
	"strconv"
	"strings"
)

var (
	yesWords     = []string{"sim", "s", "yes", "y", "true", "1"}
	noWords      = []string{"não", "nao", "n", "no", "false", "0"}
	unknownWords = []string{"?", "não sei", "nao sei", "ns", "unknown"}
)

// ParseAnswer turns typed text into a Value for q. Numbers accept a single
// comma or dot decimal separator and no digit grouping; options match by
// name or 1-based position.
func ParseAnswer(q *Question, raw string) (Value, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return Value{}, invalidAnswer(q.ID, "empty answer")
	}
	if contains(unknownWords, text) {
		if !q.AllowUnknown {
			return Value{}, invalidAnswer(q.ID, "this question needs a definite answer")
		}
		return Unknown(), nil
	}

	switch q.AnswerType {
	case AnswerBoolean:
		switch {
		case contains(yesWords, text):
			return Bool(true), nil
		case contains(noWords, text):
			return Bool(false), nil
		}
		return Value{}, invalidAnswer(q.ID, "answer sim or não")
	case AnswerNumeric:
		seps := strings.Count(text, ".") + strings.Count(text, ",")
		if seps > 1 || (q.Integer && seps > 0) {
			return Value{}, invalidAnswer(q.ID, "write %q as digits only, without thousands separators", raw)
		}
		x, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return Value{}, invalidAnswer(q.ID, "%q is not a number", raw)
		}
		return Number(x), nil
	case AnswerEnumerated:
		for _, o := range q.Options {
			if strings.EqualFold(o.Value, strings.TrimSpace(raw)) {
				return Choice(o.Value), nil
			}
		}
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(q.Options) {
			return Choice(q.Options[n-1].Value), nil
		}
		return Value{}, invalidAnswer(q.ID, "option must be one of %v", optionValues(q.Options))
	}
	return Value{}, invalidAnswer(q.ID, "unsupported answer type %q", q.AnswerType)
}

func contains(words []string, s string) bool {
	for _, w := range words {
		if w == s {
			return true
		}
	}
	return false
}
