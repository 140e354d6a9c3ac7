package triage

import "math"

// Scorer turns answers into a risk score and classification.
type Scorer struct {
	bank        *Bank
	thresholds  Thresholds
	adjustments Adjustments
}

func NewScorer(bank *Bank, thresholds Thresholds, adjustments Adjustments) *Scorer {
	return &Scorer{bank: bank, thresholds: thresholds, adjustments: adjustments}
}

// Validate checks a value against the question's declared type and range.
func (sc *Scorer) Validate(q *Question, v Value) error {
	if v.IsUnknown() {
		if !q.AllowUnknown {
			return invalidAnswer(q.ID, "an answer is required")
		}
		return nil
	}
	if v.Kind() != q.AnswerType.kind() {
		return invalidAnswer(q.ID, "expected a %s answer, got %s", q.AnswerType, v.Kind())
	}

	switch q.AnswerType {
	case AnswerNumeric:
		x, _ := v.AsNumber()
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return invalidAnswer(q.ID, "value must be a finite number")
		}
		if q.Integer && x != math.Trunc(x) {
			return invalidAnswer(q.ID, "value must be a whole number")
		}
		if q.Min != nil && x < *q.Min {
			return invalidAnswer(q.ID, "minimum value is %v", *q.Min)
		}
		if q.Max != nil && x > *q.Max {
			return invalidAnswer(q.ID, "maximum value is %v", *q.Max)
		}
	case AnswerEnumerated:
		choice, _ := v.AsChoice()
		if _, ok := q.option(choice); !ok {
			return invalidAnswer(q.ID, "option must be one of %v", optionValues(q.Options))
		}
	}
	return nil
}

// Contribution is what a single answer adds to the score.
func (sc *Scorer) Contribution(q *Question, v Value) float64 {
	switch v.Kind() {
	case KindBoolean:
		if b, _ := v.AsBool(); b {
			return q.Weight
		}
	case KindNumeric:
		x, _ := v.AsNumber()
		total := 0.0
		for _, band := range q.Bands {
			if band.contains(x) {
				total += band.Weight
			}
		}
		return total
	case KindEnumerated:
		choice, _ := v.AsChoice()
		if o, ok := q.option(choice); ok {
			return o.Weight
		}
	}
	return 0
}

// Positive reports whether an answer indicates presence.
func (sc *Scorer) Positive(q *Question, v Value) bool {
	if b, ok := v.AsBool(); ok {
		return b
	}
	return sc.Contribution(q, v) > 0
}

// Score sums the contributions plus the comorbidity adjustment.
func (sc *Scorer) Score(answers []Answer) float64 {
	score := 0.0
	comorbidities := 0
	for _, a := range answers {
		q, ok := sc.bank.Question(a.QuestionID)
		if !ok {
			continue
		}
		score += sc.Contribution(q, a.Value)
		if q.Category == CategoryComorbidity && sc.Positive(q, a.Value) {
			comorbidities++
		}
	}
	if n := sc.adjustments.ComorbidityCount; n > 0 && comorbidities >= n {
		score += sc.adjustments.ComorbidityBonus
	}
	return score
}

// Classify is a step function of the score.
func (sc *Scorer) Classify(score float64) Classification {
	switch {
	case score < sc.thresholds.BaixoMax:
		return ClassBaixo
	case score < sc.thresholds.MedioMax:
		return ClassMedio
	case score < sc.thresholds.AltoMax:
		return ClassAlto
	default:
		return ClassCritico
	}
}

func optionValues(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
