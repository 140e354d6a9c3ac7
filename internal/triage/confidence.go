package triage

// Breakdown holds the confidence factors, each in [0,1].
type Breakdown struct {
	Completeness float64 `json:"completeness"`
	Clarity      float64 `json:"clarity"`
	Coverage     float64 `json:"coverage"`
	Confidence   float64 `json:"confidence"`
}

// Estimator blends completeness, clarity and coverage into one confidence value.
type Estimator struct {
	bank      *Bank
	blend     Blend
	mandatory []string
}

func NewEstimator(bank *Bank, blend Blend, mandatory []string) *Estimator {
	return &Estimator{bank: bank, blend: blend, mandatory: append([]string(nil), mandatory...)}
}

// Estimate is a pure function of the session's answers.
func (e *Estimator) Estimate(s *Session) Breakdown {
	b := Breakdown{
		Completeness: e.completeness(s),
		Clarity:      e.clarity(s),
		Coverage:     e.coverage(s),
	}
	b.Confidence = clamp01(e.blend.Completeness*b.Completeness +
		e.blend.Clarity*b.Clarity +
		e.blend.Coverage*b.Coverage)
	return b
}

func (e *Estimator) completeness(s *Session) float64 {
	if len(e.mandatory) == 0 {
		return 1
	}
	return clamp01(float64(s.Len()) / float64(len(e.mandatory)))
}

func (e *Estimator) clarity(s *Session) float64 {
	critical := e.bank.critical()
	if len(critical) == 0 {
		return 1
	}
	unclear := 0
	for _, q := range critical {
		a, ok := s.answer(q.ID)
		if !ok || a.Value.IsUnknown() {
			unclear++
		}
	}
	return clamp01(1 - float64(unclear)/float64(len(critical)))
}

func (e *Estimator) coverage(s *Session) float64 {
	categories := e.bank.Categories()
	if len(categories) == 0 {
		return 1
	}
	seen := make(map[Category]bool, len(categories))
	for _, a := range s.answers {
		if q, ok := e.bank.Question(a.QuestionID); ok {
			seen[q.Category] = true
		}
	}
	return clamp01(float64(len(seen)) / float64(len(categories)))
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
