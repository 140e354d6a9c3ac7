package evaluation

import (
	"context"
	"fmt"

	"dengue-triage/internal/triage"
)

// CaseResult is the outcome of one scripted patient.
type CaseResult struct {
	CaseID          string                   `json:"case_id"`
	Expected        triage.Classification    `json:"expected"`
	Got             triage.Classification    `json:"got"`
	Correct         bool                     `json:"correct"`
	ExpectEmergency bool                     `json:"expect_emergency"`
	Emergency       bool                     `json:"emergency"`
	Abstained       bool                     `json:"abstained"`
	QuestionsAsked  int                      `json:"questions_asked"`
	Score           float64                  `json:"score"`
	Confidence      float64                  `json:"confidence"`
	Reason          triage.TerminationReason `json:"termination_reason"`
}

// Report aggregates a golden-set run.
type Report struct {
	Total               int          `json:"total"`
	Correct             int          `json:"correct"`
	Accuracy            float64      `json:"accuracy"`
	MeanQuestions       float64      `json:"mean_questions"`
	Abstentions         int          `json:"abstentions"`
	Emergencies         int          `json:"emergencies_detected"` // expected and flagged
	EmergenciesExpected int          `json:"emergencies_expected"`
	Cases               []CaseResult `json:"cases"`
}

type Runner struct {
	engine *triage.Engine
}

func NewRunner(engine *triage.Engine) *Runner {
	return &Runner{engine: engine}
}

// RunCase answers every question the engine asks from the case facts.
func (r *Runner) RunCase(c Case) (CaseResult, error) {
	s := r.engine.StartSession(c.ID)
	for q := r.engine.NextQuestion(s); q != nil; q = r.engine.NextQuestion(s) {
		v, err := c.answer(q)
		if err != nil {
			return CaseResult{}, err
		}
		if _, err := r.engine.SubmitAnswer(s, q.ID, v); err != nil {
			return CaseResult{}, fmt.Errorf("case %s: %w", c.ID, err)
		}
	}

	res, err := r.engine.Result(s)
	if err != nil {
		return CaseResult{}, fmt.Errorf("case %s: %w", c.ID, err)
	}
	return CaseResult{
		CaseID:          c.ID,
		Expected:        c.Expected,
		Got:             res.Classification,
		Correct:         res.Classification == c.Expected,
		ExpectEmergency: c.ExpectEmergency,
		Emergency:       res.Emergency,
		Abstained:       r.engine.Assess(res).Abstain,
		QuestionsAsked:  len(res.Answers),
		Score:           res.Score,
		Confidence:      res.Confidence,
		Reason:          res.Reason,
	}, nil
}

// Run evaluates every case, stopping early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, set GoldenSet) (Report, error) {
	if err := set.Check(r.engine.Bank()); err != nil {
		return Report{}, err
	}

	rep := Report{Cases: make([]CaseResult, 0, len(set.Cases))}
	asked := 0
	for _, c := range set.Cases {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		cr, err := r.RunCase(c)
		if err != nil {
			return rep, err
		}
		rep.Cases = append(rep.Cases, cr)
		rep.Total++
		asked += cr.QuestionsAsked
		if cr.Correct {
			rep.Correct++
		}
		if cr.Abstained {
			rep.Abstentions++
		}
		if cr.ExpectEmergency {
			rep.EmergenciesExpected++
			if cr.Emergency {
				rep.Emergencies++
			}
		}
	}
	if rep.Total > 0 {
		rep.Accuracy = float64(rep.Correct) / float64(rep.Total)
		rep.MeanQuestions = float64(asked) / float64(rep.Total)
	}
	return rep, nil
}
