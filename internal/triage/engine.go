package triage

import "errors"

// Engine drives triage sessions against one bank and configuration.
// It holds no per-session state and may be shared across goroutines;
// a single Session must not be used concurrently.
type Engine struct {
	bank      *Bank
	cfg       Config
	scorer    *Scorer
	estimator *Estimator
	selector  *Selector
}

// NewEngine validates cfg against bank. Failures are *ConfigurationError.
func NewEngine(bank *Bank, cfg Config) (*Engine, error) {
	if bank == nil {
		return nil, configErr("bank", "no question bank")
	}
	if err := cfg.Validate(bank); err != nil {
		return nil, err
	}
	cfg.Mandatory = append([]string(nil), cfg.Mandatory...)
	return &Engine{
		bank:      bank,
		cfg:       cfg,
		scorer:    NewScorer(bank, cfg.Thresholds, cfg.Adjustments),
		estimator: NewEstimator(bank, cfg.Blend, cfg.Mandatory),
		selector:  NewSelector(bank, cfg.Mandatory, cfg.MandatoryFirst),
	}, nil
}

func (e *Engine) Bank() *Bank { return e.bank }

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Scorer() *Scorer { return e.scorer }

func (e *Engine) Selector() *Selector { return e.selector }

// StartSession opens an empty session.
func (e *Engine) StartSession(patientRef string) *Session {
	s := newSession(patientRef)
	e.refresh(s)
	return s
}

// NextQuestion returns the question to ask, or nil once the session has
// terminated. Asking twice without answering returns the same question.
func (e *Engine) NextQuestion(s *Session) *Question {
	if s.Terminated() {
		return nil
	}
	if s.pending != "" {
		if q, ok := e.bank.Question(s.pending); ok && e.eligible(q, s) {
			s.state = StateQuestionAsked
			return q
		}
	}

	q, err := e.selector.Select(s)
	if errors.Is(err, ErrNoMoreQuestions) {
		e.terminate(s, ReasonExhausted)
		return nil
	}
	s.pending = q.ID
	s.state = StateQuestionAsked
	return q
}

// SubmitAnswer records an answer to any currently eligible question. Rejected
// answers leave the session exactly as it was.
func (e *Engine) SubmitAnswer(s *Session, questionID string, v Value) (Snapshot, error) {
	if s.Terminated() {
		return s.Snapshot(), &SessionClosedError{SessionID: s.id, Reason: s.reason}
	}
	q, ok := e.bank.Question(questionID)
	if !ok {
		return s.Snapshot(), invalidAnswer(questionID, "unknown question")
	}
	if s.has(questionID) {
		return s.Snapshot(), invalidAnswer(questionID, "question already answered")
	}
	if !e.bank.dependenciesMet(q, s) {
		return s.Snapshot(), invalidAnswer(questionID, "question is not eligible yet")
	}
	if err := e.scorer.Validate(q, v); err != nil {
		return s.Snapshot(), err
	}

	s.record(questionID, v)
	if q.Category.Critical() && e.scorer.Positive(q, v) {
		s.criticalSigns = append(s.criticalSigns, questionID)
	}
	if s.pending == questionID {
		s.pending = ""
	}
	s.state = StateAnswerRecorded
	e.refresh(s)

	switch {
	case e.cfg.EmergencyStop && q.Category == CategorySeveritySign && e.scorer.Positive(q, v):
		e.terminate(s, ReasonEmergency)
	case s.confidence >= e.cfg.ConfidenceThreshold && e.mandatorySettled(s):
		e.terminate(s, ReasonConfident)
	case len(e.bank.Eligible(s)) == 0:
		e.terminate(s, ReasonExhausted)
	default:
		s.state = StateAwaitingQuestion
	}
	return s.Snapshot(), nil
}

// Result is available once the session has terminated.
func (e *Engine) Result(s *Session) (FinalResult, error) {
	if !s.Terminated() {
		return FinalResult{}, ErrSessionOpen
	}
	res := FinalResult{
		SessionID:      s.id,
		PatientRef:     s.patientRef,
		Classification: s.classification,
		Color:          s.classification.Color(),
		Conduct:        s.classification.Conduct(),
		Score:          s.score,
		Confidence:     s.confidence,
		Breakdown:      s.breakdown,
		LowConfidence:  s.confidence < e.cfg.ConfidenceThreshold,
		Reason:         s.reason,
		Emergency:      s.reason == ReasonEmergency,
		CriticalSigns:  append([]string{}, s.criticalSigns...),
		Answers:        make([]AnsweredQuestion, 0, len(s.answers)),
		StartedAt:      s.createdAt,
	}
	for _, a := range s.answers {
		q, _ := e.bank.Question(a.QuestionID)
		if q.Category == CategorySeveritySign && e.scorer.Positive(q, a.Value) {
			res.Emergency = true
		}
		res.Answers = append(res.Answers, AnsweredQuestion{
			QuestionID: a.QuestionID,
			Text:       q.Text,
			Value:      a.Value,
		})
	}
	return res, nil
}

// Assess applies the abstention rules of the engine's configuration.
func (e *Engine) Assess(res FinalResult) Abstain {
	return Assess(res, e.cfg)
}

func (e *Engine) eligible(q *Question, s *Session) bool {
	return !s.has(q.ID) && e.bank.dependenciesMet(q, s)
}

// mandatorySettled is true when every mandatory question is answered or can
// no longer become eligible.
func (e *Engine) mandatorySettled(s *Session) bool {
	for _, id := range e.cfg.Mandatory {
		q, _ := e.bank.Question(id)
		if !s.has(id) && e.bank.reachable(q, s) {
			return false
		}
	}
	return true
}

func (e *Engine) refresh(s *Session) {
	s.score = e.scorer.Score(s.answers)
	s.classification = e.scorer.Classify(s.score)
	s.breakdown = e.estimator.Estimate(s)
	s.confidence = s.breakdown.Confidence
}

func (e *Engine) terminate(s *Session, reason TerminationReason) {
	s.state = StateTerminated
	s.reason = reason
	s.pending = ""
}
