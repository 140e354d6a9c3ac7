package triage

import "math"

// Bank is the validated, read-only question set shared by every session.
type Bank struct {
	questions  []Question
	index      map[string]int
	categories []Category
}

// NewBank validates the definitions and freezes them. Duplicate ids, dangling
// or cyclic dependencies and malformed questions yield a *ConfigurationError.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, configErr("questions", "bank is empty")
	}

	b := &Bank{
		questions: make([]Question, len(questions)),
		index:     make(map[string]int, len(questions)),
	}
	seenCategory := make(map[Category]bool)

	for i, q := range questions {
		if q.ID == "" {
			return nil, configErr("questions", "question #%d has no id", i)
		}
		if _, dup := b.index[q.ID]; dup {
			return nil, configErr(q.ID, "duplicate question id")
		}
		if err := checkQuestion(q); err != nil {
			return nil, err
		}
		b.questions[i] = cloneQuestion(q)
		b.index[q.ID] = i
		if !seenCategory[q.Category] {
			seenCategory[q.Category] = true
			b.categories = append(b.categories, q.Category)
		}
	}

	for _, q := range b.questions {
		for _, dep := range q.DependsOn {
			if err := b.checkReference(q.ID, dep); err != nil {
				return nil, err
			}
		}
		for _, s := range q.Shifts {
			if err := b.checkReference(q.ID, s.When); err != nil {
				return nil, err
			}
		}
	}

	if err := b.checkAcyclic(); err != nil {
		return nil, err
	}
	return b, nil
}

func checkQuestion(q Question) error {
	if !q.Category.valid() {
		return configErr(q.ID, "unknown category %q", q.Category)
	}
	if q.AnswerType.kind() == "" {
		return configErr(q.ID, "unknown answer type %q", q.AnswerType)
	}
	if q.Weight < 0 || math.IsNaN(q.Weight) || math.IsInf(q.Weight, 0) {
		return configErr(q.ID, "clinical weight must be a non-negative number")
	}
	if q.Prior < 0 || q.Prior > 1 || math.IsNaN(q.Prior) {
		return configErr(q.ID, "prior probability %v outside [0,1]", q.Prior)
	}
	if q.Min != nil && q.Max != nil && *q.Min > *q.Max {
		return configErr(q.ID, "min %v greater than max %v", *q.Min, *q.Max)
	}

	switch q.AnswerType {
	case AnswerEnumerated:
		if len(q.Options) == 0 {
			return configErr(q.ID, "enumerated question without options")
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if o.Value == "" || seen[o.Value] {
				return configErr(q.ID, "empty or duplicate option %q", o.Value)
			}
			if o.Weight < 0 {
				return configErr(q.ID, "option %q has a negative weight", o.Value)
			}
			seen[o.Value] = true
		}
	case AnswerNumeric:
		for _, band := range q.Bands {
			if band.Weight < 0 {
				return configErr(q.ID, "band with negative weight")
			}
			if band.Min != nil && band.Max != nil && *band.Min >= *band.Max {
				return configErr(q.ID, "empty band [%v, %v)", *band.Min, *band.Max)
			}
		}
	}
	if len(q.Bands) > 0 && q.AnswerType != AnswerNumeric {
		return configErr(q.ID, "bands are only valid on numeric questions")
	}
	if q.Integer && q.AnswerType != AnswerNumeric {
		return configErr(q.ID, "integer is only valid on numeric questions")
	}
	return nil
}

func (b *Bank) checkReference(owner string, dep Dependency) error {
	target, ok := b.Question(dep.QuestionID)
	if !ok {
		return configErr(owner, "depends on unknown question %q", dep.QuestionID)
	}
	if dep.QuestionID == owner {
		return configErr(owner, "depends on itself")
	}
	if dep.Equals.Kind() != target.AnswerType.kind() {
		return configErr(owner, "dependency on %q expects a %s value, got %s",
			dep.QuestionID, target.AnswerType, dep.Equals.Kind())
	}
	if target.AnswerType == AnswerEnumerated {
		choice, _ := dep.Equals.AsChoice()
		if _, ok := target.option(choice); !ok {
			return configErr(owner, "dependency on %q names unknown option %q", dep.QuestionID, choice)
		}
	}
	return nil
}

// checkAcyclic walks the depends_on graph with white/grey/black colouring.
func (b *Bank) checkAcyclic() error {
	const (
		white = iota
		grey
		black
	)
	colour := make([]int, len(b.questions))

	var visit func(i int) error
	visit = func(i int) error {
		colour[i] = grey
		for _, dep := range b.questions[i].DependsOn {
			j := b.index[dep.QuestionID]
			switch colour[j] {
			case grey:
				return configErr(b.questions[i].ID, "dependency cycle through %q", dep.QuestionID)
			case white:
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		colour[i] = black
		return nil
	}

	for i := range b.questions {
		if colour[i] == white {
			if err := visit(i); err != nil {
				return err
			}
		}
	}
	return nil
}

// All returns a copy of the questions in declaration order.
func (b *Bank) All() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

func (b *Bank) Len() int { return len(b.questions) }

// Question looks a question up by id. The pointer must be treated as read-only.
func (b *Bank) Question(id string) (*Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return nil, false
	}
	return &b.questions[i], true
}

// Categories lists the distinct categories present, in first-seen order.
func (b *Bank) Categories() []Category {
	return append([]Category(nil), b.categories...)
}

// Eligible returns the unanswered questions whose dependencies are all met.
func (b *Bank) Eligible(s *Session) []*Question {
	var out []*Question
	for i := range b.questions {
		q := &b.questions[i]
		if s.has(q.ID) {
			continue
		}
		if b.dependenciesMet(q, s) {
			out = append(out, q)
		}
	}
	return out
}

func (b *Bank) dependenciesMet(q *Question, s *Session) bool {
	for _, dep := range q.DependsOn {
		if !satisfied(dep, s) {
			return false
		}
	}
	return true
}

func satisfied(dep Dependency, s *Session) bool {
	a, ok := s.answer(dep.QuestionID)
	return ok && a.Value.Equal(dep.Equals)
}

// reachable reports whether q is answered or may still become eligible,
// i.e. no dependency along its chain was answered with a different value.
func (b *Bank) reachable(q *Question, s *Session) bool {
	if s.has(q.ID) {
		return true
	}
	for _, dep := range q.DependsOn {
		if a, ok := s.answer(dep.QuestionID); ok {
			if !a.Value.Equal(dep.Equals) {
				return false
			}
			continue
		}
		parent, _ := b.Question(dep.QuestionID)
		if !b.reachable(parent, s) {
			return false
		}
	}
	return true
}

// critical lists the alarm and severity questions in declaration order.
func (b *Bank) critical() []*Question {
	var out []*Question
	for i := range b.questions {
		if b.questions[i].Category.Critical() {
			out = append(out, &b.questions[i])
		}
	}
	return out
}

func cloneQuestion(q Question) Question {
	q.DependsOn = append([]Dependency(nil), q.DependsOn...)
	q.Options = append([]Option(nil), q.Options...)
	q.Bands = append([]Band(nil), q.Bands...)
	q.Shifts = append([]Shift(nil), q.Shifts...)
	return q
}
