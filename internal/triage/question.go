package triage

// Category groups questions by clinical role.
type Category string

const (
	CategoryDemographic  Category = "demographic"
	CategorySymptom      Category = "symptom"
	CategoryAlarmSign    Category = "alarm_sign"
	CategorySeveritySign Category = "severity_sign"
	CategoryComorbidity  Category = "comorbidity"
	CategoryLabValue     Category = "lab_value"
)

func (c Category) valid() bool {
	switch c {
	case CategoryDemographic, CategorySymptom, CategoryAlarmSign,
		CategorySeveritySign, CategoryComorbidity, CategoryLabValue:
		return true
	}
	return false
}

// Critical reports whether an unanswered question of this category lowers clarity.
func (c Category) Critical() bool {
	return c == CategoryAlarmSign || c == CategorySeveritySign
}

// AnswerType is the declared type of a question's answer.
type AnswerType string

const (
	AnswerBoolean    AnswerType = "boolean"
	AnswerNumeric    AnswerType = "numeric"
	AnswerEnumerated AnswerType = "enumerated"
)

func (t AnswerType) kind() Kind {
	switch t {
	case AnswerBoolean:
		return KindBoolean
	case AnswerNumeric:
		return KindNumeric
	case AnswerEnumerated:
		return KindEnumerated
	}
	return ""
}

// Dependency makes a question eligible only after QuestionID was answered with Equals.
type Dependency struct {
	QuestionID string `json:"question_id"`
	Equals     Value  `json:"equals"`
}

// Option is one choice of an enumerated question.
type Option struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight,omitempty"`
}

// Band adds Weight to the score when a numeric answer falls in [Min, Max).
// A nil bound is open.
type Band struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Weight float64  `json:"weight"`
}

func (b Band) contains(x float64) bool {
	if b.Min != nil && x < *b.Min {
		return false
	}
	if b.Max != nil && x >= *b.Max {
		return false
	}
	return true
}

// Shift moves a question's prior by Delta once When is satisfied.
type Shift struct {
	When  Dependency `json:"when"`
	Delta float64    `json:"delta"`
}

// Question is an immutable entry of the bank.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Help         string       `json:"help,omitempty"`
	Unit         string       `json:"unit,omitempty"`
	Category     Category     `json:"category"`
	AnswerType   AnswerType   `json:"answer_type"`
	Weight       float64      `json:"clinical_weight"`
	Prior        float64      `json:"prior_probability"`
	DependsOn    []Dependency `json:"depends_on,omitempty"`
	Min          *float64     `json:"min,omitempty"`
	Max          *float64     `json:"max,omitempty"`
	Options      []Option     `json:"options,omitempty"`
	Bands        []Band       `json:"bands,omitempty"`
	Shifts       []Shift      `json:"shifts,omitempty"`
	AllowUnknown bool         `json:"allow_unknown,omitempty"`
	// Integer numeric questions reject fractional answers.
	Integer      bool         `json:"integer,omitempty"`
}

func (q *Question) option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}
