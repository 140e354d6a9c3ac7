// Package questionbank loads question banks and engine settings from YAML.
package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"dengue-triage/internal/triage"

	"gopkg.in/yaml.v3"
)

//go:embed dengue.yaml
var dengueYAML []byte

// Definition is the YAML document: engine settings plus the questions.
type Definition struct {
	Name      string          `yaml:"name"`
	Version   string          `yaml:"version"`
	Config    triage.Config   `yaml:"config"`
	Questions []QuestionEntry `yaml:"questions"`
}

type QuestionEntry struct {
	ID           string            `yaml:"id"`
	Text         string            `yaml:"text"`
	Help         string            `yaml:"help,omitempty"`
	Unit         string            `yaml:"unit,omitempty"`
	Category     string            `yaml:"category"`
	AnswerType   string            `yaml:"answer_type"`
	Weight       float64           `yaml:"clinical_weight"`
	Prior        float64           `yaml:"prior_probability"`
	Min          *float64          `yaml:"min,omitempty"`
	Max          *float64          `yaml:"max,omitempty"`
	AllowUnknown bool              `yaml:"allow_unknown,omitempty"`
	Integer      bool              `yaml:"integer,omitempty"`
	DependsOn    []DependencyEntry `yaml:"depends_on,omitempty"`
	Options      []OptionEntry     `yaml:"options,omitempty"`
	Bands        []BandEntry       `yaml:"bands,omitempty"`
	Shifts       []ShiftEntry      `yaml:"shifts,omitempty"`
}

// DependencyEntry holds the expected answer as a plain YAML scalar.
type DependencyEntry struct {
	Question string `yaml:"question"`
	Equals   any    `yaml:"equals"`
}

type OptionEntry struct {
	Value  string  `yaml:"value"`
	Weight float64 `yaml:"weight,omitempty"`
}

type BandEntry struct {
	Min    *float64 `yaml:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty"`
	Weight float64  `yaml:"weight"`
}

type ShiftEntry struct {
	When  DependencyEntry `yaml:"when"`
	Delta float64         `yaml:"delta"`
}

// Default returns the embedded dengue questionnaire.
func Default() (*triage.Bank, triage.Config, error) {
	return Parse(dengueYAML)
}

// LoadFile reads a bank from disk. An empty path selects the embedded default.
func LoadFile(path string) (*triage.Bank, triage.Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, triage.Config{}, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML bank. Settings missing from the document
// keep their triage.DefaultConfig values.
func Parse(data []byte) (*triage.Bank, triage.Config, error) {
	def := Definition{Config: triage.DefaultConfig()}
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, triage.Config{}, fmt.Errorf("decode question bank: %w", err)
	}

	questions := make([]triage.Question, 0, len(def.Questions))
	for _, entry := range def.Questions {
		q, err := entry.toQuestion()
		if err != nil {
			return nil, triage.Config{}, err
		}
		questions = append(questions, q)
	}

	bank, err := triage.NewBank(questions)
	if err != nil {
		return nil, triage.Config{}, err
	}
	if err := def.Config.Validate(bank); err != nil {
		return nil, triage.Config{}, err
	}
	return bank, def.Config, nil
}

func (e QuestionEntry) toQuestion() (triage.Question, error) {
	q := triage.Question{
		ID:           e.ID,
		Text:         e.Text,
		Help:         e.Help,
		Unit:         e.Unit,
		Category:     triage.Category(e.Category),
		AnswerType:   triage.AnswerType(e.AnswerType),
		Weight:       e.Weight,
		Prior:        e.Prior,
		Min:          e.Min,
		Max:          e.Max,
		AllowUnknown: e.AllowUnknown,
		Integer:      e.Integer,
	}
	for _, d := range e.DependsOn {
		dep, err := d.toDependency(e.ID)
		if err != nil {
			return q, err
		}
		q.DependsOn = append(q.DependsOn, dep)
	}
	for _, s := range e.Shifts {
		when, err := s.When.toDependency(e.ID)
		if err != nil {
			return q, err
		}
		q.Shifts = append(q.Shifts, triage.Shift{When: when, Delta: s.Delta})
	}
	for _, o := range e.Options {
		q.Options = append(q.Options, triage.Option{Value: o.Value, Weight: o.Weight})
	}
	for _, b := range e.Bands {
		q.Bands = append(q.Bands, triage.Band{Min: b.Min, Max: b.Max, Weight: b.Weight})
	}
	return q, nil
}

func (d DependencyEntry) toDependency(owner string) (triage.Dependency, error) {
	v, err := scalarValue(d.Equals)
	if err != nil {
		return triage.Dependency{}, &triage.ConfigurationError{
			Field:  owner,
			Reason: fmt.Sprintf("dependency on %q: %v", d.Question, err),
		}
	}
	return triage.Dependency{QuestionID: d.Question, Equals: v}, nil
}

func scalarValue(raw any) (triage.Value, error) {
	switch v := raw.(type) {
	case bool:
		return triage.Bool(v), nil
	case int:
		return triage.Number(float64(v)), nil
	case float64:
		return triage.Number(v), nil
	case string:
		return triage.Choice(v), nil
	case nil:
		return triage.Unknown(), fmt.Errorf("equals is required")
	}
	return triage.Unknown(), fmt.Errorf("unsupported value %v (%T)", raw, raw)
}
