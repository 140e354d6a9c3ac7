// Package evaluation replays scripted patients through the triage engine and
// measures how often the final classification matches the expected one.
package evaluation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"dengue-triage/internal/triage"

	"gopkg.in/yaml.v3"
)

//go:embed golden.yaml
var goldenYAML []byte

// Case is a scripted patient. Facts maps question ids to plain YAML scalars;
// a null fact answers "unknown".
type Case struct {
	ID              string                `yaml:"id"`
	Description     string                `yaml:"description"`
	Expected        triage.Classification `yaml:"expected"`
	ExpectEmergency bool                  `yaml:"expect_emergency"`
	Facts           map[string]any        `yaml:"facts"`
}

type GoldenSet struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Cases   []Case `yaml:"cases"`
}

// DefaultGoldenSet returns the embedded dengue cases.
func DefaultGoldenSet() (GoldenSet, error) {
	return ParseGoldenSet(goldenYAML)
}

// LoadGoldenSet reads cases from disk; an empty path selects the embedded set.
func LoadGoldenSet(path string) (GoldenSet, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultGoldenSet()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return GoldenSet{}, fmt.Errorf("read golden set: %w", err)
	}
	return ParseGoldenSet(data)
}

func ParseGoldenSet(data []byte) (GoldenSet, error) {
	var set GoldenSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return GoldenSet{}, fmt.Errorf("decode golden set: %w", err)
	}
	seen := make(map[string]bool, len(set.Cases))
	for _, c := range set.Cases {
		if c.ID == "" {
			return GoldenSet{}, fmt.Errorf("golden set: case without id")
		}
		if seen[c.ID] {
			return GoldenSet{}, fmt.Errorf("golden set: duplicate case %s", c.ID)
		}
		seen[c.ID] = true
		if c.Expected.Rank() < 0 {
			return GoldenSet{}, fmt.Errorf("golden set: case %s has unknown classification %q", c.ID, c.Expected)
		}
	}
	return set, nil
}

// Check reports facts that name questions missing from bank.
func (s GoldenSet) Check(bank *triage.Bank) error {
	for _, c := range s.Cases {
		for id := range c.Facts {
			if _, ok := bank.Question(id); !ok {
				return fmt.Errorf("case %s: unknown question %q", c.ID, id)
			}
		}
	}
	return nil
}

// answer turns the fact for q into a Value. Missing facts read as a negative
// answer: false, the first option, or unknown for numbers that allow it.
func (c Case) answer(q *triage.Question) (triage.Value, error) {
	raw, ok := c.Facts[q.ID]
	if !ok {
		switch q.AnswerType {
		case triage.AnswerBoolean:
			return triage.Bool(false), nil
		case triage.AnswerEnumerated:
			if len(q.Options) > 0 {
				return triage.Choice(q.Options[0].Value), nil
			}
		case triage.AnswerNumeric:
			if q.AllowUnknown {
				return triage.Unknown(), nil
			}
		}
		return triage.Value{}, fmt.Errorf("case %s has no fact for %s", c.ID, q.ID)
	}

	switch v := raw.(type) {
	case nil:
		return triage.Unknown(), nil
	case bool:
		return triage.Bool(v), nil
	case int:
		return triage.Number(float64(v)), nil
	case float64:
		return triage.Number(v), nil
	case string:
		return triage.ParseAnswer(q, v)
	}
	return triage.Value{}, fmt.Errorf("case %s: unsupported fact %s=%v (%T)", c.ID, q.ID, raw, raw)
}
