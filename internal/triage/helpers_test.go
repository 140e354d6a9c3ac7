package triage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

// smallBank has three mandatory questions (q1..q3) and two optional ones.
func smallBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := NewBank([]Question{
		{ID: "q1", Text: "Febre?", Category: CategorySymptom, AnswerType: AnswerBoolean, Weight: 5, Prior: 0.5},
		{ID: "q2", Text: "Dor de cabeça?", Category: CategorySymptom, AnswerType: AnswerBoolean, Weight: 3, Prior: 0.5},
		{ID: "q3", Text: "Idoso?", Category: CategoryDemographic, AnswerType: AnswerBoolean, Weight: 2, Prior: 0.5},
		{ID: "q4", Text: "Diabetes?", Category: CategoryComorbidity, AnswerType: AnswerBoolean, Weight: 1, Prior: 0.3},
		{ID: "q5", Text: "Hipertensão?", Category: CategoryComorbidity, AnswerType: AnswerBoolean, Weight: 1, Prior: 0.2},
	})
	require.NoError(t, err)
	return bank
}

func smallConfig() Config {
	return Config{
		Thresholds:          Thresholds{BaixoMax: 3, MedioMax: 6, AltoMax: 10},
		Blend:               Blend{Completeness: 0.4, Clarity: 0.35, Coverage: 0.25},
		ConfidenceThreshold: 0.85,
		Mandatory:           []string{"q1", "q2", "q3"},
	}
}

// clinicalBank exercises every answer type, dependencies and critical questions.
func clinicalBank(t *testing.T) *Bank {
	t.Helper()
	bank, err := NewBank([]Question{
		{ID: "idade", Category: CategoryDemographic, AnswerType: AnswerNumeric, Weight: 1.5, Prior: 0.5,
			Min: ptr(0), Max: ptr(120),
			Bands: []Band{{Max: ptr(5), Weight: 1}, {Min: ptr(66), Weight: 1.5}}},
		{ID: "sexo", Category: CategoryDemographic, AnswerType: AnswerEnumerated, Weight: 0.5, Prior: 0.5,
			Options: []Option{{Value: "Masculino"}, {Value: "Feminino"}}},
		{ID: "gestante", Category: CategoryComorbidity, AnswerType: AnswerBoolean, Weight: 1.5, Prior: 0.1,
			DependsOn: []Dependency{{QuestionID: "sexo", Equals: Choice("Feminino")}}},
		{ID: "febre", Category: CategorySymptom, AnswerType: AnswerBoolean, Weight: 2, Prior: 0.7},
		{ID: "dor_abdominal", Category: CategoryAlarmSign, AnswerType: AnswerBoolean, Weight: 3, Prior: 0.2,
			AllowUnknown: true,
			Shifts:       []Shift{{When: Dependency{QuestionID: "febre", Equals: Bool(true)}, Delta: 0.3}}},
		{ID: "choque", Category: CategorySeveritySign, AnswerType: AnswerBoolean, Weight: 5, Prior: 0.05},
		{ID: "plaquetas", Category: CategoryLabValue, AnswerType: AnswerNumeric, Weight: 2, Prior: 0.3,
			Min: ptr(0), AllowUnknown: true,
			Bands: []Band{
				{Max: ptr(50000), Weight: 3},
				{Min: ptr(50000), Max: ptr(100000), Weight: 2},
				{Min: ptr(100000), Max: ptr(150000), Weight: 1},
			}},
		{ID: "diabetes", Category: CategoryComorbidity, AnswerType: AnswerBoolean, Weight: 1, Prior: 0.1},
	})
	require.NoError(t, err)
	return bank
}

func clinicalConfig() Config {
	cfg := DefaultConfig()
	cfg.Mandatory = []string{"idade", "sexo", "febre"}
	cfg.PrimarySymptom = "febre"
	return cfg
}

func newEngine(t *testing.T, bank *Bank, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(bank, cfg)
	require.NoError(t, err)
	return e
}

// negative answers q with the lowest-risk value it accepts.
func negative(q *Question) Value {
	switch q.AnswerType {
	case AnswerNumeric:
		for _, x := range []float64{30, 200000} {
			if q.Max != nil && x > *q.Max {
				continue
			}
			inBand := false
			for _, b := range q.Bands {
				inBand = inBand || b.contains(x)
			}
			if !inBand {
				return Number(x)
			}
		}
		return Number(0)
	case AnswerEnumerated:
		return Choice(q.Options[0].Value)
	}
	return Bool(false)
}

// positive answers q with a value that contributes to the score.
func positive(q *Question) Value {
	switch q.AnswerType {
	case AnswerNumeric:
		return Number(1)
	case AnswerEnumerated:
		return Choice(q.Options[len(q.Options)-1].Value)
	}
	return Bool(true)
}
