package evaluation

import (
	"context"
	"testing"

	"dengue-triage/internal/questionbank"
	"dengue-triage/internal/triage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallEngine(t *testing.T) *triage.Engine {
	t.Helper()
	bank, err := triage.NewBank([]triage.Question{
		{ID: "febre", Category: triage.CategorySymptom, AnswerType: triage.AnswerBoolean, Weight: 5, Prior: 0.5},
		{ID: "choque", Category: triage.CategorySeveritySign, AnswerType: triage.AnswerBoolean, Weight: 5, Prior: 0.05},
		{ID: "idoso", Category: triage.CategoryDemographic, AnswerType: triage.AnswerBoolean, Weight: 2, Prior: 0.5},
	})
	require.NoError(t, err)

	cfg := triage.DefaultConfig()
	cfg.Mandatory = []string{"febre", "idoso"}
	cfg.PrimarySymptom = "febre"
	cfg.Abstention = triage.Abstention{MinAnswers: 1, Threshold: 0}
	e, err := triage.NewEngine(bank, cfg)
	require.NoError(t, err)
	return e
}

func TestRunnerReport(t *testing.T) {
	set := GoldenSet{Cases: []Case{
		{ID: "alto", Expected: triage.ClassAlto, Facts: map[string]any{"febre": true, "idoso": true}},
		{ID: "choque", Expected: triage.ClassCritico, ExpectEmergency: true, Facts: map[string]any{"choque": true}},
	}}

	rep, err := NewRunner(smallEngine(t)).Run(context.Background(), set)
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Total)
	assert.Equal(t, 1, rep.Correct)
	assert.InDelta(t, 0.5, rep.Accuracy, 1e-9)
	assert.InDelta(t, 3.0, rep.MeanQuestions, 1e-9)
	assert.Equal(t, 1, rep.Abstentions)
	assert.Equal(t, 1, rep.Emergencies)
	assert.Equal(t, 1, rep.EmergenciesExpected)

	require.Len(t, rep.Cases, 2)
	assert.Equal(t, triage.ReasonConfident, rep.Cases[0].Reason)
	assert.InDelta(t, 7.0, rep.Cases[0].Score, 1e-9)

	second := rep.Cases[1]
	assert.False(t, second.Correct)
	assert.Equal(t, triage.ClassMedio, second.Got)
	assert.True(t, second.Emergency)
	assert.True(t, second.Abstained)
	assert.Equal(t, triage.ReasonEmergency, second.Reason)
}

func TestRunnerRejectsUnknownFacts(t *testing.T) {
	set := GoldenSet{Cases: []Case{{ID: "x", Expected: triage.ClassBaixo, Facts: map[string]any{"tosse": true}}}}
	_, err := NewRunner(smallEngine(t)).Run(context.Background(), set)
	assert.ErrorContains(t, err, `unknown question "tosse"`)
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := GoldenSet{Cases: []Case{{ID: "x", Expected: triage.ClassBaixo}}}
	_, err := NewRunner(smallEngine(t)).Run(ctx, set)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCaseAnswer(t *testing.T) {
	floor := 0.0
	age := &triage.Question{ID: "idade", AnswerType: triage.AnswerNumeric, Min: &floor}
	lab := &triage.Question{ID: "plaquetas", AnswerType: triage.AnswerNumeric, AllowUnknown: true}
	sex := &triage.Question{ID: "sexo", AnswerType: triage.AnswerEnumerated,
		Options: []triage.Option{{Value: "Masculino"}, {Value: "Feminino"}}}
	fever := &triage.Question{ID: "febre", AnswerType: triage.AnswerBoolean}

	c := Case{ID: "c", Facts: map[string]any{"idade": 40, "sexo": "feminino", "plaquetas": nil}}

	v, err := c.answer(age)
	require.NoError(t, err)
	assert.True(t, v.Equal(triage.Number(40)))

	v, err = c.answer(sex)
	require.NoError(t, err)
	assert.True(t, v.Equal(triage.Choice("Feminino")))

	v, err = c.answer(lab)
	require.NoError(t, err)
	assert.True(t, v.IsUnknown())

	v, err = c.answer(fever)
	require.NoError(t, err)
	assert.True(t, v.Equal(triage.Bool(false)))

	_, err = Case{ID: "empty"}.answer(age)
	assert.ErrorContains(t, err, "no fact for idade")
}

func TestParseGoldenSetErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing id", "cases:\n  - expected: Baixo\n", "without id"},
		{"duplicate", "cases:\n  - {id: a, expected: Baixo}\n  - {id: a, expected: Alto}\n", "duplicate case a"},
		{"bad class", "cases:\n  - {id: a, expected: Grave}\n", "unknown classification"},
		{"bad yaml", "cases: [", "decode golden set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGoldenSet([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDefaultGoldenSet(t *testing.T) {
	set, err := DefaultGoldenSet()
	require.NoError(t, err)
	require.Len(t, set.Cases, 11)

	bank, cfg, err := questionbank.Default()
	require.NoError(t, err)
	require.NoError(t, set.Check(bank))

	engine, err := triage.NewEngine(bank, cfg)
	require.NoError(t, err)

	rep, err := NewRunner(engine).Run(context.Background(), set)
	require.NoError(t, err)
	assert.Equal(t, 11, rep.Total)
	assert.GreaterOrEqual(t, rep.Accuracy, 0.0)
	assert.LessOrEqual(t, rep.Accuracy, 1.0)
	for _, c := range rep.Cases {
		assert.GreaterOrEqual(t, c.QuestionsAsked, len(cfg.Mandatory), c.CaseID)
		assert.LessOrEqual(t, c.QuestionsAsked, bank.Len(), c.CaseID)
	}
}
