package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswer(t *testing.T) {
	bank := clinicalBank(t)
	q := func(id string) *Question {
		out, ok := bank.Question(id)
		require.True(t, ok)
		return out
	}

	tests := []struct {
		question string
		raw      string
		want     Value
	}{
		{"febre", "Sim", Bool(true)},
		{"febre", " s ", Bool(true)},
		{"febre", "NÃO", Bool(false)},
		{"febre", "nao", Bool(false)},
		{"plaquetas", "85000", Number(85000)},
		{"plaquetas", "37,5", Number(37.5)},
		{"plaquetas", "?", Unknown()},
		{"dor_abdominal", "não sei", Unknown()},
		{"sexo", "feminino", Choice("Feminino")},
		{"sexo", "1", Choice("Masculino")},
	}
	for _, tt := range tests {
		t.Run(tt.question+"/"+tt.raw, func(t *testing.T) {
			got, err := ParseAnswer(q(tt.question), tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}

func TestParseAnswerErrors(t *testing.T) {
	bank := clinicalBank(t)
	tests := []struct {
		question string
		raw      string
	}{
		{"febre", ""},
		{"febre", "talvez"},
		{"febre", "?"},
		{"plaquetas", "muitas"},
		{"plaquetas", "1.500.000"},
		{"plaquetas", "150.000,5"},
		{"sexo", "3"},
		{"sexo", "Outro"},
	}
	for _, tt := range tests {
		q, _ := bank.Question(tt.question)
		_, err := ParseAnswer(q, tt.raw)
		var invalid *InvalidAnswerError
		assert.ErrorAs(t, err, &invalid, "%s=%q", tt.question, tt.raw)
	}
}
