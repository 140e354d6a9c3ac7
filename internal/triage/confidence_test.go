package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	bank := clinicalBank(t)
	est := NewEstimator(bank, Blend{Completeness: 0.4, Clarity: 0.35, Coverage: 0.25}, []string{"idade", "sexo", "febre"})

	t.Run("empty session", func(t *testing.T) {
		b := est.Estimate(newSession(""))
		assert.Equal(t, 0.0, b.Completeness)
		assert.Equal(t, 0.0, b.Clarity, "both critical questions are unanswered")
		assert.Equal(t, 0.0, b.Coverage)
		assert.Equal(t, 0.0, b.Confidence)
	})

	t.Run("partial", func(t *testing.T) {
		s := newSession("")
		s.record("febre", Bool(true))
		s.record("dor_abdominal", Unknown())
		s.record("choque", Bool(false))

		b := est.Estimate(s)
		assert.Equal(t, 1.0, b.Completeness, "capped at one")
		assert.InDelta(t, 0.5, b.Clarity, 1e-12, "unknown counts as unclear")
		assert.InDelta(t, 3.0/6.0, b.Coverage, 1e-12)
		assert.InDelta(t, 0.4+0.35*0.5+0.25*0.5, b.Confidence, 1e-12)
	})
}

func TestEstimateWithoutMandatoryOrCritical(t *testing.T) {
	bank, _ := NewBank([]Question{boolQ("a"), boolQ("b")})
	est := NewEstimator(bank, Blend{Completeness: 0.5, Clarity: 0.5}, nil)

	b := est.Estimate(newSession(""))
	assert.Equal(t, 1.0, b.Completeness)
	assert.Equal(t, 1.0, b.Clarity)
	assert.Equal(t, 1.0, b.Confidence)
}
