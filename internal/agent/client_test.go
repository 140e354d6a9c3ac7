package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dengue-triage/internal/triage"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() triage.FinalResult {
	return triage.FinalResult{
		SessionID:      "s-1",
		Classification: triage.ClassAlto,
		Color:          triage.ClassAlto.Color(),
		Score:          7.5,
		Confidence:     0.9,
		CriticalSigns:  []string{"dor_abdominal_intensa"},
		Answers: []triage.AnsweredQuestion{
			{QuestionID: "febre_presente", Text: "Febre?", Value: triage.Bool(true)},
			{QuestionID: "idade", Value: triage.Number(34)},
		},
	}
}

func TestRecommendWithoutKeyUsesConduct(t *testing.T) {
	advisor := NewDeepSeekClient("", "http://unused", "deepseek-chat")

	got, err := advisor.Recommend(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, triage.ClassAlto.Conduct(), got)
}

func TestLocalRecommendation(t *testing.T) {
	res := sampleResult()
	res.Emergency = true
	res.LowConfidence = true

	got := LocalRecommendation(res)
	assert.Contains(t, got, "SINAL DE GRAVIDADE")
	assert.Contains(t, got, triage.ClassAlto.Conduct())
	assert.Contains(t, got, "avaliação presencial")
}

func TestRecommendCallsChatAPI(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Hidratar e reavaliar.  "}}]}`))
	}))
	defer srv.Close()

	advisor := NewDeepSeekClient("secret", srv.URL+"/", "deepseek-chat")
	text, err := advisor.Recommend(context.Background(), sampleResult())
	require.NoError(t, err)

	assert.Equal(t, "Hidratar e reavaliar.", text)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "Classificação: Alto")
	assert.Contains(t, got.Messages[1].Content, "- Febre?: sim")
	assert.Contains(t, got.Messages[1].Content, "- idade: 34")
}

func TestRecommendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewDeepSeekClient("secret", srv.URL, "m").Recommend(context.Background(), sampleResult())
	assert.ErrorContains(t, err, "429")
}
