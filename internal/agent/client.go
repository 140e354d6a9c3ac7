package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dengue-triage/internal/triage"

	"github.com/goccy/go-json"
)

// Advisor writes the recommendation text attached to a finished triage.
type Advisor interface {
	Recommend(ctx context.Context, res triage.FinalResult) (string, error)
}

type deepSeekClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewDeepSeekClient returns an Advisor backed by the DeepSeek chat API.
// Without an API key it answers with the local conduct text only.
func NewDeepSeekClient(apiKey, baseURL, model string) Advisor {
	return &deepSeekClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "Você é um assistente de triagem de dengue. Com base na classificação de risco " +
	"e nas respostas do paciente, escreva orientações curtas e objetivas em português para a equipe " +
	"de saúde. Não altere a classificação de risco informada."

func (c *deepSeekClient) Recommend(ctx context.Context, res triage.FinalResult) (string, error) {
	if c.apiKey == "" {
		return LocalRecommendation(res), nil
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: Summary(res)},
		},
		Temperature: 0.2,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deepseek api error: %s - %s", resp.Status, string(body))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode deepseek response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// LocalRecommendation is the conduct text for the classification, prefixed
// with an emergency notice when a severity sign was reported.
func LocalRecommendation(res triage.FinalResult) string {
	var b strings.Builder
	if res.Emergency {
		b.WriteString("SINAL DE GRAVIDADE DETECTADO. ")
	}
	b.WriteString(res.Classification.Conduct())
	if res.LowConfidence {
		b.WriteString(". Triagem incompleta: confirmar com avaliação presencial")
	}
	return b.String()
}

// Summary renders the result as the plain text sent to the model.
func Summary(res triage.FinalResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classificação: %s (%s), score %.1f, confiança %.2f\n",
		res.Classification, res.Color, res.Score, res.Confidence)
	if len(res.CriticalSigns) > 0 {
		fmt.Fprintf(&b, "Sinais críticos: %s\n", strings.Join(res.CriticalSigns, ", "))
	}
	b.WriteString("Respostas:\n")
	for _, a := range res.Answers {
		label := a.Text
		if label == "" {
			label = a.QuestionID
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, a.Value)
	}
	return b.String()
}
