package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dengue-triage/internal/evaluation"
)

const smallBankYAML = `
name: small
config:
  mandatory: [febre, idoso]
  primary_symptom: febre
  abstention:
    min_answers: 1
    threshold: 0
questions:
  - id: febre
    text: Tem febre?
    category: symptom
    answer_type: boolean
    clinical_weight: 5
    prior_probability: 0.5
  - id: choque
    text: Sinais de choque?
    category: severity_sign
    answer_type: boolean
    clinical_weight: 5
    prior_probability: 0.05
  - id: idoso
    text: Mais de 65 anos?
    category: demographic
    answer_type: boolean
    clinical_weight: 2
    prior_probability: 0.5
`

func writeBank(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallBankYAML), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAskEmergency(t *testing.T) {
	out, err := execute(t, "talvez\nsim\nnão\nsim\n", "ask", "--bank", writeBank(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Tem febre?")
	assert.Contains(t, out, "answer sim or não")
	assert.Contains(t, out, "Sinais de choque?")
	assert.Contains(t, out, "Classificação: Crítico")
	assert.Contains(t, out, "SINAL DE GRAVIDADE")
	assert.Contains(t, out, "encerramento: emergency")
}

func TestAskInputEnded(t *testing.T) {
	_, err := execute(t, "sim\n", "ask", "--bank", writeBank(t))
	assert.ErrorContains(t, err, "input ended")
}

func TestAskConfidenceOverride(t *testing.T) {
	out, err := execute(t, "sim\nnão\n", "ask", "--bank", writeBank(t), "--confidence", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "encerramento: confident")
	assert.NotContains(t, out, "Sinais de choque?")

	_, err = execute(t, "", "ask", "--bank", writeBank(t), "--confidence", "2")
	assert.ErrorContains(t, err, "confidence_threshold")
}

func TestBankCommand(t *testing.T) {
	out, err := execute(t, "", "bank", "--bank", writeBank(t))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3)
	assert.Contains(t, lines[1], "febre")
	assert.Contains(t, lines[2], "idoso")
	assert.Contains(t, lines[3], "choque")
	assert.Contains(t, out, "3 perguntas elegíveis de 3")
}

func TestEvalJSON(t *testing.T) {
	out, err := execute(t, "", "eval", "--json")
	require.NoError(t, err)

	var rep evaluation.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 11, rep.Total)
	assert.Len(t, rep.Cases, 11)
}

func TestEvalText(t *testing.T) {
	out, err := execute(t, "", "eval")
	require.NoError(t, err)
	assert.Contains(t, out, "GS-001")
	assert.Contains(t, out, "Acurácia:")
}

func TestBadBank(t *testing.T) {
	_, err := execute(t, "", "bank", "--bank", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read question bank")
}
