package triage

// Classification is the four-level risk grade.
type Classification string

const (
	ClassBaixo   Classification = "Baixo"
	ClassMedio   Classification = "Médio"
	ClassAlto    Classification = "Alto"
	ClassCritico Classification = "Crítico"
)

// Rank orders classifications from 0 (Baixo) to 3 (Crítico); -1 when unknown.
func (c Classification) Rank() int {
	switch c {
	case ClassBaixo:
		return 0
	case ClassMedio:
		return 1
	case ClassAlto:
		return 2
	case ClassCritico:
		return 3
	}
	return -1
}

// ParseClassification accepts the canonical names, with or without accents.
func ParseClassification(s string) (Classification, bool) {
	switch s {
	case "Baixo", "baixo", "BAIXO":
		return ClassBaixo, true
	case "Médio", "Medio", "médio", "medio", "MÉDIO", "MEDIO":
		return ClassMedio, true
	case "Alto", "alto", "ALTO":
		return ClassAlto, true
	case "Crítico", "Critico", "crítico", "critico", "CRÍTICO", "CRITICO":
		return ClassCritico, true
	}
	return "", false
}

// Color is the triage colour shown next to the classification.
func (c Classification) Color() string {
	switch c {
	case ClassCritico:
		return "vermelho"
	case ClassAlto:
		return "laranja"
	case ClassMedio:
		return "amarelo"
	}
	return "verde"
}

// Conduct is the recommended course of action for the classification.
func (c Classification) Conduct() string {
	switch c {
	case ClassCritico:
		return "ATENDIMENTO IMEDIATO - Encaminhar para emergência"
	case ClassAlto:
		return "PRIORIDADE ALTA - Avaliação médica urgente"
	case ClassMedio:
		return "Monitoramento intensivo - Reavaliação em 24h"
	}
	return "Tratamento ambulatorial - Orientações e retorno se piora"
}
