package triage

import "fmt"

// Abstain says whether the system should defer to an in-person evaluation.
type Abstain struct {
	Abstain bool     `json:"abstain"`
	Reasons []string `json:"reasons,omitempty"`
}

// Assess applies the abstention rules to a finished triage.
func Assess(res FinalResult, cfg Config) Abstain {
	var out Abstain
	add := func(format string, args ...any) {
		out.Abstain = true
		out.Reasons = append(out.Reasons, fmt.Sprintf(format, args...))
	}

	if n := len(res.Answers); n < cfg.Abstention.MinAnswers {
		add("dados insuficientes: %d respostas, mínimo %d", n, cfg.Abstention.MinAnswers)
	}
	if res.Confidence < cfg.Abstention.Threshold {
		add("confiança baixa: %.2f abaixo de %.2f", res.Confidence, cfg.Abstention.Threshold)
	}
	if cfg.PrimarySymptom != "" && hasAlarm(res) {
		if v, ok := res.Value(cfg.PrimarySymptom); ok {
			if present, isBool := v.AsBool(); isBool && !present {
				add("quadro atípico: sinais de alarme sem %s", cfg.PrimarySymptom)
			}
		}
	}
	return out
}

// hasAlarm reports whether any critical sign was answered positive.
func hasAlarm(res FinalResult) bool {
	return len(res.CriticalSigns) > 0
}
