package triage

import "math"

// Thresholds split the score line into the four classifications:
// score < BaixoMax is Baixo, < MedioMax Médio, < AltoMax Alto, otherwise Crítico.
type Thresholds struct {
	BaixoMax float64 `json:"baixo_max" yaml:"baixo_max"`
	MedioMax float64 `json:"medio_max" yaml:"medio_max"`
	AltoMax  float64 `json:"alto_max" yaml:"alto_max"`
}

// Blend weights the confidence factors. They must sum to 1.
type Blend struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Clarity      float64 `json:"clarity" yaml:"clarity"`
	Coverage     float64 `json:"coverage" yaml:"coverage"`
}

// Adjustments are score additions that do not belong to a single question.
type Adjustments struct {
	// ComorbidityCount positive comorbidities add ComorbidityBonus once. Zero disables it.
	ComorbidityCount int     `json:"comorbidity_count" yaml:"comorbidity_count"`
	ComorbidityBonus float64 `json:"comorbidity_bonus" yaml:"comorbidity_bonus"`
}

// Abstention decides when a finished triage should defer to an in-person evaluation.
type Abstention struct {
	MinAnswers int     `json:"min_answers" yaml:"min_answers"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
}

// Config is the immutable engine configuration. Engines built from different
// configs can run side by side in one process.
type Config struct {
	Thresholds          Thresholds  `json:"thresholds" yaml:"thresholds"`
	Blend               Blend       `json:"blend" yaml:"blend"`
	ConfidenceThreshold float64     `json:"confidence_threshold" yaml:"confidence_threshold"`
	Mandatory           []string    `json:"mandatory" yaml:"mandatory"`
	MandatoryFirst      bool        `json:"mandatory_first" yaml:"mandatory_first"`
	EmergencyStop       bool        `json:"emergency_stop" yaml:"emergency_stop"`
	PrimarySymptom      string      `json:"primary_symptom,omitempty" yaml:"primary_symptom"`
	Adjustments         Adjustments `json:"adjustments" yaml:"adjustments"`
	Abstention          Abstention  `json:"abstention" yaml:"abstention"`
}

// DefaultConfig mirrors the constants used by the dengue questionnaire.
// They are empirical defaults, not a clinical calibration.
func DefaultConfig() Config {
	return Config{
		Thresholds:          Thresholds{BaixoMax: 3, MedioMax: 6, AltoMax: 10},
		Blend:               Blend{Completeness: 0.4, Clarity: 0.35, Coverage: 0.25},
		ConfidenceThreshold: 0.85,
		Mandatory:           []string{"idade", "sexo", "dias_sintomas", "febre_presente"},
		MandatoryFirst:      true,
		EmergencyStop:       true,
		PrimarySymptom:      "febre_presente",
		Adjustments:         Adjustments{ComorbidityCount: 2, ComorbidityBonus: 1.0},
		Abstention:          Abstention{MinAnswers: 4, Threshold: 0.6},
	}
}

const blendTolerance = 1e-9

// Validate checks the configuration against a bank.
func (c Config) Validate(bank *Bank) error {
	t := c.Thresholds
	if !finite(t.BaixoMax, t.MedioMax, t.AltoMax) {
		return configErr("thresholds", "must be finite")
	}
	if t.BaixoMax < 0 || !(t.BaixoMax < t.MedioMax && t.MedioMax < t.AltoMax) {
		return configErr("thresholds", "need 0 <= baixo_max < medio_max < alto_max, got %v/%v/%v",
			t.BaixoMax, t.MedioMax, t.AltoMax)
	}

	b := c.Blend
	if !finite(b.Completeness, b.Clarity, b.Coverage) || b.Completeness < 0 || b.Clarity < 0 || b.Coverage < 0 {
		return configErr("blend", "weights must be non-negative numbers")
	}
	if sum := b.Completeness + b.Clarity + b.Coverage; math.Abs(sum-1) > blendTolerance {
		return configErr("blend", "weights sum to %v, want 1", sum)
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 || math.IsNaN(c.ConfidenceThreshold) {
		return configErr("confidence_threshold", "%v outside [0,1]", c.ConfidenceThreshold)
	}

	seen := make(map[string]bool, len(c.Mandatory))
	for _, id := range c.Mandatory {
		if _, ok := bank.Question(id); !ok {
			return configErr("mandatory", "unknown question %q", id)
		}
		if seen[id] {
			return configErr("mandatory", "question %q listed twice", id)
		}
		seen[id] = true
	}

	if c.PrimarySymptom != "" {
		q, ok := bank.Question(c.PrimarySymptom)
		if !ok {
			return configErr("primary_symptom", "unknown question %q", c.PrimarySymptom)
		}
		if q.AnswerType != AnswerBoolean {
			return configErr("primary_symptom", "question %q must be boolean", c.PrimarySymptom)
		}
	}

	if c.Adjustments.ComorbidityCount < 0 || c.Adjustments.ComorbidityBonus < 0 {
		return configErr("adjustments", "must be non-negative")
	}
	if c.Abstention.MinAnswers < 0 || c.Abstention.Threshold < 0 || c.Abstention.Threshold > 1 {
		return configErr("abstention", "min_answers must be >= 0 and threshold within [0,1]")
	}
	return nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
