package triage

import (
	"math"
	"sort"
)

const (
	minShiftedPrior = 0.05
	maxShiftedPrior = 0.95
)

// Entropy is the binary entropy of p in bits.
func Entropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

// Selector picks the next question by expected information gain.
type Selector struct {
	bank      *Bank
	mandatory map[string]bool
	first     bool
}

// NewSelector builds a selector. With mandatoryFirst set, eligible mandatory
// questions always rank ahead of the rest.
func NewSelector(bank *Bank, mandatory []string, mandatoryFirst bool) *Selector {
	m := make(map[string]bool, len(mandatory))
	for _, id := range mandatory {
		m[id] = true
	}
	return &Selector{bank: bank, mandatory: m, first: mandatoryFirst}
}

// Prior is the question's prior after applying the shifts satisfied by the session.
func (sel *Selector) Prior(q *Question, s *Session) float64 {
	p := q.Prior
	shifted := false
	for _, sh := range q.Shifts {
		if satisfied(sh.When, s) {
			p += sh.Delta
			shifted = true
		}
	}
	if shifted {
		p = math.Min(maxShiftedPrior, math.Max(minShiftedPrior, p))
	}
	return p
}

// Gain is Weight × Entropy(prior).
func (sel *Selector) Gain(q *Question, s *Session) float64 {
	return q.Weight * Entropy(sel.Prior(q, s))
}

// Ranked is a question with its gain for the current session.
type Ranked struct {
	Question *Question
	Gain     float64
}

// Rank orders the eligible questions, best first.
func (sel *Selector) Rank(s *Session) []Ranked {
	eligible := sel.bank.Eligible(s)
	out := make([]Ranked, len(eligible))
	for i, q := range eligible {
		out[i] = Ranked{Question: q, Gain: sel.Gain(q, s)}
	}
	sort.SliceStable(out, func(i, j int) bool { return sel.before(out[i], out[j]) })
	return out
}

// Select returns the best eligible question, or ErrNoMoreQuestions.
func (sel *Selector) Select(s *Session) (*Question, error) {
	var best *Ranked
	for _, q := range sel.bank.Eligible(s) {
		r := Ranked{Question: q, Gain: sel.Gain(q, s)}
		if best == nil || sel.before(r, *best) {
			best = &r
		}
	}
	if best == nil {
		return nil, ErrNoMoreQuestions
	}
	return best.Question, nil
}

func (sel *Selector) before(a, b Ranked) bool {
	if sel.first {
		am, bm := sel.mandatory[a.Question.ID], sel.mandatory[b.Question.ID]
		if am != bm {
			return am
		}
	}
	if a.Gain != b.Gain {
		return a.Gain > b.Gain
	}
	if a.Question.Weight != b.Question.Weight {
		return a.Question.Weight > b.Question.Weight
	}
	return a.Question.ID < b.Question.ID
}
