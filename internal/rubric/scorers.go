package rubric

import "strings"

// Scorer computes a criterion score from the serialized outputs blob.
type Scorer interface {
	Score(blob string) float64
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(blob string) float64

// Score implements Scorer.
func (f ScorerFunc) Score(blob string) float64 { return f(blob) }

// Registry maps criterion keys to scorers, with a fallback scorer for keys
// no scorer claims.
type Registry struct {
	scorers  map[string]Scorer
	fallback Scorer
}

// NewRegistry creates an empty registry with the given fallback.
func NewRegistry(fallback Scorer) *Registry {
	return &Registry{scorers: make(map[string]Scorer), fallback: fallback}
}

// Register binds a scorer to a criterion key, replacing any previous binding.
func (r *Registry) Register(key string, scorer Scorer) {
	r.scorers[key] = scorer
}

// Score dispatches to the scorer registered for key, or the fallback.
func (r *Registry) Score(key, blob string) float64 {
	if scorer, ok := r.scorers[key]; ok {
		return scorer.Score(blob)
	}
	return r.fallback.Score(blob)
}

// substringScorer awards hit when the blob contains needle, miss otherwise.
type substringScorer struct {
	needle string
	hit    float64
	miss   float64
}

func (s substringScorer) Score(blob string) float64 {
	if strings.Contains(blob, s.needle) {
		return s.hit
	}
	return s.miss
}

// fallbackScore is awarded to criteria with no registered scorer.
const fallbackScore = 0.5

// DefaultRegistry returns the built-in criterion scorers: each checks the
// outputs blob for a marker the well-formed envelope is expected to carry.
func DefaultRegistry() *Registry {
	r := NewRegistry(ScorerFunc(func(string) float64 { return fallbackScore }))
	r.Register("charter_alignment", substringScorer{needle: "policy", hit: 0.9, miss: 0.75})
	r.Register("clarity", substringScorer{needle: "persona_summary", hit: 0.85, miss: 0.7})
	r.Register("actionability", substringScorer{needle: "next_steps", hit: 0.88, miss: 0.6})
	r.Register("compliance", substringScorer{needle: "normalize", hit: 0.92, miss: 0.65})
	return r
}
