// Package rubric scores synthesized agent outputs against a weighted
// criteria schema. Scoring is pure: the outputs mapping is serialized once
// and each criterion's scorer inspects that blob. Weights are taken verbatim
// from the schema and are not normalized; a schema whose weights do not sum
// to 1 is accepted as-is.
package rubric

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Criterion is one named, weighted scoring rule.
type Criterion struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
}

// Schema is the rubric document. Criteria order is preserved; duplicate keys
// are not deduplicated, the last occurrence wins in the score map.
type Schema struct {
	Criteria []Criterion `json:"criteria"`
}

// LoadSchema reads the rubric schema document. A missing file yields an
// empty schema (zero criteria); a malformed document is an error.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Schema{}, nil
		}
		return Schema{}, fmt.Errorf("read rubric schema %s: %w", path, err)
	}
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return Schema{}, fmt.Errorf("parse rubric schema %s: %w", path, err)
	}
	return schema, nil
}

// CriterionScore pairs a computed score with the schema weight it carries.
type CriterionScore struct {
	Score  float64 `json:"score" yaml:"score"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Evaluation is the scoring result for one run.
type Evaluation struct {
	Criteria      map[string]CriterionScore `json:"criteria" yaml:"criteria"`
	WeightedTotal float64                   `json:"weighted_total" yaml:"weighted_total"`
}

// Evaluator applies a schema to synthesized outputs using a scorer registry.
type Evaluator struct {
	Schema   Schema
	Registry *Registry
}

// NewEvaluator builds an evaluator over the default scorer registry.
func NewEvaluator(schema Schema) *Evaluator {
	return &Evaluator{Schema: schema, Registry: DefaultRegistry()}
}

// Evaluate scores outputs against every declared criterion and sums the
// weighted scores. Re-evaluating the same outputs yields identical results.
func (e *Evaluator) Evaluate(outputs any) Evaluation {
	blob, err := json.Marshal(outputs)
	if err != nil {
		blob = nil
	}

	criteria := make(map[string]CriterionScore, len(e.Schema.Criteria))
	for _, criterion := range e.Schema.Criteria {
		criteria[criterion.Key] = CriterionScore{
			Score:  e.Registry.Score(criterion.Key, string(blob)),
			Weight: criterion.Weight,
		}
	}

	total := 0.0
	for _, entry := range criteria {
		total += entry.Score * entry.Weight
	}
	return Evaluation{Criteria: criteria, WeightedTotal: total}
}
