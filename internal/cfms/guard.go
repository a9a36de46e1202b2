// Package cfms checks a resolved stack's composed invariants for the
// required pipeline-ordering rule. The check is advisory: it reports a
// tri-state status attached to the run envelope and never aborts a run.
package cfms

import (
	"fmt"
	"strings"

	"github.com/boshu2/codexops/internal/stack"
)

// Status is the outcome of an invariants check.
type Status string

const (
	// StatusOK means the enforcement rules state the required pipeline order.
	StatusOK Status = "ok"
	// StatusWarn means invariants are composed but the pipeline phrase is absent.
	StatusWarn Status = "warn"
	// StatusMissing means no invariants document is attached to the stack.
	StatusMissing Status = "missing"
)

// InvariantsInclude is the include name the guard inspects. The include
// filename is the lookup key, so stacks must reference it by this exact name.
const InvariantsInclude = "_cfms_invariants.yaml"

// pipelinePhrase must appear, case-insensitively, in the space-joined
// stackable enforcement rules.
const pipelinePhrase = "pipeline: relay → executor → logger → evaluation → digest"

// Report carries the check outcome and, when present, the invariants that
// were inspected.
type Report struct {
	Status     Status         `json:"status" yaml:"status"`
	Invariants map[string]any `json:"invariants,omitempty" yaml:"invariants,omitempty"`
}

// Check inspects the resolved stack's composed invariants bundle.
func Check(resolved *stack.Resolved) Report {
	doc := resolved.Includes[InvariantsInclude]
	invariants, _ := doc["cfms_invariants"].(map[string]any)
	if len(invariants) == 0 {
		return Report{Status: StatusMissing}
	}

	joined := strings.ToLower(strings.Join(enforcementRules(invariants), " "))
	status := StatusWarn
	if strings.Contains(joined, strings.ToLower(pipelinePhrase)) {
		status = StatusOK
	}
	return Report{Status: status, Invariants: invariants}
}

// enforcementRules extracts cfms_invariants.stackable.enforcement as a list
// of strings, stringifying any stray non-string entries.
func enforcementRules(invariants map[string]any) []string {
	stackable, _ := invariants["stackable"].(map[string]any)
	enforcement, _ := stackable["enforcement"].([]any)
	rules := make([]string, 0, len(enforcement))
	for _, rule := range enforcement {
		if s, ok := rule.(string); ok {
			rules = append(rules, s)
			continue
		}
		rules = append(rules, fmt.Sprint(rule))
	}
	return rules
}
