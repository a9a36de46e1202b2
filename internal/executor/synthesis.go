package executor

import (
	"fmt"
	"strings"

	"github.com/boshu2/codexops/internal/payload"
	"github.com/boshu2/codexops/internal/stack"
)

// summaryPairLimit caps how many payload pairs the persona summary quotes.
const summaryPairLimit = 3

// summaryValueLimit caps the rendered length of each quoted payload value.
const summaryValueLimit = 60

// summarizePersona renders the one-line situation summary. With a non-empty
// payload the first pairs are quoted in document order; otherwise the
// summary states that the persona is waiting for input.
func summarizePersona(resolved *stack.Resolved, p payload.Payload) string {
	persona := valueOr(resolved.Routing.Persona, "persona")
	purpose := valueOr(resolved.Meta.Purpose, "advisory")
	if p.Empty() {
		return fmt.Sprintf("%s operating in %s; awaiting explicit payload.", persona, purpose)
	}

	pairs := p.Pairs()
	if len(pairs) > summaryPairLimit {
		pairs = pairs[:summaryPairLimit]
	}
	points := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		points = append(points, pair.Key+"="+truncate(payload.Stringify(pair.Value), summaryValueLimit))
	}
	return fmt.Sprintf("%s operating in %s; latest payload: %s.", persona, purpose, strings.Join(points, ", "))
}

// craftAdvice selects one of three mutually exclusive advisory templates:
// empty payload, declared intent/goal, or generic iteration guidance.
func craftAdvice(resolved *stack.Resolved, p payload.Payload) string {
	persona := valueOr(resolved.Routing.Persona, "persona")
	role := valueOr(resolved.Routing.Role, "advisor")

	if p.Empty() {
		return fmt.Sprintf(
			"%s (%s) recommends collecting concrete context before acting. "+
				"Start with the highest-signal question and log assumptions per CFMS invariants.",
			persona, role,
		)
	}
	if intent := p.Intent(); intent != "" {
		return fmt.Sprintf(
			"%s (%s) confirms the goal '%s' and suggests a three-step advisory loop: "+
				"clarify constraints, map actions to policy, and capture outcomes for the weekly digest.",
			persona, role, intent,
		)
	}
	return fmt.Sprintf(
		"%s (%s) has parsed the payload and proposes iterating via relay → "+
			"executor → logger to keep the stack composable and fungible.",
		persona, role,
	)
}

// craftNextSteps returns the fixed three-step plan, with an extra payload
// supplied step prepended (element 0) when next_action is present.
func craftNextSteps(p payload.Payload) []Step {
	steps := []Step{
		{Action: "Validate charter alignment", Owner: "advisor_agent", Due: "P0"},
		{Action: "Record environment snapshot", Owner: "logger", Due: "P1"},
		{Action: "Publish digest entry", Owner: "digest", Due: "P2"},
	}
	if action := p.NextAction(); action != "" {
		steps = append([]Step{{Action: action, Owner: p.Owner(), Due: p.Due()}}, steps...)
	}
	return steps
}

// truncate shortens s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
