// Package executor synthesizes structured advisory outputs for a resolved
// stack. Execution is a pure function of the resolved stack, the policy
// catalog, the environment document, and the normalized payload; the clock
// is the only injected side channel, and only for the envelope timestamp.
package executor

import (
	"time"

	"github.com/boshu2/codexops/internal/payload"
	"github.com/boshu2/codexops/internal/policy"
	"github.com/boshu2/codexops/internal/rubric"
	"github.com/boshu2/codexops/internal/stack"
)

// Content is the advisory body synthesized for one agent.
type Content struct {
	PersonaSummary string   `json:"persona_summary" yaml:"persona_summary"`
	Advice         string   `json:"advice" yaml:"advice"`
	NextSteps      []Step   `json:"next_steps" yaml:"next_steps"`
	PolicyRefs     []string `json:"policy_refs" yaml:"policy_refs"`
}

// Step is one entry in an agent's next-steps list.
type Step struct {
	Action string `json:"action" yaml:"action"`
	Owner  string `json:"owner" yaml:"owner"`
	Due    string `json:"due" yaml:"due"`
}

// AgentOutput is the structured document produced for one declared agent.
type AgentOutput struct {
	Format    string  `json:"format" yaml:"format"`
	Normalize bool    `json:"normalize" yaml:"normalize"`
	Content   Content `json:"content" yaml:"content"`
}

// Result is the immutable envelope produced by one execution.
type Result struct {
	Timestamp          string                           `json:"timestamp" yaml:"timestamp"`
	StackID            string                           `json:"stack_id" yaml:"stack_id"`
	Persona            string                           `json:"persona" yaml:"persona"`
	Role               string                           `json:"role" yaml:"role"`
	Inputs             payload.Payload                  `json:"inputs" yaml:"inputs"`
	Outputs            map[string]AgentOutput           `json:"outputs" yaml:"outputs"`
	Evaluation         rubric.Evaluation                `json:"evaluation" yaml:"evaluation"`
	PolicyBundle       []string                         `json:"policy_bundle" yaml:"policy_bundle"`
	Environment        policy.Environment               `json:"environment" yaml:"environment"`
	InvariantsSnapshot map[string]stack.IncludeDocument `json:"invariants_snapshot" yaml:"invariants_snapshot"`
}

// Engine executes resolved stacks against an immutable configuration value.
type Engine struct {
	policies    policy.Catalog
	environment policy.Environment
	evaluator   *rubric.Evaluator
	now         func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given configuration. The catalog,
// environment, and evaluator are read-only for the engine's lifetime.
func New(policies policy.Catalog, environment policy.Environment, evaluator *rubric.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		policies:    policies,
		environment: environment,
		evaluator:   evaluator,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute synthesizes one output per declared agent, evaluates the outputs,
// and assembles the result envelope. It has no side effects.
func (e *Engine) Execute(resolved *stack.Resolved, p payload.Payload) Result {
	outputs := e.buildOutputs(resolved, p)

	snapshot := resolved.Includes
	if snapshot == nil {
		snapshot = map[string]stack.IncludeDocument{}
	}

	return Result{
		Timestamp:          e.now().UTC().Format(time.RFC3339Nano),
		StackID:            resolved.Meta.ID,
		Persona:            valueOr(resolved.Routing.Persona, "unknown"),
		Role:               valueOr(resolved.Routing.Role, "unknown"),
		Inputs:             p,
		Outputs:            outputs,
		Evaluation:         e.evaluator.Evaluate(outputs),
		PolicyBundle:       e.policies.Keys(),
		Environment:        e.environment,
		InvariantsSnapshot: snapshot,
	}
}

// buildOutputs synthesizes one AgentOutput per declared agent. Only the
// first declared output spec is honored; format and normalize default to
// "json" and true.
func (e *Engine) buildOutputs(resolved *stack.Resolved, p payload.Payload) map[string]AgentOutput {
	outputs := make(map[string]AgentOutput, len(resolved.Agents))
	for _, agent := range resolved.Agents {
		name := valueOr(agent.Name, "agent")
		format, normalize := outputSpec(agent)
		outputs[name] = AgentOutput{
			Format:    format,
			Normalize: normalize,
			Content: Content{
				PersonaSummary: summarizePersona(resolved, p),
				Advice:         craftAdvice(resolved, p),
				NextSteps:      craftNextSteps(p),
				PolicyRefs:     e.policyRefs(name),
			},
		}
	}
	return outputs
}

// outputSpec extracts the honored format/normalize pair for an agent.
func outputSpec(agent stack.AgentSpec) (string, bool) {
	format, normalize := "json", true
	if len(agent.Outputs) > 0 {
		first := agent.Outputs[0]
		if first.Format != "" {
			format = first.Format
		}
		if first.Normalize != nil {
			normalize = *first.Normalize
		}
	}
	return format, normalize
}

// policyRefs renders one reference per catalog policy in catalog order,
// with a sentinel entry when no policies are configured.
func (e *Engine) policyRefs(agentName string) []string {
	if e.policies.Len() == 0 {
		return []string{"no-policies-configured-for:" + agentName}
	}
	refs := make([]string, 0, e.policies.Len())
	for _, key := range e.policies.Keys() {
		refs = append(refs, key+":"+e.policies.Summary(key))
	}
	return refs
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
