// Package validation runs declarative per-field rules against JSON request
// payloads. Every rule is evaluated; failures are aggregated rather than
// stopping at the first one. Normalizers rewrite field values in place so
// downstream handlers see the canonical form.
package validation

import (
	"fmt"
	"slices"
)

// RedactedValue replaces the rejected value of sensitive fields in responses.
const RedactedValue = "[REDACTED]"

// Step is one stage of a rule. Check, when set, must accept the current
// value; Normalize, when set, replaces it. A step may set both, in which case
// Check runs first.
type Step struct {
	Check     func(value any) bool
	Normalize func(value any) any
}

// Rule validates a single top-level field. Rules are immutable and shared
// across requests.
type Rule struct {
	Field   string
	Steps   []Step
	Message string
	// Optional skips the rule when the field is absent or null.
	Optional bool
	// Sensitive redacts the rejected value in failure responses.
	Sensitive bool
}

// Check builds a predicate-only step.
func Check(fn func(value any) bool) Step {
	return Step{Check: fn}
}

// Normalize builds a normalizer-only step.
func Normalize(fn func(value any) any) Step {
	return Step{Normalize: fn}
}

// Failure is one failed rule.
type Failure struct {
	Field   string
	Message string
	Value   any
}

// Result is the outcome of running a pipeline over one payload.
type Result struct {
	// Values holds the normalized value of every field that passed.
	Values   map[string]any
	Failures []Failure
	// Faults are panics recovered from steps, already folded into Failures.
	Faults []error
}

func (r Result) Valid() bool {
	return len(r.Failures) == 0
}

// Pipeline is an ordered, immutable rule set.
type Pipeline struct {
	rules []Rule
}

func NewPipeline(rules ...Rule) *Pipeline {
	return &Pipeline{rules: slices.Clone(rules)}
}

func (p *Pipeline) Rules() []Rule {
	return slices.Clone(p.rules)
}

// Run evaluates every rule against payload. payload is not modified.
func (p *Pipeline) Run(payload map[string]any) Result {
	result := Result{Values: make(map[string]any, len(p.rules))}

	for _, rule := range p.rules {
		raw, present := payload[rule.Field]
		if rule.Optional && (!present || raw == nil) {
			continue
		}

		value, ok, fault := runRule(rule, raw)
		if fault != nil {
			result.Faults = append(result.Faults, fault)
		}
		if !ok {
			rejected := raw
			if rule.Sensitive && raw != nil {
				rejected = RedactedValue
			}
			result.Failures = append(result.Failures, Failure{
				Field:   rule.Field,
				Message: rule.Message,
				Value:   rejected,
			})
			continue
		}
		if present {
			result.Values[rule.Field] = value
		}
	}
	return result
}

// runRule applies the steps in order. A panicking step fails the rule and
// is reported as a fault.
func runRule(rule Rule, raw any) (value any, ok bool, fault error) {
	defer func() {
		if rec := recover(); rec != nil {
			value, ok = raw, false
			fault = fmt.Errorf("rule %q panicked: %v", rule.Field, rec)
		}
	}()

	value = raw
	for _, step := range rule.Steps {
		if step.Check != nil && !step.Check(value) {
			return raw, false, nil
		}
		if step.Normalize != nil {
			value = step.Normalize(value)
		}
	}
	return value, true, nil
}
