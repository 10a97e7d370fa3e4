// internal/rules/infer.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solatis/searchcond/internal/types"
)

/*
 * Condition inference.
 *
 * Computes enabled/selected/required state for every attribute and field
 * from a ConditionState and a CompiledRuleSet. Pure: no I/O, no shared
 * mutable state, never fails.
 *
 * Inference flow (repeated until no change or the iteration cap):
 *   1. Field -> attribute: input on a matching field requires the targets
 *   2. Exclusion groups: active members disable the rest of their group
 *   3. Attribute -> field: active, enabled triggers disable negative fields
 *   4. Reverse cascade: a field rule with every target disabled disables
 *      every field its patterns match
 * Conflict detection runs once after the loop.
 *
 * Monotonicity: enabled only goes true -> false and required only goes
 * false -> true. The first disabled reason is kept. The loop therefore
 * terminates on any rule set; the cap only bounds malformed data.
 *
 * Mode-sensitive group: under OR, members may coexist unless one of the
 * active members is required. A required member is a hard constraint that
 * OR semantics cannot relax.
 *
 * Determinism: collections are applied in declaration order, passes in
 * order 1-4, and identifiers unknown to the rules are appended in sorted
 * order. Identical inputs give identical Results and traces.
 */

// DefaultMaxIterations bounds the fixed-point loop.
const DefaultMaxIterations = 10

// Infer runs inference with the default iteration cap. Trace entries are
// collected only when trace is true.
func Infer(state types.ConditionState, rules *CompiledRuleSet, trace bool) types.Result {
	return infer(state, rules, trace, DefaultMaxIterations)
}

// inference holds per-call working state. Never shared between calls.
type inference struct {
	rules *CompiledRuleSet
	state types.ConditionState

	attrs      map[types.Attribute]types.AttributeState
	attrOrder  []types.Attribute
	fields     map[types.Field]types.FieldState
	fieldOrder []types.Field

	tracing   bool
	trace     []types.TraceEntry
	iteration int
	changed   bool
}

func infer(state types.ConditionState, rules *CompiledRuleSet, trace bool, maxIterations int) types.Result {
	if rules == nil {
		rules = &CompiledRuleSet{}
	}
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	inf := newInference(state, rules, trace)

	converged := false
	for inf.iteration = 1; inf.iteration <= maxIterations; inf.iteration++ {
		inf.changed = false
		inf.applyFieldRequirements()
		inf.applyExclusions()
		inf.applySideEffects()
		inf.applyReverseCascade()
		if !inf.changed {
			converged = true
			break
		}
	}
	iterations := inf.iteration
	if !converged {
		iterations = maxIterations
	}

	result := types.Result{
		AttributeStates: inf.attrs,
		FieldStates:     inf.fields,
		Conflicts:       inf.detectConflicts(),
		Iterations:      iterations,
		Converged:       converged,
	}
	if trace {
		result.Trace = inf.trace
		if result.Trace == nil {
			result.Trace = []types.TraceEntry{}
		}
	}
	if result.Conflicts == nil {
		result.Conflicts = []types.Conflict{}
	}
	return result
}

// newInference seeds every known identifier with its default state and
// applies the user's selections.
func newInference(state types.ConditionState, rules *CompiledRuleSet, trace bool) *inference {
	inf := &inference{
		rules:   rules,
		state:   state,
		attrs:   make(map[types.Attribute]types.AttributeState, len(rules.Attributes)+len(state.SelectedAttributes)),
		fields:  make(map[types.Field]types.FieldState, len(rules.Fields)+len(state.FieldInputs)),
		tracing: trace,
	}

	for _, a := range rules.Attributes {
		inf.trackAttribute(a)
	}
	for _, a := range sortedAttributes(state.SelectedAttributes) {
		inf.trackAttribute(a)
		if state.SelectedAttributes[a] {
			st := inf.attrs[a]
			st.Selected = true
			inf.attrs[a] = st
		}
	}

	for _, f := range rules.Fields {
		inf.trackField(f)
	}
	for _, f := range sortedFields(state.FieldInputs) {
		inf.trackField(f)
	}
	for _, f := range inf.fieldOrder {
		st := inf.fields[f]
		st.HasInput = state.FieldInputs[f]
		inf.fields[f] = st
	}

	return inf
}

func (inf *inference) trackAttribute(a types.Attribute) {
	if _, ok := inf.attrs[a]; ok {
		return
	}
	inf.attrs[a] = types.AttributeState{Enabled: true}
	inf.attrOrder = append(inf.attrOrder, a)
}

func (inf *inference) trackField(f types.Field) {
	if _, ok := inf.fields[f]; ok {
		return
	}
	inf.fields[f] = types.FieldState{Enabled: true}
	inf.fieldOrder = append(inf.fieldOrder, f)
}

// applyFieldRequirements is pass 1.
func (inf *inference) applyFieldRequirements() {
	for _, rule := range inf.rules.FieldRules {
		trigger, ok := inf.firstTriggeringField(rule)
		if !ok {
			continue
		}
		reason := fmt.Sprintf("%s: field %s has input", rule.Title, trigger)
		for _, a := range rule.Target {
			inf.require(a, reason)
		}
	}
}

// firstTriggeringField returns the first enabled field with input that the
// rule's patterns match.
func (inf *inference) firstTriggeringField(rule CompiledFieldRule) (types.Field, bool) {
	for _, f := range inf.fieldOrder {
		st := inf.fields[f]
		if st.HasInput && st.Enabled && matchAny(rule.Patterns, f) {
			return f, true
		}
	}
	return "", false
}

// applyExclusions is pass 2.
func (inf *inference) applyExclusions() {
	for _, group := range inf.rules.Groups {
		active, required := inf.activeMembers(group)
		if len(active) == 0 || !inf.exclusive(group, required) {
			continue
		}

		winners := active
		if len(required) > 0 {
			winners = required
		}
		reason := fmt.Sprintf("%s: excluded by %s", group.Title, joinAttributes(winners))
		for _, item := range group.Items {
			if containsAttribute(winners, item) {
				continue
			}
			inf.disableAttribute(item, reason)
		}
	}
}

// activeMembers returns the enabled members that are selected or required,
// and the required subset, both in group order.
func (inf *inference) activeMembers(group CompiledGroup) (active, required []types.Attribute) {
	for _, item := range group.Items {
		st := inf.attrs[item]
		if !st.Enabled || !(st.Selected || st.Required) {
			continue
		}
		active = append(active, item)
		if st.Required {
			required = append(required, item)
		}
	}
	return active, required
}

// exclusive reports whether the group enforces single membership right now.
func (inf *inference) exclusive(group CompiledGroup, required []types.Attribute) bool {
	if !group.ModeSensitive || !inf.state.Mode.IsOr() {
		return true
	}
	return len(required) > 0
}

// applySideEffects is pass 3.
func (inf *inference) applySideEffects() {
	for _, rule := range inf.rules.SideEffects {
		st := inf.attrs[rule.Trigger]
		if !st.Enabled || !(st.Selected || st.Required) {
			continue
		}
		reason := fmt.Sprintf("%s: %s is active", rule.Title, rule.Trigger)
		for _, f := range rule.NegativeFields {
			inf.disableField(f, reason, types.ActionAttributeToField)
		}
	}
}

// applyReverseCascade is pass 4.
func (inf *inference) applyReverseCascade() {
	for _, rule := range inf.rules.FieldRules {
		if !inf.allDisabled(rule.Target) {
			continue
		}
		reason := fmt.Sprintf("%s: none of %s is available", rule.Title, joinAttributes(rule.Target))
		for _, f := range inf.fieldOrder {
			if matchAny(rule.Patterns, f) {
				inf.disableField(f, reason, types.ActionFieldDisableCascade)
			}
		}
	}
}

func (inf *inference) allDisabled(attrs []types.Attribute) bool {
	for _, a := range attrs {
		if inf.attrs[a].Enabled {
			return false
		}
	}
	return len(attrs) > 0
}

func (inf *inference) require(a types.Attribute, reason string) {
	inf.trackAttribute(a)
	st := inf.attrs[a]
	if st.Required {
		return
	}
	st.Required = true
	st.Selected = true
	inf.attrs[a] = st
	inf.record(types.ActionFieldToAttribute, string(a), reason)
}

func (inf *inference) disableAttribute(a types.Attribute, reason string) {
	inf.trackAttribute(a)
	st := inf.attrs[a]
	if !st.Enabled {
		return
	}
	st.Enabled = false
	st.DisabledReason = reason
	inf.attrs[a] = st
	inf.record(types.ActionAttributeExclusion, string(a), reason)
}

func (inf *inference) disableField(f types.Field, reason string, action types.TraceAction) {
	inf.trackField(f)
	st := inf.fields[f]
	if !st.Enabled {
		return
	}
	st.Enabled = false
	st.DisabledReason = reason
	inf.fields[f] = st
	inf.record(action, string(f), reason)
}

// record marks the iteration as changed and appends a trace entry when
// tracing is on.
func (inf *inference) record(action types.TraceAction, target, reason string) {
	inf.changed = true
	if !inf.tracing {
		return
	}
	inf.trace = append(inf.trace, types.TraceEntry{
		Step:      len(inf.trace) + 1,
		Iteration: inf.iteration,
		Action:    action,
		Target:    target,
		Reason:    reason,
	})
}

// detectConflicts derives contradictions and warnings from the final state.
// Order: unattainable requirements, then per-group contradictions, then
// field warnings.
func (inf *inference) detectConflicts() []types.Conflict {
	var conflicts []types.Conflict
	seen := make(map[types.Conflict]bool)
	add := func(c types.Conflict) {
		if !seen[c] {
			seen[c] = true
			conflicts = append(conflicts, c)
		}
	}

	for _, a := range inf.attrOrder {
		st := inf.attrs[a]
		if st.Required && !st.Enabled {
			add(types.Conflict{
				Type:    types.ConflictContradiction,
				Subject: string(a),
				Reason:  fmt.Sprintf("required but unavailable (%s)", st.DisabledReason),
			})
		}
	}

	for _, group := range inf.rules.Groups {
		var required []types.Attribute
		for _, item := range group.Items {
			st := inf.attrs[item]
			if st.Required && st.Enabled {
				required = append(required, item)
			}
		}
		if len(required) == 0 || !inf.exclusive(group, required) {
			continue
		}

		if len(required) > 1 {
			for _, a := range required {
				add(types.Conflict{
					Type:    types.ConflictContradiction,
					Subject: string(a),
					Reason:  fmt.Sprintf("%s: %s are all required but mutually exclusive", group.Title, joinAttributes(required)),
				})
			}
		}

		for _, item := range group.Items {
			st := inf.attrs[item]
			if st.Required || st.Enabled || !inf.state.SelectedAttributes[item] {
				continue
			}
			for _, a := range required {
				add(types.Conflict{
					Type:    types.ConflictContradiction,
					Subject: string(a),
					Reason:  fmt.Sprintf("%s: required %s conflicts with selected %s", group.Title, a, item),
				})
			}
		}
	}

	for _, f := range inf.fieldOrder {
		st := inf.fields[f]
		if st.HasInput && !st.Enabled {
			add(types.Conflict{
				Type:    types.ConflictWarning,
				Subject: string(f),
				Reason:  fmt.Sprintf("input is ignored (%s)", st.DisabledReason),
			})
		}
	}

	return conflicts
}

func containsAttribute(list []types.Attribute, a types.Attribute) bool {
	for _, item := range list {
		if item == a {
			return true
		}
	}
	return false
}

func joinAttributes(attrs []types.Attribute) string {
	parts := make([]string, len(attrs))
	for i, a := range attrs {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func sortedAttributes(m map[types.Attribute]bool) []types.Attribute {
	out := make([]types.Attribute, 0, len(m))
	for a := range m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedFields(m map[types.Field]bool) []types.Field {
	out := make([]types.Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
