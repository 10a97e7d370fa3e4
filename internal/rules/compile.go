// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/solatis/searchcond/internal/types"
)

/*
 * Rule set compilation.
 *
 * Compiles types.RuleSet to CompiledRuleSet: parsed trigger patterns,
 * de-duplicated identifiers, and the attribute/field universe the engine
 * initializes from.
 *
 * Compilation workflow:
 *   1. Drop malformed entries (empty identifiers, no targets, groups with
 *      fewer than two distinct members) and report each as an Issue
 *   2. Parse trigger patterns (literal or trailing-wildcard prefix)
 *   3. Record every attribute and literal field in first-appearance order
 *
 * Why infallible: a rule document with bad entries must still produce a
 * usable engine. Unknown or malformed data degrades to "no rule", never to an
 * error at inference time. Callers log the returned issues.
 *
 * Why first-appearance order: the universe order fixes the order of conflict
 * reporting, so identical inputs yield identical Results.
 */

// Collection names used in issues.
const (
	CollectionFieldToAttribute   = "fieldToAttribute"
	CollectionAttributeExclusion = "attributeExclusion"
	CollectionAttributeToField   = "attributeToField"
)

// Issue describes a rule document problem that was tolerated.
type Issue struct {
	Collection string // one of the Collection* names, or "" for the document
	Index      int    // entry index within the collection, -1 for the whole collection
	Message    string
}

// String renders the issue for logs.
func (i Issue) String() string {
	switch {
	case i.Collection == "":
		return i.Message
	case i.Index < 0:
		return fmt.Sprintf("%s: %s", i.Collection, i.Message)
	default:
		return fmt.Sprintf("%s[%d]: %s", i.Collection, i.Index, i.Message)
	}
}

// CompiledFieldRule is a field-requirement rule with parsed patterns.
type CompiledFieldRule struct {
	Title    string
	Patterns []Pattern
	Target   []types.Attribute
}

// CompiledGroup is a validated exclusion group.
type CompiledGroup struct {
	Title         string
	Items         []types.Attribute
	ModeSensitive bool
}

// Contains reports whether a is a member of the group.
func (g CompiledGroup) Contains(a types.Attribute) bool {
	for _, item := range g.Items {
		if item == a {
			return true
		}
	}
	return false
}

// CompiledSideEffect is a validated attribute-side-effect rule.
type CompiledSideEffect struct {
	Title          string
	Trigger        types.Attribute
	NegativeFields []types.Field
}

// CompiledRuleSet is immutable after Compile and safe for concurrent use.
type CompiledRuleSet struct {
	FieldRules  []CompiledFieldRule
	Groups      []CompiledGroup
	SideEffects []CompiledSideEffect

	// Attributes and Fields list every identifier the rules mention,
	// in first-appearance order. Prefix patterns contribute no fields.
	Attributes []types.Attribute
	Fields     []types.Field
}

// Len returns the number of compiled rules.
func (c *CompiledRuleSet) Len() int {
	if c == nil {
		return 0
	}
	return len(c.FieldRules) + len(c.Groups) + len(c.SideEffects)
}

// universe accumulates identifiers in first-appearance order.
type universe struct {
	attrs     []types.Attribute
	attrSeen  map[types.Attribute]bool
	fields    []types.Field
	fieldSeen map[types.Field]bool
}

func newUniverse() *universe {
	return &universe{
		attrSeen:  make(map[types.Attribute]bool),
		fieldSeen: make(map[types.Field]bool),
	}
}

func (u *universe) addAttr(a types.Attribute) {
	if !u.attrSeen[a] {
		u.attrSeen[a] = true
		u.attrs = append(u.attrs, a)
	}
}

func (u *universe) addField(f types.Field) {
	if !u.fieldSeen[f] {
		u.fieldSeen[f] = true
		u.fields = append(u.fields, f)
	}
}

// Compile validates and pre-processes a rule set. A nil rule set compiles to
// an empty one.
func Compile(rs *types.RuleSet) (*CompiledRuleSet, []Issue) {
	compiled := &CompiledRuleSet{}
	if rs == nil {
		return compiled, nil
	}

	var issues []Issue
	u := newUniverse()

	for i, rule := range rs.FieldToAttribute {
		var patterns []Pattern
		for _, raw := range rule.TriggerPatterns {
			p, ok := ParsePattern(raw)
			if !ok {
				issues = append(issues, Issue{CollectionFieldToAttribute, i, fmt.Sprintf("ignoring trigger pattern %q", raw)})
				continue
			}
			patterns = append(patterns, p)
		}
		target := dedupeAttributes(rule.Target)
		if len(patterns) == 0 || len(target) == 0 {
			issues = append(issues, Issue{CollectionFieldToAttribute, i, fmt.Sprintf("rule %q has no usable triggers or targets, skipped", rule.Title)})
			continue
		}
		for _, p := range patterns {
			if !p.Prefix {
				u.addField(types.Field(p.Token))
			}
		}
		for _, a := range target {
			u.addAttr(a)
		}
		compiled.FieldRules = append(compiled.FieldRules, CompiledFieldRule{
			Title:    rule.Title,
			Patterns: patterns,
			Target:   target,
		})
	}

	for i, group := range rs.AttributeExclusion {
		items := dedupeAttributes(group.Items)
		if len(items) < 2 {
			issues = append(issues, Issue{CollectionAttributeExclusion, i, fmt.Sprintf("group %q needs at least two members, skipped", group.Title)})
			continue
		}
		for _, a := range items {
			u.addAttr(a)
		}
		compiled.Groups = append(compiled.Groups, CompiledGroup{
			Title:         group.Title,
			Items:         items,
			ModeSensitive: group.ModeSensitive,
		})
	}

	for i, rule := range rs.AttributeToField {
		fields := dedupeFields(rule.NegativeFields)
		if rule.Trigger == "" || len(fields) == 0 {
			issues = append(issues, Issue{CollectionAttributeToField, i, fmt.Sprintf("rule %q has no trigger or negative fields, skipped", rule.Title)})
			continue
		}
		u.addAttr(rule.Trigger)
		for _, f := range fields {
			u.addField(f)
		}
		compiled.SideEffects = append(compiled.SideEffects, CompiledSideEffect{
			Title:          rule.Title,
			Trigger:        rule.Trigger,
			NegativeFields: fields,
		})
	}

	compiled.Attributes = u.attrs
	compiled.Fields = u.fields
	return compiled, issues
}

// dedupeAttributes drops empty and repeated identifiers, preserving order.
func dedupeAttributes(in []types.Attribute) []types.Attribute {
	out := make([]types.Attribute, 0, len(in))
	seen := make(map[types.Attribute]bool, len(in))
	for _, a := range in {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

// dedupeFields drops empty and repeated identifiers, preserving order.
func dedupeFields(in []types.Field) []types.Field {
	out := make([]types.Field, 0, len(in))
	seen := make(map[types.Field]bool, len(in))
	for _, f := range in {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
