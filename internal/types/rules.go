// internal/types/rules.go
package types

/*
 * Declarative rule model for condition inference.
 *
 * Three closed rule kinds, each consumed by exactly one inference pass:
 *   - FieldRequirementRule: field input forces attributes to be required
 *   - ExclusionGroup: attributes a single card cannot combine
 *   - AttributeSideEffectRule: an active attribute disables fields
 *
 * JSON/YAML tags match the rule document layout consumed by
 * internal/rules.ParseRules. Declaration order inside each collection is
 * significant: it fixes rule application order and therefore the trace.
 *
 * Dependencies: None
 */

// FieldRequirementRule requires every Target attribute when any field
// matching TriggerPatterns has input. A pattern ending in "*" matches by
// prefix; no other glob syntax is supported.
type FieldRequirementRule struct {
	Title           string      `json:"title" yaml:"title"`
	TriggerPatterns []string    `json:"triggerPatterns" yaml:"triggerPatterns"`
	Target          []Attribute `json:"target" yaml:"target"`
}

// ExclusionGroup declares that a card belongs to at most one of Items.
// ModeSensitive marks the group that honours ConditionState.Mode.
type ExclusionGroup struct {
	Title         string      `json:"title" yaml:"title"`
	Items         []Attribute `json:"items" yaml:"items"`
	ModeSensitive bool        `json:"modeSensitive,omitempty" yaml:"modeSensitive,omitempty"`
}

// AttributeSideEffectRule disables NegativeFields while Trigger is active
// and enabled.
type AttributeSideEffectRule struct {
	Title          string    `json:"title" yaml:"title"`
	Trigger        Attribute `json:"trigger" yaml:"trigger"`
	NegativeFields []Field   `json:"negativeFields" yaml:"negativeFields"`
}

// RuleSet holds the three rule collections. Immutable once loaded.
type RuleSet struct {
	FieldToAttribute   []FieldRequirementRule    `json:"fieldToAttribute" yaml:"fieldToAttribute"`
	AttributeExclusion []ExclusionGroup          `json:"attributeExclusion" yaml:"attributeExclusion"`
	AttributeToField   []AttributeSideEffectRule `json:"attributeToField" yaml:"attributeToField"`
}

// Len returns the total number of rules across all collections.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.FieldToAttribute) + len(rs.AttributeExclusion) + len(rs.AttributeToField)
}
