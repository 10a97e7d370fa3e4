// Package types provides domain models shared across searchcond components.
//
// Zero-dependency design: condition, rule and result types use only the
// standard library so the inference core can be embedded without pulling in
// the service stack. ID utilities in ids.go import uuid but are isolated for
// selective inclusion.
//
// Wire-format agnostic: gRPC and SQL conversions happen at the boundary in
// internal/core. Everything here is a value object rebuilt on every call.
package types

import "strings"

// Attribute identifies a discrete, selectable filter value.
// Namespaced as group_value, e.g. "card-type_monster" or "attribute_light".
type Attribute string

// Field identifies a free-form or list-based filter input, e.g. "atk".
// Only tracked as "has input".
type Field string

// Group returns the namespace prefix of the attribute ("card-type" for
// "card-type_monster"). Attributes without a separator are their own group.
func (a Attribute) Group() string {
	if i := strings.IndexByte(string(a), '_'); i >= 0 {
		return string(a)[:i]
	}
	return string(a)
}

// NewAttribute joins group and value into a namespaced Attribute.
func NewAttribute(group, value string) Attribute {
	return Attribute(group + "_" + value)
}

// Mode selects how the mode-sensitive exclusion group combines members.
type Mode string

const (
	ModeAnd Mode = "AND"
	ModeOr  Mode = "OR"
)

// ParseMode maps a UI match-mode setting onto Mode.
// Case-insensitive; anything other than "or" is AND.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeOr)) {
		return ModeOr
	}
	return ModeAnd
}

// IsOr reports whether members of the mode-sensitive group may coexist.
// The zero value and unknown values behave as AND.
func (m Mode) IsOr() bool {
	return m == ModeOr
}

// ConditionState is a snapshot of user intent for one inference call.
type ConditionState struct {
	Mode               Mode               `json:"mode"`
	SelectedAttributes map[Attribute]bool `json:"selectedAttributes"`
	FieldInputs        map[Field]bool     `json:"fieldInputs"`
}

// NewConditionState returns a state with initialized maps and AND mode.
func NewConditionState() ConditionState {
	return ConditionState{
		Mode:               ModeAnd,
		SelectedAttributes: make(map[Attribute]bool),
		FieldInputs:        make(map[Field]bool),
	}
}

// Select marks attributes as selected. Safe on a zero-value state.
func (s *ConditionState) Select(attrs ...Attribute) {
	if s.SelectedAttributes == nil {
		s.SelectedAttributes = make(map[Attribute]bool, len(attrs))
	}
	for _, a := range attrs {
		s.SelectedAttributes[a] = true
	}
}

// SetInput records whether a field has input. Safe on a zero-value state.
func (s *ConditionState) SetInput(f Field, has bool) {
	if s.FieldInputs == nil {
		s.FieldInputs = make(map[Field]bool)
	}
	s.FieldInputs[f] = has
}
