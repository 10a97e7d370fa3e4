// Package filter converts the search UI's filter object into the neutral
// ConditionState consumed by the inference engine.
//
// The conversion is pure and total: it never fails, accepts a nil filter, and
// always reports every known field (false when empty).
package filter

import (
	"github.com/solatis/searchcond/internal/types"
)

// Attribute groups produced by the adapter.
const (
	GroupCardType    = "card-type"
	GroupAttribute   = "attribute"
	GroupMonsterType = "monster-type"
)

// Fields produced by the adapter.
const (
	FieldLinkValue     types.Field = "link-value"
	FieldLinkMarker    types.Field = "link-marker"
	FieldPendulumScale types.Field = "pendulum-scale"
	FieldLevelRank     types.Field = "level-rank"
	FieldATK           types.Field = "atk"
	FieldDEF           types.Field = "def"
)

// KnownFields lists every field the adapter reports, in UI order.
var KnownFields = []types.Field{
	FieldLevelRank,
	FieldLinkValue,
	FieldLinkMarker,
	FieldPendulumScale,
	FieldATK,
	FieldDEF,
}

// ItemState marks whether a monster sub-type is searched for or excluded.
type ItemState string

const (
	ItemNormal ItemState = "normal"
	ItemNot    ItemState = "not"
)

// MonsterTypeItem is one entry of the monster sub-type list.
type MonsterTypeItem struct {
	Value string    `json:"value"`
	State ItemState `json:"state"`
}

// Range is an ATK/DEF filter.
type Range struct {
	Exact   bool  `json:"exact,omitempty"`
	Unknown bool  `json:"unknown,omitempty"`
	Min     Bound `json:"min"`
	Max     Bound `json:"max"`
}

// HasInput reports whether the range constrains the search.
func (r Range) HasInput() bool {
	return r.Exact || r.Unknown || r.Min.Defined() || r.Max.Defined()
}

// Filter is the UI-shaped search filter. Absent properties mean "no input".
type Filter struct {
	Category        string            `json:"category,omitempty"`
	Attributes      []string          `json:"attributes,omitempty"`
	MonsterTypes    []MonsterTypeItem `json:"monsterTypes,omitempty"`
	MonsterTypeMode string            `json:"monsterTypeMode,omitempty"`
	LinkValues      []int             `json:"linkValues,omitempty"`
	LinkMarkers     []int             `json:"linkMarkers,omitempty"`
	PendulumScales  []int             `json:"pendulumScales,omitempty"`
	Levels          []int             `json:"levels,omitempty"`
	ATK             Range             `json:"atk"`
	DEF             Range             `json:"def"`
}

// ToConditionState flattens a filter into selected attributes and field
// input flags. Excluded monster sub-types (state "not") are omitted; they are
// negative search terms, not selections.
func ToConditionState(f *Filter) types.ConditionState {
	state := types.NewConditionState()
	for _, field := range KnownFields {
		state.SetInput(field, false)
	}
	if f == nil {
		return state
	}

	state.Mode = types.ParseMode(f.MonsterTypeMode)

	if f.Category != "" {
		state.Select(types.NewAttribute(GroupCardType, f.Category))
	}
	for _, v := range f.Attributes {
		if v != "" {
			state.Select(types.NewAttribute(GroupAttribute, v))
		}
	}
	for _, item := range f.MonsterTypes {
		if item.Value == "" || !item.State.selects() {
			continue
		}
		state.Select(types.NewAttribute(GroupMonsterType, item.Value))
	}

	state.SetInput(FieldLinkValue, len(f.LinkValues) > 0)
	state.SetInput(FieldLinkMarker, len(f.LinkMarkers) > 0)
	state.SetInput(FieldPendulumScale, len(f.PendulumScales) > 0)
	state.SetInput(FieldLevelRank, len(f.Levels) > 0)
	state.SetInput(FieldATK, f.ATK.HasInput())
	state.SetInput(FieldDEF, f.DEF.HasInput())

	return state
}

// selects reports whether an item in this state is a positive selection.
// An empty state counts as normal.
func (s ItemState) selects() bool {
	return s == ItemNormal || s == ""
}
