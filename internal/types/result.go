// internal/types/result.go
package types

/*
 * Inference output model.
 *
 * Result is a read-only snapshot owned by the caller. DisabledReason and
 * Conflict.Reason are free-form diagnostics for presentation; the engine never
 * reads them back, which keeps reasoning and rendering decoupled.
 *
 * Trace is populated only when requested and is meant for developer
 * diagnostics, never for production UI decisions.
 */

// AttributeState is the inferred state of one attribute control.
type AttributeState struct {
	Enabled        bool   `json:"enabled"`
	Selected       bool   `json:"selected"`
	Required       bool   `json:"required"`
	DisabledReason string `json:"disabledReason,omitempty"`
}

// FieldState is the inferred state of one field control.
type FieldState struct {
	Enabled        bool   `json:"enabled"`
	HasInput       bool   `json:"hasInput"`
	DisabledReason string `json:"disabledReason,omitempty"`
}

// ConflictType classifies a conflict.
type ConflictType string

const (
	// ConflictContradiction marks a required attribute that cannot hold.
	// Callers typically block the action.
	ConflictContradiction ConflictType = "contradiction"

	// ConflictWarning marks user input that no longer applies. Informative.
	ConflictWarning ConflictType = "warning"
)

// Conflict describes an inconsistency surfaced by inference.
type Conflict struct {
	Type    ConflictType `json:"type"`
	Subject string       `json:"subject"`
	Reason  string       `json:"reason"`
}

// TraceAction names the pass that produced a trace entry.
type TraceAction string

const (
	ActionFieldToAttribute    TraceAction = "field-to-attribute"
	ActionAttributeExclusion  TraceAction = "attribute-exclusion"
	ActionAttributeToField    TraceAction = "attribute-to-field"
	ActionFieldDisableCascade TraceAction = "field-disable-cascade"
)

// TraceEntry records one state change made by a rule.
type TraceEntry struct {
	Step      int         `json:"step"`
	Iteration int         `json:"iteration"`
	Action    TraceAction `json:"action"`
	Target    string      `json:"target"`
	Reason    string      `json:"reason"`
}

// Result is the output of one inference call.
type Result struct {
	AttributeStates map[Attribute]AttributeState `json:"attributeStates"`
	FieldStates     map[Field]FieldState         `json:"fieldStates"`
	Conflicts       []Conflict                   `json:"conflicts"`
	Trace           []TraceEntry                 `json:"trace,omitempty"`

	// Iterations is the number of full pass sequences executed.
	Iterations int `json:"iterations"`
	// Converged is false when the iteration cap stopped propagation.
	Converged bool `json:"converged"`
}

// HasContradiction reports whether any conflict is a contradiction.
func (r *Result) HasContradiction() bool {
	for _, c := range r.Conflicts {
		if c.Type == ConflictContradiction {
			return true
		}
	}
	return false
}

// ConflictsOf returns conflicts of the given type in result order.
func (r *Result) ConflictsOf(t ConflictType) []Conflict {
	var out []Conflict
	for _, c := range r.Conflicts {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}
