// internal/rules/infer_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/solatis/searchcond/internal/types"
)

func referenceCompiled(t *testing.T) *CompiledRuleSet {
	t.Helper()
	compiled, issues := Compile(LoadRules())
	if len(issues) != 0 {
		t.Fatalf("Compile(LoadRules()) issues = %v, want none", issues)
	}
	return compiled
}

func stateOf(mode types.Mode, selected []types.Attribute, inputs []types.Field) types.ConditionState {
	s := types.NewConditionState()
	s.Mode = mode
	s.Select(selected...)
	for _, f := range inputs {
		s.SetInput(f, true)
	}
	return s
}

func TestInfer_ReferenceScenarios(t *testing.T) {
	rules := referenceCompiled(t)

	t.Run("monster category excludes spell and trap", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, []types.Attribute{"card-type_monster"}, nil), rules, false)

		if result.AttributeStates["card-type_spell"].Enabled {
			t.Errorf("card-type_spell.Enabled = true, want false")
		}
		if result.AttributeStates["card-type_trap"].Enabled {
			t.Errorf("card-type_trap.Enabled = true, want false")
		}
		if !result.AttributeStates["card-type_monster"].Enabled {
			t.Errorf("card-type_monster.Enabled = false, want true")
		}
	})

	t.Run("normal monster under AND excludes other frames", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, []types.Attribute{"monster-type_normal"}, nil), rules, false)

		if result.AttributeStates["monster-type_link"].Enabled {
			t.Errorf("monster-type_link.Enabled = true, want false")
		}
		if result.AttributeStates["monster-type_fusion"].Enabled {
			t.Errorf("monster-type_fusion.Enabled = true, want false")
		}
	})

	t.Run("link value requires link and disables level", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, nil, []types.Field{"link-value"}), rules, false)

		if !result.AttributeStates["monster-type_link"].Required {
			t.Errorf("monster-type_link.Required = false, want true")
		}
		if result.FieldStates["level-rank"].Enabled {
			t.Errorf("level-rank.Enabled = true, want false")
		}
		if result.HasContradiction() {
			t.Errorf("Conflicts = %v, want no contradiction", result.Conflicts)
		}
	})

	t.Run("level input disables link and its fields", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, nil, []types.Field{"level-rank"}), rules, false)

		if result.AttributeStates["monster-type_link"].Enabled {
			t.Errorf("monster-type_link.Enabled = true, want false")
		}
		if result.FieldStates["link-value"].Enabled {
			t.Errorf("link-value.Enabled = true, want false")
		}
		if result.FieldStates["link-marker"].Enabled {
			t.Errorf("link-marker.Enabled = true, want false")
		}
		if !result.FieldStates["level-rank"].Enabled {
			t.Errorf("level-rank.Enabled = false, want true")
		}
	})

	t.Run("normal monster with link marker is a contradiction", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, []types.Attribute{"monster-type_normal"}, []types.Field{"link-marker"}), rules, false)

		contradictions := result.ConflictsOf(types.ConflictContradiction)
		if len(contradictions) == 0 {
			t.Fatalf("Conflicts = %v, want at least one contradiction", result.Conflicts)
		}
		if contradictions[0].Subject != "monster-type_link" {
			t.Errorf("Subject = %q, want monster-type_link", contradictions[0].Subject)
		}
	})

	t.Run("link monster with def input warns", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, []types.Attribute{"monster-type_link"}, []types.Field{"def"}), rules, false)

		if result.FieldStates["def"].Enabled {
			t.Errorf("def.Enabled = true, want false")
		}
		warnings := result.ConflictsOf(types.ConflictWarning)
		if len(warnings) != 1 || warnings[0].Subject != "def" {
			t.Errorf("warnings = %v, want one warning for def", warnings)
		}
	})
}

func TestInfer_ModeSensitiveGroup(t *testing.T) {
	rules := referenceCompiled(t)

	t.Run("OR without requirement tolerates two frames", func(t *testing.T) {
		result := Infer(stateOf(types.ModeOr, []types.Attribute{"monster-type_normal", "monster-type_effect"}, nil), rules, false)

		for _, a := range []types.Attribute{"monster-type_normal", "monster-type_effect", "monster-type_link", "monster-type_xyz"} {
			if !result.AttributeStates[a].Enabled {
				t.Errorf("%s.Enabled = false, want true", a)
			}
		}
	})

	t.Run("AND keeps both selected frames but excludes the rest", func(t *testing.T) {
		result := Infer(stateOf(types.ModeAnd, []types.Attribute{"monster-type_normal", "monster-type_effect"}, nil), rules, false)

		if !result.AttributeStates["monster-type_normal"].Enabled || !result.AttributeStates["monster-type_effect"].Enabled {
			t.Errorf("selected frames disabled: %+v", result.AttributeStates)
		}
		if result.AttributeStates["monster-type_xyz"].Enabled {
			t.Errorf("monster-type_xyz.Enabled = true, want false")
		}
	})

	t.Run("required member overrides OR", func(t *testing.T) {
		result := Infer(stateOf(types.ModeOr, []types.Attribute{"monster-type_effect"}, []types.Field{"link-value"}), rules, false)

		for _, a := range []types.Attribute{"monster-type_normal", "monster-type_effect", "monster-type_fusion", "monster-type_ritual", "monster-type_synchro", "monster-type_xyz"} {
			if result.AttributeStates[a].Enabled {
				t.Errorf("%s.Enabled = true, want false", a)
			}
		}
		if !result.AttributeStates["monster-type_link"].Enabled {
			t.Errorf("monster-type_link.Enabled = false, want true")
		}
		if !result.HasContradiction() {
			t.Errorf("Conflicts = %v, want contradiction for overridden selection", result.Conflicts)
		}
	})

	t.Run("unknown mode behaves as AND", func(t *testing.T) {
		result := Infer(stateOf(types.Mode("xor"), []types.Attribute{"monster-type_normal"}, nil), rules, false)

		if result.AttributeStates["monster-type_effect"].Enabled {
			t.Errorf("monster-type_effect.Enabled = true, want false")
		}
	})
}

func TestInfer_TwoRequiredMembersContradict(t *testing.T) {
	rs := &types.RuleSet{
		FieldToAttribute: []types.FieldRequirementRule{
			{Title: "spell-speed", TriggerPatterns: []string{"spell-speed"}, Target: []types.Attribute{"card-type_spell"}},
			{Title: "atk", TriggerPatterns: []string{"atk"}, Target: []types.Attribute{"card-type_monster"}},
		},
		AttributeExclusion: []types.ExclusionGroup{
			{Title: "Card category", Items: []types.Attribute{"card-type_monster", "card-type_spell", "card-type_trap"}},
		},
	}
	compiled, _ := Compile(rs)

	result := Infer(stateOf(types.ModeAnd, nil, []types.Field{"spell-speed", "atk"}), compiled, false)

	if !result.AttributeStates["card-type_spell"].Enabled || !result.AttributeStates["card-type_monster"].Enabled {
		t.Errorf("required members must stay enabled: %+v", result.AttributeStates)
	}
	if result.AttributeStates["card-type_trap"].Enabled {
		t.Errorf("card-type_trap.Enabled = true, want false")
	}

	subjects := map[string]bool{}
	for _, c := range result.ConflictsOf(types.ConflictContradiction) {
		subjects[c.Subject] = true
	}
	if !subjects["card-type_spell"] || !subjects["card-type_monster"] {
		t.Errorf("contradiction subjects = %v, want both card-type_spell and card-type_monster", subjects)
	}
}

func TestDetectConflicts_RequiredButDisabled(t *testing.T) {
	compiled, _ := Compile(&types.RuleSet{
		AttributeExclusion: []types.ExclusionGroup{
			{Title: "rating", Items: []types.Attribute{"stat_rating", "frame_pendulum"}},
		},
	})
	inf := newInference(types.NewConditionState(), compiled, false)
	inf.attrs["frame_pendulum"] = types.AttributeState{Required: true, Selected: true, DisabledReason: "rating: excluded by stat_rating"}

	conflicts := inf.detectConflicts()

	if len(conflicts) != 1 {
		t.Fatalf("len(conflicts) = %d, want 1: %v", len(conflicts), conflicts)
	}
	if conflicts[0].Type != types.ConflictContradiction || conflicts[0].Subject != "frame_pendulum" {
		t.Errorf("conflict = %+v, want contradiction on frame_pendulum", conflicts[0])
	}
	if !strings.Contains(conflicts[0].Reason, "excluded by stat_rating") {
		t.Errorf("Reason = %q, want the disabled reason carried over", conflicts[0].Reason)
	}
}

func TestInfer_RequirementOverridesSelection(t *testing.T) {
	rs := &types.RuleSet{
		FieldToAttribute: []types.FieldRequirementRule{
			{Title: "scale requires pendulum", TriggerPatterns: []string{"scale"}, Target: []types.Attribute{"frame_pendulum"}},
		},
		AttributeExclusion: []types.ExclusionGroup{
			{Title: "link excludes pendulum", Items: []types.Attribute{"frame_link", "frame_pendulum"}},
		},
	}
	compiled, _ := Compile(rs)

	// The required member wins the group; the user's selection is reported.
	result := Infer(stateOf(types.ModeAnd, []types.Attribute{"frame_link"}, []types.Field{"scale"}), compiled, false)

	if result.AttributeStates["frame_link"].Enabled {
		t.Errorf("frame_link.Enabled = true, want false")
	}
	found := false
	for _, c := range result.ConflictsOf(types.ConflictContradiction) {
		if c.Subject == "frame_pendulum" && strings.Contains(c.Reason, "frame_link") {
			found = true
		}
	}
	if !found {
		t.Errorf("Conflicts = %v, want contradiction naming frame_link", result.Conflicts)
	}
}

func TestInfer_ReverseCascade(t *testing.T) {
	rules := referenceCompiled(t)

	// Normal under AND disables monster-type_link, the only target of the
	// link field rule, so both link fields cascade off.
	result := Infer(stateOf(types.ModeAnd, []types.Attribute{"monster-type_normal"}, nil), rules, true)

	for _, f := range []types.Field{"link-value", "link-marker"} {
		st := result.FieldStates[f]
		if st.Enabled {
			t.Errorf("%s.Enabled = true, want false", f)
		}
		if !strings.Contains(st.DisabledReason, "Link fields require Link monsters") {
			t.Errorf("%s.DisabledReason = %q, want reason citing the rule", f, st.DisabledReason)
		}
	}

	cascades := 0
	for _, e := range result.Trace {
		if e.Action == types.ActionFieldDisableCascade {
			cascades++
		}
	}
	if cascades != 2 {
		t.Errorf("cascade trace entries = %d, want 2", cascades)
	}
}

func TestInfer_RequirementWinsOverSelectedCategory(t *testing.T) {
	rules := referenceCompiled(t)

	result := Infer(stateOf(types.ModeAnd, []types.Attribute{"card-type_spell"}, []types.Field{"atk"}), rules, false)

	// atk input requires card-type_monster, which wins the category group
	// over the merely selected spell.
	if !result.AttributeStates["card-type_monster"].Required {
		t.Errorf("card-type_monster.Required = false, want true")
	}
	if result.AttributeStates["card-type_spell"].Enabled {
		t.Errorf("card-type_spell.Enabled = true, want false")
	}
	if !result.FieldStates["atk"].Enabled {
		t.Errorf("atk.Enabled = false, want true (spell is no longer active)")
	}
	if !result.HasContradiction() {
		t.Errorf("Conflicts = %v, want contradiction for overridden spell selection", result.Conflicts)
	}
}

func TestInfer_UnknownIdentifiers(t *testing.T) {
	rules := referenceCompiled(t)

	state := stateOf(types.ModeAnd, []types.Attribute{"race_dragon", "card-type_monster"}, []types.Field{"name"})
	state.SetInput("password", false)

	result := Infer(state, rules, false)

	want := types.AttributeState{Enabled: true, Selected: true}
	if diff := cmp.Diff(want, result.AttributeStates["race_dragon"]); diff != "" {
		t.Errorf("race_dragon state mismatch (-want +got):\n%s", diff)
	}
	if st, ok := result.FieldStates["name"]; !ok || !st.Enabled || !st.HasInput {
		t.Errorf("name state = %+v (tracked %v), want enabled with input", st, ok)
	}
	if st, ok := result.FieldStates["password"]; !ok || !st.Enabled || st.HasInput {
		t.Errorf("password state = %+v (tracked %v), want enabled without input", st, ok)
	}
}

func TestInfer_ZeroValueInputs(t *testing.T) {
	result := Infer(types.ConditionState{}, nil, true)

	if len(result.AttributeStates) != 0 || len(result.FieldStates) != 0 {
		t.Errorf("states = %v / %v, want empty", result.AttributeStates, result.FieldStates)
	}
	if result.Conflicts == nil {
		t.Errorf("Conflicts = nil, want empty slice")
	}
	if result.Trace == nil {
		t.Errorf("Trace = nil, want empty slice when tracing")
	}
	if !result.Converged || result.Iterations != 1 {
		t.Errorf("Converged = %v, Iterations = %d, want true, 1", result.Converged, result.Iterations)
	}
}

func TestInfer_Defaults(t *testing.T) {
	rules := referenceCompiled(t)

	result := Infer(types.NewConditionState(), rules, false)

	for _, a := range rules.Attributes {
		if diff := cmp.Diff(types.AttributeState{Enabled: true}, result.AttributeStates[a]); diff != "" {
			t.Errorf("%s state mismatch (-want +got):\n%s", a, diff)
		}
	}
	for _, f := range rules.Fields {
		if !result.FieldStates[f].Enabled {
			t.Errorf("%s.Enabled = false, want true", f)
		}
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("Conflicts = %v, want none", result.Conflicts)
	}
	if result.Trace != nil {
		t.Errorf("Trace = %v, want nil when not tracing", result.Trace)
	}
}

func TestInfer_TraceIsDeterministic(t *testing.T) {
	rules := referenceCompiled(t)
	state := stateOf(types.ModeAnd, []types.Attribute{"monster-type_normal"}, []types.Field{"link-marker", "atk", "def"})

	first := Infer(state, rules, true)
	second := Infer(state, rules, true)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("results differ between identical calls (-first +second):\n%s", diff)
	}
	if len(first.Trace) == 0 {
		t.Fatalf("Trace is empty, want entries")
	}
	for i, e := range first.Trace {
		if e.Step != i+1 {
			t.Errorf("Trace[%d].Step = %d, want %d", i, e.Step, i+1)
		}
	}
	if first.Trace[0].Action != types.ActionFieldToAttribute {
		t.Errorf("Trace[0].Action = %s, want %s", first.Trace[0].Action, types.ActionFieldToAttribute)
	}
}

func TestInfer_Converges(t *testing.T) {
	rules := referenceCompiled(t)

	result := Infer(stateOf(types.ModeAnd, nil, []types.Field{"level-rank"}), rules, false)

	if !result.Converged {
		t.Fatalf("Converged = false, want true")
	}
	// One iteration changes state, the next confirms the fixed point.
	if result.Iterations != 2 {
		t.Errorf("Iterations = %d, want 2", result.Iterations)
	}
}

func TestInfer_IterationCap(t *testing.T) {
	rules := referenceCompiled(t)

	result := infer(stateOf(types.ModeAnd, nil, []types.Field{"level-rank"}), rules, false, 1)

	if result.Converged {
		t.Errorf("Converged = true, want false with a cap of 1")
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
}

func TestInfer_DoesNotMutateState(t *testing.T) {
	rules := referenceCompiled(t)
	state := stateOf(types.ModeAnd, []types.Attribute{"monster-type_link"}, []types.Field{"def"})

	_ = Infer(state, rules, false)

	if len(state.SelectedAttributes) != 1 || len(state.FieldInputs) != 1 {
		t.Errorf("state mutated: %+v", state)
	}
}
