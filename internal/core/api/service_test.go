package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/searchcond/internal/core/config"
	"github.com/solatis/searchcond/internal/rules"
	"github.com/solatis/searchcond/internal/types"
)

func newTestService(t *testing.T) *ConditionService {
	t.Helper()
	rs := rules.LoadRules()
	compiled, issues := rules.Compile(rs)
	if len(issues) != 0 {
		t.Fatalf("Compile() issues = %v, want none", issues)
	}
	svc, err := NewConditionService(
		rules.NewEngine(compiled),
		rs,
		RuleSource{Kind: config.RulesSourceEmbedded},
		config.DefaultConfig(),
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewConditionService() error = %v, want nil", err)
	}
	return svc
}

func mustStruct(t *testing.T, m map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("structpb.NewStruct() error = %v", err)
	}
	return s
}

func attributeState(t *testing.T, resp *structpb.Struct, attr string) map[string]interface{} {
	t.Helper()
	states, ok := resp.AsMap()["attributeStates"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no attributeStates: %v", resp.AsMap())
	}
	st, ok := states[attr].(map[string]interface{})
	if !ok {
		t.Fatalf("attributeStates has no %s", attr)
	}
	return st
}

func TestNewConditionService_Validation(t *testing.T) {
	compiled, _ := rules.Compile(rules.LoadRules())
	engine := rules.NewEngine(compiled)
	cfg := config.DefaultConfig()

	if _, err := NewConditionService(nil, rules.LoadRules(), RuleSource{}, cfg, nil); err == nil {
		t.Error("expected error for nil engine")
	}
	if _, err := NewConditionService(engine, nil, RuleSource{}, cfg, nil); err == nil {
		t.Error("expected error for nil rule set")
	}
	if _, err := NewConditionService(engine, rules.LoadRules(), RuleSource{}, nil, nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestInfer_Filter(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Infer(context.Background(), mustStruct(t, map[string]interface{}{
		"filter": map[string]interface{}{
			"linkMarkers": []interface{}{1},
		},
	}))
	if err != nil {
		t.Fatalf("Infer() error = %v, want nil", err)
	}

	link := attributeState(t, resp, "monster-type_link")
	if link["required"] != true || link["selected"] != true {
		t.Errorf("monster-type_link = %v, want required and selected", link)
	}
	spell := attributeState(t, resp, "card-type_spell")
	if spell["enabled"] != false {
		t.Errorf("card-type_spell = %v, want disabled", spell)
	}
	if _, ok := resp.AsMap()["trace"]; ok {
		t.Error("trace present without request")
	}
	if resp.AsMap()["converged"] != true {
		t.Error("converged = false, want true")
	}
}

func TestInfer_StateWithTrace(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Infer(context.Background(), mustStruct(t, map[string]interface{}{
		"state": map[string]interface{}{
			"mode":               "or",
			"selectedAttributes": map[string]interface{}{"card-type_spell": true},
			"fieldInputs":        map[string]interface{}{"atk": true},
		},
		"trace": true,
	}))
	if err != nil {
		t.Fatalf("Infer() error = %v, want nil", err)
	}

	trace, ok := resp.AsMap()["trace"].([]interface{})
	if !ok || len(trace) == 0 {
		t.Fatalf("trace = %v, want entries", resp.AsMap()["trace"])
	}
	conflicts, _ := resp.AsMap()["conflicts"].([]interface{})
	if len(conflicts) == 0 {
		t.Error("conflicts empty, want contradiction for atk under spell")
	}
}

func TestInfer_InvalidRequests(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name string
		req  *structpb.Struct
	}{
		{"nil", nil},
		{"empty", mustStruct(t, map[string]interface{}{})},
		{"both", mustStruct(t, map[string]interface{}{
			"filter": map[string]interface{}{},
			"state":  map[string]interface{}{},
		})},
		{"filter not an object", mustStruct(t, map[string]interface{}{"filter": "spell"})},
		{"state wrong shape", mustStruct(t, map[string]interface{}{
			"state": map[string]interface{}{"selectedAttributes": []interface{}{"x"}},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Infer(context.Background(), tt.req)
			if got := status.Code(err); got != codes.InvalidArgument {
				t.Errorf("Infer() code = %v, want InvalidArgument (err %v)", got, err)
			}
		})
	}
}

func TestInfer_ExpiredContext(t *testing.T) {
	svc := newTestService(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Infer(ctx, mustStruct(t, map[string]interface{}{"filter": map[string]interface{}{}}))
	if got := status.Code(err); got != codes.DeadlineExceeded {
		t.Errorf("Infer() code = %v, want DeadlineExceeded", got)
	}
}

func TestRules(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Rules(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("Rules() error = %v, want nil", err)
	}
	m := resp.AsMap()
	if m["ruleCount"] != float64(10) {
		t.Errorf("ruleCount = %v, want 10", m["ruleCount"])
	}
	if m["maxIterations"] != float64(rules.DefaultMaxIterations) {
		t.Errorf("maxIterations = %v, want %d", m["maxIterations"], rules.DefaultMaxIterations)
	}
	source, _ := m["source"].(map[string]interface{})
	if source["kind"] != config.RulesSourceEmbedded {
		t.Errorf("source = %v, want embedded", source)
	}
	rs, _ := m["ruleSet"].(map[string]interface{})
	if groups, _ := rs["attributeExclusion"].([]interface{}); len(groups) != 3 {
		t.Errorf("attributeExclusion has %d groups, want 3", len(groups))
	}
}

func TestDecodeInferJSON(t *testing.T) {
	req, err := DecodeInferJSON([]byte(`{"state": {"mode": "Or", "selectedAttributes": {"a_b": true}}}`), true)
	if err != nil {
		t.Fatalf("DecodeInferJSON() error = %v, want nil", err)
	}
	if req.State.Mode != types.ModeOr {
		t.Errorf("Mode = %q, want OR", req.State.Mode)
	}
	if req.State.FieldInputs == nil {
		t.Error("FieldInputs = nil, want initialized map")
	}
	if !req.Trace {
		t.Error("Trace = false, want default true")
	}

	req, err = DecodeInferJSON([]byte(`{"filter": {"category": "trap"}, "trace": false}`), true)
	if err != nil {
		t.Fatalf("DecodeInferJSON() error = %v, want nil", err)
	}
	if req.Trace {
		t.Error("Trace = true, want explicit false")
	}
	if !req.State.SelectedAttributes["card-type_trap"] {
		t.Error("filter category not converted")
	}

	if _, err := DecodeInferJSON([]byte(`{"filter": null}`), false); !errors.Is(err, types.ErrInvalidRequest) {
		t.Errorf("DecodeInferJSON(null filter) error = %v, want ErrInvalidRequest", err)
	}
	if _, err := DecodeInferJSON([]byte(`[]`), false); !errors.Is(err, types.ErrInvalidRequest) {
		t.Errorf("DecodeInferJSON(array) error = %v, want ErrInvalidRequest", err)
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want codes.Code
	}{
		{nil, codes.OK},
		{types.ErrInvalidRequest, codes.InvalidArgument},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{context.Canceled, codes.Canceled},
		{types.ErrRuleSetNotFound, codes.NotFound},
		{errors.New("connection refused"), codes.Unavailable},
	}
	for _, tt := range tests {
		if got := status.Code(toStatus(tt.err)); got != tt.want {
			t.Errorf("toStatus(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
