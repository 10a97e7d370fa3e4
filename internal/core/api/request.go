package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/searchcond/internal/filter"
	"github.com/solatis/searchcond/internal/types"
)

// InferRequest is a decoded inference request.
type InferRequest struct {
	State types.ConditionState
	Trace bool
}

// rawInferRequest is the wire shape shared by gRPC and the CLI.
type rawInferRequest struct {
	Filter json.RawMessage `json:"filter"`
	State  json.RawMessage `json:"state"`
	Trace  *bool           `json:"trace"`
}

// DecodeInferRequest decodes a gRPC request object.
func DecodeInferRequest(req *structpb.Struct, defaultTrace bool) (InferRequest, error) {
	if req == nil {
		return InferRequest{}, fmt.Errorf("%w: empty request", types.ErrInvalidRequest)
	}
	data, err := protojson.Marshal(req)
	if err != nil {
		return InferRequest{}, fmt.Errorf("%w: %v", types.ErrInvalidRequest, err)
	}
	return DecodeInferJSON(data, defaultTrace)
}

// DecodeInferJSON decodes {"filter": ...} or {"state": ...} plus an optional
// "trace" flag. Exactly one of filter and state must be present.
func DecodeInferJSON(data []byte, defaultTrace bool) (InferRequest, error) {
	var raw rawInferRequest
	if err := json.Unmarshal(data, &raw); err != nil {
		return InferRequest{}, fmt.Errorf("%w: %v", types.ErrInvalidRequest, err)
	}

	hasFilter, hasState := present(raw.Filter), present(raw.State)
	if hasFilter == hasState {
		return InferRequest{}, fmt.Errorf("%w: exactly one of filter or state is required", types.ErrInvalidRequest)
	}

	out := InferRequest{Trace: defaultTrace}
	if raw.Trace != nil {
		out.Trace = *raw.Trace
	}

	if hasFilter {
		f, err := DecodeFilter(raw.Filter)
		if err != nil {
			return InferRequest{}, err
		}
		out.State = filter.ToConditionState(f)
		return out, nil
	}

	state, err := DecodeState(raw.State)
	if err != nil {
		return InferRequest{}, err
	}
	out.State = state
	return out, nil
}

// DecodeFilter decodes a UI filter object.
func DecodeFilter(data []byte) (*filter.Filter, error) {
	var f filter.Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: filter: %v", types.ErrInvalidRequest, err)
	}
	return &f, nil
}

// DecodeState decodes a raw condition state. Mode is matched
// case-insensitively and missing maps are initialized.
func DecodeState(data []byte) (types.ConditionState, error) {
	var state types.ConditionState
	if err := json.Unmarshal(data, &state); err != nil {
		return types.ConditionState{}, fmt.Errorf("%w: state: %v", types.ErrInvalidRequest, err)
	}
	state.Mode = types.ParseMode(string(state.Mode))
	if state.SelectedAttributes == nil {
		state.SelectedAttributes = make(map[types.Attribute]bool)
	}
	if state.FieldInputs == nil {
		state.FieldInputs = make(map[types.Field]bool)
	}
	return state, nil
}

// encodeStruct converts a JSON-tagged value into a Struct.
func encodeStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
