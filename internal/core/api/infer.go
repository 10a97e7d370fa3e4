package api

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/searchcond/internal/core/auth"
	"github.com/solatis/searchcond/internal/types"
)

// Infer evaluates one condition state or UI filter.
func (s *ConditionService) Infer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}

	parsed, err := DecodeInferRequest(req, s.defaultTrace)
	if err != nil {
		return nil, toStatus(err)
	}

	start := time.Now()
	result := s.engine.Infer(parsed.State, parsed.Trace)

	// Inference does not block; a caller that gave up still gets nothing back
	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}

	s.logger.Debug("inference complete",
		zap.String("key_id", auth.KeyIDFromContext(ctx)),
		zap.Int("selected", len(parsed.State.SelectedAttributes)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Bool("contradiction", result.HasContradiction()),
		zap.Int("iterations", result.Iterations),
		zap.Duration("elapsed", time.Since(start)),
	)

	out, err := encodeStruct(result)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode result: %v", err)
	}
	return out, nil
}

// rulesResponse is the Rules payload.
type rulesResponse struct {
	Source        RuleSource     `json:"source"`
	RuleCount     int            `json:"ruleCount"`
	MaxIterations int            `json:"maxIterations"`
	RuleSet       *types.RuleSet `json:"ruleSet"`
}

// Rules returns the active rule set and its provenance.
func (s *ConditionService) Rules(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, toStatus(err)
	}

	out, err := encodeStruct(rulesResponse{
		Source:        s.source,
		RuleCount:     s.ruleSet.Len(),
		MaxIterations: s.engine.MaxIterations(),
		RuleSet:       s.ruleSet,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode rules: %v", err)
	}
	return out, nil
}
