// Package api implements the gRPC condition service.
// Thin orchestration layer: decodes requests, runs the shared engine, encodes
// results. Holds no per-request state.
package api

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/core/config"
	pb "github.com/solatis/searchcond/internal/protobuf/searchcond/v1"
	"github.com/solatis/searchcond/internal/rules"
	"github.com/solatis/searchcond/internal/types"
)

// RuleSource records where the active rule set came from.
type RuleSource struct {
	Kind string          `json:"kind"` // embedded, file or db
	Path string          `json:"path,omitempty"`
	Name string          `json:"name,omitempty"`
	ID   types.RuleSetID `json:"id,omitempty"`
}

// ConditionService implements the gRPC ConditionServiceServer interface.
type ConditionService struct {
	pb.UnimplementedConditionServiceServer
	engine         *rules.Engine
	ruleSet        *types.RuleSet
	source         RuleSource
	requestTimeout time.Duration
	defaultTrace   bool
	logger         *zap.Logger
}

// NewConditionService creates service instance with dependencies.
// ruleSet is the uncompiled document the engine was built from, served by
// Rules.
func NewConditionService(engine *rules.Engine, ruleSet *types.RuleSet, source RuleSource, cfg *config.Config, logger *zap.Logger) (*ConditionService, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if ruleSet == nil {
		return nil, fmt.Errorf("ruleSet cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConditionService{
		engine:         engine,
		ruleSet:        ruleSet,
		source:         source,
		requestTimeout: cfg.Server.RequestTimeout,
		defaultTrace:   cfg.Engine.Trace,
		logger:         logger,
	}, nil
}
