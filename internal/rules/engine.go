package rules

import (
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/types"
)

// Engine binds a compiled rule set to inference settings for injection into
// the CLI and the gRPC service. Immutable after construction; safe for
// concurrent use.
type Engine struct {
	rules         *CompiledRuleSet
	maxIterations int
	logger        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxIterations overrides DefaultMaxIterations. Non-positive values are ignored.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithLogger sets the logger used to report non-converging rule sets.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over a compiled rule set.
func NewEngine(rules *CompiledRuleSet, opts ...Option) *Engine {
	if rules == nil {
		rules = &CompiledRuleSet{}
	}
	e := &Engine{
		rules:         rules,
		maxIterations: DefaultMaxIterations,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Infer evaluates state against the engine's rules.
// Hitting the iteration cap is a rule data quality problem: it is logged
// here and reported via Result.Converged, never surfaced as an error.
func (e *Engine) Infer(state types.ConditionState, trace bool) types.Result {
	result := infer(state, e.rules, trace, e.maxIterations)
	if !result.Converged {
		e.logger.Warn("condition inference did not converge",
			zap.Int("max_iterations", e.maxIterations),
			zap.Int("rules", e.rules.Len()))
	}
	return result
}

// Rules returns the compiled rule set.
func (e *Engine) Rules() *CompiledRuleSet {
	return e.rules
}

// MaxIterations returns the configured iteration cap.
func (e *Engine) MaxIterations() int {
	return e.maxIterations
}
