package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/core/api"
	"github.com/solatis/searchcond/internal/core/config"
	"github.com/solatis/searchcond/internal/core/db"
	"github.com/solatis/searchcond/internal/rules"
	"github.com/solatis/searchcond/internal/types"
)

// openStore opens the configured database and its rule-set store.
// The caller closes the returned handle.
func openStore() (*sqlx.DB, *db.RuleSetStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("--db-url or SEARCHCOND_DB_URL required")
	}
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return database, db.NewRuleSetStore(queries), nil
}

// loadActiveRules resolves the rule set selected by rules.source. Document
// issues are logged, never fatal.
func loadActiveRules() (*types.RuleSet, api.RuleSource, error) {
	var (
		rs     *types.RuleSet
		issues []rules.Issue
		source = api.RuleSource{Kind: cfg.Rules.Source}
	)

	switch cfg.Rules.Source {
	case config.RulesSourceEmbedded:
		rs = rules.LoadRules()
	case config.RulesSourceFile:
		var err error
		rs, issues, err = rules.LoadRulesFile(cfg.Rules.File)
		if err != nil {
			return nil, source, err
		}
		source.Path = cfg.Rules.File
	case config.RulesSourceDB:
		database, store, err := openStore()
		if err != nil {
			return nil, source, err
		}
		defer database.Close()

		rec, err := store.Latest(cfg.Rules.Name)
		if err != nil {
			return nil, source, err
		}
		rs, issues = rec.Decode()
		source.Name, source.ID = rec.Name, rec.ID
	default:
		return nil, source, fmt.Errorf("unknown rules.source %q", cfg.Rules.Source)
	}

	logIssues("rule document issue", issues)
	return rs, source, nil
}

// buildEngine compiles rs and wraps it with the configured options.
func buildEngine(rs *types.RuleSet) *rules.Engine {
	compiled, issues := rules.Compile(rs)
	logIssues("rule skipped", issues)
	logger.Debug("rules compiled",
		zap.Int("rules", compiled.Len()),
		zap.Int("attributes", len(compiled.Attributes)),
		zap.Int("fields", len(compiled.Fields)),
	)
	return rules.NewEngine(compiled,
		rules.WithMaxIterations(cfg.Engine.MaxIterations),
		rules.WithLogger(logger),
	)
}

func logIssues(msg string, issues []rules.Issue) {
	for _, issue := range issues {
		logger.Warn(msg, zap.String("issue", issue.String()))
	}
}
