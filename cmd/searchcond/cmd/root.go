package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/core/config"
	"github.com/solatis/searchcond/internal/core/logging"
)

// Version is the searchcond release.
const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
	rulesPath  string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "searchcond",
	Short: "searchcond search-form condition inference",
	Long: `searchcond decides which card-search controls are enabled, required or
selected given the controls a user already engaged, and reports conflicts.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "rule document (.json, .yaml); overrides rules.source")
}

// setup loads configuration, applies flag overrides and builds the logger.
// Flags > environment > config file > defaults.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db-url") {
		loaded.DatabaseURL = dbURL
	}
	if flags.Changed("log-level") {
		loaded.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		loaded.Log.Format = logFormat
	}
	if flags.Changed("rules") {
		loaded.Rules.Source = config.RulesSourceFile
		loaded.Rules.File = rulesPath
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return err
	}

	cfg, logger = loaded, l
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
