package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flags are
// applied by the caller on the returned Config.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("rules.source", d.Rules.Source)
	v.SetDefault("rules.file", "")
	v.SetDefault("rules.name", d.Rules.Name)
	v.SetDefault("engine.max_iterations", d.Engine.MaxIterations)
	v.SetDefault("engine.trace", d.Engine.Trace)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("db_url", "")

	// Bind environment variables with SEARCHCOND_ prefix
	v.SetEnvPrefix("SEARCHCOND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Credentials must come from the environment or flags
	if err := validateNoSecretsInConfig(configPath); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("server.host"),
			Port:           v.GetInt("server.port"),
			RequestTimeout: v.GetDuration("server.request_timeout"),
		},
		Rules: RulesConfig{
			Source: strings.ToLower(v.GetString("rules.source")),
			File:   v.GetString("rules.file"),
			Name:   v.GetString("rules.name"),
		},
		Engine: EngineConfig{
			MaxIterations: v.GetInt("engine.max_iterations"),
			Trace:         v.GetBool("engine.trace"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		DatabaseURL: v.GetString("db_url"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateNoSecretsInConfig rejects API keys and database passwords stored
// in the config file itself. The file is read without environment binding so an env
// override cannot mask the stored value.
func validateNoSecretsInConfig(configPath string) error {
	if configPath == "" {
		return nil
	}
	file := viper.New()
	file.SetConfigFile(configPath)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if file.IsSet("api_key") || file.IsSet("server.api_key") || file.IsSet("api_keys") {
		return fmt.Errorf("API keys not allowed in config files (use SEARCHCOND_API_KEY environment variable)")
	}
	if hasPassword(file.GetString("db_url")) {
		return fmt.Errorf("database passwords not allowed in config files (use SEARCHCOND_DB_URL environment variable or --db-url)")
	}
	return nil
}
