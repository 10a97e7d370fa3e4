// Package config provides configuration management for searchcond commands.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Rule sources selectable via rules.source.
const (
	RulesSourceEmbedded = "embedded"
	RulesSourceFile     = "file"
	RulesSourceDB       = "db"
)

// ServerConfig holds configuration for the gRPC condition service.
type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

// Address returns host:port for net.Listen.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RulesConfig selects where the active rule set comes from.
type RulesConfig struct {
	Source string // embedded, file or db
	File   string // rule document path for source=file
	Name   string // stored rule-set name for source=db
}

// EngineConfig tunes the inference engine.
type EngineConfig struct {
	MaxIterations int
	Trace         bool
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// Config is the complete searchcond configuration.
type Config struct {
	Server ServerConfig
	Rules  RulesConfig
	Engine EngineConfig
	Log    LogConfig

	// DatabaseURL is only read from SEARCHCOND_DB_URL or --db-url when it
	// carries a password.
	DatabaseURL string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           50061,
			RequestTimeout: 5 * time.Second,
		},
		Rules: RulesConfig{
			Source: RulesSourceEmbedded,
			Name:   "default",
		},
		Engine: EngineConfig{
			MaxIterations: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks port range, positive timeout and iteration cap, and the
// rule source settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.Server.RequestTimeout)
	}
	if c.Engine.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", c.Engine.MaxIterations)
	}

	switch c.Rules.Source {
	case RulesSourceEmbedded:
	case RulesSourceFile:
		if c.Rules.File == "" {
			return fmt.Errorf("rules.file required when rules.source is %q", RulesSourceFile)
		}
	case RulesSourceDB:
		if c.Rules.Name == "" {
			return fmt.Errorf("rules.name required when rules.source is %q", RulesSourceDB)
		}
	default:
		return fmt.Errorf("unknown rules.source %q (want embedded, file or db)", c.Rules.Source)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log.format %q (want json or text)", c.Log.Format)
	}
	return nil
}

// hasPassword reports whether a database URL embeds a password.
func hasPassword(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return false
	}
	_, set := u.User.Password()
	return set
}
