package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solatis/searchcond/internal/core/api"
	"github.com/solatis/searchcond/internal/core/auth"
	"github.com/solatis/searchcond/internal/core/config"
	"github.com/solatis/searchcond/internal/core/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC condition service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rs, source, err := loadActiveRules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	engine := buildEngine(rs)

	authenticator, err := newAuthenticator()
	if err != nil {
		return err
	}

	service, err := api.NewConditionService(engine, rs, source, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting searchcond condition service",
		zap.String("version", Version),
		zap.String("address", cfg.Server.Address()),
		zap.String("rules_source", source.Kind),
		zap.Int("rules", rs.Len()),
		zap.Bool("auth", authenticator != nil),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", zap.String("signal", sig.String()))
		return grpcServer.Shutdown(ctx)
	}
}

// newAuthenticator returns nil when no API keys are configured.
func newAuthenticator() (*auth.Authenticator, error) {
	keys, err := config.APIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to load API keys: %w", err)
	}
	if len(keys) == 0 {
		logger.Warn("no API keys configured, authentication disabled")
		return nil, nil
	}
	return auth.NewAuthenticator(keys)
}
