package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/app"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// Options are the flags shared by every command.
type Options struct {
	EnvFile string
	Driver  string
}

// NewRootCmd builds the helpdesk command tree. Running it without a
// subcommand starts the HTTP server.
func NewRootCmd() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:          "helpdesk",
		Short:        "IT helpdesk ticketing service",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Serve the API using settings from .env
  helpdesk

  # Create the schema without starting the server
  helpdesk migrate --driver sqlite

  # Reload fixtures over existing data
  helpdesk seed --force
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", envOr("HELPDESK_ENV_FILE", ""), "Optional .env file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "Store driver override (postgres|sqlite|memory)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newSeedCmd(opts))

	return cmd
}

func newServeCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newMigrateCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if cfg.Store.Driver == config.DriverMemory {
				return errors.New("memory store has no schema to migrate")
			}
			cfg.Store.RunMigrations = true

			rt, err := app.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Store.Driver)
			return nil
		},
	}
}

func newSeedCmd(opts *Options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load departments, roles, categories and demo users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			rt, err := app.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			applied, err := rt.Seed(cmd.Context(), force)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			if applied {
				fmt.Fprintln(cmd.OutOrStdout(), "fixtures loaded")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "store already seeded; use --force to reload")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Upsert fixtures even when data exists")
	return cmd
}

func runServe(ctx context.Context, opts *Options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.Seed.OnStart {
		applied, err := rt.Seed(ctx, false)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seed checked", zap.Bool("applied", applied))
	}

	server := app.NewServer(app.ServerOptions{
		Config: cfg,
		Logger: logger,
		Repos:  rt.Repos,
		Deps:   rt.Deps,
		Sinks:  rt.Sinks(),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))
		errCh <- server.App.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case sig := <-waitForShutdown():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
	return server.App.Shutdown()
}

func waitForShutdown() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}

func loadConfig(opts *Options) (*config.Config, *zap.Logger, error) {
	var envFiles []string
	if opts.EnvFile != "" {
		envFiles = append(envFiles, opts.EnvFile)
	}
	if opts.Driver != "" {
		// Load validates the DSN against the driver, so the override has to
		// be visible before it runs.
		if err := os.Setenv("STORE_DRIVER", opts.Driver); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
