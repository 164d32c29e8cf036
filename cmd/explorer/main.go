// cmd/explorer/main.go: Fix point explorer
//
// Usage:
//
//	explorer serve --config explorer.yaml
//	explorer check "sin(x) + c1"
//	explorer migrate --config explorer.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/fixpoint-explorer/internal/config"
	"github.com/njchilds90/fixpoint-explorer/internal/explore"
	"github.com/njchilds90/fixpoint-explorer/internal/function"
	"github.com/njchilds90/fixpoint-explorer/internal/logging"
	"github.com/njchilds90/fixpoint-explorer/internal/store"
	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
	"github.com/njchilds90/fixpoint-explorer/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "explorer",
		Short:         "Register functions of one variable and explore their fixed points",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the YAML configuration file")
	root.AddCommand(
		newServeCmd(&cfgPath),
		newCheckCmd(),
		newMigrateCmd(&cfgPath),
	)
	return root
}

// loadConfig is Load, Validate, Normalize in that order.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, cfg, logger); err != nil {
				logger.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, err := store.Open(cfg.Database.DSN, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	functions, err := function.NewService(ctx, st, function.DedupOptions{
		ExpectedFunctions: cfg.Dedup.ExpectedFunctions,
		FalsePositiveRate: cfg.Dedup.FalsePositiveRate,
	}, logger)
	if err != nil {
		return err
	}
	explorer := explore.NewExplorer(st, explore.Options{
		MaxIterations:   cfg.Explore.MaxIterations,
		Tolerance:       cfg.Explore.Tolerance,
		DivergenceBound: cfg.Explore.DivergenceBound,
	}, logger)

	registry := prometheus.NewRegistry()
	server, err := web.NewServer(functions, explorer, web.Options{
		Plot:         cfg.Plot,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		RateLimit:    cfg.Server.RateLimit,
		Registry:     registry,
	}, logger)
	if err != nil {
		return err
	}

	srv := web.HTTPServer(cfg.Server, server.Handler())
	errCh := make(chan error, 1)
	go func() {
		logger.Info("explorer listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("database", cfg.Database.DSN))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <expression>",
		Short: "Print the canonical form of an expression or why it is rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := function.Canonicalize(args[0])
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			tree, err := symbolic.ToJSON(c.Expr)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, c.Expression)
			fmt.Fprintf(out, "latex:     %s\n", symbolic.LaTeX(c.Expr))
			fmt.Fprintf(out, "variable:  %s -> %s\n", c.Variable, function.Variable)
			if len(c.Constants) > 0 {
				fmt.Fprintf(out, "constants: %v\n", c.Constants)
			}
			fmt.Fprintf(out, "tree:      %s\n", tree)
			return nil
		},
	}
}

func newMigrateCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			st, err := store.Open(cfg.Database.DSN, nil)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.Database.DSN)
			return nil
		},
	}
}
