package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lucasefe/pbimentor/evaluator"
	"github.com/lucasefe/pbimentor/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis and evaluation API",
		Long: `Start the HTTP API:

  GET  /health         liveness check
  POST /api/analyze    multipart "file" (.pbit), returns grading info and report
  POST /api/evaluate   multipart "file", "question", "prompt", returns a score

Evaluation routes are disabled when no evaluator credentials are configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := server.NewHandler(nil, nil, a.logger)
			eval, err := a.newEvaluator(ctx, a.cfg.EvaluatorSettings(a.logger))
			switch {
			case err == nil:
				handler.Evaluator = eval
				handler.Visual = eval
			case errors.Is(err, evaluator.ErrMissingCredentials):
				a.logger.Warn("Evaluation disabled", zap.Error(err))
			default:
				return err
			}

			router := server.NewRouter(handler, server.Options{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Logger:         a.logger,
			})
			return server.Run(ctx, addr, router, a.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}
