package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wastepolicy/internal/api"
	"wastepolicy/internal/api/handler/v1handler"
	"wastepolicy/internal/config"
	"wastepolicy/internal/lab"
	"wastepolicy/internal/runner"
	"wastepolicy/internal/worker"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/metrics"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.Default()

			labOpts, err := lab.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create lab options", zap.Error(err))
			}
			labOpts.Metrics = m

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			runnerOpts := runner.NewOptions(cfg, labOpts.Profiles)
			runnerOpts.Metrics = m
			r := runner.New(strg, lab.New(labOpts), runnerOpts)

			workers, err := worker.Start(ctx, strg.Pool, r, worker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps:    v1handler.Deps{Runner: r, Profiles: labOpts.Profiles},
				Ping:    strg.Ping,
				Metrics: m,
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping workers...")
			if err := workers.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers gracefully", zap.Error(err))
			}
		},
	}

	return cmd
}
