package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"privuploads/internal/api"
	"privuploads/internal/api/handler/v1handler"
	"privuploads/internal/config"
	"privuploads/internal/delivery"
	"privuploads/internal/probe"
	"privuploads/internal/uploads"
	"privuploads/internal/worker"
	"privuploads/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, deps api.Deps, cfg *config.Config) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
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

// serveCommand constructs the 'serve' subcommand that runs the delivery
// server, the admin API and the background probe workers until interrupted.
func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			store, closeStore := getVerdictStore(ctx, cfg)
			defer closeStore()

			mp, err := api.NewMeterProvider()
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			meter := mp.Meter("privuploads")

			authorize, err := delivery.NewJWTAuthorizationCheck(delivery.JWTOptions{
				PublicKey:    cfg.JWT.PublicKey,
				RequiredRole: cfg.JWT.AdminRole,
			})
			if err != nil {
				logger.Fatal(ctx, "could not create authorization check", zap.Error(err))
			}

			settings := uploads.NewSettings(cfg)
			prober, err := probe.New(probe.Deps{
				Settings: settings,
				Store:    store,
				Storage:  strg,
				Meter:    meter,
			}, probe.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create privacy prober", zap.Error(err))
			}

			riverClient, err := worker.Start(ctx, strg.Pool, prober, worker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, api.Deps{
				Deps: v1handler.Deps{
					Prober:  prober,
					Storage: strg,
				},
				Settings:  settings,
				Authorize: authorize,
				Meter:     meter,
			}, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(ctx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(ctx, "could not stop workers", zap.Error(err))
			}
		},
	}

	return cmd
}
