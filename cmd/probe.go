package main

import (
	"context"
	"encoding/json"
	"fmt"

	"privuploads/internal/config"
	"privuploads/internal/probe"
	"privuploads/internal/uploads"
	"privuploads/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// probeCommand constructs the 'probe' subcommand that runs one privacy check
// synchronously and prints the verdict.
func probeCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Checks whether the private uploads directory is blocked and prints the verdict",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			store, closeStore := getVerdictStore(ctx, cfg)
			defer closeStore()

			prober, err := probe.New(probe.Deps{
				Settings: uploads.NewSettings(cfg),
				Store:    store,
				Storage:  strg,
			}, probe.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create privacy prober", zap.Error(err))
			}

			verdict, err := prober.Check(ctx)
			if err != nil {
				logger.Fatal(ctx, "could not check uploads privacy", zap.Error(err))
			}

			if verdict == nil {
				fmt.Println("undetermined: nothing to probe or the probe request failed") //nolint: forbidigo

				return
			}

			out, err := json.MarshalIndent(verdict, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not render verdict", zap.Error(err))
			}

			fmt.Println(string(out)) //nolint: forbidigo
		},
	}

	return cmd
}
