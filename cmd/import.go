package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"privuploads/internal/config"
	"privuploads/internal/uploads"
	"privuploads/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importCommand constructs the 'import' subcommand that moves a local file
// into the private uploads root and records it in the registry.
func importCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Moves a local file into the private uploads directory",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			source := args[0]
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				name = filepath.Base(source)
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			uploadsAPI := uploads.New(uploads.NewSettings(cfg), strg, nil)
			if _, err := uploadsAPI.CreateDirectory(ctx); err != nil {
				logger.Fatal(ctx, "could not create private uploads directory", zap.Error(err))
			}

			result, err := uploadsAPI.MoveFileToPrivateUploads(ctx, source, name, time.Time{})
			if err != nil {
				logger.Fatal(ctx, "could not import file", zap.Error(err))
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not render result", zap.Error(err))
			}

			fmt.Println(string(out)) //nolint: forbidigo
		},
	}

	cmd.Flags().String("name", "", "Destination filename (defaults to the source filename)")

	return cmd
}
