package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alalapi-0/WeDraftSync/internal/app"
	"github.com/alalapi-0/WeDraftSync/internal/config"
	"github.com/alalapi-0/WeDraftSync/internal/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "wedraftsync",
	Short: "Batch-upload local text articles as WeChat Official Account drafts",
	Long: `wedraftsync reads .txt files from a folder, obtains a cached access
token, and submits each article as a draft, recording every outcome to an
append-only upload log.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context())
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Run the full upload batch (same as the bare command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context())
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "List pending articles and verify the token without uploading",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Preview(cmd.Context())
	},
}

func runBatch(ctx context.Context) error {
	application, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run(ctx)
}

func buildApp(ctx context.Context) (*app.Application, error) {
	cfg := config.Load(configFile)
	logger := logging.New(cfg.Logging.Level)
	return app.New(ctx, cfg, logger, os.Stdout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "Path to the YAML configuration file")
	rootCmd.AddCommand(uploadCmd, previewCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
