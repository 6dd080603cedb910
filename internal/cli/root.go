// Package cli implements the signalscanner command-line interface.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"SignalScanner/internal/app"
	"SignalScanner/internal/config"
	"SignalScanner/internal/logging"
)

// Execute runs the root command.
func Execute() error {
	// Load .env early so credentials are visible to config.Load.
	_ = godotenv.Load()
	return NewRootCommand().ExecuteContext(context.Background())
}

// NewRootCommand assembles the CLI tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "signalscanner",
		Short: "Startup funding and hiring signal scanner",
		Long: "Collects Korean startup funding signals, enriches them with news and\n" +
			"job postings, scores companies, and maintains a sales-target mart.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newIngestCommand(), newQueryCommand(), newScheduleCommand(), newInitDBCommand())
	return root
}

// buildApp loads configuration and wires the application for one command
// run.
func buildApp(ctx context.Context) (*app.Application, error) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	return app.New(ctx, cfg, logger)
}
