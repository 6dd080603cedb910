package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"SignalScanner/internal/config"
	"SignalScanner/internal/infrastructure/storage"
)

func newInitDBCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Drop and recreate all database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()

			db, err := storage.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := storage.ResetSchema(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s initialized\n", cfg.Database.Path)
			return nil
		},
	}
}
