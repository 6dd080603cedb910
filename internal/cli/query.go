package cli

import (
	"github.com/spf13/cobra"
)

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <company>",
		Short: "Show investment, news, and hiring signals for a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			view, err := application.Query().Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderView(cmd.OutOrStdout(), view)
			return nil
		},
	}
}
