package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"SignalScanner/internal/usecase"
)

func newIngestCommand() *cobra.Command {
	var opts usecase.IngestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass (collect, enrich, save, promote)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.SkipEnrich && opts.OnlyEnrich {
				return fmt.Errorf("--skip-enrich and --only-enrich are mutually exclusive")
			}
			if opts.Year == 0 && (opts.StartMonth != 0 || opts.EndMonth != 0) {
				return fmt.Errorf("--start-month/--end-month require --year")
			}

			application, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			summary, err := application.Pipeline().Ingest(cmd.Context(), application.Now(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"collected %d candidates, stored %d records, re-enriched %d, promoted %d targets\n",
				summary.Candidates, summary.Records, summary.Updated, summary.Promoted)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.SkipEnrich, "skip-enrich", false, "save collected candidates without enrichment")
	flags.BoolVar(&opts.OnlyEnrich, "only-enrich", false, "re-enrich persisted companies, skip collection")
	flags.IntVar(&opts.Year, "year", 0, "historical scan year")
	flags.IntVar(&opts.StartMonth, "start-month", 0, "first month of the historical scan (1-12)")
	flags.IntVar(&opts.EndMonth, "end-month", 0, "last month of the historical scan (1-12)")
	flags.StringSliceVar(&opts.FilterCompanies, "filter-company", nil, "limit --only-enrich to these companies")
	flags.StringSliceVar(&opts.FilterIndustries, "filter-industry", nil, "limit --only-enrich to these industries")
	flags.BoolVar(&opts.UpdateOld, "update-old", false, "limit --only-enrich to rows stale for over 7 days")
	flags.IntVar(&opts.BatchSize, "batch-size", 0, "cap the number of companies per --only-enrich run")
	return cmd
}
