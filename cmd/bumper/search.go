package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/bumper/internal/transport/chi"
	reportuc "github.com/kailas-cloud/bumper/internal/usecase/report"
)

type searchFlags struct {
	advanced  bool
	start     int
	rows      int
	languages []string
	datasets  []string
	fixes     bool
}

func newSearchCmd(gf *globalFlags) *cobra.Command {
	sf := &searchFlags{}

	c := &cobra.Command{
		Use:   "search <query>",
		Short: "Search bug reports",
		Long: `Search bug reports by free text.

Without --advanced the text is matched against report and fix text, and
--language/--dataset narrow the hits. With --advanced the query is sent
to the backend verbatim and facets are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, gf, sf, strings.Join(args, " "))
		},
	}
	c.Flags().BoolVarP(&sf.advanced, "advanced", "a", false, "Send the query verbatim")
	c.Flags().IntVar(&sf.start, "start", 0, "Offset of the first hit")
	c.Flags().IntVarP(&sf.rows, "rows", "n", 0, "Number of hits (0 = default window)")
	c.Flags().StringSliceVarP(&sf.languages, "language", "l", nil, "File extension facet, repeatable")
	c.Flags().StringSliceVarP(&sf.datasets, "dataset", "d", nil, "Dataset facet, repeatable")
	c.Flags().BoolVarP(&sf.fixes, "fixes", "f", false, "Fetch the fixes of every hit")
	return c
}

func runSearch(cmd *cobra.Command, gf *globalFlags, sf *searchFlags, query string) error {
	ctx := cmd.Context()

	cfg, logger, err := gf.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	p, err := a.reports.Prepare(reportuc.Criteria{
		Query:     query,
		Advanced:  sf.advanced,
		Start:     sf.start,
		Rows:      sf.rows,
		Languages: sf.languages,
		Datasets:  sf.datasets,
	})
	if err != nil {
		return err
	}

	reports, err := a.reports.Search(ctx, &p)
	if err != nil {
		return err
	}
	if sf.fixes {
		if err := a.reports.FetchFixesAll(ctx, reports); err != nil {
			return err
		}
	}

	logger.Debug("search completed", zap.Int("reports", len(reports)))

	items := make([]chiTransport.ReportResponse, len(reports))
	for i := range reports {
		items[i] = chiTransport.NewReportResponse(&reports[i])
	}
	return printJSON(cmd, chiTransport.ReportListResponse{
		Items:    items,
		Count:    len(items),
		Start:    p.Start(),
		Rows:     p.Rows(),
		Advanced: p.Advanced(),
	})
}
