package main

import (
	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/bumper/internal/transport/chi"
)

func newFixesCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fixes <report-id>",
		Short: "Show the changeset and hunks that fixed a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			r, err := a.reports.Fixes(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, chiTransport.NewReportResponse(&r))
		},
	}
}
