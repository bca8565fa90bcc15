package main

import (
	"github.com/CTAG07/crsexplorer/pkg/scrape"
	"github.com/spf13/cobra"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download the IAU2000 and SR-ORG lists from spatialreference.org",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fc := a.config.Fetch
			client := scrape.NewClient(fc.ScrapeConfig(), a.logger)
			if err := client.FetchAll(cmd.Context(), fc.OutputDir); err != nil {
				a.logger.Error("Fetch failed", "error", err)
				return err
			}
			return nil
		},
	}
}
