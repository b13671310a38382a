package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd, scrapeCmd, decodeCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes the published auction notices, then decodes every VIN found.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ss, es, err := a.Run(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "documents: %d found, %d processed, %d succeeded, %d rows\n",
			ss.Links, ss.Stats.Processed, ss.Stats.Succeeded, ss.Stats.Rows)
		fmt.Fprintf(out, "vins: %d decoded, %d failed\n", es.VINs, es.Failed)
		return nil
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Downloads and parses every PDF linked from the auctions page.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.Scrape.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d found, %d processed, %d succeeded, %d rows\n",
			sum.RunID, sum.Links, sum.Stats.Processed, sum.Stats.Succeeded, sum.Stats.Rows)
		for status, n := range sum.Stats.ByStatus {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", status, n)
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decodes the VINs in the data file into VIN_Details.csv.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		sum, err := a.Enrich.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vins: %d decoded, %d failed -> %s\n", sum.VINs, sum.Failed, a.CSV.VINPath())
		return nil
	},
}
