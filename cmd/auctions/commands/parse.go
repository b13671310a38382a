package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/internal/core/auction"
	"github.com/joseph-ayodele/auction-tracker/internal/ingest"
	ingestsvc "github.com/joseph-ayodele/auction-tracker/internal/services/ingest"
)

var (
	parseText          bool
	parseIncludeHidden bool
)

func init() {
	parseCmd.Flags().BoolVar(&parseText, "text", false, "treat inputs as already extracted text and print the parsed record as JSON")
	parseCmd.Flags().BoolVar(&parseIncludeHidden, "include-hidden", false, "also read hidden files and directories")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file-or-dir>...",
	Short: "Parses local auction notices into the output files.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if parseText {
			return printParsedText(cmd, args)
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		q := a.NewQueue()
		svc := ingestsvc.NewService(ingest.NewFSIngestor(q, logger), logger)

		var firstErr error
		for _, p := range args {
			res, err := svc.Ingest(ctx, ingestsvc.Request{Path: p, IncludeHidden: parseIncludeHidden})
			if err != nil {
				logger.Error("ingest failed", "path", p, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			st := res.Statistics
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d matched, %d queued, %d duplicates, %d failed\n",
				p, st.Matched, st.Succeeded-st.Deduplicated, st.Deduplicated, st.Failed)
		}
		q.Shutdown(context.WithoutCancel(ctx))

		st := q.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents, %d succeeded, %d rows\n", st.Processed, st.Succeeded, st.Rows)
		return firstErr
	},
}

func printParsedText(cmd *cobra.Command, paths []string) error {
	parser := auction.NewParser(nil, logger)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out := parser.ParseText(filepath.Base(p), string(b))
		logger.Debug("parsed text", "path", p, "rows_located", out.RowsLocated, "rows_rejected", out.RowsRejected)
		if err := enc.Encode(out.Document); err != nil {
			return err
		}
	}
	return nil
}
