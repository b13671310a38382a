package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/internal/ingest"
)

var (
	watchInitialScan bool
	watchDebounce    time.Duration
)

func init() {
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "process PDFs already present in the directories")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long after the last write before processing a file")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Processes PDFs dropped into the given directories until interrupted.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		q := a.NewQueue()
		ing := ingest.NewFSIngestor(q, logger)

		logger.Info("watching for auction notices", "roots", args)
		err = ingest.Watch(ctx, ing, ingest.WatchConfig{
			Roots:       args,
			InitialScan: watchInitialScan,
			Debounce:    watchDebounce,
			Logger:      logger,
		})
		q.Shutdown(context.WithoutCancel(ctx))

		st := q.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d documents, %d succeeded, %d rows\n", st.Processed, st.Succeeded, st.Rows)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
