package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/app"
	"github.com/joseph-ayodele/auction-tracker/internal/repository"
)

var dbTimeout time.Duration

func init() {
	dbPingCmd.Flags().DurationVar(&dbTimeout, "timeout", 5*time.Second, "ping timeout")
	dbCmd.AddCommand(dbPingCmd)
	rootCmd.AddCommand(dbCmd)
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance commands.",
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Connects to the configured database, applies the schema and reports audit counts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver == "" {
			return errors.New("no database configured: set DB_DRIVER and DB_URL")
		}
		ctx := cmd.Context()
		store, err := repository.Open(ctx, app.DatabaseConfig(cfg), logger)
		if err != nil {
			return fmt.Errorf("opening DB: %w", err)
		}
		defer store.Close()

		if err := store.HealthCheck(ctx, dbTimeout); err != nil {
			return fmt.Errorf("DB health: FAIL (%w)", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "DB health: OK")

		for _, status := range []constants.AuditStatus{
			constants.StatusSuccess,
			constants.StatusParseFailed,
			constants.StatusNotAPDF,
			constants.StatusDownloadFailed,
		} {
			n, err := store.CountAudit(ctx, string(status))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d\n", status, n)
		}
		return nil
	},
}
