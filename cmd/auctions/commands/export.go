package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/internal/export"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "workbook path (default <output>/auctions.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--out <path/to/auctions.xlsx>]",
	Short: "Writes the vehicle, VIN and audit tables into one XLSX workbook.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := exportOut
		if path == "" {
			path = filepath.Join(cfg.Output.Dir, "auctions.xlsx")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export.WriteFile(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (sheets: %s, %s, %s)\n", path,
			export.SheetVehicles, export.SheetVINDetails, export.SheetAudit)
		return nil
	},
}
