package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/internal/core/pdftext"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>...",
	Short: "Validates PDF structure and reports page counts.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bad := 0
		for _, p := range args {
			b, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			info, err := pdftext.Inspect(b)
			if err != nil {
				bad++
				fmt.Fprintf(out, "%s: unreadable (%v)\n", p, err)
				continue
			}
			if !info.Valid {
				bad++
				fmt.Fprintf(out, "%s: %d pages, %d bytes, invalid: %s\n", p, info.Pages, info.Bytes, info.Problem)
				continue
			}
			fmt.Fprintf(out, "%s: %d pages, %d bytes, ok\n", p, info.Pages, info.Bytes)
		}
		if bad > 0 {
			return fmt.Errorf("%d of %d files failed inspection", bad, len(args))
		}
		return nil
	},
}
