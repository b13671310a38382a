package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/auction-tracker/internal/app"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
)

var (
	configPath string
	logLevel   string
	outputDir  string

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "auctions",
	Short:         "auctions collects vehicle auction notices into CSV files.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := common.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		if outputDir != "" {
			c.Output.Dir = outputDir
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		logger = common.NewLogger(cmd.ErrOrStderr(), c.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "auctions.json5", "config file; auctions.local.json5 next to it overrides it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "directory for the CSV outputs (overrides OUTPUT_DIR)")
}

func newApp(cmd *cobra.Command) (*app.App, error) {
	return app.New(cmd.Context(), cfg, logger)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
