package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garagehq/servicebot/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "servicebot",
	Short: "Vehicle service pricing and recall assistant",
	Long:  "Caches garage service pricing from spreadsheets and recall notices from Drive or FTP, and answers customer questions about them through Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
