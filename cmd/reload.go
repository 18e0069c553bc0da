package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Fetch all data sources once and report what was loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("reload"); err != nil {
			return err
		}

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}

		if err := a.Refresher.Refresh(cmd.Context()); err != nil {
			return err
		}

		stats := a.Cache.Stats()
		fmt.Printf("Loaded %d pricing records and %d recall notices\n",
			stats.PricingRecords, stats.RecallNotices)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}
