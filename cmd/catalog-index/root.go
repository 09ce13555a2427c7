package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront-catalog/internal/config"
)

const lockTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:          "catalog-index",
	Short:        "Build and inspect the storefront catalog indices",
	SilenceUsage: true,
	Long: `catalog-index writes the JSON style indices that catalog-api searches
when the vendor API is down, and the secondary vendor index with
pre-computed size prices.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotenv()
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

// cfg is loaded before any subcommand runs.
var cfg *config.Config

// Execute is called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
