package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/pricing"
)

var (
	secondaryCSV string
	secondaryOut string
)

var secondaryCmd = &cobra.Command{
	Use:   "secondary",
	Short: "Build the secondary vendor index from its bulk CSV export",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := secondaryOut
		if out == "" {
			out = cfg.SecondaryIndex
		}
		return buildSecondary(secondaryCSV, out, pricing.NewEngine(cfg.Markups), cfg.SecondaryCDN, cmd)
	},
}

func buildSecondary(csvPath, out string, engine *pricing.Engine, cdnBase string, cmd *cobra.Command) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("missing secondary CSV: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Building secondary index from %s\n", csvPath)
	rows, err := catalogindex.BuildSecondary(bufio.NewReaderSize(f, 1<<20), catalogindex.SecondaryOptions{
		Engine:  engine,
		CDNBase: cdnBase,
	})
	if err != nil {
		return err
	}
	if err := catalogindex.Write(out, rows, lockTimeout); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d styles to %s\n", len(rows), out)
	return nil
}

func init() {
	secondaryCmd.Flags().StringVar(&secondaryCSV, "csv", "catalog-data/SanMar_SDL_DS.csv", "bulk CSV export to read")
	secondaryCmd.Flags().StringVarP(&secondaryOut, "out", "o", "", "output path (default SECONDARY_INDEX_PATH)")
	rootCmd.AddCommand(secondaryCmd)
}
