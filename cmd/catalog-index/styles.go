package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/pricing"
	"storefront-catalog/internal/vendor"
)

var (
	stylesOut      string
	stylesPageSize int
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "Page through the primary vendor style list and write the style index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := vendor.NewClient(cfg.Vendor(), pricing.NewEngine(cfg.Markups), nil)
		if !client.Configured() {
			return errors.New("missing VENDOR_USERNAME or VENDOR_PASSWORD")
		}
		out := stylesOut
		if out == "" {
			out = cfg.StyleIndexPath
		}
		return buildStyles(ctx, client, out, stylesPageSize, cmd)
	},
}

func buildStyles(ctx context.Context, pager catalogindex.StylePager, out string, pageSize int, cmd *cobra.Command) error {
	rows, err := catalogindex.CollectStyles(ctx, pager, pageSize)
	if err != nil {
		return fmt.Errorf("collect styles: %w", err)
	}
	if err := catalogindex.Write(out, rows, lockTimeout); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d styles to %s\n", len(rows), out)
	return nil
}

func init() {
	stylesCmd.Flags().StringVarP(&stylesOut, "out", "o", "", "output path (default STYLE_INDEX_PATH)")
	stylesCmd.Flags().IntVar(&stylesPageSize, "page-size", 500, "styles requested per page")
	rootCmd.AddCommand(stylesCmd)
}
