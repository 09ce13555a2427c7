package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"storefront-catalog/internal/kstream"
	"storefront-catalog/internal/model"
)

var (
	missesGroup string
	missesTop   int
)

// missTally counts searches that came back empty, by query.
type missTally struct {
	mu       sync.Mutex
	total    int
	fallback int
	counts   map[string]int
}

func newMissTally() *missTally {
	return &missTally{counts: map[string]int{}}
}

func (t *missTally) add(evt model.SearchRequested) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	if evt.Fallback {
		t.fallback++
	}
	if evt.Count > 0 {
		return
	}
	key := strings.ToLower(strings.TrimSpace(strings.Join([]string{evt.Query, evt.Brand, evt.Category}, " | ")))
	t.counts[key]++
}

type missCount struct {
	Key   string
	Count int
}

func (t *missTally) top(n int) []missCount {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]missCount, 0, len(t.counts))
	for k, c := range t.counts {
		out = append(out, missCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func (t *missTally) report(w io.Writer, n int) {
	t.mu.Lock()
	total, fallback := t.total, t.fallback
	t.mu.Unlock()
	fmt.Fprintf(w, "%d searches, %d served from local indices\n", total, fallback)
	for _, m := range t.top(n) {
		fmt.Fprintf(w, "%6d  %s\n", m.Count, m.Key)
	}
}

var missesCmd = &cobra.Command{
	Use:   "misses",
	Short: "Tail search events and report queries that returned nothing",
	Long: `misses consumes catalog.search.requests until interrupted, then prints the
most frequent zero-result queries. Use it to find styles worth adding to the
local indices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.KafkaBroker == "" {
			return errors.New("KAFKA_BROKER is not set")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tally := newMissTally()
		err := kstream.ConsumeSearches(ctx, cfg.KafkaBroker, missesGroup, tally.add)
		tally.report(cmd.OutOrStdout(), missesTop)
		return err
	},
}

func init() {
	missesCmd.Flags().StringVar(&missesGroup, "group", "catalog-index-misses", "Kafka consumer group")
	missesCmd.Flags().IntVar(&missesTop, "top", 25, "number of queries to print")
	rootCmd.AddCommand(missesCmd)
}
