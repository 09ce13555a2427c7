package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/config"
	"storefront-catalog/internal/httpapi"
	"storefront-catalog/internal/kstream"
	"storefront-catalog/internal/pricecache"
	"storefront-catalog/internal/pricing"
	"storefront-catalog/internal/relevance"
	"storefront-catalog/internal/search"
	"storefront-catalog/internal/vendor"
)

func main() {
	config.LoadDotenv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	engine := pricing.NewEngine(cfg.Markups)
	client := vendor.NewClient(cfg.Vendor(), engine, nil)
	if !client.Configured() {
		log.Println("Vendor credentials missing; searches will use local indices only")
	}

	policy, err := relevance.NewCategoryPolicy(cfg.Categories)
	if err != nil {
		log.Fatalf("category rules: %v", err)
	}
	types, err := relevance.NewTypeFilter(cfg.TypePatterns)
	if err != nil {
		log.Fatalf("type patterns: %v", err)
	}

	prices := pricecache.New(cfg.RedisAddr, cfg.PriceCacheTTL)
	defer prices.Close()
	events := kstream.NewPublisher(cfg.KafkaBroker)
	defer events.Close()

	index := catalogindex.NewCache(cfg.IndexPaths())
	svc, err := search.NewService(search.Deps{
		Gateway: client,
		Index:   index,
		Policy:  policy,
		Types:   types,
		Prices:  prices,
		Events:  events,
	})
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	// Warm both indices so the first request does not pay for parsing.
	go func() {
		index.Load(catalogindex.SourcePrimary)
		index.Load(catalogindex.SourceSecondary)
	}()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewHandler(&httpapi.API{Search: svc, Index: index, Vendor: client}, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	log.Printf("Catalog API listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
