package search

import (
	"context"
	"log"
	"sync"

	"storefront-catalog/internal/model"
	"storefront-catalog/internal/pricing"
)

// enrich attaches pricing to every candidate. Rows that carry stored size
// prices are priced from them; the rest go to the price cache and then the
// vendor when remote is set. A failed lookup leaves the row unpriced.
func (s *Service) enrich(ctx context.Context, cands []*candidate, remote bool) {
	var pending []*candidate
	for _, c := range cands {
		if p := storedPricing(c.row); p != nil {
			c.pricing = p
			continue
		}
		if remote && !c.secondary && s.gatewayConfigured() {
			pending = append(pending, c)
		}
	}
	if len(pending) == 0 {
		return
	}

	workerCount := calcWorkerCount(len(pending))
	jobs := make(chan *candidate)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				c.pricing = s.safeLookupPricing(ctx, c.row)
			}
		}()
	}

	for _, c := range pending {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- c:
		}
	}
	close(jobs)
	wg.Wait()
}

// safeLookupPricing leaves the row unpriced if the lookup panics.
func (s *Service) safeLookupPricing(ctx context.Context, row model.CatalogStyle) (p *model.StylePricing) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Search: pricing for style %s panicked: %v", row.ID(), r)
			p = nil
		}
	}()
	return s.lookupPricing(ctx, row)
}

func (s *Service) lookupPricing(ctx context.Context, row model.CatalogStyle) *model.StylePricing {
	id := row.ID()
	tier := pricing.CategoryTier(row.BaseCategory, row.StyleName, row.Title)
	if p, ok := s.prices.Get(ctx, id, tier); ok {
		return p
	}
	p, err := s.gateway.FetchPricing(ctx, id, tier)
	if err != nil {
		log.Printf("Search: pricing for style %s: %v", id, err)
		return nil
	}
	s.prices.Set(ctx, id, tier, p)
	return p
}

// storedPricing prices a row from its pre-computed size prices.
func storedPricing(row model.CatalogStyle) *model.StylePricing {
	if len(row.SizePrices) == 0 {
		return nil
	}
	price, cost, _ := pricing.Lowest(row.SizePrices)
	p := &model.StylePricing{Price: price, Cost: cost, SizePrices: row.SizePrices}
	for _, c := range row.Colors {
		p.Colors = append(p.Colors, c.Name)
	}
	p.ColorImages = row.Colors
	return p
}

func calcWorkerCount(n int) int {
	if n <= 0 {
		return 1
	}
	if n > 16 {
		return 16
	}
	return n
}
