package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/model"
	"storefront-catalog/internal/pricing"
	"storefront-catalog/internal/relevance"
	"storefront-catalog/internal/vendor"
)

type fakeIndex map[catalogindex.Source][]model.CatalogStyle

func (f fakeIndex) Load(src catalogindex.Source) []model.CatalogStyle { return f[src] }

type fakeGateway struct {
	configured    bool
	rows          []model.CatalogStyle
	reachable     bool
	panics        bool
	pricingPanics bool
	prices        map[string]*model.StylePricing

	mu    sync.Mutex
	opts  []vendor.LookupOptions
	calls int
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) FetchStyles(_ context.Context, _ relevance.Query, opts vendor.LookupOptions) (vendor.StyleLookup, error) {
	g.mu.Lock()
	g.opts = append(g.opts, opts)
	g.mu.Unlock()
	if g.panics {
		panic("boom")
	}
	if !g.reachable {
		return vendor.StyleLookup{}, vendor.ErrUnreachable
	}
	return vendor.StyleLookup{Rows: g.rows, Reachable: true}, nil
}

func (g *fakeGateway) FetchPricing(_ context.Context, styleID string, _ pricing.Tier) (*model.StylePricing, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.pricingPanics {
		panic("pricing boom")
	}
	if p, ok := g.prices[styleID]; ok {
		return p, nil
	}
	return nil, errors.New("no pricing")
}

func newService(t *testing.T, gw Gateway, idx fakeIndex) *Service {
	t.Helper()
	s, err := NewService(Deps{Gateway: gw, Index: idx})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func style(id, brand, name, category string) model.CatalogStyle {
	return model.CatalogStyle{StyleID: model.FlexString(id), BrandName: brand, StyleName: name, BaseCategory: category}
}

var localIndex = fakeIndex{
	catalogindex.SourcePrimary: {
		style("39", "Gildan", "2000", "T-Shirts"),
		style("1001", "Gildan", "5000", "T-Shirts"),
		style("1002", "Gildan", "18500", "Fleece - Hooded Pullover"),
		style("2001", "Adidas", "A432", "Fleece - Hooded Pullover"),
		style("2002", "Adidas", "A230", "T-Shirts"),
		style("2003", "adidas", "A4780", "Hoodie Zip"),
		{StyleID: "3001", BrandName: "Richardson", StyleName: "112", BaseCategory: "Caps", Categories: "11"},
		{StyleID: "3002", BrandName: "Gildan", StyleName: "5000B", BaseCategory: "T-Shirts", Categories: "21,60"},
	},
	catalogindex.SourceSecondary: {
		{
			StyleID: "PC61", BrandName: "Port & Company", StyleName: "PC61", Title: "Essential Tee",
			BaseCategory: "T-Shirts",
			SizePrices:   []model.SizePrice{{Label: "S-XL", Price: 6.50, Cost: 3.00}, {Label: "2XL", Price: 8.00, Cost: 4.50}},
			Colors:       []model.ColorImage{{Name: "Black", Image: "https://cdn.example.com/black.jpg"}},
		},
		style("2001", "Adidas", "A432", "Fleece - Hooded Pullover"),
	},
}

func TestSearch_EmptyQuery(t *testing.T) {
	s := newService(t, nil, localIndex)
	if _, err := s.Search(context.Background(), model.SearchQuery{Text: "   "}); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestSearch_TooLongQuery(t *testing.T) {
	s := newService(t, nil, localIndex)
	_, err := s.Search(context.Background(), model.SearchQuery{Text: strings.Repeat("x", 200)})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestSearch_NumericStyleID(t *testing.T) {
	qty := &model.StylePricing{Price: 5.50, Cost: 2.00, TotalQty: 120, HasQty: true,
		SizePrices: []model.SizePrice{{Label: "S-XL", Price: 5.50, Cost: 2.00}}}
	gw := &fakeGateway{
		configured: true,
		reachable:  true,
		rows:       []model.CatalogStyle{style("39", "Gildan", "2000", "T-Shirts")},
		prices:     map[string]*model.StylePricing{"39": qty},
	}
	s := newService(t, gw, localIndex)

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "39"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Kind != model.QuerySKU || resp.Fallback {
		t.Fatalf("kind=%s fallback=%v", resp.Kind, resp.Fallback)
	}
	if len(resp.Results) == 0 || resp.Results[0].StyleID != "39" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Price == nil || *resp.Results[0].Price != 5.50 || resp.Results[0].Qty() != 120 {
		t.Fatalf("pricing not applied: %+v", resp.Results[0])
	}
	for _, opts := range gw.opts {
		if !opts.SkipStyleName {
			t.Fatal("SKU query must skip the style-name endpoint")
		}
	}
}

func TestSearch_BrandAndTypeBrowse(t *testing.T) {
	s := newService(t, nil, localIndex)

	resp, err := s.Search(context.Background(), model.SearchQuery{Brand: "ADIDAS", Category: "Hoodie"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Kind != model.QueryBrowse {
		t.Fatalf("kind = %s", resp.Kind)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %+v", resp.Results)
	}
	for _, r := range resp.Results {
		if !strings.EqualFold(r.BrandName, "adidas") {
			t.Fatalf("brand %q leaked into Adidas browse", r.BrandName)
		}
		if !strings.Contains(strings.ToLower(r.BaseCategory), "hood") {
			t.Fatalf("category %q does not match hoodie", r.BaseCategory)
		}
	}
}

func TestSearch_UnreachableFallsBackToLocal(t *testing.T) {
	gw := &fakeGateway{configured: true, reachable: false}
	s := newService(t, gw, localIndex)

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "essential tee"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !resp.Fallback {
		t.Fatal("expected fallback")
	}
	if len(resp.Results) == 0 {
		t.Fatal("expected local results")
	}
	if resp.Results[0].StyleID != "PC61" {
		t.Fatalf("first result = %+v", resp.Results[0])
	}
	if p := resp.Results[0].Price; p == nil || *p != 6.50 {
		t.Fatalf("secondary row should be priced from stored sizes: %+v", resp.Results[0])
	}
	if gw.calls != 0 {
		t.Fatalf("pricing fetched %d times while vendor is down", gw.calls)
	}
}

func TestSearch_PanicFallsBackToLocal(t *testing.T) {
	gw := &fakeGateway{configured: true, panics: true}
	s := newService(t, gw, localIndex)

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "heavy blend hooded"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !resp.Fallback {
		t.Fatal("expected fallback after panic")
	}
}

func TestSearch_UnreachableWithEmptyIndices(t *testing.T) {
	gw := &fakeGateway{configured: true, reachable: false}
	s := newService(t, gw, fakeIndex{})

	if _, err := s.Search(context.Background(), model.SearchQuery{Text: "tee"}); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestSearch_NotConfiguredUsesLocal(t *testing.T) {
	s := newService(t, &fakeGateway{}, fakeIndex{})
	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "tee"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Fallback || len(resp.Results) != 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestSearch_SKUPrecisionAndCategorySafety(t *testing.T) {
	gw := &fakeGateway{
		configured: true,
		reachable:  true,
		rows: []model.CatalogStyle{
			style("1001", "Gildan", "5000", "T-Shirts"),
			style("4000", "Gildan", "Heavy Cotton", "T-Shirts"),
		},
	}
	s := newService(t, gw, localIndex)

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "5000"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	seen := map[string]bool{}
	for _, r := range resp.Results {
		if seen[r.StyleID] {
			t.Fatalf("duplicate style %s", r.StyleID)
		}
		seen[r.StyleID] = true
		if !strings.Contains(r.StyleID+r.StyleName, "5000") {
			t.Fatalf("result %+v does not contain the SKU", r)
		}
		if r.StyleID == "3002" {
			t.Fatal("denied category returned")
		}
	}
	if !seen["1001"] {
		t.Fatalf("expected style 1001 in %+v", resp.Results)
	}
}

func TestSearch_SortsByQtyThenScoreThenName(t *testing.T) {
	rows := []model.CatalogStyle{
		style("1", "Brand", "Tee Alpha", "T-Shirts"),
		style("2", "Brand", "Tee Bravo", "T-Shirts"),
		style("3", "Brand", "TEE", "T-Shirts"),
		style("4", "Brand", "Tee Charlie", "T-Shirts"),
	}
	gw := &fakeGateway{
		configured: true,
		reachable:  true,
		rows:       rows,
		prices: map[string]*model.StylePricing{
			"4": {Price: 6, TotalQty: 500, HasQty: true},
			"1": {Price: 6, TotalQty: 10, HasQty: true},
		},
	}
	s := newService(t, gw, fakeIndex{})

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "tee"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	var got []string
	for _, r := range resp.Results {
		got = append(got, r.StyleID)
	}
	want := []string{"4", "1", "3", "2"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSearch_CapsResults(t *testing.T) {
	var rows []model.CatalogStyle
	for i := 0; i < 60; i++ {
		rows = append(rows, style("9"+string(rune('A'+i%26))+string(rune('a'+i/26)), "Brand", "Tee", "T-Shirts"))
	}
	gw := &fakeGateway{configured: true, reachable: true, rows: rows}
	s := newService(t, gw, fakeIndex{})

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "tee"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != MaxResults {
		t.Fatalf("len = %d, want %d", len(resp.Results), MaxResults)
	}
	if gw.calls > MaxCandidates {
		t.Fatalf("priced %d candidates, limit is %d", gw.calls, MaxCandidates)
	}
}

func TestSearch_SKUUnreachableFallsBackToLocal(t *testing.T) {
	idx := fakeIndex{
		catalogindex.SourcePrimary: {
			style("7001", "Port & Company", "PC600", "T-Shirts"),
			style("7002", "Port & Company", "Core Tee", "T-Shirts"),
		},
		catalogindex.SourceSecondary: localIndex[catalogindex.SourceSecondary],
	}
	gw := &fakeGateway{configured: true, reachable: false}
	s := newService(t, gw, idx)

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "pc6"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Kind != model.QuerySKU || !resp.Fallback {
		t.Fatalf("kind=%s fallback=%v", resp.Kind, resp.Fallback)
	}
	got := map[string]model.Result{}
	for _, r := range resp.Results {
		got[r.StyleID] = r
	}
	if len(got) != 2 {
		t.Fatalf("results = %+v", resp.Results)
	}
	if _, ok := got["7001"]; !ok {
		t.Fatalf("primary row missing: %+v", resp.Results)
	}
	if p := got["PC61"].Price; p == nil || *p != 6.50 {
		t.Fatalf("secondary row should keep stored pricing: %+v", got["PC61"])
	}
	if gw.calls != 0 {
		t.Fatalf("pricing fetched %d times while vendor is down", gw.calls)
	}
	for _, opts := range gw.opts {
		if !opts.SkipStyleName {
			t.Fatal("SKU query must skip the style-name endpoint")
		}
	}
}

func TestSearch_SKUUnreachableWithEmptyIndices(t *testing.T) {
	gw := &fakeGateway{configured: true, reachable: false}
	s := newService(t, gw, fakeIndex{})

	for _, q := range []string{"PC61", "tee"} {
		if _, err := s.Search(context.Background(), model.SearchQuery{Text: q}); !errors.Is(err, ErrUpstreamUnavailable) {
			t.Fatalf("q=%q err = %v, want ErrUpstreamUnavailable", q, err)
		}
	}
}

func TestSearch_PricingPanicLeavesRowUnpriced(t *testing.T) {
	gw := &fakeGateway{
		configured:    true,
		reachable:     true,
		pricingPanics: true,
		rows:          []model.CatalogStyle{style("1001", "Gildan", "5000", "T-Shirts")},
	}
	s := newService(t, gw, fakeIndex{})

	resp, err := s.Search(context.Background(), model.SearchQuery{Text: "5000"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].StyleID != "1001" {
		t.Fatalf("results = %+v", resp.Results)
	}
	if resp.Results[0].Price != nil {
		t.Fatalf("row should be unpriced: %+v", resp.Results[0])
	}
}
