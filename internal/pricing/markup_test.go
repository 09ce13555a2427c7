package pricing

import (
	"math"
	"testing"
)

func TestApplyMarkup_RoundsUpToNickel(t *testing.T) {
	e := NewEngine(DefaultMarkups())
	cases := []struct {
		cost  float64
		tier  Tier
		price float64
	}{
		{2.00, TierTee, 5.50},
		{2.01, TierTee, 5.55},
		{2.15, TierTee, 5.65},
		{2.16, TierTee, 5.70},
		{10.49, TierHoodie, 17.50},
		{0, TierTee, 3.50},
		{0, TierHoodie, 7.00},
	}
	for _, c := range cases {
		q, ok := e.ApplyMarkup(c.cost, c.tier)
		if !ok {
			t.Fatalf("ApplyMarkup(%v, %s) not ok", c.cost, c.tier)
		}
		if q.Price != c.price {
			t.Errorf("ApplyMarkup(%v, %s) price = %v, want %v", c.cost, c.tier, q.Price, c.price)
		}
		if q.Cost != Round2(c.cost) {
			t.Errorf("ApplyMarkup(%v, %s) cost = %v", c.cost, c.tier, q.Cost)
		}
	}
}

func TestApplyMarkup_NonFinite(t *testing.T) {
	e := NewEngine(DefaultMarkups())
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, ok := e.ApplyMarkup(v, TierTee); ok {
			t.Errorf("ApplyMarkup(%v) should fail", v)
		}
	}
}

func TestApplyMarkup_PriceNeverBelowCostPlusMarkup(t *testing.T) {
	e := NewEngine(DefaultMarkups())
	for cents := 0; cents <= 5000; cents += 7 {
		cost := float64(cents) / 100
		for _, tier := range []Tier{TierTee, TierHoodie} {
			q, _ := e.ApplyMarkup(cost, tier)
			floor := cost + e.Markups().For(tier)
			if q.Price < floor-1e-9 {
				t.Fatalf("cost %v tier %s: price %v below %v", cost, tier, q.Price, floor)
			}
			if q.Price-floor >= 0.05+1e-9 {
				t.Fatalf("cost %v tier %s: price %v rounded more than a nickel", cost, tier, q.Price)
			}
			nickels := q.Price * 20
			if math.Abs(nickels-math.Round(nickels)) > 1e-6 {
				t.Fatalf("cost %v tier %s: price %v not a multiple of 0.05", cost, tier, q.Price)
			}
		}
	}
}

func TestNewEngine_ClampsNegativeMarkup(t *testing.T) {
	e := NewEngine(Markups{Tee: -1, Hoodie: 2})
	q, _ := e.ApplyMarkup(4, TierTee)
	if q.Price != 4 {
		t.Fatalf("price = %v, want 4", q.Price)
	}
}

func TestCategoryTier(t *testing.T) {
	cases := map[string]Tier{
		"T-Shirts":            TierTee,
		"Fleece":              TierHoodie,
		"Pullover Hoodie":     TierHoodie,
		"crewneck sweatshirt": TierHoodie,
		"Tote Bags":           TierTee,
		"":                    TierTee,
	}
	for text, want := range cases {
		if got := CategoryTier(text); got != want {
			t.Errorf("CategoryTier(%q) = %s, want %s", text, got, want)
		}
	}
	if got := CategoryTier("Heavy", "Hood", "ed"); got != TierHoodie {
		t.Errorf("CategoryTier over several fields = %s", got)
	}
}
