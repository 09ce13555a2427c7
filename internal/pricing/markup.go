// Package pricing turns vendor wholesale cost into a retail quote price.
package pricing

import (
	"math"
	"strings"
)

// Tier is the pricing category that selects the markup amount.
type Tier string

const (
	TierTee    Tier = "tee"
	TierHoodie Tier = "hoodie"
)

const (
	DefaultTeeMarkup    = 3.50
	DefaultHoodieMarkup = 7.00
)

// Markups holds the per-tier flat markup added to cost.
type Markups struct {
	Tee    float64 `yaml:"tee" validate:"gte=0"`
	Hoodie float64 `yaml:"hoodie" validate:"gte=0"`
}

// DefaultMarkups returns the stock markup table.
func DefaultMarkups() Markups {
	return Markups{Tee: DefaultTeeMarkup, Hoodie: DefaultHoodieMarkup}
}

// For returns the markup for tier. Unknown tiers use the tee markup.
func (m Markups) For(t Tier) float64 {
	if t == TierHoodie {
		return m.Hoodie
	}
	return m.Tee
}

// Quote is a rounded retail price and the cost it was computed from.
type Quote struct {
	Price float64 `json:"price"`
	Cost  float64 `json:"cost"`
}

// Engine applies markups. The zero value is not useful; use NewEngine.
type Engine struct {
	markups Markups
}

// NewEngine builds an engine. Negative markups are clamped to zero so that
// price is never below cost.
func NewEngine(m Markups) *Engine {
	if m.Tee < 0 || math.IsNaN(m.Tee) {
		m.Tee = 0
	}
	if m.Hoodie < 0 || math.IsNaN(m.Hoodie) {
		m.Hoodie = 0
	}
	return &Engine{markups: m}
}

// Markups returns the table the engine was built with.
func (e *Engine) Markups() Markups { return e.markups }

// ApplyMarkup computes the retail price for cost in tier. It returns false
// when cost is not a finite number.
func (e *Engine) ApplyMarkup(cost float64, tier Tier) (Quote, bool) {
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return Quote{}, false
	}
	price := RoundUpToNickel(cost + e.markups.For(tier))
	return Quote{Price: Round2(price), Cost: Round2(cost)}, true
}

// RoundUpToNickel rounds v up to the next multiple of 0.05. Values already on
// a nickel boundary are kept, with a small tolerance for float noise.
func RoundUpToNickel(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scaled := v * 20
	if r := math.Round(scaled); math.Abs(scaled-r) < 1e-9 {
		return r / 20
	}
	return math.Ceil(scaled) / 20
}

// Round2 rounds to cents for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var hoodieKeywords = []string{"HOOD", "HOODIE", "FLEECE", "SWEAT", "CREW", "PULLOVER"}

// CategoryTier guesses the tier from free text such as category and style
// name. This is a keyword heuristic, not vendor data: "CREW" also matches
// crew-neck tees, which are then quoted at the hoodie markup.
func CategoryTier(texts ...string) Tier {
	joined := strings.ToUpper(strings.Join(strings.Fields(strings.Join(texts, " ")), ""))
	for _, kw := range hoodieKeywords {
		if strings.Contains(joined, kw) {
			return TierHoodie
		}
	}
	return TierTee
}
