package pricing

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"storefront-catalog/internal/model"
)

var sizeOrder = map[string]float64{
	"XS": 0, "S": 1, "M": 2, "L": 3, "XL": 4,
	"2XL": 5, "3XL": 6, "4XL": 7, "5XL": 8, "6XL": 9,
}

var sizeAliases = map[string]string{
	"XXL":     "2XL",
	"XXXL":    "3XL",
	"XXXXL":   "4XL",
	"XXXXXL":  "5XL",
	"XXXXXXL": "6XL",
	"XSMALL":  "XS",
	"SMALL":   "S",
	"MEDIUM":  "M",
	"LARGE":   "L",
	"2X":      "2XL",
	"3X":      "3XL",
	"4X":      "4XL",
	"5X":      "5XL",
	"6X":      "6XL",
}

const unknownSizeRank = 999

var sizeRange = regexp.MustCompile(`^([A-Z0-9\s.]+?)\s*-\s*([A-Z0-9\s.]+)$`)

func sizeValue(tok string) float64 {
	cleaned := strings.NewReplacer(".", "", " ", "", "-", "").Replace(strings.ToUpper(tok))
	if alias, ok := sizeAliases[cleaned]; ok {
		cleaned = alias
	}
	if rank, ok := sizeOrder[cleaned]; ok {
		return rank
	}
	if n, err := strconv.Atoi(leadingDigits(cleaned)); err == nil {
		return 100 + float64(n)
	}
	return unknownSizeRank
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// SizeRank orders apparel size labels: XS..6XL, then numeric sizes, then
// anything unrecognised. A range such as "S-XL" sorts just after its start.
func SizeRank(label string) float64 {
	norm := strings.ToUpper(strings.TrimSpace(label))
	if m := sizeRange.FindStringSubmatch(norm); m != nil {
		return sizeValue(m[1]) + 0.4
	}
	return sizeValue(norm)
}

// SortSizePrices sorts in place by size rank, then label.
func SortSizePrices(sp []model.SizePrice) {
	sort.SliceStable(sp, func(i, j int) bool {
		ri, rj := SizeRank(sp[i].Label), SizeRank(sp[j].Label)
		if ri != rj {
			return ri < rj
		}
		return sp[i].Label < sp[j].Label
	})
}

// Lowest returns the lowest price and lowest cost across sp.
func Lowest(sp []model.SizePrice) (price, cost float64, ok bool) {
	for i, s := range sp {
		if i == 0 || s.Price < price {
			price = s.Price
		}
		if i == 0 || s.Cost < cost {
			cost = s.Cost
		}
	}
	return price, cost, len(sp) > 0
}

func rangeEnds(label string) (string, string) {
	norm := strings.TrimSpace(label)
	if m := sizeRange.FindStringSubmatch(strings.ToUpper(norm)); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return norm, norm
}

// GroupRuns merges neighbouring sizes that share a price into one range
// label ("S", "M", "L" at the same price become "S-L"). The merged cost is
// the highest cost in the run. sp must already be sorted.
func GroupRuns(sp []model.SizePrice) []model.SizePrice {
	if len(sp) < 2 {
		return sp
	}
	out := make([]model.SizePrice, 0, len(sp))
	start := 0
	flush := func(end int) {
		run := sp[start:end]
		if len(run) == 1 {
			out = append(out, run[0])
			return
		}
		first, _ := rangeEnds(run[0].Label)
		_, last := rangeEnds(run[len(run)-1].Label)
		merged := model.SizePrice{Label: first + "-" + last, Price: run[0].Price}
		for _, s := range run {
			if s.Cost > merged.Cost {
				merged.Cost = s.Cost
			}
		}
		out = append(out, merged)
	}
	for i := 1; i < len(sp); i++ {
		if math.Abs(sp[i].Price-sp[start].Price) > 1e-9 {
			flush(i)
			start = i
		}
	}
	flush(len(sp))
	return out
}
