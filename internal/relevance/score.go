// Package relevance scores catalog rows against a search query and decides
// which rows may be shown at all.
package relevance

import (
	"strings"
	"unicode"

	"storefront-catalog/internal/model"
)

// Score levels. Higher wins; only the token bonus is computed.
const (
	ScoreExactID        = 100
	ScoreExactStyleName = 90
	ScoreExactProduct   = 80
	ScorePrefix         = 70
	ScoreBrand          = 70
	scoreTokenBase      = 60
	scoreTokenStep      = 5
)

// Normalize uppercases s and strips all whitespace. Both sides of every
// comparison go through it.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// Query is a search query prepared for scoring.
type Query struct {
	Raw      string
	Norm     string
	Numeric  string // set only when Raw is all digits
	Brand    string // normalized brand filter
	Variants []string
	Tokens   []string
	normSet  map[string]struct{}
}

// Prepare builds the scoring view of q.
func Prepare(q model.SearchQuery) Query {
	q = q.Trimmed()
	p := Query{
		Raw:      q.Text,
		Norm:     Normalize(q.Text),
		Brand:    Normalize(q.Brand),
		Variants: Variants(q.Text),
		normSet:  map[string]struct{}{},
	}
	if model.IsNumeric(q.Text) {
		p.Numeric = q.Text
	}
	for _, v := range p.Variants {
		if n := Normalize(v); n != "" {
			p.normSet[n] = struct{}{}
		}
	}
	seen := map[string]bool{}
	for _, f := range strings.Fields(q.Text) {
		tok := Normalize(f)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		p.Tokens = append(p.Tokens, tok)
	}
	return p
}

// Variants returns the distinct spellings of text sent to the vendor:
// as typed, without whitespace, uppercased, and both.
func Variants(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	squashed := strings.Join(strings.Fields(text), "")
	candidates := []string{text, squashed, strings.ToUpper(text), strings.ToUpper(squashed)}
	out := make([]string, 0, len(candidates))
	seen := map[string]bool{}
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (q Query) matchesVariant(s string) bool {
	n := Normalize(s)
	if n == "" {
		return false
	}
	_, ok := q.normSet[n]
	return ok
}

// Haystack is the normalized searchable text of a row.
func Haystack(row model.CatalogStyle) string {
	return Normalize(strings.Join([]string{
		row.StyleName, row.ProductName, row.Title, row.BrandName,
		row.BaseCategory, row.Subcategory, row.Description,
	}, " "))
}

// Score rates how well row answers q. Zero means no relevance.
func Score(row model.CatalogStyle, q Query) int {
	score := 0
	raise := func(v int) {
		if v > score {
			score = v
		}
	}

	if q.Numeric != "" && row.ID() == q.Numeric {
		raise(ScoreExactID)
	}
	if q.matchesVariant(row.StyleName) || q.matchesVariant(row.PartNumber) {
		raise(ScoreExactStyleName)
	}
	if q.matchesVariant(row.ProductName) || q.matchesVariant(row.Title) {
		raise(ScoreExactProduct)
	}
	if q.Norm != "" && strings.HasPrefix(Normalize(row.StyleName), q.Norm) {
		raise(ScorePrefix)
	}
	if len(q.Tokens) > 0 {
		hay := Haystack(row)
		n := 0
		for _, tok := range q.Tokens {
			if strings.Contains(hay, tok) {
				n++
			}
		}
		if n > 0 {
			raise(scoreTokenBase + scoreTokenStep*n)
		}
	}
	if q.Brand != "" && Normalize(row.BrandName) == q.Brand {
		raise(ScoreBrand)
	}
	return score
}

// MatchesSKU reports whether the style ID or one of the name fields
// literally contains the SKU-shaped query.
func MatchesSKU(row model.CatalogStyle, raw string) bool {
	needle := Normalize(raw)
	if needle == "" {
		return false
	}
	for _, field := range []string{row.ID(), row.StyleName, row.PartNumber, row.ProductName, row.Title} {
		if strings.Contains(Normalize(field), needle) {
			return true
		}
	}
	return false
}
