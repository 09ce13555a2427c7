package model

import (
	"strings"
	"unicode"
)

// QueryKind selects which data sources a search consults.
type QueryKind string

const (
	QueryEmpty  QueryKind = ""
	QuerySKU    QueryKind = "sku"
	QueryBrowse QueryKind = "browse"
	QueryText   QueryKind = "text"
)

// SearchQuery is the caller's search input.
type SearchQuery struct {
	Text     string `json:"q" validate:"max=120"`
	Brand    string `json:"brand" validate:"max=80"`
	Category string `json:"type" validate:"max=80"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (q SearchQuery) Trimmed() SearchQuery {
	return SearchQuery{
		Text:     strings.TrimSpace(q.Text),
		Brand:    strings.TrimSpace(q.Brand),
		Category: strings.TrimSpace(q.Category),
	}
}

// Kind classifies the query. A SKU query wins over brand/category filters.
func (q SearchQuery) Kind() QueryKind {
	switch {
	case IsSKUShaped(q.Text):
		return QuerySKU
	case q.Text == "" && (q.Brand != "" || q.Category != ""):
		return QueryBrowse
	case q.Text != "":
		return QueryText
	default:
		return QueryEmpty
	}
}

// IsSKUShaped reports whether s contains at least one digit and no whitespace.
func IsSKUShaped(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// IsNumeric reports whether s is made only of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
