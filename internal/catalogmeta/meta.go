// Package catalogmeta derives browse selector data (brands, categories and
// the links between them) from the primary style index.
package catalogmeta

import (
	"sort"
	"strings"

	"storefront-catalog/internal/model"
)

// Meta is the payload of the catalog metadata endpoint.
type Meta struct {
	Brands            []string            `json:"brands"`
	Categories        []string            `json:"categories"`
	BrandToCategories map[string][]string `json:"brandToCategories"`
	CategoryToBrands  map[string][]string `json:"categoryToBrands"`
}

type set map[string]struct{}

func (s set) add(v string) { s[v] = struct{}{} }

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func link(m map[string]set, k, v string) {
	if m[k] == nil {
		m[k] = set{}
	}
	m[k].add(v)
}

// Build collects distinct brands and categories from rows. Only rows with
// both a brand and a category contribute to the cross maps.
func Build(rows []model.CatalogStyle) Meta {
	brands, categories := set{}, set{}
	b2c, c2b := map[string]set{}, map[string]set{}

	for _, row := range rows {
		b := strings.TrimSpace(row.BrandName)
		c := strings.TrimSpace(row.BaseCategory)
		if b != "" {
			brands.add(b)
		}
		if c != "" {
			categories.add(c)
		}
		if b != "" && c != "" {
			link(b2c, b, c)
			link(c2b, c, b)
		}
	}

	meta := Meta{
		Brands:            brands.sorted(),
		Categories:        categories.sorted(),
		BrandToCategories: make(map[string][]string, len(b2c)),
		CategoryToBrands:  make(map[string][]string, len(c2b)),
	}
	for k, v := range b2c {
		meta.BrandToCategories[k] = v.sorted()
	}
	for k, v := range c2b {
		meta.CategoryToBrands[k] = v.sorted()
	}
	return meta
}
