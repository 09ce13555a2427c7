package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexString accepts either a JSON string or a JSON number. Vendor exports are
// inconsistent about whether style identifiers are quoted.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// SizePrice is the retail and wholesale price for one size label.
// Price is always cost plus the tier markup, rounded up to the next nickel.
type SizePrice struct {
	Label string  `json:"label"`
	Price float64 `json:"price" validate:"gte=0"`
	Cost  float64 `json:"cost" validate:"gte=0"`
}

// ColorImage is a named colorway with an optional swatch or product image.
type ColorImage struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// CatalogStyle is one vendor product style as stored in a local index file.
// Rows are read-only once loaded; search works on copies.
type CatalogStyle struct {
	StyleID      FlexString   `json:"styleID" validate:"required"`
	PartNumber   string       `json:"partNumber,omitempty"`
	BrandName    string       `json:"brandName,omitempty"`
	StyleName    string       `json:"styleName,omitempty"`
	ProductName  string       `json:"productName,omitempty"`
	Title        string       `json:"title,omitempty"`
	BaseCategory string       `json:"baseCategory,omitempty"`
	Subcategory  string       `json:"subcategory,omitempty"`
	Categories   string       `json:"categories,omitempty"`
	Description  string       `json:"description,omitempty"`
	StyleImage   string       `json:"styleImage,omitempty"`
	Colors       []ColorImage `json:"colors,omitempty" validate:"dive"`
	SizePrices   []SizePrice  `json:"sizePrices,omitempty" validate:"dive"`
}

// ID returns the style identifier as a plain string.
func (s CatalogStyle) ID() string { return string(s.StyleID) }

// DisplayName is the human product name, falling back through the
// vendor-specific fields.
func (s CatalogStyle) DisplayName() string {
	switch {
	case s.ProductName != "":
		return s.ProductName
	case s.Title != "":
		return s.Title
	default:
		return s.StyleName
	}
}

// StylePricing is the aggregated pricing for a style across its size and
// color variants.
type StylePricing struct {
	Price       float64      `json:"price"`
	Cost        float64      `json:"cost"`
	SizePrices  []SizePrice  `json:"sizePrices"`
	Colors      []string     `json:"colors,omitempty"`
	ColorImages []ColorImage `json:"colorImages,omitempty"`
	TotalQty    int          `json:"totalQty"`
	HasQty      bool         `json:"hasQty"`
}

// Result is one item of a search response.
type Result struct {
	StyleID      string       `json:"styleID"`
	BrandName    string       `json:"brandName"`
	StyleName    string       `json:"styleName"`
	ProductName  string       `json:"productName,omitempty"`
	BaseCategory string       `json:"baseCategory"`
	Description  string       `json:"description,omitempty"`
	StyleImage   string       `json:"styleImage"`
	Price        *float64     `json:"price,omitempty"`
	Cost         *float64     `json:"cost,omitempty"`
	SizePrices   []SizePrice  `json:"sizePrices,omitempty"`
	Colors       []string     `json:"colors,omitempty"`
	ColorImages  []ColorImage `json:"colorImages,omitempty"`
	TotalQty     *int         `json:"totalQty,omitempty"`
}

// ApplyPricing copies p onto r.
func (r *Result) ApplyPricing(p *StylePricing) {
	if p == nil {
		return
	}
	price, cost := p.Price, p.Cost
	r.Price = &price
	r.Cost = &cost
	r.SizePrices = p.SizePrices
	if len(p.Colors) > 0 {
		r.Colors = p.Colors
	}
	if len(p.ColorImages) > 0 {
		r.ColorImages = p.ColorImages
	}
	if p.HasQty {
		qty := p.TotalQty
		r.TotalQty = &qty
	}
}

// Qty returns the total warehouse quantity, or zero when unknown.
func (r Result) Qty() int {
	if r.TotalQty == nil {
		return 0
	}
	return *r.TotalQty
}

// ParseCategoryIDs splits a comma separated category ID list, skipping
// anything that is not an integer.
func ParseCategoryIDs(raw string) []int {
	var out []int
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ResolveImage joins img onto base unless it is already absolute or no base
// is configured.
func ResolveImage(base, img string) string {
	img = strings.TrimSpace(img)
	if img == "" {
		return ""
	}
	lower := strings.ToLower(img)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || base == "" {
		return img
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(img, "/")
}
