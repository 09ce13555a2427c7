package catalogindex

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"storefront-catalog/internal/model"
	"storefront-catalog/internal/pricing"
)

// ExcludedSecondaryCategories are bulk-export categories the storefront
// never sells.
var ExcludedSecondaryCategories = map[string]bool{
	"Caps":                true,
	"Personal Protection": true,
	"Accessories":         true,
	"Outerwear":           true,
	"Woven Shirts":        true,
	"Workwear":            true,
}

var (
	styleImageColumns = []string{
		"FRONT_FLAT_IMAGE_URL", "BACK_FLAT_IMAGE_URL", "PRODUCT_IMAGE",
		"FRONT_MODEL_IMAGE_URL", "BACK_MODEL_IMAGE_URL",
	}
	colorImageColumns = append([]string{"COLOR_PRODUCT_IMAGE", "COLOR_PRODUCT_IMAGE_THUMBNAIL"}, styleImageColumns...)
)

const unknownSizeIndex = 999

// csvRow gives access to one record by header name.
type csvRow struct {
	cols   map[string]int
	record []string
}

func (r csvRow) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// pickImage prefers the first absolute URL, else the first non-empty value.
func (r csvRow) pickImage(columns []string) string {
	fallback := ""
	for _, c := range columns {
		v := r.get(c)
		if v == "" {
			continue
		}
		lower := strings.ToLower(v)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return v
		}
		if fallback == "" {
			fallback = v
		}
	}
	return fallback
}

// StripStyleNumber removes a trailing style number (optionally preceded by a
// dash) from a product title. A title that is only the style number stays.
func StripStyleNumber(title, style string) string {
	title, style = strings.TrimSpace(title), strings.TrimSpace(style)
	if title == "" || style == "" {
		if title != "" {
			return title
		}
		return style
	}
	re := regexp.MustCompile(`(?i)\s*[-\x{2013}\x{2014}]?\s*` + regexp.QuoteMeta(style) + `\.?$`)
	if out := strings.TrimSpace(re.ReplaceAllString(title, "")); out != "" {
		return out
	}
	return style
}

var secondaryHoodieKeywords = []string{"HOOD", "FLEECE", "SWEAT", "ZIP"}

// secondaryTier picks the markup tier from the bulk-export category and
// subcategory only. Crewnecks stay on the tee tier here.
func secondaryTier(category, subcategory string) pricing.Tier {
	joined := strings.ToUpper(category + " " + subcategory)
	for _, kw := range secondaryHoodieKeywords {
		if strings.Contains(joined, kw) {
			return pricing.TierHoodie
		}
	}
	return pricing.TierTee
}

type sizeEntry struct {
	sp    model.SizePrice
	order float64
}

type styleEntry struct {
	row        model.CatalogStyle
	colorIndex map[string]bool
	sizes      map[string]*sizeEntry
}

// SecondaryOptions configures BuildSecondary.
type SecondaryOptions struct {
	Engine  *pricing.Engine
	CDNBase string
}

// BuildSecondary turns a secondary vendor bulk CSV export (one line per
// style, color and size) into index rows with pre-computed size prices.
// Per size the highest cost wins.
func BuildSecondary(r io.Reader, opts SecondaryOptions) ([]model.CatalogStyle, error) {
	engine := opts.Engine
	if engine == nil {
		engine = pricing.NewEngine(pricing.DefaultMarkups())
	}
	resolve := func(img string) string { return model.ResolveImage(opts.CDNBase, img) }

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols["STYLE#"]; !ok {
		return nil, errors.New("CSV has no STYLE# column")
	}

	styles := map[string]*styleEntry{}
	var order []string

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read CSV: %w", err)
		}
		row := csvRow{cols: cols, record: record}
		category := row.get("CATEGORY_NAME")
		if ExcludedSecondaryCategories[category] {
			continue
		}
		style := row.get("STYLE#")
		if style == "" {
			continue
		}
		subcategory := row.get("SUBCATEGORY_NAME")

		entry, ok := styles[style]
		if !ok {
			entry = &styleEntry{
				row: model.CatalogStyle{
					StyleID:      model.FlexString(style),
					BrandName:    row.get("MILL"),
					StyleName:    style,
					ProductName:  StripStyleNumber(row.get("PRODUCT_TITLE"), style),
					BaseCategory: category,
					Subcategory:  subcategory,
					StyleImage:   resolve(row.pickImage(styleImageColumns)),
				},
				colorIndex: map[string]bool{},
				sizes:      map[string]*sizeEntry{},
			}
			styles[style] = entry
			order = append(order, style)
		}

		if color := row.get("COLOR_NAME"); color != "" && !entry.colorIndex[color] {
			entry.colorIndex[color] = true
			entry.row.Colors = append(entry.row.Colors, model.ColorImage{
				Name:  color,
				Image: resolve(row.pickImage(colorImageColumns)),
			})
		}

		size := row.get("SIZE")
		costText := row.get("CASE_PRICE")
		if costText == "" {
			costText = row.get("PIECE_PRICE")
		}
		cost, err := strconv.ParseFloat(costText, 64)
		if size == "" || err != nil || cost <= 0 {
			continue
		}
		quote, ok := engine.ApplyMarkup(pricing.Round2(cost), secondaryTier(category, subcategory))
		if !ok {
			continue
		}
		sizeOrder := float64(unknownSizeIndex)
		if n, err := strconv.ParseFloat(row.get("SIZE_INDEX"), 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			sizeOrder = n
		}
		if cur, seen := entry.sizes[size]; !seen || quote.Cost > cur.sp.Cost {
			entry.sizes[size] = &sizeEntry{
				sp:    model.SizePrice{Label: size, Price: quote.Price, Cost: quote.Cost},
				order: sizeOrder,
			}
		}
	}

	out := make([]model.CatalogStyle, 0, len(order))
	for _, style := range order {
		entry := styles[style]
		sizes := make([]*sizeEntry, 0, len(entry.sizes))
		for _, s := range entry.sizes {
			sizes = append(sizes, s)
		}
		sort.Slice(sizes, func(i, j int) bool {
			if sizes[i].order != sizes[j].order {
				return sizes[i].order < sizes[j].order
			}
			return sizes[i].sp.Label < sizes[j].sp.Label
		})
		sp := make([]model.SizePrice, 0, len(sizes))
		for _, s := range sizes {
			sp = append(sp, s.sp)
		}
		entry.row.SizePrices = pricing.GroupRuns(sp)
		out = append(out, entry.row)
	}
	return out, nil
}
