package catalogindex

import (
	"context"
	"fmt"
	"log"
	"strings"

	"storefront-catalog/internal/model"
)

// ExcludedBaseCategories are primary vendor base categories left out of the
// style index.
var ExcludedBaseCategories = map[string]bool{
	"Accessories":      true,
	"Wovens":           true,
	"Outerwear":        true,
	"Knits & Layering": true,
}

// StylePager pages through the primary vendor's full style list.
type StylePager interface {
	StylePage(ctx context.Context, page, limit int) ([]model.CatalogStyle, error)
}

// CollectStyles reads pages until one comes back short, empty, or without
// any style not already seen. Rows are deduplicated by style ID.
func CollectStyles(ctx context.Context, pager StylePager, limit int) ([]model.CatalogStyle, error) {
	if limit <= 0 {
		limit = 500
	}
	seen := map[string]bool{}
	var out []model.CatalogStyle

	for page := 1; ; page++ {
		rows, err := pager.StylePage(ctx, page, limit)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(rows) == 0 {
			break
		}
		fresh := 0
		for _, row := range rows {
			id := row.ID()
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fresh++
			if ExcludedBaseCategories[strings.TrimSpace(row.BaseCategory)] {
				continue
			}
			out = append(out, row)
		}
		log.Printf("Index: page %d returned %d styles (%d new)", page, len(rows), fresh)
		if len(rows) < limit || fresh == 0 {
			break
		}
	}
	return out, nil
}
