package relevance

import (
	"regexp"
	"strings"
	"unicode"

	"storefront-catalog/internal/model"
)

// DefaultTypePatterns maps a browse category token to the patterns a row
// must all match. Keys are compared after TypeKey normalization.
var DefaultTypePatterns = map[string][]string{
	"TSHIRT":         {`(?i)t-?shirt|\btees?\b`},
	"TEE":            {`(?i)t-?shirt|\btees?\b`},
	"LONGSLEEVE":     {`(?i)long\s*sleeve|\bl/s\b`},
	"TANK":           {`(?i)\btanks?\b`},
	"HOODIE":         {`(?i)hood`},
	"PULLOVERHOODIE": {`(?i)hood`, `(?i)pullover|hood(ie|ed)?\s*sweat`},
	"ZIPHOODIE":      {`(?i)hood`, `(?i)zip`},
	"CREWNECK":       {`(?i)crew|sweatshirt`},
	"SWEATSHIRT":     {`(?i)sweat|crew|fleece`},
	"FLEECE":         {`(?i)fleece|hood|sweat|crew`},
	"TOTE":           {`(?i)\btotes?\b`},
	"TOTEBAG":        {`(?i)\btotes?\b`},
	"POLO":           {`(?i)\bpolos?\b`},
}

// TypeKey normalizes a caller category token: letters and digits only, upper case.
func TypeKey(token string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, token)
}

// TypeFilter restricts browse results to a garment type.
type TypeFilter struct {
	patterns map[string][]*regexp.Regexp
}

// NewTypeFilter compiles the pattern table.
func NewTypeFilter(table map[string][]string) (*TypeFilter, error) {
	f := &TypeFilter{patterns: make(map[string][]*regexp.Regexp, len(table))}
	for key, exprs := range table {
		k := TypeKey(key)
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, err
			}
			f.patterns[k] = append(f.patterns[k], re)
		}
	}
	return f, nil
}

// Known reports whether token has a pattern mapping.
func (f *TypeFilter) Known(token string) bool {
	return len(f.patterns[TypeKey(token)]) > 0
}

// Matches reports whether row satisfies every pattern mapped to token. An
// unmapped or empty token does not constrain anything.
func (f *TypeFilter) Matches(row model.CatalogStyle, token string) bool {
	res := f.patterns[TypeKey(token)]
	if len(res) == 0 {
		return true
	}
	text := strings.Join([]string{
		row.BaseCategory, row.Subcategory, row.StyleName, row.ProductName, row.Title,
	}, " ")
	for _, re := range res {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}

// MatchesCategory is the browse-mode category test: mapped tokens use their
// patterns, anything else must equal the row's base category ignoring case.
func (f *TypeFilter) MatchesCategory(row model.CatalogStyle, category string) bool {
	if category == "" {
		return true
	}
	if f.Known(category) {
		return f.Matches(row, category)
	}
	return strings.EqualFold(strings.TrimSpace(row.BaseCategory), category)
}
