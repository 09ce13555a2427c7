package relevance

import (
	"regexp"
	"strings"

	"storefront-catalog/internal/model"
)

// PolicyStatus is the category decision for one catalog row.
type PolicyStatus string

const (
	PolicyUnknown PolicyStatus = "unknown"
	PolicyAllowed PolicyStatus = "allowed"
	PolicyDenied  PolicyStatus = "denied"
)

// Vendor category IDs the storefront refuses to sell (headwear and safety
// gear) or actively wants (printable garments and totes).
var (
	DefaultDenyIDs  = []int{11, 12, 13, 14, 60, 61}
	DefaultAllowIDs = []int{21, 22, 23, 24, 36, 37, 38, 40, 41}
)

const (
	defaultBanPattern   = `(?i)\b(headwear|caps?|hats?|visors?|beanies?|trucker|safety|hi-?vis)\b`
	defaultAllowPattern = `(?i)\b(t-?shirts?|tees?|fleece|hood(ie|ed)?s?|sweatshirts?|crew\s*necks?|totes?|bags?|tanks?|polos?|long\s*sleeves?)\b`
)

// CategoryRules configures a CategoryPolicy.
type CategoryRules struct {
	AllowIDs     []int  `yaml:"allow_ids"`
	DenyIDs      []int  `yaml:"deny_ids"`
	AllowPattern string `yaml:"allow_pattern"`
	BanPattern   string `yaml:"ban_pattern"`
	// DefaultAllow decides rows that neither IDs nor keywords classify.
	DefaultAllow bool `yaml:"default_allow"`
}

// DefaultCategoryRules returns the stock rules with a permissive default.
func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		AllowIDs:     DefaultAllowIDs,
		DenyIDs:      DefaultDenyIDs,
		AllowPattern: defaultAllowPattern,
		BanPattern:   defaultBanPattern,
		DefaultAllow: true,
	}
}

// CategoryPolicy decides which catalog rows may be shown.
type CategoryPolicy struct {
	allow        map[int]struct{}
	deny         map[int]struct{}
	allowRe      *regexp.Regexp
	banRe        *regexp.Regexp
	defaultAllow bool
}

// NewCategoryPolicy compiles rules. Empty patterns disable the keyword pass.
func NewCategoryPolicy(rules CategoryRules) (*CategoryPolicy, error) {
	p := &CategoryPolicy{
		allow:        toSet(rules.AllowIDs),
		deny:         toSet(rules.DenyIDs),
		defaultAllow: rules.DefaultAllow,
	}
	var err error
	if rules.AllowPattern != "" {
		if p.allowRe, err = regexp.Compile(rules.AllowPattern); err != nil {
			return nil, err
		}
	}
	if rules.BanPattern != "" {
		if p.banRe, err = regexp.Compile(rules.BanPattern); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func toSet(ids []int) map[int]struct{} {
	out := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Check classifies row. Deny IDs win over allow IDs; keywords are consulted
// only when the IDs do not decide.
func (p *CategoryPolicy) Check(row model.CatalogStyle) PolicyStatus {
	ids := model.ParseCategoryIDs(row.Categories)
	allowedByID := false
	for _, id := range ids {
		if _, ok := p.deny[id]; ok {
			return PolicyDenied
		}
		if _, ok := p.allow[id]; ok {
			allowedByID = true
		}
	}
	if allowedByID {
		return PolicyAllowed
	}

	text := strings.Join([]string{
		row.BaseCategory, row.Subcategory, row.StyleName, row.ProductName, row.Title, row.Description,
	}, " ")
	if p.banRe != nil && p.banRe.MatchString(text) {
		return PolicyDenied
	}
	if p.allowRe != nil && p.allowRe.MatchString(text) {
		return PolicyAllowed
	}
	return PolicyUnknown
}

// IsAllowed applies Check and resolves PolicyUnknown with the configured
// default.
func (p *CategoryPolicy) IsAllowed(row model.CatalogStyle) bool {
	switch p.Check(row) {
	case PolicyAllowed:
		return true
	case PolicyDenied:
		return false
	default:
		return p.defaultAllow
	}
}

// Denies reports whether any of ids is on the deny list.
func (p *CategoryPolicy) Denies(ids []int) bool {
	for _, id := range ids {
		if _, ok := p.deny[id]; ok {
			return true
		}
	}
	return false
}
