// Package search answers catalog queries from the vendor API and the local
// style indices.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/kstream"
	"storefront-catalog/internal/model"
	"storefront-catalog/internal/pricecache"
	"storefront-catalog/internal/pricing"
	"storefront-catalog/internal/relevance"
	"storefront-catalog/internal/vendor"
)

var (
	// ErrEmptyQuery means no text, brand or type was given.
	ErrEmptyQuery = errors.New("missing search query (style ID, part number, brand or type)")
	// ErrInvalidQuery wraps field validation failures.
	ErrInvalidQuery = errors.New("invalid search query")
	// ErrUpstreamUnavailable means the vendor failed and no local index
	// could stand in for it.
	ErrUpstreamUnavailable = errors.New("catalog upstream unavailable")
)

const (
	MaxResults    = 20
	MaxCandidates = 40

	// skuSubstringScore ranks a local row that only contains the SKU
	// somewhere in its ID or name.
	skuSubstringScore = 50
)

var validate = validator.New()

// Gateway is the remote vendor catalog.
type Gateway interface {
	Configured() bool
	FetchStyles(ctx context.Context, q relevance.Query, opts vendor.LookupOptions) (vendor.StyleLookup, error)
	FetchPricing(ctx context.Context, styleID string, tier pricing.Tier) (*model.StylePricing, error)
}

// Index serves the local style indices.
type Index interface {
	Load(src catalogindex.Source) []model.CatalogStyle
}

// Deps are the collaborators of a Service. Prices and Events may be nil.
type Deps struct {
	Gateway Gateway
	Index   Index
	Policy  *relevance.CategoryPolicy
	Types   *relevance.TypeFilter
	Prices  *pricecache.Cache
	Events  *kstream.Publisher
}

// Service runs catalog searches.
type Service struct {
	gateway Gateway
	index   Index
	policy  *relevance.CategoryPolicy
	types   *relevance.TypeFilter
	prices  *pricecache.Cache
	events  *kstream.Publisher
}

// NewService creates a search service. Missing policy and type filter fall
// back to the built-in defaults.
func NewService(d Deps) (*Service, error) {
	if d.Index == nil {
		return nil, errors.New("search: index is required")
	}
	if d.Policy == nil {
		p, err := relevance.NewCategoryPolicy(relevance.DefaultCategoryRules())
		if err != nil {
			return nil, err
		}
		d.Policy = p
	}
	if d.Types == nil {
		f, err := relevance.NewTypeFilter(relevance.DefaultTypePatterns)
		if err != nil {
			return nil, err
		}
		d.Types = f
	}
	return &Service{
		gateway: d.Gateway,
		index:   d.Index,
		policy:  d.Policy,
		types:   d.Types,
		prices:  d.Prices,
		events:  d.Events,
	}, nil
}

// Response is the outcome of one search.
type Response struct {
	Kind    model.QueryKind
	Results []model.Result
	// Fallback is set when the vendor could not answer and the results
	// come from the local indices only.
	Fallback bool
}

// candidate is a row with its transient search state.
type candidate struct {
	row       model.CatalogStyle
	secondary bool
	score     int
	pricing   *model.StylePricing
}

func (c *candidate) qty() int {
	if c.pricing == nil || !c.pricing.HasQty {
		return 0
	}
	return c.pricing.TotalQty
}

// Search classifies q, consults the matching sources, then filters, prices
// and ranks the merged rows.
func (s *Service) Search(ctx context.Context, q model.SearchQuery) (*Response, error) {
	start := time.Now()
	q = q.Trimmed()
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	kind := q.Kind()
	if kind == model.QueryEmpty {
		return nil, ErrEmptyQuery
	}
	pq := relevance.Prepare(q)

	var (
		cands       []*candidate
		fallback    bool
		skipPricing bool
	)
	switch kind {
	case model.QuerySKU:
		cands = s.localSKU(pq)
		remote, err := s.remote(ctx, pq, vendor.LookupOptions{SkipStyleName: true})
		if err != nil {
			s.logRemote(kind, err)
			if s.gatewayConfigured() && s.localEmpty() {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			fallback = s.gatewayConfigured()
			skipPricing = true
		}
		cands = append(cands, remote...)
	case model.QueryBrowse:
		cands = s.browse(q, pq)
	default:
		remote, err := s.remote(ctx, pq, vendor.LookupOptions{})
		if err != nil {
			s.logRemote(kind, err)
			if s.gatewayConfigured() && s.localEmpty() {
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			}
			fallback = s.gatewayConfigured()
			skipPricing = true
			cands = s.localText(pq)
		} else {
			cands = remote
		}
	}

	cands = s.filter(cands, q, kind)
	cands = dedupe(cands)
	rankByScore(cands)
	if len(cands) > MaxCandidates {
		cands = cands[:MaxCandidates]
	}
	s.enrich(ctx, cands, !skipPricing)
	rankFinal(cands)
	if len(cands) > MaxResults {
		cands = cands[:MaxResults]
	}

	results := make([]model.Result, 0, len(cands))
	for _, c := range cands {
		results = append(results, toResult(c))
	}

	s.publish(ctx, q, kind, len(results), fallback, time.Since(start))
	return &Response{Kind: kind, Results: results, Fallback: fallback}, nil
}

func (s *Service) gatewayConfigured() bool {
	return s.gateway != nil && s.gateway.Configured()
}

func (s *Service) logRemote(kind model.QueryKind, err error) {
	if errors.Is(err, vendor.ErrNotConfigured) {
		return
	}
	log.Printf("Search: vendor lookup failed for %s query, using local indices: %v", kind, err)
}

func (s *Service) localEmpty() bool {
	return len(s.index.Load(catalogindex.SourcePrimary)) == 0 &&
		len(s.index.Load(catalogindex.SourceSecondary)) == 0
}

// remote runs the vendor fan-out and scores the rows. Any failure, including
// a panic below this point, is returned as an error.
func (s *Service) remote(ctx context.Context, pq relevance.Query, opts vendor.LookupOptions) (out []*candidate, err error) {
	if !s.gatewayConfigured() {
		return nil, vendor.ErrNotConfigured
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("vendor lookup panicked: %v", r)
		}
	}()
	lookup, err := s.gateway.FetchStyles(ctx, pq, opts)
	if err != nil {
		return nil, err
	}
	if !lookup.Reachable {
		return nil, vendor.ErrUnreachable
	}
	for _, row := range lookup.Rows {
		if score := relevance.Score(row, pq); score > 0 {
			out = append(out, &candidate{row: row, score: score})
		}
	}
	return out, nil
}

// eachLocal calls fn for every row of both indices.
func (s *Service) eachLocal(fn func(row model.CatalogStyle, secondary bool)) {
	for _, row := range s.index.Load(catalogindex.SourcePrimary) {
		fn(row, false)
	}
	for _, row := range s.index.Load(catalogindex.SourceSecondary) {
		fn(row, true)
	}
}

func (s *Service) localSKU(pq relevance.Query) []*candidate {
	var out []*candidate
	s.eachLocal(func(row model.CatalogStyle, secondary bool) {
		if !relevance.MatchesSKU(row, pq.Raw) {
			return
		}
		score := relevance.Score(row, pq)
		if score < skuSubstringScore {
			score = skuSubstringScore
		}
		out = append(out, &candidate{row: row, secondary: secondary, score: score})
	})
	return out
}

func (s *Service) localText(pq relevance.Query) []*candidate {
	var out []*candidate
	s.eachLocal(func(row model.CatalogStyle, secondary bool) {
		if score := relevance.Score(row, pq); score > 0 {
			out = append(out, &candidate{row: row, secondary: secondary, score: score})
		}
	})
	return out
}

func (s *Service) browse(q model.SearchQuery, pq relevance.Query) []*candidate {
	var out []*candidate
	s.eachLocal(func(row model.CatalogStyle, secondary bool) {
		if q.Brand != "" && !strings.EqualFold(strings.TrimSpace(row.BrandName), q.Brand) {
			return
		}
		out = append(out, &candidate{row: row, secondary: secondary, score: relevance.Score(row, pq)})
	})
	return out
}

// filter applies the category policy, the type filter and, for SKU
// queries, the literal-substring requirement.
func (s *Service) filter(cands []*candidate, q model.SearchQuery, kind model.QueryKind) []*candidate {
	out := cands[:0]
	for _, c := range cands {
		if !s.policy.IsAllowed(c.row) {
			continue
		}
		if q.Category != "" && !s.types.MatchesCategory(c.row, q.Category) {
			continue
		}
		if kind == model.QuerySKU && !relevance.MatchesSKU(c.row, q.Text) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// dedupe keeps one candidate per style ID, preferring the higher score and
// then the earlier source.
func dedupe(cands []*candidate) []*candidate {
	idx := make(map[string]int, len(cands))
	out := make([]*candidate, 0, len(cands))
	for _, c := range cands {
		id := c.row.ID()
		if i, ok := idx[id]; ok {
			if c.score > out[i].score {
				out[i] = c
			}
			continue
		}
		idx[id] = len(out)
		out = append(out, c)
	}
	return out
}

func displayName(c *candidate) string {
	return strings.ToLower(c.row.DisplayName())
}

func rankByScore(cands []*candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return displayName(cands[i]) < displayName(cands[j])
	})
}

// rankFinal orders by stock on hand, then relevance, then name.
func rankFinal(cands []*candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		qi, qj := cands[i].qty(), cands[j].qty()
		if qi != qj {
			return qi > qj
		}
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return displayName(cands[i]) < displayName(cands[j])
	})
}

func toResult(c *candidate) model.Result {
	row := c.row
	name := row.StyleName
	if name == "" {
		name = row.DisplayName()
	}
	r := model.Result{
		StyleID:      row.ID(),
		BrandName:    row.BrandName,
		StyleName:    name,
		ProductName:  row.ProductName,
		BaseCategory: row.BaseCategory,
		Description:  row.Description,
		StyleImage:   row.StyleImage,
	}
	r.ApplyPricing(c.pricing)
	return r
}

func (s *Service) publish(ctx context.Context, q model.SearchQuery, kind model.QueryKind, count int, fallback bool, took time.Duration) {
	if s.events == nil {
		return
	}
	evt := model.SearchRequested{
		Query:          q.Text,
		Brand:          q.Brand,
		Category:       q.Category,
		Kind:           string(kind),
		Count:          count,
		Fallback:       fallback,
		DurationMillis: took.Milliseconds(),
	}
	if err := s.events.PublishSearch(ctx, evt); err != nil {
		log.Printf("Search: failed to publish search event: %v", err)
	}
}
