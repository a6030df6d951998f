package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
	domainservices "github.com/VincentNinIA/butv2/pkg/domain/services"
)

// RankerPolicy is the tunable alternative-scoring policy. The similarity
// floor is the only hard rejection; low stock or low margin never removes
// a candidate because a human may still offer partial delivery or price
// renegotiation.
type RankerPolicy struct {
	SimilarityFloor   float64
	SimilarityWeight  float64
	MarginWeight      float64
	StockWeight       float64
	MarginRatioCap    float64
	ShortlistCap      int
	DefaultSimilarity float64
	SearchTimeout     time.Duration
}

// DefaultRankerPolicy keeps the ordering similarity > margin > stock.
func DefaultRankerPolicy() RankerPolicy {
	return RankerPolicy{
		SimilarityFloor:   0.05,
		SimilarityWeight:  0.5,
		MarginWeight:      0.3,
		StockWeight:       0.2,
		MarginRatioCap:    1.5,
		ShortlistCap:      8,
		DefaultSimilarity: 0.3,
		SearchTimeout:     10 * time.Second,
	}
}

// AlternativeRanker builds and scores the substitute shortlist for a
// product that cannot be fulfilled as requested. The candidate pool mixes
// a same-category catalog scan with the semantic search collaborator; a
// search failure degrades to the catalog-only pool.
type AlternativeRanker struct {
	catalog  repositories.CatalogRepository
	searcher repositories.CandidateSearcher
	policy   RankerPolicy
}

func NewAlternativeRanker(
	catalog repositories.CatalogRepository,
	searcher repositories.CandidateSearcher,
	policy RankerPolicy,
) *AlternativeRanker {
	return &AlternativeRanker{
		catalog:  catalog,
		searcher: searcher,
		policy:   policy,
	}
}

// Shortlist returns the bounded, score-descending list of alternatives to
// original for the requested quantity. An empty pool yields an empty
// shortlist, never an error.
func (r *AlternativeRanker) Shortlist(
	ctx context.Context,
	original *entities.Product,
	requested entities.Quantity,
) []entities.AlternativeCandidate {
	pool := r.buildPool(ctx, original)

	best := make(map[entities.ProductID]entities.AlternativeCandidate, len(pool))
	for _, c := range pool {
		scored := r.score(c, requested)
		if scored.TechnicalSimilarity < r.policy.SimilarityFloor {
			continue
		}
		if prev, seen := best[scored.Product.ID]; !seen || scored.CompositeScore > prev.CompositeScore {
			best[scored.Product.ID] = scored
		}
	}

	shortlist := make([]entities.AlternativeCandidate, 0, len(best))
	for _, c := range best {
		shortlist = append(shortlist, c)
	}
	sort.Slice(shortlist, func(i, j int) bool {
		if shortlist[i].CompositeScore != shortlist[j].CompositeScore {
			return shortlist[i].CompositeScore > shortlist[j].CompositeScore
		}
		return shortlist[i].Product.ID < shortlist[j].Product.ID
	})

	if len(shortlist) > r.policy.ShortlistCap {
		shortlist = shortlist[:r.policy.ShortlistCap]
	}
	return shortlist
}

// buildPool gathers unscored candidates from the catalog scan and the
// search collaborator, excluding the original product itself.
func (r *AlternativeRanker) buildPool(
	ctx context.Context,
	original *entities.Product,
) []entities.AlternativeCandidate {
	var pool []entities.AlternativeCandidate

	category := domainservices.ExtractCategory(original.Name)
	products, err := r.catalog.GetAllProducts()
	if err != nil {
		log.Printf("alternative ranker: catalog scan failed: %v", err)
	}
	for _, p := range products {
		if p.ID == original.ID {
			continue
		}
		if domainservices.ExtractCategory(p.Name) != category {
			continue
		}
		pool = append(pool, entities.AlternativeCandidate{
			Product:             p,
			TechnicalSimilarity: r.similarity(original, p.Name, ""),
		})
	}

	pool = append(pool, r.searchCandidates(ctx, original)...)
	return pool
}

func (r *AlternativeRanker) searchCandidates(
	ctx context.Context,
	original *entities.Product,
) []entities.AlternativeCandidate {
	if r.searcher == nil {
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, r.policy.SearchTimeout)
	defer cancel()

	query := fmt.Sprintf("alternative produit emballage %s", original.Name)
	results, err := r.searcher.Search(searchCtx, query, r.policy.ShortlistCap*2)
	if err != nil {
		log.Printf("alternative ranker: semantic search failed, using catalog pool only: %v", err)
		return nil
	}

	var pool []entities.AlternativeCandidate
	for _, res := range results {
		if res.ProductID == original.ID {
			continue
		}
		product, err := r.catalog.Lookup(res.ProductID)
		if err != nil {
			// Search documents can lag a catalog reload.
			continue
		}
		similarity := res.Similarity
		if similarity <= 0 || similarity > 1 {
			similarity = r.similarity(original, product.Name, res.Description)
		}
		pool = append(pool, entities.AlternativeCandidate{
			Product:             product,
			TechnicalSimilarity: similarity,
			Description:         res.Description,
		})
	}
	return pool
}

// similarity estimates interchangeability from technical descriptions when
// both sides have one, otherwise from names. An uncomputable similarity
// degrades to the policy default rather than rejecting the candidate.
func (r *AlternativeRanker) similarity(original *entities.Product, name, description string) float64 {
	if description != "" {
		origFeatures := domainservices.ExtractTechnicalFeatures(original.Name)
		candFeatures := domainservices.ExtractTechnicalFeatures(description)
		if len(origFeatures) > 0 && len(candFeatures) > 0 {
			return domainservices.TechnicalSimilarity(origFeatures, candFeatures)
		}
	}
	if original.Name == "" || name == "" {
		return r.policy.DefaultSimilarity
	}
	return domainservices.NameSimilarity(original.Name, name)
}

// score fills the margin and stock components and the composite score.
func (r *AlternativeRanker) score(
	c entities.AlternativeCandidate,
	requested entities.Quantity,
) entities.AlternativeCandidate {
	p := c.Product

	c.Margin = p.RecommendedSalePrice.Sub(p.PurchasePrice)
	c.MarginSufficient = c.Margin.GreaterThanOrEqual(p.MinimumMargin)
	c.StockSufficient = p.FreeStock() >= requested

	marginRatio := r.policy.MarginRatioCap
	if p.MinimumMargin.IsPositive() {
		ratio, _ := c.Margin.Div(p.MinimumMargin).Float64()
		marginRatio = clamp(ratio, 0, r.policy.MarginRatioCap)
	} else if c.Margin.IsNegative() {
		marginRatio = 0
	}

	stockDepth := 0.0
	if requested > 0 {
		stockDepth = clamp(float64(p.FreeStock())/float64(requested), 0, 1)
	}

	c.CompositeScore = r.policy.SimilarityWeight*c.TechnicalSimilarity +
		r.policy.MarginWeight*(marginRatio/r.policy.MarginRatioCap) +
		r.policy.StockWeight*stockDepth
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
