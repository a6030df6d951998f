package repositories

import (
	"context"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

// SearchCandidate is one ranked document returned by the external semantic
// search collaborator, resolvable to a product plus an optional technical
// description used only for similarity scoring.
type SearchCandidate struct {
	ProductID   entities.ProductID
	ProductName string
	Description string
	Similarity  float64
}

// CandidateSearcher is the external semantic search collaborator. A failure
// or timeout must be degraded by the caller to a catalog-only candidate
// pool, never propagated as a batch failure.
type CandidateSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchCandidate, error)
	IndexCatalog(ctx context.Context, products []*entities.Product) error
}
