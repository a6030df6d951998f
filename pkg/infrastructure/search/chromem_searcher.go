package search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
)

var collectionNameSanitizer = regexp.MustCompile(`[^a-z0-9_-]+`)

// ChromemSearcher indexes the product catalog in a persistent chromem-go
// collection and answers similarity queries for alternative candidates.
type ChromemSearcher struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// Verify interface compliance
var _ repositories.CandidateSearcher = (*ChromemSearcher)(nil)

// NewChromemSearcher opens (or creates) the catalog collection under
// vectorsDir. The embedding function is injected so tests can run without
// an embedding provider.
func NewChromemSearcher(vectorsDir, collectionName string, embeddingFunc chromem.EmbeddingFunc) (*ChromemSearcher, error) {
	db, err := chromem.NewPersistentDB(vectorsDir, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create persistent vector DB: %w", err)
	}

	collection, err := db.GetOrCreateCollection(normalizeCollectionName(collectionName), nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %q: %w", collectionName, err)
	}

	return &ChromemSearcher{
		db:         db,
		collection: collection,
	}, nil
}

// BuildEmbeddingFunc selects the embedding provider from configuration.
func BuildEmbeddingFunc(provider, model, apiKey, ollamaBaseURL string) (chromem.EmbeddingFunc, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		if strings.TrimSpace(apiKey) == "" {
			return nil, errors.New("openai embedding requires api_key")
		}
		return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model)), nil

	case "ollama":
		if strings.TrimSpace(model) == "" {
			return nil, errors.New("ollama embedding requires model")
		}
		return chromem.NewEmbeddingFuncOllama(model, ollamaBaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}

// IndexCatalog upserts one document per product. Re-indexing after a
// catalog reload replaces existing documents in place.
func (s *ChromemSearcher) IndexCatalog(ctx context.Context, products []*entities.Product) error {
	for _, p := range products {
		id := string(p.ID)

		_, err := s.collection.GetByID(ctx, id)
		if err == nil {
			if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
				return fmt.Errorf("failed to replace document %s: %w", id, err)
			}
		}

		doc := chromem.Document{
			ID:      id,
			Content: productSheet(p),
			Metadata: map[string]string{
				"product_id": id,
				"name":       p.Name,
			},
		}
		if err := s.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to index product %s: %w", id, err)
		}
	}
	return nil
}

// Search returns up to limit candidates ranked by similarity to the query.
func (s *ChromemSearcher) Search(ctx context.Context, query string, limit int) ([]repositories.SearchCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is required")
	}
	if limit <= 0 {
		limit = 10
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector DB: %w", err)
	}

	candidates := make([]repositories.SearchCandidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, repositories.SearchCandidate{
			ProductID:   entities.ProductID(res.Metadata["product_id"]),
			ProductName: res.Metadata["name"],
			Description: res.Content,
			Similarity:  float64(res.Similarity),
		})
	}
	return candidates, nil
}

// productSheet renders the searchable text for one product.
func productSheet(p *entities.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Référence: %s\n", p.ID)
	fmt.Fprintf(&b, "Nom: %s\n", p.Name)
	fmt.Fprintf(&b, "Stock magasin: %d\n", p.StockOnHand)
	fmt.Fprintf(&b, "Quantité en commande achat: %d\n", p.IncomingPurchaseOrders)
	if p.ReplenishmentDelayText != "" {
		fmt.Fprintf(&b, "Délai de réapprovisionnement: %s\n", p.ReplenishmentDelayText)
	}
	return b.String()
}

func normalizeCollectionName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = collectionNameSanitizer.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if s == "" {
		return "catalog"
	}
	return s
}
