package search

import (
	"context"
	"strings"
	"testing"

	chromem "github.com/philippgille/chromem-go"
	"github.com/shopspring/decimal"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
)

func testEmbeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		lower := strings.ToLower(text)
		vec := []float32{0.1, 0.1, 0.1}
		if strings.Contains(lower, "caisse") {
			vec[0] = 1.0
		}
		if strings.Contains(lower, "film") {
			vec[1] = 1.0
		}
		if strings.Contains(lower, "palette") {
			vec[2] = 1.0
		}
		return vec, nil
	}
}

func searchTestProduct(t *testing.T, id, name string) *entities.Product {
	t.Helper()
	purchase := decimal.NewFromFloat(1.0)
	p, err := entities.NewProduct(
		entities.ProductID(id), name,
		100, 0, 0,
		purchase,
		purchase.Mul(decimal.NewFromFloat(1.15)),
		purchase.Mul(decimal.NewFromFloat(0.15)),
		"2 semaines",
		entities.DelayInfo{Kind: entities.DelayKindFixed, Weeks: 2, RawText: "2 semaines"},
	)
	if err != nil {
		t.Fatalf("NewProduct(%q) failed: %v", id, err)
	}
	return p
}

func newTestSearcher(t *testing.T) *ChromemSearcher {
	t.Helper()
	s, err := NewChromemSearcher(t.TempDir(), "catalog-test", testEmbeddingFunc())
	if err != nil {
		t.Fatalf("NewChromemSearcher failed: %v", err)
	}
	return s
}

func TestChromemSearcher_IndexAndSearch(t *testing.T) {
	s := newTestSearcher(t)
	ctx := context.Background()

	products := []*entities.Product{
		searchTestProduct(t, "A1", "CAISSE US SC 450X300X230MM"),
		searchTestProduct(t, "B2", "FILM ETIRABLE 17µ"),
	}
	if err := s.IndexCatalog(ctx, products); err != nil {
		t.Fatalf("IndexCatalog failed: %v", err)
	}

	candidates, err := s.Search(ctx, "caisse carton", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Search returned %d candidates, want 2", len(candidates))
	}
	if candidates[0].ProductID != "A1" {
		t.Errorf("top candidate = %s, want A1", candidates[0].ProductID)
	}
	if candidates[0].Similarity <= candidates[1].Similarity {
		t.Errorf("candidates not ranked by similarity: %v vs %v",
			candidates[0].Similarity, candidates[1].Similarity)
	}
	if candidates[0].ProductName != "CAISSE US SC 450X300X230MM" {
		t.Errorf("top candidate name = %q", candidates[0].ProductName)
	}
}

func TestChromemSearcher_ReindexReplacesDocuments(t *testing.T) {
	s := newTestSearcher(t)
	ctx := context.Background()

	first := []*entities.Product{searchTestProduct(t, "A1", "CAISSE ANCIENNE")}
	if err := s.IndexCatalog(ctx, first); err != nil {
		t.Fatalf("first IndexCatalog failed: %v", err)
	}

	second := []*entities.Product{searchTestProduct(t, "A1", "CAISSE RECHARGEE")}
	if err := s.IndexCatalog(ctx, second); err != nil {
		t.Fatalf("second IndexCatalog failed: %v", err)
	}

	candidates, err := s.Search(ctx, "caisse", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Search returned %d candidates, want 1", len(candidates))
	}
	if candidates[0].ProductName != "CAISSE RECHARGEE" {
		t.Errorf("candidate name = %q, want replaced document", candidates[0].ProductName)
	}
}

func TestChromemSearcher_EmptyCollection(t *testing.T) {
	s := newTestSearcher(t)

	candidates, err := s.Search(context.Background(), "caisse", 5)
	if err != nil {
		t.Fatalf("Search on empty collection failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(candidates))
	}
}

func TestChromemSearcher_EmptyQuery(t *testing.T) {
	s := newTestSearcher(t)

	if _, err := s.Search(context.Background(), "   ", 5); err == nil {
		t.Fatal("expected error for blank query")
	}
}

func TestBuildEmbeddingFunc(t *testing.T) {
	if _, err := BuildEmbeddingFunc("openai", "text-embedding-3-small", "", ""); err == nil {
		t.Error("expected error for openai without api key")
	}
	if _, err := BuildEmbeddingFunc("ollama", "", "", ""); err == nil {
		t.Error("expected error for ollama without model")
	}
	if _, err := BuildEmbeddingFunc("carrier-pigeon", "m", "k", ""); err == nil {
		t.Error("expected error for unknown provider")
	}
	if f, err := BuildEmbeddingFunc("ollama", "nomic-embed-text", "", "http://localhost:11434/api"); err != nil || f == nil {
		t.Errorf("ollama provider: f=%v err=%v", f, err)
	}
}

func TestNormalizeCollectionName(t *testing.T) {
	if got := normalizeCollectionName("Catalog/OpenAI:text-embedding-3-small"); got != "catalog-openai-text-embedding-3-small" {
		t.Errorf("unexpected normalized name: %s", got)
	}
	if got := normalizeCollectionName("  "); got != "catalog" {
		t.Errorf("blank name = %q, want catalog", got)
	}
}
