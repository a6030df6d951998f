package repositories

import "github.com/VincentNinIA/butv2/pkg/domain/entities"

// CacheStats reports the state of a catalog index's lookup cache.
type CacheStats struct {
	CacheSize     int
	CacheCapacity int
	IndexSize     int
	ProductCount  int
}

// CatalogRepository provides access to the product master data. Lookup must
// resolve at least four spellings of the same identifier (as given, trimmed,
// whitespace-collapsed, whitespace-stripped) to the same product and return
// entities.ErrProductNotFound for unknown identifiers.
type CatalogRepository interface {
	Lookup(id entities.ProductID) (*entities.Product, error)
	GetAllProducts() ([]*entities.Product, error)
	// ReplaceAll atomically swaps the backing table. In-flight lookups see
	// either the old or the new table entirely, never a mix.
	ReplaceAll(products []*entities.Product) error
	Stats() CacheStats
}
