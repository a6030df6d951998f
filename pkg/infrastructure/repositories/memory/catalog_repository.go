package memory

import (
	"regexp"
	"strings"
	"sync"

	"github.com/VincentNinIA/butv2/pkg/domain/entities"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
)

// DefaultCacheCapacity bounds the recent-lookup cache.
const DefaultCacheCapacity = 1000

var whitespaceRun = regexp.MustCompile(`\s+`)

// catalogTable is one immutable generation of the catalog. Reload builds a
// fresh table and swaps the pointer, so in-flight readers keep a coherent
// view of the previous generation.
type catalogTable struct {
	index    map[entities.ProductID]*entities.Product
	products []*entities.Product
}

// CatalogRepository provides the in-memory product index with spelling
// tolerant lookup and a bounded FIFO memo cache keyed by the exact input.
type CatalogRepository struct {
	mu    sync.RWMutex
	table *catalogTable

	cacheMu       sync.Mutex
	cache         map[entities.ProductID]*entities.Product
	cacheOrder    []entities.ProductID
	cacheCapacity int
}

// Verify interface compliance
var _ repositories.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates an empty catalog index with the default
// cache capacity.
func NewCatalogRepository() *CatalogRepository {
	return NewCatalogRepositoryWithCapacity(DefaultCacheCapacity)
}

// NewCatalogRepositoryWithCapacity creates an empty catalog index with a
// custom cache capacity. A capacity below one disables caching.
func NewCatalogRepositoryWithCapacity(capacity int) *CatalogRepository {
	return &CatalogRepository{
		table:         &catalogTable{index: make(map[entities.ProductID]*entities.Product)},
		cache:         make(map[entities.ProductID]*entities.Product),
		cacheCapacity: capacity,
	}
}

// ReplaceAll atomically swaps the backing table with a new generation built
// from products. The lookup cache is cleared; it does not survive a reload.
func (r *CatalogRepository) ReplaceAll(products []*entities.Product) error {
	table := &catalogTable{
		index:    make(map[entities.ProductID]*entities.Product, len(products)*3),
		products: make([]*entities.Product, 0, len(products)),
	}

	// Exact spellings first so a derived variant of one product can
	// never shadow another product's exact identifier.
	for _, p := range products {
		table.products = append(table.products, p)
		table.index[p.ID] = p
	}
	for _, p := range products {
		for _, variant := range spellingVariants(p.ID)[1:] {
			if _, taken := table.index[variant]; !taken {
				table.index[variant] = p
			}
		}
	}

	r.mu.Lock()
	r.table = table
	r.mu.Unlock()

	r.cacheMu.Lock()
	r.cache = make(map[entities.ProductID]*entities.Product)
	r.cacheOrder = r.cacheOrder[:0]
	r.cacheMu.Unlock()

	return nil
}

// Lookup resolves an identifier to its product. The identifier may be given
// exactly, with surrounding whitespace, with whitespace runs, or with all
// whitespace removed; all spellings resolve to the same record. Unknown
// identifiers yield entities.ErrProductNotFound.
func (r *CatalogRepository) Lookup(id entities.ProductID) (*entities.Product, error) {
	if hit, ok := r.cacheGet(id); ok {
		return hit, nil
	}

	r.mu.RLock()
	table := r.table
	r.mu.RUnlock()

	for _, variant := range spellingVariants(id) {
		if p, ok := table.index[variant]; ok {
			r.cachePut(id, p)
			return p, nil
		}
	}
	return nil, entities.ErrProductNotFound
}

// GetAllProducts returns the current generation's product snapshots.
func (r *CatalogRepository) GetAllProducts() ([]*entities.Product, error) {
	r.mu.RLock()
	table := r.table
	r.mu.RUnlock()

	products := make([]*entities.Product, len(table.products))
	copy(products, table.products)
	return products, nil
}

// Stats reports cache and index sizes.
func (r *CatalogRepository) Stats() repositories.CacheStats {
	r.mu.RLock()
	table := r.table
	r.mu.RUnlock()

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	return repositories.CacheStats{
		CacheSize:     len(r.cache),
		CacheCapacity: r.cacheCapacity,
		IndexSize:     len(table.index),
		ProductCount:  len(table.products),
	}
}

func (r *CatalogRepository) cacheGet(id entities.ProductID) (*entities.Product, bool) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	p, ok := r.cache[id]
	return p, ok
}

func (r *CatalogRepository) cachePut(id entities.ProductID, p *entities.Product) {
	if r.cacheCapacity < 1 {
		return
	}
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	if _, exists := r.cache[id]; exists {
		r.cache[id] = p
		return
	}
	if len(r.cache) >= r.cacheCapacity {
		oldest := r.cacheOrder[0]
		r.cacheOrder = r.cacheOrder[1:]
		delete(r.cache, oldest)
	}
	r.cache[id] = p
	r.cacheOrder = append(r.cacheOrder, id)
}

// spellingVariants returns the accepted spellings of an identifier, most
// specific first.
func spellingVariants(id entities.ProductID) []entities.ProductID {
	s := string(id)
	trimmed := strings.TrimSpace(s)
	collapsed := whitespaceRun.ReplaceAllString(trimmed, " ")
	stripped := whitespaceRun.ReplaceAllString(trimmed, "")

	variants := []entities.ProductID{id}
	for _, v := range []string{trimmed, collapsed, stripped} {
		if v != s {
			variants = append(variants, entities.ProductID(v))
		}
	}
	return variants
}
