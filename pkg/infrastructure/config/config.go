package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. Every field has a working
// default so an empty file (or no file at all) yields a usable setup.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Pricing PricingConfig `yaml:"pricing"`
	Ranking RankingConfig `yaml:"ranking"`
	Search  SearchConfig  `yaml:"search"`
}

type CatalogConfig struct {
	Path          string        `yaml:"path"`
	CacheCapacity int           `yaml:"cache_capacity"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// PricingConfig holds the rates used when the catalog sheet lacks explicit
// price columns, both relative to the purchase price.
type PricingConfig struct {
	SaleMarkup float64 `yaml:"sale_markup"`
	MarginRate float64 `yaml:"margin_rate"`
}

// RankingConfig is the alternative-ranking policy.
type RankingConfig struct {
	SimilarityFloor   float64 `yaml:"similarity_floor"`
	SimilarityWeight  float64 `yaml:"similarity_weight"`
	MarginWeight      float64 `yaml:"margin_weight"`
	StockWeight       float64 `yaml:"stock_weight"`
	MarginRatioCap    float64 `yaml:"margin_ratio_cap"`
	ShortlistCap      int     `yaml:"shortlist_cap"`
	DefaultSimilarity float64 `yaml:"default_similarity"`
}

type SearchConfig struct {
	Provider      string        `yaml:"provider"`
	Model         string        `yaml:"model"`
	APIKey        string        `yaml:"api_key"`
	OllamaBaseURL string        `yaml:"ollama_base_url"`
	VectorsDir    string        `yaml:"vectors_dir"`
	Collection    string        `yaml:"collection"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:          "Articles.xlsx",
			CacheCapacity: 1000,
			WatchInterval: 5 * time.Second,
		},
		Pricing: PricingConfig{
			SaleMarkup: 1.15,
			MarginRate: 0.15,
		},
		Ranking: RankingConfig{
			SimilarityFloor:   0.05,
			SimilarityWeight:  0.5,
			MarginWeight:      0.3,
			StockWeight:       0.2,
			MarginRatioCap:    1.5,
			ShortlistCap:      8,
			DefaultSimilarity: 0.3,
		},
		Search: SearchConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			VectorsDir: "vectors",
			Collection: "catalog",
			Timeout:    10 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults apply. The OPENAI_API_KEY environment variable
// fills search.api_key when the file leaves it blank.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields the engine cannot tolerate being nonsensical.
func (c *Config) Validate() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.CacheCapacity < 0 {
		return fmt.Errorf("catalog.cache_capacity cannot be negative, got %d", c.Catalog.CacheCapacity)
	}
	if c.Pricing.SaleMarkup <= 0 {
		return fmt.Errorf("pricing.sale_markup must be positive, got %v", c.Pricing.SaleMarkup)
	}
	if c.Pricing.MarginRate < 0 {
		return fmt.Errorf("pricing.margin_rate cannot be negative, got %v", c.Pricing.MarginRate)
	}
	if c.Ranking.SimilarityFloor < 0 || c.Ranking.SimilarityFloor > 1 {
		return fmt.Errorf("ranking.similarity_floor must be in [0,1], got %v", c.Ranking.SimilarityFloor)
	}
	if c.Ranking.MarginRatioCap <= 0 {
		return fmt.Errorf("ranking.margin_ratio_cap must be positive, got %v", c.Ranking.MarginRatioCap)
	}
	if c.Ranking.ShortlistCap < 1 {
		return fmt.Errorf("ranking.shortlist_cap must be at least 1, got %d", c.Ranking.ShortlistCap)
	}
	weightSum := c.Ranking.SimilarityWeight + c.Ranking.MarginWeight + c.Ranking.StockWeight
	if weightSum <= 0 {
		return fmt.Errorf("ranking weights must sum to a positive value, got %v", weightSum)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %v", c.Search.Timeout)
	}
	return nil
}
