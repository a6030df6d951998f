package commands

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	appservices "github.com/VincentNinIA/butv2/pkg/application/services"
	"github.com/VincentNinIA/butv2/pkg/application/services/orchestration"
	"github.com/VincentNinIA/butv2/pkg/domain/repositories"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/config"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/notify"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/repositories/excel"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/repositories/memory"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/search"
	"github.com/VincentNinIA/butv2/pkg/infrastructure/watch"
	"github.com/VincentNinIA/butv2/pkg/interfaces/cli/output"
	"github.com/shopspring/decimal"
)

// Config holds configuration for the validate command
type Config struct {
	CatalogFile string
	ConfigFile  string
	OrderFile   string
	OrderDate   string
	DesiredDate string
	Format      string
	Watch       bool
	Verbose     bool
	Help        bool
}

// ValidateCommand wires the catalog, the searcher and the orchestrator and
// runs one order batch through the validation pipeline.
type ValidateCommand struct {
	config Config
}

func NewValidateCommand(config Config) *ValidateCommand {
	return &ValidateCommand{config: config}
}

// Execute runs the validate command
func (c *ValidateCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if c.config.CatalogFile != "" {
		cfg.Catalog.Path = c.config.CatalogFile
	}

	orderDate, desiredDate, err := c.resolveDates()
	if err != nil {
		return err
	}

	batchText, err := c.readOrderText()
	if err != nil {
		return err
	}

	loader := excel.NewLoaderWithRates(
		decimal.NewFromFloat(cfg.Pricing.SaleMarkup),
		decimal.NewFromFloat(cfg.Pricing.MarginRate),
	)
	products, err := loader.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	catalog := memory.NewCatalogRepositoryWithCapacity(cfg.Catalog.CacheCapacity)
	if err := catalog.ReplaceAll(products); err != nil {
		return fmt.Errorf("failed to index catalog: %w", err)
	}
	if c.config.Verbose {
		fmt.Printf("Catalog loaded: %d products from %s\n\n", len(products), cfg.Catalog.Path)
	}

	searcher := c.buildSearcher(ctx, cfg, catalog)

	policy := appservices.RankerPolicy{
		SimilarityFloor:   cfg.Ranking.SimilarityFloor,
		SimilarityWeight:  cfg.Ranking.SimilarityWeight,
		MarginWeight:      cfg.Ranking.MarginWeight,
		StockWeight:       cfg.Ranking.StockWeight,
		MarginRatioCap:    cfg.Ranking.MarginRatioCap,
		ShortlistCap:      cfg.Ranking.ShortlistCap,
		DefaultSimilarity: cfg.Ranking.DefaultSimilarity,
		SearchTimeout:     cfg.Search.Timeout,
	}

	journal := notify.NewJournal()
	orchestrator := orchestration.NewOrderOrchestrator(
		appservices.NewLineParser(catalog),
		appservices.NewAvailabilityService(),
		appservices.NewAlternativeRanker(catalog, searcher, policy),
		appservices.NewRuleBasedArbiter(),
		catalog,
		journal,
	)

	run := func() error {
		start := time.Now()
		result := orchestrator.ValidateOrder(ctx, batchText, orderDate, desiredDate)
		return output.Generate(os.Stdout, result, output.Config{
			Format:         c.config.Format,
			Verbose:        c.config.Verbose,
			ProcessingTime: time.Since(start),
		})
	}

	if err := run(); err != nil {
		return err
	}

	if c.config.Watch {
		return c.watchAndRevalidate(ctx, cfg, loader, catalog, searcher, run)
	}
	return nil
}

// buildSearcher opens the semantic search collaborator and indexes the
// current catalog. Any failure degrades to catalog-only ranking.
func (c *ValidateCommand) buildSearcher(
	ctx context.Context,
	cfg *config.Config,
	catalog *memory.CatalogRepository,
) repositories.CandidateSearcher {
	embed, err := search.BuildEmbeddingFunc(
		cfg.Search.Provider, cfg.Search.Model, cfg.Search.APIKey, cfg.Search.OllamaBaseURL)
	if err != nil {
		if c.config.Verbose {
			fmt.Printf("Semantic search disabled: %v\n\n", err)
		}
		return nil
	}

	searcher, err := search.NewChromemSearcher(cfg.Search.VectorsDir, cfg.Search.Collection, embed)
	if err != nil {
		log.Printf("semantic search disabled: %v", err)
		return nil
	}

	products, err := catalog.GetAllProducts()
	if err == nil {
		indexCtx, cancel := context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
		if err := searcher.IndexCatalog(indexCtx, products); err != nil {
			log.Printf("catalog indexing failed, search results may be stale: %v", err)
		}
	}
	return searcher
}

// watchAndRevalidate keeps the process alive, reloading the catalog and
// re-running the batch whenever the workbook changes.
func (c *ValidateCommand) watchAndRevalidate(
	ctx context.Context,
	cfg *config.Config,
	loader *excel.Loader,
	catalog *memory.CatalogRepository,
	searcher repositories.CandidateSearcher,
	run func() error,
) error {
	watcher := watch.NewWatcher(cfg.Catalog.Path, cfg.Catalog.WatchInterval, func() error {
		products, err := loader.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		if err := catalog.ReplaceAll(products); err != nil {
			return err
		}
		if searcher != nil {
			indexCtx, cancel := context.WithTimeout(ctx, cfg.Search.Timeout)
			defer cancel()
			if err := searcher.IndexCatalog(indexCtx, products); err != nil {
				log.Printf("catalog re-indexing failed: %v", err)
			}
		}
		return run()
	})

	fmt.Printf("Watching %s every %v, Ctrl-C to stop\n", cfg.Catalog.Path, cfg.Catalog.WatchInterval)
	watcher.Run(ctx)
	return nil
}

func (c *ValidateCommand) resolveDates() (time.Time, *time.Time, error) {
	orderDate := time.Now()
	if c.config.OrderDate != "" {
		parsed, err := time.Parse("2006-01-02", c.config.OrderDate)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("invalid -order-date (want YYYY-MM-DD): %w", err)
		}
		orderDate = parsed
	}

	var desired *time.Time
	if c.config.DesiredDate != "" {
		parsed, err := time.Parse("2006-01-02", c.config.DesiredDate)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("invalid -desired-date (want YYYY-MM-DD): %w", err)
		}
		desired = &parsed
	}
	return orderDate, desired, nil
}

// readOrderText reads the batch from the order file, or stdin when no file
// was given.
func (c *ValidateCommand) readOrderText() (string, error) {
	if c.config.OrderFile != "" {
		data, err := os.ReadFile(c.config.OrderFile)
		if err != nil {
			return "", fmt.Errorf("failed to read order file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read order from stdin: %w", err)
	}
	return string(data), nil
}

// showHelp displays the help message
func (c *ValidateCommand) showHelp() {
	fmt.Printf(`Order Validation CLI - availability, margin and alternative checking

USAGE:
    ordercheck -catalog Articles.xlsx -order order.txt
    cat order.txt | ordercheck -catalog Articles.xlsx

OPTIONS:
    -catalog <file>      Path to the catalog workbook (overrides the config file)
    -config <file>       Path to the YAML configuration file
    -order <file>        Path to the order text file (default: stdin)
    -order-date <date>   Order date, YYYY-MM-DD (default: today)
    -desired-date <date> Desired delivery date, YYYY-MM-DD (optional)
    -format <fmt>        Output format: text, json (default: text)
    -watch               Keep running and revalidate when the catalog changes
    -verbose             Enable verbose output
    -help                Show this help message

ORDER LINE FORMAT:
    <identifier> <designation> Qté <quantity> Prix : <unit price>€

EXAMPLES:
    ordercheck -catalog data/Articles.xlsx -order commandes.txt
    ordercheck -config config.yaml -order commandes.txt -desired-date 2025-04-01
    ordercheck -catalog data/Articles.xlsx -order commandes.txt -format json
    ordercheck -catalog data/Articles.xlsx -order commandes.txt -watch -verbose
`)
}
