package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/VincentNinIA/butv2/pkg/interfaces/cli/commands"
)

func main() {
	// Optional .env for the embedding provider API key.
	_ = godotenv.Load()

	// Command line flags
	var (
		catalogFile = flag.String("catalog", "", "Path to the catalog workbook (overrides the config file)")
		configFile  = flag.String("config", "", "Path to the YAML configuration file")
		orderFile   = flag.String("order", "", "Path to the order text file (default: stdin)")
		orderDate   = flag.String("order-date", "", "Order date, YYYY-MM-DD (default: today)")
		desiredDate = flag.String("desired-date", "", "Desired delivery date, YYYY-MM-DD (optional)")
		format      = flag.String("format", "text", "Output format: text, json")
		watch       = flag.Bool("watch", false, "Keep running and revalidate when the catalog changes")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	config := commands.Config{
		CatalogFile: *catalogFile,
		ConfigFile:  *configFile,
		OrderFile:   *orderFile,
		OrderDate:   *orderDate,
		DesiredDate: *desiredDate,
		Format:      *format,
		Watch:       *watch,
		Verbose:     *verbose,
		Help:        *help,
	}

	cmd := commands.NewValidateCommand(config)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
