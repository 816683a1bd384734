package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/blaemedia/alx-project-nexus/internal/api"
	"github.com/blaemedia/alx-project-nexus/internal/catalog"
	"github.com/blaemedia/alx-project-nexus/internal/config"
	"github.com/blaemedia/alx-project-nexus/internal/logger"
	"github.com/blaemedia/alx-project-nexus/internal/store"
	"go.uber.org/zap"
)

const usage = "expected 'migrate', 'prune-sessions' or 'catalog' subcommand"

func main() {
	envErr := config.LoadEnvFile()
	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Sync()
	if envErr != nil {
		logger.Log.Warn("Failed to read .env file", zap.Error(envErr))
	}

	catalogCmd := flag.NewFlagSet("catalog", flag.ExitOnError)
	search := catalogCmd.String("search", "", "Only list products matching this search")
	page := catalogCmd.Int("page", 1, "Page to list")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatal("Failed to load configuration", zap.Error(err))
	}

	switch os.Args[1] {
	case "migrate":
		db := openStore(cfg.DBPath)
		defer db.Close()
		fmt.Println("Migrations applied.")
	case "prune-sessions":
		db := openStore(cfg.DBPath)
		defer db.Close()
		pruneSessions(db)
	case "catalog":
		catalogCmd.Parse(os.Args[2:])
		listCatalog(cfg, *search, *page)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// openStore opens the vault and brings its schema up to date.
func openStore(path string) *store.Store {
	db, err := store.NewStore(path)
	if err != nil {
		logger.Log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}
	return db
}

func pruneSessions(db *store.Store) {
	ctx := context.Background()
	now := time.Now()

	n, err := db.PruneSessions(ctx, now)
	if err != nil {
		logger.Log.Fatal("Failed to prune sessions", zap.Error(err))
	}
	live, _, err := db.SessionStats(ctx, now)
	if err != nil {
		logger.Log.Fatal("Failed to count sessions", zap.Error(err))
	}
	fmt.Printf("Pruned %d expired sessions, %d live.\n", n, live)
}

// listCatalog prints one page of product cards as the storefront would show them.
func listCatalog(cfg *config.Config, search string, page int) {
	client := api.New(api.Options{
		BaseURL:         cfg.BackendURL,
		Timeout:         cfg.RequestTimeout,
		Retries:         cfg.RequestRetries,
		RetryWait:       cfg.RetryWait,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	})
	display := catalog.NewDisplay(client.BaseURL(), cfg.FallbackImage, cfg.CurrencySymbol)
	fetcher := catalog.NewFetcher(client, display, catalog.WithPageSize(cfg.PageSize), catalog.WithTimeout(cfg.CallBudget()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CallBudget())
	defer cancel()

	result, err := fetcher.Products(ctx, catalog.ProductQuery{Search: search, Page: page})
	if err != nil {
		logger.Log.Fatal("Failed to fetch products", zap.String("backend", cfg.BackendURL), zap.Error(err))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSTOCK\tIMAGE")
	for _, p := range result.Products {
		stock := "yes"
		if !p.InStock {
			stock = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Price, stock, p.Image)
	}
	w.Flush()
	fmt.Printf("Page %d of %d, %d products.\n", result.Page, result.TotalPages, result.Total)
}
