// Package app wires configuration into the services shared by the HTTP server
// and the command line runner.
package app

import (
	"context"
	"fmt"

	"github.com/shelfscout/backend/config"
	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/infrastructure/keepa"
	"github.com/shelfscout/backend/internal/infrastructure/sellerstore"
	"github.com/shelfscout/backend/internal/infrastructure/spapi"
	"github.com/shelfscout/backend/internal/logging"
	"github.com/shelfscout/backend/internal/usecase"
)

// App holds the constructed services
type App struct {
	Products *usecase.ProductService
	Searcher *usecase.KeywordSearcher
	Batch    *usecase.BatchService
	Sellers  *usecase.SellerNameCache

	closers []func() error
}

// New builds every service from cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.Logger()
	debug := cfg.Server.Environment == "development"
	logging.SetDebug(debug)

	store, closeStore, err := openSellerStore(cfg.SellerCache)
	if err != nil {
		return nil, err
	}
	a := &App{}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	spClient := spapi.NewClient(spapi.Config{
		ClientID:          cfg.SPAPI.ClientID,
		ClientSecret:      cfg.SPAPI.ClientSecret,
		RefreshToken:      cfg.SPAPI.RefreshToken,
		Endpoint:          cfg.SPAPI.Endpoint,
		TokenURL:          cfg.SPAPI.TokenURL,
		MarketplaceID:     cfg.SPAPI.MarketplaceID,
		Currency:          cfg.SPAPI.Currency,
		RequestsPerSecond: cfg.SPAPI.RequestsPerSecond,
		Burst:             cfg.SPAPI.Burst,
	}, logger.With("component", "spapi"))
	spClient.SetDebug(debug)

	keepaClient := keepa.NewClient(cfg.Keepa.APIKey, cfg.Keepa.BaseURL, cfg.Keepa.Domain, logger.With("component", "keepa"))
	if !keepaClient.Configured() {
		logger.Warn("keepa api key not configured, seller ids will be shown unresolved")
	}

	retrier := usecase.NewRetryingClient(usecase.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		JitterMin:   cfg.Retry.JitterMin,
		JitterMax:   cfg.Retry.JitterMax,
	}, logger.With("component", "retry"))

	a.Sellers = usecase.NewSellerNameCache(ctx, store, keepaClient, logger.With("component", "sellers"))

	a.Products = usecase.NewProductService(spClient, retrier, a.Sellers, usecase.ProductServiceConfig{
		MarketplaceID: cfg.SPAPI.MarketplaceID,
		Currency:      cfg.SPAPI.Currency,
		OfferDelay:    cfg.Pacing.OfferDelay,
		FeeDelay:      cfg.Pacing.FeeDelay,
	}, logger.With("component", "products"))

	a.Searcher = usecase.NewKeywordSearcher(spClient, retrier, usecase.KeywordSearchConfig{
		PageDelay: cfg.Pacing.SearchPageDelay,
	}, logger.With("component", "search"))

	a.Batch = usecase.NewBatchService(a.Products, a.Searcher, cfg.Search.DefaultMaxResults, logger.With("component", "batch"))

	logger.Info("services ready",
		"marketplace", cfg.SPAPI.MarketplaceID,
		"seller_cache", cfg.SellerCache.Type,
		"seller_names", a.Sellers.Len(),
		"max_attempts", cfg.Retry.MaxAttempts)
	return a, nil
}

// Close releases resources held by the services
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func openSellerStore(cfg config.SellerCacheConfig) (domain.SellerStore, func() error, error) {
	switch cfg.Type {
	case "memory":
		return sellerstore.NewMemoryStore(nil), nil, nil
	case "sqlite":
		store, err := sellerstore.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open seller cache: %w", err)
		}
		return store, store.Close, nil
	default:
		return sellerstore.NewFileStore(cfg.Path), nil, nil
	}
}
