package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketplaceClient defines the remote catalog, pricing and fees capability
type MarketplaceClient interface {
	GetCatalogItem(ctx context.Context, asin string) (*CatalogItem, error)
	SearchCatalogItems(ctx context.Context, query CatalogSearch) (*CatalogSearchPage, error)
	GetItemOffers(ctx context.Context, asin string) (*ItemOffersPayload, error)
	GetFeesEstimate(ctx context.Context, asin string, price decimal.Decimal) (*FeesEstimateResult, error)
}

// SellerNameLookup resolves a seller identifier to a display name
type SellerNameLookup interface {
	// Configured reports whether a lookup credential is available.
	Configured() bool
	ResolveName(ctx context.Context, sellerID string) (string, error)
}

// SellerStore persists the seller id -> name mapping between runs
type SellerStore interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, names map[string]string) error
}
