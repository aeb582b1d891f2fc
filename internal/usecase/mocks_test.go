package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/infrastructure/sellerstore"
	"github.com/shopspring/decimal"
)

// MockMarketplaceClient is a mock implementation of domain.MarketplaceClient
type MockMarketplaceClient struct {
	mu sync.Mutex

	items     map[string]*domain.CatalogItem
	itemErr   error
	offers    map[string]*domain.ItemOffersPayload
	offersErr error
	fees      *domain.FeesEstimateResult
	feesErr   error

	// pages are returned in order by SearchCatalogItems, one per call
	pages     []*domain.CatalogSearchPage
	searchErr error
	barcodes  map[string]string

	catalogCalls  int
	offerCalls    int
	feeCalls      int
	searchCalls   []domain.CatalogSearch
	lastFeesPrice decimal.Decimal
}

func NewMockMarketplaceClient() *MockMarketplaceClient {
	return &MockMarketplaceClient{
		items:    make(map[string]*domain.CatalogItem),
		offers:   make(map[string]*domain.ItemOffersPayload),
		barcodes: make(map[string]string),
	}
}

func (m *MockMarketplaceClient) GetCatalogItem(ctx context.Context, asin string) (*domain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogCalls++
	if m.itemErr != nil {
		return nil, m.itemErr
	}
	if item, ok := m.items[asin]; ok {
		return item, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockMarketplaceClient) SearchCatalogItems(ctx context.Context, query domain.CatalogSearch) (*domain.CatalogSearchPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = append(m.searchCalls, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	if len(query.Identifiers) > 0 {
		page := &domain.CatalogSearchPage{}
		for _, id := range query.Identifiers {
			if asin, ok := m.barcodes[id]; ok {
				page.Items = append(page.Items, domain.CatalogItem{ASIN: asin})
			}
		}
		page.NumberOfResults = len(page.Items)
		return page, nil
	}

	idx := len(m.searchCalls) - 1
	if idx >= len(m.pages) {
		return &domain.CatalogSearchPage{}, nil
	}
	return m.pages[idx], nil
}

func (m *MockMarketplaceClient) GetItemOffers(ctx context.Context, asin string) (*domain.ItemOffersPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offerCalls++
	if m.offersErr != nil {
		return nil, m.offersErr
	}
	if p, ok := m.offers[asin]; ok {
		return p, nil
	}
	return &domain.ItemOffersPayload{ASIN: asin, Status: "NoBuyableOffers"}, nil
}

func (m *MockMarketplaceClient) GetFeesEstimate(ctx context.Context, asin string, price decimal.Decimal) (*domain.FeesEstimateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeCalls++
	m.lastFeesPrice = price
	if m.feesErr != nil {
		return nil, m.feesErr
	}
	return m.fees, nil
}

// MockSellerLookup is a mock implementation of domain.SellerNameLookup
type MockSellerLookup struct {
	names map[string]string
	err   error
	calls []string
}

func (m *MockSellerLookup) Configured() bool { return true }

func (m *MockSellerLookup) ResolveName(ctx context.Context, sellerID string) (string, error) {
	m.calls = append(m.calls, sellerID)
	if m.err != nil {
		return "", m.err
	}
	if name, ok := m.names[sellerID]; ok {
		return name, nil
	}
	return "", domain.ErrNotFound
}

// failingStore fails every Load and Save
type failingStore struct{}

func (failingStore) Load(ctx context.Context) (map[string]string, error) {
	return nil, errors.New("disk unavailable")
}

func (failingStore) Save(ctx context.Context, names map[string]string) error {
	return errors.New("disk unavailable")
}

func fastRetrier() *RetryingClient {
	return NewRetryingClient(RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond}, nil)
}

func newTestProductService(client *MockMarketplaceClient, lookup domain.SellerNameLookup) *ProductService {
	sellers := NewSellerNameCache(context.Background(), sellerstore.NewMemoryStore(nil), lookup, nil)
	return NewProductService(client, fastRetrier(), sellers, ProductServiceConfig{
		MarketplaceID: "A1VC38T7YXB528",
		Currency:      "JPY",
	}, nil)
}

func yen(v int64) *domain.MoneyType {
	d := decimal.NewFromInt(v)
	return &domain.MoneyType{CurrencyCode: "JPY", Amount: &d}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func rankedItem(asin string, rank int) domain.CatalogItem {
	return domain.CatalogItem{
		ASIN: asin,
		SalesRanks: []domain.ItemSalesRanksByMarket{{
			MarketplaceID:       "A1VC38T7YXB528",
			ClassificationRanks: []domain.SalesRank{{Title: "Kitchen", Rank: intPtr(rank)}},
		}},
	}
}
