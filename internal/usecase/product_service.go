package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shelfscout/backend/internal/infrastructure/spapi"
	"github.com/shelfscout/backend/internal/logging"
	"github.com/shopspring/decimal"
)

// Reference price labels. A reference price comes from the catalog list price
// and must never be mistaken for a live offer.
const (
	ReferencePricePrefix = "(ref) "
	ReferenceSellerLabel = "Reference only"
)

var hundred = decimal.NewFromInt(100)

// ProductServiceConfig holds configuration for the product detail pipeline
type ProductServiceConfig struct {
	MarketplaceID string
	Currency      string
	OfferDelay    time.Duration // pacing before the offers call
	FeeDelay      time.Duration // pacing before the fees call
}

// ProductService aggregates catalog, offer and fee data into one record per ASIN.
type ProductService struct {
	client  domain.MarketplaceClient
	retrier *RetryingClient
	sellers *SellerNameCache
	config  ProductServiceConfig
	logger  *slog.Logger
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	client domain.MarketplaceClient,
	retrier *RetryingClient,
	sellers *SellerNameCache,
	config ProductServiceConfig,
	logger *slog.Logger,
) *ProductService {
	if config.Currency == "" {
		config.Currency = "JPY"
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &ProductService{
		client:  client,
		retrier: retrier,
		sellers: sellers,
		config:  config,
		logger:  logger,
	}
}

// AggregateDetail runs the catalog, offer, fallback and fee stages for asin.
// It never fails: stages that produce nothing leave their fields at defaults,
// so the returned record is always fully shaped.
// Flow: catalog -> pause -> offers -> reference fallback -> pause -> fees
func (s *ProductService) AggregateDetail(ctx context.Context, asin string) *domain.ProductRecord {
	asin = strings.ToUpper(strings.TrimSpace(asin))
	record := domain.NewProductRecord(asin)
	logger := s.logger.With("asin", asin)

	facts := s.catalogStage(ctx, asin, record)

	if err := pause(ctx, s.config.OfferDelay); err != nil {
		logger.Info("aggregation abandoned before offers", "error", err)
		return record
	}
	s.offerStage(ctx, asin, record)

	if !record.HasLivePrice() && facts.ListPrice != nil && facts.ListPrice.IsPositive() {
		record.PriceDisplay = ReferencePricePrefix + formatAmount(*facts.ListPrice)
		record.Seller = ReferenceSellerLabel
		record.PriceSource = domain.PriceSourceReference
	}

	if record.HasLivePrice() {
		if err := pause(ctx, s.config.FeeDelay); err != nil {
			logger.Info("aggregation abandoned before fees", "error", err)
			return record
		}
		s.feeStage(ctx, asin, record)
	}

	logger.Info("product aggregated",
		"rank", record.Rank,
		"price", record.PriceDisplay,
		"source", record.PriceSource,
		"seller", record.Seller)
	return record
}

func (s *ProductService) catalogStage(ctx context.Context, asin string, record *domain.ProductRecord) domain.CatalogFacts {
	res := Call(ctx, s.retrier, "getCatalogItem", func(ctx context.Context) (*domain.CatalogItem, error) {
		return s.client.GetCatalogItem(ctx, asin)
	})

	// A miss still yields default facts.
	facts := spapi.ExtractCatalogFacts(res.Value, s.config.MarketplaceID, s.config.Currency)

	record.Title = facts.Title
	record.Brand = facts.Brand
	record.Category = facts.Category
	record.JAN = facts.JAN
	record.Rank = facts.Rank
	record.RankDisplay = FormatRank(facts.Rank)

	if facts.Package != nil {
		p := facts.Package
		record.PackageSize = FormatPackageSize(*p)
		record.ShippingEstimate = FormatShippingEstimate(ShippingFee(p.HeightCM, p.LengthCM, p.WidthCM))
	}
	return facts
}

func (s *ProductService) offerStage(ctx context.Context, asin string, record *domain.ProductRecord) {
	res := Call(ctx, s.retrier, "getItemOffers", func(ctx context.Context) (*domain.ItemOffersPayload, error) {
		return s.client.GetItemOffers(ctx, asin)
	})
	if !res.OK() {
		return
	}

	offer, ok := SelectOffer(spapi.ExtractOffers(res.Value))
	if !ok {
		return
	}

	total := offer.Total()
	record.PriceTotal = total
	record.PriceDisplay = formatAmount(total)
	record.PriceSource = domain.PriceSourceLive
	if offer.Points > 0 {
		rate := percentOf(decimal.NewFromInt(int64(offer.Points)), total)
		record.PointsRate = &rate
	}
	record.Seller = s.sellers.Resolve(ctx, offer.SellerID)
}

func (s *ProductService) feeStage(ctx context.Context, asin string, record *domain.ProductRecord) {
	price := record.PriceTotal
	res := Call(ctx, s.retrier, "getFeesEstimate", func(ctx context.Context) (*domain.FeesEstimateResult, error) {
		return s.client.GetFeesEstimate(ctx, asin, price)
	})
	if !res.OK() {
		return
	}

	fee, ok := spapi.ExtractReferralFee(res.Value)
	if !ok {
		return
	}
	rate := percentOf(fee, price)
	record.FeeRate = &rate
}

// ResolveIdentifier looks up the ASIN for a JAN/EAN barcode.
func (s *ProductService) ResolveIdentifier(ctx context.Context, barcode string) (string, bool) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return "", false
	}

	res := Call(ctx, s.retrier, "searchCatalogItems", func(ctx context.Context) (*domain.CatalogSearchPage, error) {
		return s.client.SearchCatalogItems(ctx, domain.CatalogSearch{
			Identifiers:     []string{barcode},
			IdentifiersType: "EAN",
			IncludedData:    []string{"summaries"},
			PageSize:        1,
		})
	})
	if !res.OK() || res.Value == nil {
		return "", false
	}

	for _, item := range res.Value.Items {
		if item.ASIN != "" {
			s.logger.Debug("identifier resolved", "barcode", barcode, "asin", item.ASIN)
			return item.ASIN, true
		}
	}
	s.logger.Info("identifier not found", "barcode", barcode)
	return "", false
}

// percentOf returns part/whole*100 rounded to one decimal place.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(1)
}

// FormatRank renders a sales rank, "-" for unranked.
func FormatRank(rank int) string {
	if rank >= domain.UnrankedRank || rank <= 0 {
		return "-"
	}
	return "#" + groupDigits(int64(rank))
}

// FormatPackageSize renders package dimensions as H×L×W in centimeters.
func FormatPackageSize(p domain.PackageDimensions) string {
	return fmt.Sprintf("%s×%s×%s cm", trimFloat(p.HeightCM), trimFloat(p.LengthCM), trimFloat(p.WidthCM))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(decimal.NewFromFloat(v).Round(1).InexactFloat64(), 'f', -1, 64)
}

// formatAmount renders a yen amount, keeping fractional digits only when present.
func formatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return formatYen(d.IntPart())
	}
	return "¥" + d.StringFixed(2)
}
