package domain

import "github.com/shopspring/decimal"

// UnrankedRank is the rank assigned to products without a sales rank so they sort last.
const UnrankedRank = 999999

// ShippingUnavailable is the shipping estimate shown when no tier applies.
const ShippingUnavailable = "unavailable"

// PriceSource records where a record's price came from.
type PriceSource string

const (
	PriceSourceNone      PriceSource = "none"
	PriceSourceLive      PriceSource = "live"      // selected live offer
	PriceSourceReference PriceSource = "reference" // catalog list price, lower confidence
)

// ProductRecord is one normalized row of pipeline output. Every field is always
// present so exporters never need to handle missing values.
type ProductRecord struct {
	ASIN             string           `json:"asin"`
	JAN              string           `json:"jan"`
	Title            string           `json:"title"`
	Brand            string           `json:"brand"`
	Category         string           `json:"category"`
	Rank             int              `json:"rank"`
	RankDisplay      string           `json:"rankDisplay"`
	PriceTotal       decimal.Decimal  `json:"priceTotal"`
	PriceDisplay     string           `json:"priceDisplay"`
	PriceSource      PriceSource      `json:"priceSource"`
	PointsRate       *decimal.Decimal `json:"pointsRate"` // percent, only when points > 0
	FeeRate          *decimal.Decimal `json:"feeRate"`    // percent, only when a referral fee was estimated
	Seller           string           `json:"seller"`
	PackageSize      string           `json:"packageSize"`
	ShippingEstimate string           `json:"shippingEstimate"`
}

// NewProductRecord returns a record for asin with every field at its default.
func NewProductRecord(asin string) *ProductRecord {
	return &ProductRecord{
		ASIN:             asin,
		Rank:             UnrankedRank,
		RankDisplay:      "-",
		PriceTotal:       decimal.Zero,
		PriceDisplay:     "-",
		PriceSource:      PriceSourceNone,
		Seller:           "-",
		PackageSize:      "-",
		ShippingEstimate: ShippingUnavailable,
	}
}

// HasLivePrice reports whether a qualifying live offer was found.
func (r *ProductRecord) HasLivePrice() bool {
	return r.PriceTotal.IsPositive()
}

// Offer is a single raw listing returned by the offers endpoint. Offers are
// transient and consumed immediately by offer selection.
type Offer struct {
	SellerID     string
	ListingPrice decimal.Decimal
	Shipping     decimal.Decimal
	IsBuyBox     bool
	Points       int
}

// Total is the landed price of the offer.
func (o Offer) Total() decimal.Decimal {
	return o.ListingPrice.Add(o.Shipping)
}
