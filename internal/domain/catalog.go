package domain

import "github.com/shopspring/decimal"

// CatalogItem represents an item from the Catalog Items API (2022-04-01).
// Every section is optional; absent sections decode to nil or empty slices.
type CatalogItem struct {
	ASIN        string                    `json:"asin"`
	Summaries   []ItemSummary             `json:"summaries,omitempty"`
	Attributes  *ItemAttributes           `json:"attributes,omitempty"`
	Identifiers []ItemIdentifiersByMarket `json:"identifiers,omitempty"`
	Dimensions  []ItemDimensionsByMarket  `json:"dimensions,omitempty"`
	SalesRanks  []ItemSalesRanksByMarket  `json:"salesRanks,omitempty"`
}

// ItemSummary holds the marketplace-specific summary of an item
type ItemSummary struct {
	MarketplaceID        string                `json:"marketplaceId"`
	ItemName             string                `json:"itemName,omitempty"`
	Brand                string                `json:"brand,omitempty"`
	BrowseClassification *BrowseClassification `json:"browseClassification,omitempty"`
}

// BrowseClassification is the browse node an item is listed under
type BrowseClassification struct {
	DisplayName      string `json:"displayName"`
	ClassificationID string `json:"classificationId"`
}

// ItemAttributes holds the subset of product type attributes we read
type ItemAttributes struct {
	ListPrice []ListPriceAttribute `json:"list_price,omitempty"`
}

// ListPriceAttribute is one list_price attribute entry
type ListPriceAttribute struct {
	MarketplaceID string           `json:"marketplace_id,omitempty"`
	Currency      string           `json:"currency"`
	Value         *decimal.Decimal `json:"value,omitempty"`
}

// ItemIdentifiersByMarket groups external identifiers per marketplace
type ItemIdentifiersByMarket struct {
	MarketplaceID string           `json:"marketplaceId"`
	Identifiers   []ItemIdentifier `json:"identifiers"`
}

// ItemIdentifier is an external identifier such as an EAN or UPC
type ItemIdentifier struct {
	IdentifierType string `json:"identifierType"`
	Identifier     string `json:"identifier"`
}

// ItemDimensionsByMarket holds item and package dimensions per marketplace
type ItemDimensionsByMarket struct {
	MarketplaceID string      `json:"marketplaceId"`
	Item          *Dimensions `json:"item,omitempty"`
	Package       *Dimensions `json:"package,omitempty"`
}

// Dimensions is a set of measured dimensions
type Dimensions struct {
	Height *Dimension `json:"height,omitempty"`
	Length *Dimension `json:"length,omitempty"`
	Width  *Dimension `json:"width,omitempty"`
	Weight *Dimension `json:"weight,omitempty"`
}

// Dimension is a single measurement with its unit
type Dimension struct {
	Unit  string   `json:"unit"`
	Value *float64 `json:"value,omitempty"`
}

// ItemSalesRanksByMarket is one rank group. Older API versions return a flat
// ranks list; newer ones split classification and display group ranks.
type ItemSalesRanksByMarket struct {
	MarketplaceID       string      `json:"marketplaceId"`
	Ranks               []SalesRank `json:"ranks,omitempty"`
	DisplayGroupRanks   []SalesRank `json:"displayGroupRanks,omitempty"`
	ClassificationRanks []SalesRank `json:"classificationRanks,omitempty"`
}

// SalesRank is a single rank entry
type SalesRank struct {
	Title string `json:"title"`
	Rank  *int   `json:"rank,omitempty"`
}

// CatalogSearch describes a searchCatalogItems request
type CatalogSearch struct {
	Keywords        []string
	Identifiers     []string
	IdentifiersType string
	IncludedData    []string
	PageSize        int
	PageToken       string
}

// CatalogSearchPage is one page of catalog search results
type CatalogSearchPage struct {
	NumberOfResults int           `json:"numberOfResults"`
	Pagination      *Pagination   `json:"pagination,omitempty"`
	Items           []CatalogItem `json:"items"`
}

// Pagination carries continuation tokens
type Pagination struct {
	NextToken     string `json:"nextToken,omitempty"`
	PreviousToken string `json:"previousToken,omitempty"`
}

// NextToken returns the continuation token or "" when there is none
func (p *CatalogSearchPage) NextToken() string {
	if p == nil || p.Pagination == nil {
		return ""
	}
	return p.Pagination.NextToken
}

// MoneyType is an amount with its currency
type MoneyType struct {
	CurrencyCode string           `json:"CurrencyCode"`
	Amount       *decimal.Decimal `json:"Amount,omitempty"`
}

// ItemOffersPayload is the payload of the getItemOffers response
type ItemOffersPayload struct {
	ASIN   string        `json:"ASIN"`
	Status string        `json:"status"`
	Offers []OfferDetail `json:"Offers"`
}

// OfferDetail is one raw offer as returned by the pricing API
type OfferDetail struct {
	SellerID       string     `json:"SellerId"`
	IsBuyBoxWinner *bool      `json:"IsBuyBoxWinner,omitempty"`
	ListingPrice   *MoneyType `json:"ListingPrice,omitempty"`
	Shipping       *MoneyType `json:"Shipping,omitempty"`
	Points         *Points    `json:"Points,omitempty"`
}

// Points is the loyalty points attached to an offer
type Points struct {
	PointsNumber int `json:"PointsNumber"`
}

// FeesEstimateResult is the result of a fees estimate request
type FeesEstimateResult struct {
	Status       string        `json:"Status"`
	FeesEstimate *FeesEstimate `json:"FeesEstimate,omitempty"`
	Error        *FeesError    `json:"Error,omitempty"`
}

// FeesEstimate lists the estimated fees
type FeesEstimate struct {
	TotalFeesEstimate *MoneyType  `json:"TotalFeesEstimate,omitempty"`
	FeeDetailList     []FeeDetail `json:"FeeDetailList,omitempty"`
}

// FeeDetail is one fee component
type FeeDetail struct {
	FeeType   string     `json:"FeeType"`
	FeeAmount *MoneyType `json:"FeeAmount,omitempty"`
	FinalFee  *MoneyType `json:"FinalFee,omitempty"`
}

// FeesError is returned by the fees API in place of an estimate
type FeesError struct {
	Type    string `json:"Type"`
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

// PackageDimensions are package measurements normalized to centimeters
type PackageDimensions struct {
	HeightCM float64
	LengthCM float64
	WidthCM  float64
}

// CatalogFacts is what the pipeline reads from a catalog item, with every
// absent section resolved to its default.
type CatalogFacts struct {
	Title     string
	Brand     string
	Category  string
	JAN       string
	ListPrice *decimal.Decimal   // nil when no list price in the configured currency
	Package   *PackageDimensions // nil when no complete package dimensions
	Rank      int                // UnrankedRank when absent
}
