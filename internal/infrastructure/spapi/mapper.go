package spapi

import (
	"strings"

	"github.com/shelfscout/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Fee type names in FeeDetailList
const (
	FeeTypeReferral = "ReferralFee"
)

// ExtractCatalogFacts reads the fields the pipeline needs from a catalog item.
// Missing sections leave the corresponding fact at its default.
func ExtractCatalogFacts(item *domain.CatalogItem, marketplaceID, currency string) domain.CatalogFacts {
	facts := domain.CatalogFacts{Rank: domain.UnrankedRank}
	if item == nil {
		return facts
	}

	if summary := pickSummary(item.Summaries, marketplaceID); summary != nil {
		facts.Title = strings.TrimSpace(summary.ItemName)
		facts.Brand = strings.TrimSpace(summary.Brand)
		if summary.BrowseClassification != nil {
			facts.Category = summary.BrowseClassification.DisplayName
		}
	}

	facts.JAN = firstIdentifier(item.Identifiers, "EAN")
	facts.ListPrice = firstListPrice(item.Attributes, currency)
	facts.Package = firstPackage(item.Dimensions)

	if rank, title, ok := FirstRank(item.SalesRanks); ok {
		facts.Rank = rank
		if title != "" {
			facts.Category = title
		}
	}

	return facts
}

// FirstRank returns the first rank entry of the first rank group.
func FirstRank(groups []domain.ItemSalesRanksByMarket) (rank int, title string, ok bool) {
	if len(groups) == 0 {
		return 0, "", false
	}
	group := groups[0]
	for _, list := range [][]domain.SalesRank{group.Ranks, group.DisplayGroupRanks, group.ClassificationRanks} {
		if len(list) == 0 {
			continue
		}
		if list[0].Rank == nil {
			return 0, "", false
		}
		return *list[0].Rank, list[0].Title, true
	}
	return 0, "", false
}

// ExtractOffers converts raw offers into domain offers. Absent amounts are zero.
func ExtractOffers(payload *domain.ItemOffersPayload) []domain.Offer {
	if payload == nil {
		return nil
	}

	offers := make([]domain.Offer, 0, len(payload.Offers))
	for _, raw := range payload.Offers {
		offer := domain.Offer{
			SellerID:     raw.SellerID,
			ListingPrice: amountOf(raw.ListingPrice),
			Shipping:     amountOf(raw.Shipping),
		}
		if raw.IsBuyBoxWinner != nil {
			offer.IsBuyBox = *raw.IsBuyBoxWinner
		}
		if raw.Points != nil {
			offer.Points = raw.Points.PointsNumber
		}
		offers = append(offers, offer)
	}
	return offers
}

// ExtractReferralFee returns the referral fee amount of a successful estimate.
func ExtractReferralFee(result *domain.FeesEstimateResult) (decimal.Decimal, bool) {
	if result == nil || result.FeesEstimate == nil || result.Error != nil {
		return decimal.Zero, false
	}
	if result.Status != "" && !strings.EqualFold(result.Status, "Success") {
		return decimal.Zero, false
	}

	for _, fee := range result.FeesEstimate.FeeDetailList {
		if fee.FeeType != FeeTypeReferral {
			continue
		}
		if fee.FeeAmount != nil && fee.FeeAmount.Amount != nil {
			return *fee.FeeAmount.Amount, true
		}
		if fee.FinalFee != nil && fee.FinalFee.Amount != nil {
			return *fee.FinalFee.Amount, true
		}
		return decimal.Zero, false
	}
	return decimal.Zero, false
}

// pickSummary prefers the summary for the marketplace, else the first one.
func pickSummary(summaries []domain.ItemSummary, marketplaceID string) *domain.ItemSummary {
	for i := range summaries {
		if summaries[i].MarketplaceID == marketplaceID {
			return &summaries[i]
		}
	}
	if len(summaries) > 0 {
		return &summaries[0]
	}
	return nil
}

func firstIdentifier(groups []domain.ItemIdentifiersByMarket, identifierType string) string {
	for _, group := range groups {
		for _, id := range group.Identifiers {
			if strings.EqualFold(id.IdentifierType, identifierType) && id.Identifier != "" {
				return id.Identifier
			}
		}
	}
	return ""
}

func firstListPrice(attrs *domain.ItemAttributes, currency string) *decimal.Decimal {
	if attrs == nil {
		return nil
	}
	for _, lp := range attrs.ListPrice {
		if strings.EqualFold(lp.Currency, currency) && lp.Value != nil {
			v := *lp.Value
			return &v
		}
	}
	return nil
}

func firstPackage(groups []domain.ItemDimensionsByMarket) *domain.PackageDimensions {
	if len(groups) == 0 || groups[0].Package == nil {
		return nil
	}
	pkg := groups[0].Package
	h, okH := centimeters(pkg.Height)
	l, okL := centimeters(pkg.Length)
	w, okW := centimeters(pkg.Width)
	if !okH || !okL || !okW {
		return nil
	}
	return &domain.PackageDimensions{HeightCM: h, LengthCM: l, WidthCM: w}
}

// centimeters normalizes a dimension to centimeters.
func centimeters(d *domain.Dimension) (float64, bool) {
	if d == nil || d.Value == nil {
		return 0, false
	}
	v := *d.Value
	switch strings.ToLower(strings.TrimSpace(d.Unit)) {
	case "", "centimeters", "centimetres", "cm":
		return v, true
	case "inches", "inch", "in":
		return v * 2.54, true
	case "millimeters", "millimetres", "mm":
		return v / 10, true
	case "meters", "metres", "m":
		return v * 100, true
	default:
		return 0, false
	}
}

func amountOf(m *domain.MoneyType) decimal.Decimal {
	if m == nil || m.Amount == nil {
		return decimal.Zero
	}
	return *m.Amount
}
