package usecase

import "github.com/shelfscout/backend/internal/domain"

// SelectOffer picks the offer a buyer would most likely purchase: the first
// buy-box winner, otherwise the cheapest offer by listing price plus shipping.
// Offers with a non-positive total are never selected; ties keep input order.
func SelectOffer(offers []domain.Offer) (domain.Offer, bool) {
	for _, o := range offers {
		if o.IsBuyBox && o.Total().IsPositive() {
			return o, true
		}
	}

	var (
		best  domain.Offer
		found bool
	)
	for _, o := range offers {
		total := o.Total()
		if !total.IsPositive() {
			continue
		}
		if !found || total.LessThan(best.Total()) {
			best = o
			found = true
		}
	}
	return best, found
}
