// Package pricing computes the advance amount owed to hold a property.
package pricing

import (
	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

const (
	rentalAdvancePercent = 20
	saleAdvancePercent   = 2
)

// AdvanceCents returns the amount in cents a buyer must pay to hold the
// property. An explicit advance on the listing always wins; otherwise rentals
// fall back to the deposit or a share of the monthly rent, and sales to a
// share of the price. A zero result means the listing has no usable pricing
// and the caller must reject the reservation.
func AdvanceCents(p *entity.Property) int64 {
	if p == nil {
		return 0
	}
	if p.AdvanceCents > 0 {
		return p.AdvanceCents
	}

	switch types.ListingKind(p.ListingKind) {
	case types.ListingKindRental:
		if p.RentalDepositCents > 0 {
			return p.RentalDepositCents
		}
		return percentOf(p.MonthlyRentCents, rentalAdvancePercent)
	case types.ListingKindSale:
		return percentOf(p.PriceCents, saleAdvancePercent)
	default:
		return 0
	}
}

// percentOf rounds half-up to the nearest cent.
func percentOf(amount int64, percent int64) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount*percent + 50) / 100
}
