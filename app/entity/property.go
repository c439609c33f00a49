package entity

import "time"

type Property struct {
	ID uint64

	ListingKind int32

	PriceCents         int64
	MonthlyRentCents   int64
	RentalDepositCents int64
	AdvanceCents       int64

	ReservationStatus int32
	ReservedBy        *string
	ReservedUntil     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
