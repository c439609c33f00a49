package entity

import "time"

type PaymentAttempt struct {
	ID uint64

	PropertyID uint64
	BuyerID    string

	Gateway     int32
	AmountCents int64

	Status    int32
	ExpiresAt time.Time

	GatewayRef         *string
	GatewayCheckoutURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
