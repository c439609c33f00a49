package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Payment struct {
	Id          uint64 `json:"id"`
	PropertyId  uint64 `json:"property_id"`
	BuyerId     string `json:"buyer_id"`
	Gateway     string `json:"gateway"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
	ExpiresAt   string `json:"expires_at"`
	GatewayRef  string `json:"gateway_ref,omitempty"`
	CheckoutUrl string `json:"checkout_url,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type Property struct {
	Id                 uint64 `json:"id"`
	ListingKind        string `json:"listing_kind"`
	PriceCents         int64  `json:"price_cents"`
	MonthlyRentCents   int64  `json:"monthly_rent_cents"`
	RentalDepositCents int64  `json:"rental_deposit_cents"`
	AdvanceCents       int64  `json:"advance_cents"`
	ReservationStatus  string `json:"reservation_status"`
	ReservedBy         string `json:"reserved_by,omitempty"`
	ReservedUntil      string `json:"reserved_until,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

// Checkout carries everything the caller needs to redirect the buyer to the
// gateway: either a plain redirect URL or a form POST with signed fields.
type Checkout struct {
	Url    string            `json:"url"`
	Method string            `json:"method"`
	Fields map[string]string `json:"fields,omitempty"`
}

type InitiateReservationResponse struct {
	PaymentId   uint64    `json:"payment_id"`
	AmountCents int64     `json:"amount_cents"`
	ExpiresAt   string    `json:"expires_at"`
	Checkout    *Checkout `json:"checkout"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}

type PropertyEnvelopeResponse struct {
	Property *Property `json:"property"`
}

type ReservationResponse struct {
	Property *Property  `json:"property"`
	Payments []*Payment `json:"payments"`
}
