package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type InitiateReservationRequest struct {
	PropertyId uint64 `json:"property_id"`
	BuyerId    string `json:"buyer_id"`
	Gateway    string `json:"gateway"`
	SuccessUrl string `json:"success_url"`
	FailureUrl string `json:"failure_url"`
}

func (r *InitiateReservationRequest) GetPropertyId() uint64 {
	if r == nil {
		return 0
	}
	return r.PropertyId
}

func (r *InitiateReservationRequest) GetBuyerId() string {
	if r == nil {
		return ""
	}
	return r.BuyerId
}

func (r *InitiateReservationRequest) GetGateway() GatewayType {
	if r == nil {
		return GatewayTypeUnspecified
	}
	return ParseGatewayType(r.Gateway)
}

func (r *InitiateReservationRequest) GetSuccessUrl() string {
	if r == nil {
		return ""
	}
	return r.SuccessUrl
}

func (r *InitiateReservationRequest) GetFailureUrl() string {
	if r == nil {
		return ""
	}
	return r.FailureUrl
}

func NewInitiateReservationRequestFromContext(ctx echo.Context) (*InitiateReservationRequest, error) {
	var body InitiateReservationRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.BuyerId = strings.TrimSpace(body.BuyerId)
	body.Gateway = strings.ToLower(strings.TrimSpace(body.Gateway))
	body.SuccessUrl = strings.TrimSpace(body.SuccessUrl)
	body.FailureUrl = strings.TrimSpace(body.FailureUrl)

	return &body, nil
}

func (r *InitiateReservationRequest) Validate() error {
	if r.GetPropertyId() == 0 {
		return errors.New("property_id is required")
	}
	if r.GetBuyerId() == "" {
		return errors.New("buyer_id is required")
	}
	if r.GetGateway() == GatewayTypeUnspecified {
		return errors.New("gateway must be esewa or khalti")
	}
	return nil
}

type VerifyPaymentRequest struct {
	PaymentId  uint64 `json:"payment_id"`
	BuyerId    string `json:"buyer_id"`
	Gateway    string `json:"-"`
	GatewayRef string `json:"gateway_ref"`
}

func (r *VerifyPaymentRequest) GetPaymentId() uint64 {
	if r == nil {
		return 0
	}
	return r.PaymentId
}

func (r *VerifyPaymentRequest) GetBuyerId() string {
	if r == nil {
		return ""
	}
	return r.BuyerId
}

func (r *VerifyPaymentRequest) GetGateway() GatewayType {
	if r == nil {
		return GatewayTypeUnspecified
	}
	return ParseGatewayType(r.Gateway)
}

func (r *VerifyPaymentRequest) GetGatewayRef() string {
	if r == nil {
		return ""
	}
	return r.GatewayRef
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) (*VerifyPaymentRequest, error) {
	var body VerifyPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Gateway = strings.ToLower(strings.TrimSpace(ctx.Param("gateway")))
	body.BuyerId = strings.TrimSpace(body.BuyerId)
	body.GatewayRef = strings.TrimSpace(body.GatewayRef)

	return &body, nil
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.GetPaymentId() == 0 {
		return errors.New("payment_id is required")
	}
	if r.GetBuyerId() == "" {
		return errors.New("buyer_id is required")
	}
	if r.GetGateway() == GatewayTypeUnspecified {
		return errors.New("gateway must be esewa or khalti")
	}
	if r.GetGatewayRef() == "" {
		return errors.New("gateway_ref is required")
	}
	return nil
}

type CancelReservationRequest struct {
	PropertyId uint64 `json:"-"`
	Reason     string `json:"reason"`
}

func (r *CancelReservationRequest) GetPropertyId() uint64 {
	if r == nil {
		return 0
	}
	return r.PropertyId
}

func (r *CancelReservationRequest) GetReason() string {
	if r == nil {
		return ""
	}
	return r.Reason
}

func NewCancelReservationRequestFromContext(ctx echo.Context) (*CancelReservationRequest, error) {
	propertyID, err := strconv.ParseUint(ctx.Param("property_id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body CancelReservationRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.PropertyId = propertyID
	body.Reason = strings.TrimSpace(body.Reason)

	return &body, nil
}

func (r *CancelReservationRequest) Validate() error {
	if r.GetPropertyId() == 0 {
		return errors.New("invalid property id")
	}
	return nil
}

type GetReservationRequest struct {
	PropertyId uint64
}

func (r *GetReservationRequest) GetPropertyId() uint64 {
	if r == nil {
		return 0
	}
	return r.PropertyId
}

func NewGetReservationRequestFromContext(ctx echo.Context) (*GetReservationRequest, error) {
	propertyID, err := strconv.ParseUint(ctx.Param("property_id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetReservationRequest{PropertyId: propertyID}, nil
}

func (r *GetReservationRequest) Validate() error {
	if r.GetPropertyId() == 0 {
		return errors.New("invalid property id")
	}
	return nil
}

type GetPaymentRequest struct {
	Id uint64
}

func (r *GetPaymentRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetPaymentRequest{Id: id}, nil
}

func (r *GetPaymentRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type UpsertPropertyRequest struct {
	Id                 uint64 `json:"-"`
	ListingKind        string `json:"listing_kind"`
	PriceCents         int64  `json:"price_cents"`
	MonthlyRentCents   int64  `json:"monthly_rent_cents"`
	RentalDepositCents int64  `json:"rental_deposit_cents"`
	AdvanceCents       int64  `json:"advance_cents"`
}

func (r *UpsertPropertyRequest) GetId() uint64 {
	if r == nil {
		return 0
	}
	return r.Id
}

func (r *UpsertPropertyRequest) GetListingKind() ListingKind {
	if r == nil {
		return ListingKindUnspecified
	}
	return ParseListingKind(r.ListingKind)
}

func (r *UpsertPropertyRequest) GetPriceCents() int64 {
	if r == nil {
		return 0
	}
	return r.PriceCents
}

func (r *UpsertPropertyRequest) GetMonthlyRentCents() int64 {
	if r == nil {
		return 0
	}
	return r.MonthlyRentCents
}

func (r *UpsertPropertyRequest) GetRentalDepositCents() int64 {
	if r == nil {
		return 0
	}
	return r.RentalDepositCents
}

func (r *UpsertPropertyRequest) GetAdvanceCents() int64 {
	if r == nil {
		return 0
	}
	return r.AdvanceCents
}

func NewUpsertPropertyRequestFromContext(ctx echo.Context) (*UpsertPropertyRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body UpsertPropertyRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Id = id
	body.ListingKind = strings.ToLower(strings.TrimSpace(body.ListingKind))

	return &body, nil
}

func (r *UpsertPropertyRequest) Validate() error {
	if r.GetId() == 0 {
		return errors.New("invalid property id")
	}
	if r.GetListingKind() == ListingKindUnspecified {
		return errors.New("listing_kind must be sale or rental")
	}
	if r.GetPriceCents() < 0 || r.GetMonthlyRentCents() < 0 || r.GetRentalDepositCents() < 0 || r.GetAdvanceCents() < 0 {
		return errors.New("amounts must be >= 0")
	}
	return nil
}
