package mapper

import (
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/gateway"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

func PaymentToResponse(item *entity.PaymentAttempt) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		Id:          item.ID,
		PropertyId:  item.PropertyID,
		BuyerId:     item.BuyerID,
		Gateway:     types.GatewayType(item.Gateway).String(),
		AmountCents: item.AmountCents,
		Status:      types.AttemptStatus(item.Status).String(),
		ExpiresAt:   item.ExpiresAt.UTC().Format(time.RFC3339),
		GatewayRef:  derefString(item.GatewayRef),
		CheckoutUrl: derefString(item.GatewayCheckoutURL),
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentsToResponse(items []*entity.PaymentAttempt) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToResponse(item))
	}
	return result
}

func PropertyToResponse(item *entity.Property) *types.Property {
	if item == nil {
		return nil
	}

	property := &types.Property{
		Id:                 item.ID,
		ListingKind:        types.ListingKind(item.ListingKind).String(),
		PriceCents:         item.PriceCents,
		MonthlyRentCents:   item.MonthlyRentCents,
		RentalDepositCents: item.RentalDepositCents,
		AdvanceCents:       item.AdvanceCents,
		ReservationStatus:  types.ReservationStatus(item.ReservationStatus).String(),
		ReservedBy:         derefString(item.ReservedBy),
		CreatedAt:          item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ReservedUntil != nil {
		property.ReservedUntil = item.ReservedUntil.UTC().Format(time.RFC3339)
	}

	return property
}

func CheckoutToResponse(item *gateway.CheckoutOutput) *types.Checkout {
	if item == nil {
		return nil
	}

	return &types.Checkout{
		Url:    item.URL,
		Method: item.Method,
		Fields: item.Fields,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
