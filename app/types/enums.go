package types

import "strings"

type ListingKind int32

const (
	ListingKindUnspecified ListingKind = 0
	ListingKindSale        ListingKind = 1
	ListingKindRental      ListingKind = 2
)

func (k ListingKind) String() string {
	switch k {
	case ListingKindSale:
		return "sale"
	case ListingKindRental:
		return "rental"
	default:
		return "unspecified"
	}
}

func ParseListingKind(raw string) ListingKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sale", "1":
		return ListingKindSale
	case "rental", "rent", "2":
		return ListingKindRental
	default:
		return ListingKindUnspecified
	}
}

type ReservationStatus int32

const (
	ReservationStatusUnspecified ReservationStatus = 0
	ReservationStatusAvailable   ReservationStatus = 1
	ReservationStatusReserved    ReservationStatus = 2
	ReservationStatusPaid        ReservationStatus = 3
	ReservationStatusCancelled   ReservationStatus = 4
	ReservationStatusExpired     ReservationStatus = 5
)

func (s ReservationStatus) String() string {
	switch s {
	case ReservationStatusAvailable:
		return "available"
	case ReservationStatusReserved:
		return "reserved"
	case ReservationStatusPaid:
		return "paid"
	case ReservationStatusCancelled:
		return "cancelled"
	case ReservationStatusExpired:
		return "expired"
	default:
		return "unspecified"
	}
}

type AttemptStatus int32

const (
	AttemptStatusUnspecified AttemptStatus = 0
	AttemptStatusPending     AttemptStatus = 1
	AttemptStatusPaid        AttemptStatus = 2
	AttemptStatusCancelled   AttemptStatus = 3
	AttemptStatusExpired     AttemptStatus = 4
	AttemptStatusFailed      AttemptStatus = 5
)

func (s AttemptStatus) String() string {
	switch s {
	case AttemptStatusPending:
		return "pending"
	case AttemptStatusPaid:
		return "paid"
	case AttemptStatusCancelled:
		return "cancelled"
	case AttemptStatusExpired:
		return "expired"
	case AttemptStatusFailed:
		return "failed"
	default:
		return "unspecified"
	}
}

type GatewayType int32

const (
	GatewayTypeUnspecified GatewayType = 0
	GatewayTypeEsewa       GatewayType = 1
	GatewayTypeKhalti      GatewayType = 2
)

func (g GatewayType) String() string {
	switch g {
	case GatewayTypeEsewa:
		return "esewa"
	case GatewayTypeKhalti:
		return "khalti"
	default:
		return "unspecified"
	}
}

func ParseGatewayType(raw string) GatewayType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "esewa", "1":
		return GatewayTypeEsewa
	case "khalti", "2":
		return GatewayTypeKhalti
	default:
		return GatewayTypeUnspecified
	}
}
