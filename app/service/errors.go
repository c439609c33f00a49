package service

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrPropertyNotFound     = errors.New("property not found")
	ErrPaymentNotFound      = errors.New("payment attempt not found")
	ErrAlreadyReserved      = errors.New("property is already sold")
	ErrReservedByOther      = errors.New("property is reserved by another buyer")
	ErrAmountNotConfigured  = errors.New("property has no advance amount configured")
	ErrPaymentExpired       = errors.New("payment attempt has expired")
	ErrNotOwner             = errors.New("payment attempt belongs to another buyer")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrGatewayUnsupported   = errors.New("gateway is not supported")
	ErrVerificationRejected = errors.New("gateway verification rejected")

	// ErrStoreUnavailable wraps storage failures; it is the only error kind
	// a caller may safely retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
