package entity

import "time"

const (
	VerificationStatusProcessed int32 = 10
	VerificationStatusRejected  int32 = 20
)

type GatewayVerification struct {
	ID uint64

	AttemptID *uint64

	Gateway    string
	GatewayRef string
	BuyerID    string
	Status     int32
	Error      *string

	CreatedAt time.Time
}
