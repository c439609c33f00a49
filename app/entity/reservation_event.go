package entity

import "time"

type ReservationEvent struct {
	ID uint64

	PropertyID uint64
	AttemptID  *uint64

	EventType string

	OldStatus *int32
	NewStatus int32

	CreatedAt time.Time
}
