package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
)

type ReservationEventRepository struct {
	db DBTX
}

func NewReservationEventRepository(db DBTX) *ReservationEventRepository {
	return &ReservationEventRepository{db: db}
}

func (r *ReservationEventRepository) Create(ctx context.Context, event *entity.ReservationEvent) error {
	query := `
		INSERT INTO reservation_events (
			property_id, attempt_id, event_type, old_status, new_status, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.PropertyID,
		nullableUint64Value(event.AttemptID),
		event.EventType,
		nullableInt32Value(event.OldStatus),
		event.NewStatus,
		event.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = uint64(id)

	return nil
}
