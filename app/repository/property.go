package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

var ErrPropertyNotFound = errors.New("property not found")

type PropertyStore interface {
	Upsert(ctx context.Context, property *entity.Property) error
	FindByID(ctx context.Context, id uint64) (*entity.Property, error)
	Reserve(ctx context.Context, id uint64, buyerID string, until time.Time, now time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uint64, buyerID string, now time.Time) (bool, error)
	Release(ctx context.Context, id uint64, newStatus int32, now time.Time) (bool, error)
	ReleaseHold(ctx context.Context, id uint64, buyerID string, newStatus int32, now time.Time) (bool, error)
	ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error)
}

type PropertyRepository struct {
	db DBTX
}

func NewPropertyRepository(db DBTX) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Upsert syncs a pricing snapshot from the listings service. Reservation
// fields are never touched here: a new row starts available, an existing row
// keeps whatever reservation state it is in.
func (r *PropertyRepository) Upsert(ctx context.Context, property *entity.Property) error {
	query := `
		INSERT INTO properties (
			id, listing_kind, price_cents, monthly_rent_cents, rental_deposit_cents, advance_cents,
			reservation_status, reserved_by, reserved_until, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)
		ON DUPLICATE KEY UPDATE
			listing_kind = VALUES(listing_kind),
			price_cents = VALUES(price_cents),
			monthly_rent_cents = VALUES(monthly_rent_cents),
			rental_deposit_cents = VALUES(rental_deposit_cents),
			advance_cents = VALUES(advance_cents),
			updated_at = VALUES(updated_at)
	`

	_, err := r.db.ExecContext(ctx, query,
		property.ID,
		property.ListingKind,
		property.PriceCents,
		property.MonthlyRentCents,
		property.RentalDepositCents,
		property.AdvanceCents,
		int32(types.ReservationStatusAvailable),
		property.CreatedAt,
		property.UpdatedAt,
	)
	return err
}

func (r *PropertyRepository) FindByID(ctx context.Context, id uint64) (*entity.Property, error) {
	query := `
		SELECT id, listing_kind, price_cents, monthly_rent_cents, rental_deposit_cents, advance_cents,
			reservation_status, reserved_by, reserved_until, created_at, updated_at
		FROM properties
		WHERE id = ?
	`

	property := &entity.Property{}
	var reservedBy sql.NullString
	var reservedUntil sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&property.ID,
		&property.ListingKind,
		&property.PriceCents,
		&property.MonthlyRentCents,
		&property.RentalDepositCents,
		&property.AdvanceCents,
		&property.ReservationStatus,
		&reservedBy,
		&reservedUntil,
		&property.CreatedAt,
		&property.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	property.ReservedBy = stringPtrFromNull(reservedBy)
	property.ReservedUntil = timePtrFromNull(reservedUntil)

	return property, nil
}

// Reserve places a hold on the property with a single conditional update.
// The WHERE clause re-checks state at write time: the hold is granted only if
// the property is free (available, or a lapsed cancelled/expired cycle) or the
// same buyer refreshes their own live hold. First writer wins; a false return
// means another buyer got there first.
func (r *PropertyRepository) Reserve(ctx context.Context, id uint64, buyerID string, until time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE properties
		SET reservation_status = ?, reserved_by = ?, reserved_until = ?, updated_at = ?
		WHERE id = ?
		  AND (
			reservation_status IN (?, ?, ?)
			OR (reservation_status = ? AND reserved_by = ?)
		  )
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.ReservationStatusReserved),
		buyerID,
		until,
		now,
		id,
		int32(types.ReservationStatusAvailable),
		int32(types.ReservationStatusCancelled),
		int32(types.ReservationStatusExpired),
		int32(types.ReservationStatusReserved),
		buyerID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkPaid finalizes the hold. Conditional on the property still being
// reserved by the paying buyer, so a sweeper or cancel racing ahead of us
// surfaces as zero affected rows instead of a silent overwrite.
func (r *PropertyRepository) MarkPaid(ctx context.Context, id uint64, buyerID string, now time.Time) (bool, error) {
	query := `
		UPDATE properties
		SET reservation_status = ?, reserved_until = NULL, updated_at = ?
		WHERE id = ? AND reservation_status = ? AND reserved_by = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.ReservationStatusPaid),
		now,
		id,
		int32(types.ReservationStatusReserved),
		buyerID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Release clears the hold regardless of holder (administrative cancel).
func (r *PropertyRepository) Release(ctx context.Context, id uint64, newStatus int32, now time.Time) (bool, error) {
	query := `
		UPDATE properties
		SET reservation_status = ?, reserved_by = NULL, reserved_until = NULL, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, newStatus, now, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ReleaseHold clears the hold only if the given buyer still owns it. Used to
// roll back a fresh hold when the gateway checkout cannot be built, without
// stomping on a hold someone else has since won.
func (r *PropertyRepository) ReleaseHold(ctx context.Context, id uint64, buyerID string, newStatus int32, now time.Time) (bool, error) {
	query := `
		UPDATE properties
		SET reservation_status = ?, reserved_by = NULL, reserved_until = NULL, updated_at = ?
		WHERE id = ? AND reservation_status = ? AND reserved_by = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		newStatus,
		now,
		id,
		int32(types.ReservationStatusReserved),
		buyerID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ExpireStaleHolds force-releases every hold past its deadline. One bulk
// statement; re-running on already-expired rows matches nothing.
func (r *PropertyRepository) ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE properties
		SET reservation_status = ?, reserved_by = NULL, reserved_until = NULL, updated_at = ?
		WHERE reservation_status = ? AND reserved_until < ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.ReservationStatusExpired),
		now,
		int32(types.ReservationStatusReserved),
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
