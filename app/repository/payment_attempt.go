package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

var (
	ErrAttemptNotFound      = errors.New("payment attempt not found")
	ErrAttemptAlreadyExists = errors.New("payment attempt already exists")
)

type PaymentAttemptStore interface {
	Create(ctx context.Context, attempt *entity.PaymentAttempt) error
	FindByID(ctx context.Context, id uint64) (*entity.PaymentAttempt, error)
	AttachCheckout(ctx context.Context, id uint64, gatewayRef, checkoutURL string, now time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uint64, gatewayRef string, now time.Time) (bool, error)
	MarkExpired(ctx context.Context, id uint64, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uint64, now time.Time) (bool, error)
	CancelPending(ctx context.Context, propertyID uint64, buyerID string, now time.Time) (int64, error)
	CancelAllPending(ctx context.Context, propertyID uint64, now time.Time) (int64, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	ListByProperty(ctx context.Context, propertyID uint64, limit int32) ([]*entity.PaymentAttempt, error)
}

type PaymentAttemptRepository struct {
	db DBTX
}

func NewPaymentAttemptRepository(db DBTX) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{db: db}
}

func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (
			property_id, buyer_id, gateway, amount_cents, status, expires_at,
			gateway_ref, gateway_checkout_url, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		attempt.PropertyID,
		attempt.BuyerID,
		attempt.Gateway,
		attempt.AmountCents,
		attempt.Status,
		attempt.ExpiresAt,
		nullableStringValue(attempt.GatewayRef),
		nullableStringValue(attempt.GatewayCheckoutURL),
		attempt.CreatedAt,
		attempt.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrAttemptAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	attempt.ID = uint64(id)
	return nil
}

func (r *PaymentAttemptRepository) FindByID(ctx context.Context, id uint64) (*entity.PaymentAttempt, error) {
	query := `
		SELECT id, property_id, buyer_id, gateway, amount_cents, status, expires_at,
			gateway_ref, gateway_checkout_url, created_at, updated_at
		FROM payment_attempts
		WHERE id = ?
	`

	attempt := &entity.PaymentAttempt{}
	if err := scanAttempt(r.db.QueryRowContext(ctx, query, id), attempt); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return attempt, nil
}

// AttachCheckout stores the gateway reference and checkout URL produced at
// initiate time. Conditional on the attempt still being pending.
func (r *PaymentAttemptRepository) AttachCheckout(ctx context.Context, id uint64, gatewayRef, checkoutURL string, now time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET gateway_ref = ?, gateway_checkout_url = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		gatewayRef,
		checkoutURL,
		now,
		id,
		int32(types.AttemptStatusPending),
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

// MarkPaid transitions pending -> paid and stores the verified gateway
// reference. Conditional on status so a duplicate verify or a sweeper race
// reports zero affected rows.
func (r *PaymentAttemptRepository) MarkPaid(ctx context.Context, id uint64, gatewayRef string, now time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, gateway_ref = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusPaid),
		gatewayRef,
		now,
		id,
		int32(types.AttemptStatusPending),
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

func (r *PaymentAttemptRepository) MarkExpired(ctx context.Context, id uint64, now time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusExpired),
		now,
		id,
		int32(types.AttemptStatusPending),
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

func (r *PaymentAttemptRepository) MarkFailed(ctx context.Context, id uint64, now time.Time) (bool, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusFailed),
		now,
		id,
		int32(types.AttemptStatusPending),
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

// CancelPending cancels the buyer's older pending attempts on the property so
// that at most one pending attempt exists per (property, buyer) pair.
func (r *PaymentAttemptRepository) CancelPending(ctx context.Context, propertyID uint64, buyerID string, now time.Time) (int64, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, updated_at = ?
		WHERE property_id = ? AND buyer_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusCancelled),
		now,
		propertyID,
		buyerID,
		int32(types.AttemptStatusPending),
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *PaymentAttemptRepository) CancelAllPending(ctx context.Context, propertyID uint64, now time.Time) (int64, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, updated_at = ?
		WHERE property_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusCancelled),
		now,
		propertyID,
		int32(types.AttemptStatusPending),
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ExpireStale bulk-expires every pending attempt past its deadline.
func (r *PaymentAttemptRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE payment_attempts
		SET status = ?, updated_at = ?
		WHERE status = ? AND expires_at < ?
	`

	result, err := r.db.ExecContext(ctx, query,
		int32(types.AttemptStatusExpired),
		now,
		int32(types.AttemptStatusPending),
		now,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *PaymentAttemptRepository) ListByProperty(ctx context.Context, propertyID uint64, limit int32) ([]*entity.PaymentAttempt, error) {
	query := `
		SELECT id, property_id, buyer_id, gateway, amount_cents, status, expires_at,
			gateway_ref, gateway_checkout_url, created_at, updated_at
		FROM payment_attempts
		WHERE property_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, propertyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*entity.PaymentAttempt, 0)
	for rows.Next() {
		item := &entity.PaymentAttempt{}
		if err := scanAttempt(rows, item); err != nil {
			return nil, err
		}
		attempts = append(attempts, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAttempt(scan rowScanner, attempt *entity.PaymentAttempt) error {
	var gatewayRef sql.NullString
	var checkoutURL sql.NullString

	err := scan.Scan(
		&attempt.ID,
		&attempt.PropertyID,
		&attempt.BuyerID,
		&attempt.Gateway,
		&attempt.AmountCents,
		&attempt.Status,
		&attempt.ExpiresAt,
		&gatewayRef,
		&checkoutURL,
		&attempt.CreatedAt,
		&attempt.UpdatedAt,
	)
	if err != nil {
		return err
	}

	attempt.GatewayRef = stringPtrFromNull(gatewayRef)
	attempt.GatewayCheckoutURL = stringPtrFromNull(checkoutURL)

	return nil
}
