package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
)

type GatewayVerificationRepository struct {
	db DBTX
}

func NewGatewayVerificationRepository(db DBTX) *GatewayVerificationRepository {
	return &GatewayVerificationRepository{db: db}
}

func (r *GatewayVerificationRepository) Create(ctx context.Context, verification *entity.GatewayVerification) error {
	query := `
		INSERT INTO gateway_verifications (
			attempt_id, gateway, gateway_ref, buyer_id, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableUint64Value(verification.AttemptID),
		verification.Gateway,
		verification.GatewayRef,
		verification.BuyerID,
		verification.Status,
		nullableStringValue(verification.Error),
		verification.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	verification.ID = uint64(id)

	return nil
}
