package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-reservations/app/entity"
	"github.com/vibast-solutions/ms-go-reservations/app/gateway"
	"github.com/vibast-solutions/ms-go-reservations/app/pricing"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
	"github.com/vibast-solutions/ms-go-reservations/config"
)

const defaultAttemptListLimit = int32(20)

type initiateReservationRequest interface {
	GetPropertyId() uint64
	GetBuyerId() string
	GetGateway() types.GatewayType
	GetSuccessUrl() string
	GetFailureUrl() string
}

type verifyPaymentRequest interface {
	GetPaymentId() uint64
	GetBuyerId() string
	GetGateway() types.GatewayType
	GetGatewayRef() string
}

type cancelReservationRequest interface {
	GetPropertyId() uint64
	GetReason() string
}

type upsertPropertyRequest interface {
	GetId() uint64
	GetListingKind() types.ListingKind
	GetPriceCents() int64
	GetMonthlyRentCents() int64
	GetRentalDepositCents() int64
	GetAdvanceCents() int64
}

type propertyRepository interface {
	Upsert(ctx context.Context, property *entity.Property) error
	FindByID(ctx context.Context, id uint64) (*entity.Property, error)
	Reserve(ctx context.Context, id uint64, buyerID string, until time.Time, now time.Time) (bool, error)
	MarkPaid(ctx context.Context, id uint64, buyerID string, now time.Time) (bool, error)
	Release(ctx context.Context, id uint64, newStatus int32, now time.Time) (bool, error)
	ReleaseHold(ctx context.Context, id uint64, buyerID string, newStatus int32, now time.Time) (bool, error)
	ExpireStaleHolds(ctx context.Context, now time.Time) (int64, error)
}

type attemptRepository interface {
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

type eventRepository interface {
	Create(ctx context.Context, event *entity.ReservationEvent) error
}

type verificationRepository interface {
	Create(ctx context.Context, verification *entity.GatewayVerification) error
}

// EventPublisher fans reservation lifecycle events out to the marketplace
// event stream. Fire and forget; nil disables publishing.
type EventPublisher interface {
	PublishReservationEvent(event *entity.ReservationEvent)
}

type ReservationService struct {
	propertyRepo     propertyRepository
	attemptRepo      attemptRepository
	eventRepo        eventRepository
	verificationRepo verificationRepository
	gatewayReg       *gateway.Registry
	publisher        EventPublisher
	reservationsCfg  config.ReservationsConfig
}

func NewReservationService(
	propertyRepo propertyRepository,
	attemptRepo attemptRepository,
	eventRepo eventRepository,
	verificationRepo verificationRepository,
	gatewayReg *gateway.Registry,
	publisher EventPublisher,
	reservationsCfg config.ReservationsConfig,
) *ReservationService {
	if reservationsCfg.HoldDuration <= 0 {
		reservationsCfg.HoldDuration = 24 * time.Hour
	}

	return &ReservationService{
		propertyRepo:     propertyRepo,
		attemptRepo:      attemptRepo,
		eventRepo:        eventRepo,
		verificationRepo: verificationRepo,
		gatewayReg:       gatewayReg,
		publisher:        publisher,
		reservationsCfg:  reservationsCfg,
	}
}

// InitiateResult carries everything the caller needs to redirect the buyer.
type InitiateResult struct {
	Attempt  *entity.PaymentAttempt
	Checkout *gateway.CheckoutOutput
}

// Initiate places a time-bounded exclusive hold on the property and opens a
// pending payment attempt against the chosen gateway. The initial status read
// is advisory only; the hold itself is decided by the conditional update in
// Reserve, so concurrent initiates resolve to exactly one winner.
func (s *ReservationService) Initiate(ctx context.Context, req initiateReservationRequest) (*InitiateResult, error) {
	if req.GetPropertyId() == 0 || req.GetBuyerId() == "" {
		return nil, ErrInvalidRequest
	}

	gatewayClient, err := s.gatewayReg.Get(int32(req.GetGateway()))
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, ErrGatewayUnsupported
		}
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, req.GetPropertyId())
	if err != nil {
		return nil, storeErr(err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	now := time.Now().UTC()
	buyerID := req.GetBuyerId()

	if property.ReservationStatus == int32(types.ReservationStatusPaid) {
		return nil, ErrAlreadyReserved
	}
	if property.ReservationStatus == int32(types.ReservationStatusReserved) &&
		property.ReservedUntil != nil && property.ReservedUntil.After(now) &&
		property.ReservedBy != nil && *property.ReservedBy != buyerID {
		return nil, ErrReservedByOther
	}

	amountCents := pricing.AdvanceCents(property)
	if amountCents <= 0 {
		return nil, ErrAmountNotConfigured
	}

	expiresAt := now.Add(s.reservationsCfg.HoldDuration)

	// One pending attempt per (property, buyer): a re-initiate by the same
	// buyer supersedes their earlier attempt.
	if _, err := s.attemptRepo.CancelPending(ctx, property.ID, buyerID, now); err != nil {
		return nil, storeErr(err)
	}

	attempt := &entity.PaymentAttempt{
		PropertyID:  property.ID,
		BuyerID:     buyerID,
		Gateway:     int32(req.GetGateway()),
		AmountCents: amountCents,
		Status:      int32(types.AttemptStatusPending),
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, storeErr(err)
	}

	// The write-time re-check. Losing here means another buyer reserved the
	// property between our read and this statement.
	reserved, err := s.propertyRepo.Reserve(ctx, property.ID, buyerID, expiresAt, now)
	if err != nil {
		return nil, storeErr(err)
	}
	if !reserved {
		_, _ = s.attemptRepo.CancelPending(ctx, property.ID, buyerID, now)
		return nil, ErrReservedByOther
	}

	checkout, err := gatewayClient.BuildCheckout(ctx, &gateway.CheckoutInput{
		AttemptID:   attempt.ID,
		PropertyID:  property.ID,
		BuyerID:     buyerID,
		AmountCents: amountCents,
		ExpiresAt:   expiresAt,
		SuccessURL:  req.GetSuccessUrl(),
		FailureURL:  req.GetFailureUrl(),
	})
	if err != nil {
		_, _ = s.attemptRepo.CancelPending(ctx, property.ID, buyerID, now)
		_, _ = s.propertyRepo.ReleaseHold(ctx, property.ID, buyerID, int32(types.ReservationStatusAvailable), now)
		return nil, fmt.Errorf("build gateway checkout: %w", err)
	}

	if _, err := s.attemptRepo.AttachCheckout(ctx, attempt.ID, checkout.GatewayRef, checkout.URL, now); err != nil {
		return nil, storeErr(err)
	}
	attempt.GatewayRef = &checkout.GatewayRef
	attempt.GatewayCheckoutURL = &checkout.URL

	oldStatus := property.ReservationStatus
	s.recordEvent(ctx, &entity.ReservationEvent{
		PropertyID: property.ID,
		AttemptID:  &attempt.ID,
		EventType:  "reservation_initiated",
		OldStatus:  &oldStatus,
		NewStatus:  int32(types.ReservationStatusReserved),
		CreatedAt:  now,
	})

	return &InitiateResult{Attempt: attempt, Checkout: checkout}, nil
}

// VerifyPayment confirms a payment attempt against its gateway and finalizes
// the hold. Idempotent on already-paid attempts, which also makes it the
// recovery path for a crash between the attempt write and the property write.
func (s *ReservationService) VerifyPayment(ctx context.Context, req verifyPaymentRequest) (*entity.PaymentAttempt, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, req.GetPaymentId())
	if err != nil {
		return nil, storeErr(err)
	}
	if attempt == nil {
		return nil, ErrPaymentNotFound
	}
	if attempt.BuyerID != req.GetBuyerId() {
		return nil, ErrNotOwner
	}
	if int32(req.GetGateway()) != attempt.Gateway {
		return nil, ErrInvalidRequest
	}

	now := time.Now().UTC()

	switch types.AttemptStatus(attempt.Status) {
	case types.AttemptStatusPaid:
		// Duplicate verify; re-drive the property write in case the first
		// call died between the two conditional updates.
		if err := s.ensurePropertyPaid(ctx, attempt, now); err != nil {
			return nil, err
		}
		return attempt, nil
	case types.AttemptStatusExpired:
		return nil, ErrPaymentExpired
	case types.AttemptStatusCancelled, types.AttemptStatusFailed:
		return nil, fmt.Errorf("%w: attempt is %s", ErrInvalidStatus, types.AttemptStatus(attempt.Status))
	}

	// Lazy expiry: the deadline lives in the data, so it holds even when the
	// sweeper has not run yet. The gateway is not consulted; the hold is gone.
	if attempt.ExpiresAt.Before(now) {
		if expired, err := s.attemptRepo.MarkExpired(ctx, attempt.ID, now); err != nil {
			return nil, storeErr(err)
		} else if expired {
			oldStatus := attempt.Status
			s.recordEvent(ctx, &entity.ReservationEvent{
				PropertyID: attempt.PropertyID,
				AttemptID:  &attempt.ID,
				EventType:  "payment_expired",
				OldStatus:  &oldStatus,
				NewStatus:  int32(types.AttemptStatusExpired),
				CreatedAt:  now,
			})
		}
		return nil, ErrPaymentExpired
	}

	gatewayClient, err := s.gatewayReg.Get(attempt.Gateway)
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, ErrGatewayUnsupported
		}
		return nil, err
	}

	verified, err := gatewayClient.VerifyPayment(ctx, &gateway.VerifyInput{
		AttemptID:   attempt.ID,
		AmountCents: attempt.AmountCents,
		GatewayRef:  req.GetGatewayRef(),
	})
	if err != nil {
		s.persistVerification(ctx, attempt, req, now, fmt.Sprintf("gateway verification failed: %v", err))
		return nil, ErrVerificationRejected
	}

	if verified.Status != int32(types.AttemptStatusPaid) {
		reason := fmt.Sprintf("gateway reports status %s", types.AttemptStatus(verified.Status))
		s.persistVerification(ctx, attempt, req, now, reason)
		if verified.Status == int32(types.AttemptStatusFailed) {
			if failed, err := s.attemptRepo.MarkFailed(ctx, attempt.ID, now); err == nil && failed {
				oldStatus := attempt.Status
				s.recordEvent(ctx, &entity.ReservationEvent{
					PropertyID: attempt.PropertyID,
					AttemptID:  &attempt.ID,
					EventType:  "payment_failed",
					OldStatus:  &oldStatus,
					NewStatus:  int32(types.AttemptStatusFailed),
					CreatedAt:  now,
				})
			}
		}
		return nil, ErrVerificationRejected
	}

	// Fixed write order: attempt first, property second. A crash in between
	// leaves a paid attempt on a reserved property, which the idempotent
	// branch above repairs on the next call.
	paid, err := s.attemptRepo.MarkPaid(ctx, attempt.ID, verified.GatewayRef, now)
	if err != nil {
		return nil, storeErr(err)
	}
	if !paid {
		current, err := s.attemptRepo.FindByID(ctx, attempt.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if current != nil && current.Status == int32(types.AttemptStatusPaid) {
			if err := s.ensurePropertyPaid(ctx, current, now); err != nil {
				return nil, err
			}
			return current, nil
		}
		return nil, ErrPaymentExpired
	}

	oldStatus := attempt.Status
	attempt.Status = int32(types.AttemptStatusPaid)
	attempt.GatewayRef = &verified.GatewayRef
	attempt.UpdatedAt = now

	if err := s.ensurePropertyPaid(ctx, attempt, now); err != nil {
		return nil, err
	}

	s.persistVerification(ctx, attempt, req, now, "")
	s.recordEvent(ctx, &entity.ReservationEvent{
		PropertyID: attempt.PropertyID,
		AttemptID:  &attempt.ID,
		EventType:  "reservation_paid",
		OldStatus:  &oldStatus,
		NewStatus:  int32(types.AttemptStatusPaid),
		CreatedAt:  now,
	})

	return attempt, nil
}

// Cancel releases the property and voids every pending attempt on it. Role
// enforcement is the caller's job; an administrative cancel applies even to a
// paid property.
func (s *ReservationService) Cancel(ctx context.Context, req cancelReservationRequest) (*entity.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, req.GetPropertyId())
	if err != nil {
		return nil, storeErr(err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	now := time.Now().UTC()

	if _, err := s.attemptRepo.CancelAllPending(ctx, property.ID, now); err != nil {
		return nil, storeErr(err)
	}
	if _, err := s.propertyRepo.Release(ctx, property.ID, int32(types.ReservationStatusCancelled), now); err != nil {
		return nil, storeErr(err)
	}

	oldStatus := property.ReservationStatus
	property.ReservationStatus = int32(types.ReservationStatusCancelled)
	property.ReservedBy = nil
	property.ReservedUntil = nil
	property.UpdatedAt = now

	s.recordEvent(ctx, &entity.ReservationEvent{
		PropertyID: property.ID,
		EventType:  "reservation_cancelled",
		OldStatus:  &oldStatus,
		NewStatus:  int32(types.ReservationStatusCancelled),
		CreatedAt:  now,
	})

	return property, nil
}

func (s *ReservationService) GetProperty(ctx context.Context, id uint64) (*entity.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *ReservationService) GetAttempt(ctx context.Context, id uint64) (*entity.PaymentAttempt, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if attempt == nil {
		return nil, ErrPaymentNotFound
	}
	return attempt, nil
}

func (s *ReservationService) ListAttempts(ctx context.Context, propertyID uint64) ([]*entity.PaymentAttempt, error) {
	limit := s.reservationsCfg.AttemptListLimit
	if limit <= 0 {
		limit = defaultAttemptListLimit
	}

	attempts, err := s.attemptRepo.ListByProperty(ctx, propertyID, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	return attempts, nil
}

// UpsertProperty syncs a pricing snapshot from the listings service.
func (s *ReservationService) UpsertProperty(ctx context.Context, req upsertPropertyRequest) (*entity.Property, error) {
	if req.GetId() == 0 || req.GetListingKind() == types.ListingKindUnspecified {
		return nil, ErrInvalidRequest
	}

	now := time.Now().UTC()
	property := &entity.Property{
		ID:                 req.GetId(),
		ListingKind:        int32(req.GetListingKind()),
		PriceCents:         req.GetPriceCents(),
		MonthlyRentCents:   req.GetMonthlyRentCents(),
		RentalDepositCents: req.GetRentalDepositCents(),
		AdvanceCents:       req.GetAdvanceCents(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.propertyRepo.Upsert(ctx, property); err != nil {
		return nil, storeErr(err)
	}

	stored, err := s.propertyRepo.FindByID(ctx, property.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if stored == nil {
		return nil, ErrPropertyNotFound
	}
	return stored, nil
}

// ensurePropertyPaid drives the property to paid for the attempt's buyer.
// Zero affected rows is fine when the property is already paid by that buyer;
// anything else means the hold was lost before payment landed.
func (s *ReservationService) ensurePropertyPaid(ctx context.Context, attempt *entity.PaymentAttempt, now time.Time) error {
	updated, err := s.propertyRepo.MarkPaid(ctx, attempt.PropertyID, attempt.BuyerID, now)
	if err != nil {
		return storeErr(err)
	}
	if updated {
		return nil
	}

	property, err := s.propertyRepo.FindByID(ctx, attempt.PropertyID)
	if err != nil {
		return storeErr(err)
	}
	if property != nil && property.ReservationStatus == int32(types.ReservationStatusPaid) &&
		property.ReservedBy != nil && *property.ReservedBy == attempt.BuyerID {
		return nil
	}
	return fmt.Errorf("%w: property hold was lost before settlement", ErrInvalidStatus)
}

func (s *ReservationService) persistVerification(ctx context.Context, attempt *entity.PaymentAttempt, req verifyPaymentRequest, now time.Time, reason string) {
	verification := &entity.GatewayVerification{
		AttemptID:  &attempt.ID,
		Gateway:    req.GetGateway().String(),
		GatewayRef: req.GetGatewayRef(),
		BuyerID:    req.GetBuyerId(),
		Status:     entity.VerificationStatusProcessed,
		CreatedAt:  now,
	}
	if reason != "" {
		trimmed := truncate(reason, 1024)
		verification.Status = entity.VerificationStatusRejected
		verification.Error = &trimmed
	}
	_ = s.verificationRepo.Create(ctx, verification)
}

func (s *ReservationService) recordEvent(ctx context.Context, event *entity.ReservationEvent) {
	_ = s.eventRepo.Create(ctx, event)
	if s.publisher != nil {
		s.publisher.PublishReservationEvent(event)
	}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
