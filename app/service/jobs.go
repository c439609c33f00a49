package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// RunExpireAttemptsBatch bulk-expires pending payment attempts past their
// deadline. Single conditional statement; re-running is a no-op.
func (s *ReservationService) RunExpireAttemptsBatch(ctx context.Context) error {
	now := time.Now().UTC()
	expired, err := s.attemptRepo.ExpireStale(ctx, now)
	if err != nil {
		return storeErr(err)
	}
	if expired > 0 {
		logrus.WithField("expired_attempts", expired).Info("expired stale payment attempts")
	}
	return nil
}

// RunExpireHoldsBatch bulk-releases property holds past their deadline.
func (s *ReservationService) RunExpireHoldsBatch(ctx context.Context) error {
	now := time.Now().UTC()
	released, err := s.propertyRepo.ExpireStaleHolds(ctx, now)
	if err != nil {
		return storeErr(err)
	}
	if released > 0 {
		logrus.WithField("released_holds", released).Info("released stale property holds")
	}
	return nil
}

// RunSweepBatch runs both expiry passes. They are independent and
// order-insensitive; a failure in one never blocks the other.
func (s *ReservationService) RunSweepBatch(ctx context.Context) error {
	var firstErr error
	if err := s.RunExpireAttemptsBatch(ctx); err != nil {
		firstErr = keepFirstErr(firstErr, err)
	}
	if err := s.RunExpireHoldsBatch(ctx); err != nil {
		firstErr = keepFirstErr(firstErr, err)
	}
	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
