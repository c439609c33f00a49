package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-reservations/app/factory"
	"github.com/vibast-solutions/ms-go-reservations/app/mapper"
	"github.com/vibast-solutions/ms-go-reservations/app/service"
	"github.com/vibast-solutions/ms-go-reservations/app/types"
)

type ReservationController struct {
	reservationService *service.ReservationService
	logger             logrus.FieldLogger
}

func NewReservationController(reservationService *service.ReservationService) *ReservationController {
	return &ReservationController{
		reservationService: reservationService,
		logger:             factory.NewModuleLogger("reservations-controller"),
	}
}

func (c *ReservationController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *ReservationController) InitiateReservation(ctx echo.Context) error {
	req, err := types.NewInitiateReservationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.reservationService.Initiate(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrGatewayUnsupported), errors.Is(err, service.ErrAmountNotConfigured):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPropertyNotFound):
			return c.writeError(ctx, http.StatusNotFound, "property not found")
		case errors.Is(err, service.ErrAlreadyReserved), errors.Is(err, service.ErrReservedByOther):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		default:
			c.logger.WithError(err).Error("Initiate reservation failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.InitiateReservationResponse{
		PaymentId:   result.Attempt.ID,
		AmountCents: result.Attempt.AmountCents,
		ExpiresAt:   mapper.PaymentToResponse(result.Attempt).ExpiresAt,
		Checkout:    mapper.CheckoutToResponse(result.Checkout),
	})
}

func (c *ReservationController) VerifyPayment(ctx echo.Context) error {
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.reservationService.VerifyPayment(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrGatewayUnsupported), errors.Is(err, service.ErrVerificationRejected):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment attempt not found")
		case errors.Is(err, service.ErrNotOwner):
			return c.writeError(ctx, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrPaymentExpired):
			return c.writeError(ctx, http.StatusGone, err.Error())
		case errors.Is(err, service.ErrInvalidStatus):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		default:
			c.logger.WithError(err).Error("Verify payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *ReservationController) CancelReservation(ctx echo.Context) error {
	req, err := types.NewCancelReservationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.reservationService.Cancel(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPropertyNotFound):
			return c.writeError(ctx, http.StatusNotFound, "property not found")
		case errors.Is(err, service.ErrStoreUnavailable):
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		default:
			c.logger.WithError(err).Error("Cancel reservation failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.PropertyEnvelopeResponse{Property: mapper.PropertyToResponse(item)})
}

func (c *ReservationController) GetReservation(ctx echo.Context) error {
	req, err := types.NewGetReservationRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	property, err := c.reservationService.GetProperty(ctx.Request().Context(), req.GetPropertyId())
	if err != nil {
		if errors.Is(err, service.ErrPropertyNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "property not found")
		}
		if errors.Is(err, service.ErrStoreUnavailable) {
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		}
		c.logger.WithError(err).Error("Get reservation failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	attempts, err := c.reservationService.ListAttempts(ctx.Request().Context(), req.GetPropertyId())
	if err != nil {
		c.logger.WithError(err).Error("List payment attempts failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ReservationResponse{
		Property: mapper.PropertyToResponse(property),
		Payments: mapper.PaymentsToResponse(attempts),
	})
}

func (c *ReservationController) GetPayment(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.reservationService.GetAttempt(ctx.Request().Context(), req.GetId())
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment attempt not found")
		}
		if errors.Is(err, service.ErrStoreUnavailable) {
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		}
		c.logger.WithError(err).Error("Get payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *ReservationController) UpsertProperty(ctx echo.Context) error {
	req, err := types.NewUpsertPropertyRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.reservationService.UpsertProperty(ctx.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStoreUnavailable):
			return c.writeError(ctx, http.StatusServiceUnavailable, "store unavailable")
		default:
			c.logger.WithError(err).Error("Upsert property failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.PropertyEnvelopeResponse{Property: mapper.PropertyToResponse(item)})
}

func (c *ReservationController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
