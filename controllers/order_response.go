package controllers

import (
	"errors"

	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/gin-gonic/gin"
)

// toAppError maps a payment core error to its HTTP form.
func toAppError(err error) *utils.AppError {
	if appErr := utils.GetAppError(err); appErr != nil {
		return appErr
	}

	var validation *payments.ValidationError
	var rejected *payments.GatewayRejectedError
	var timedOut *payments.GatewayTimeoutError

	switch {
	case errors.As(err, &validation):
		return utils.BadRequestError("Invalid checkout request", nil).With("fields", validation.Fields)
	case errors.Is(err, payments.ErrOrderNotFound):
		return utils.NotFoundError("Order not found", nil)
	case errors.Is(err, payments.ErrForbidden):
		return utils.ForbiddenError("You do not have access to this order", nil)
	case errors.Is(err, payments.ErrAlreadyPaid):
		return utils.ConflictError("Order has already been paid", nil)
	case errors.Is(err, payments.ErrAttemptInProgress):
		return utils.ConflictError("A payment attempt is already in progress for this order", nil)
	case errors.Is(err, payments.ErrInvalidOrderState):
		return utils.ConflictError("Order cannot accept a payment attempt", err)
	case errors.Is(err, payments.ErrInvalidTransition):
		return utils.ConflictError("Order status change not allowed", err)
	case errors.As(err, &rejected):
		return utils.UnprocessableEntityError("Payment gateway rejected the payment", nil).
			With("error_kind", "GatewayRejected").
			With("reason", rejected.Reason).
			With("payment_id", rejected.PaymentID).
			With("retryable", true)
	case errors.As(err, &timedOut):
		return utils.FailedDependencyError("Payment gateway did not respond in time", nil).
			With("error_kind", "GatewayTimeout").
			With("payment_id", timedOut.PaymentID).
			With("retryable", true)
	case errors.Is(err, payments.ErrInvalidNotification):
		return utils.BadRequestError("Invalid gateway notification", err)
	case errors.Is(err, payments.ErrLockTimeout):
		return utils.ServiceUnavailableError("Order is busy, try again", nil).With("retryable", true)
	}
	return utils.InternalError("Internal server error", nil)
}

func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.Code >= 500 {
		utils.LogError("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.RespondError(c, appErr)
}
