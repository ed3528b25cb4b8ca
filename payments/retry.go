package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
)

// RetryResult is returned once a retry attempt has been opened with the gateway.
type RetryResult struct {
	Message        string `json:"message"`
	RetryPaymentID string `json:"retryPaymentId"`
	Link           string `json:"link"`
}

// AttemptState is where an order stands in the payment attempt lifecycle.
type AttemptState string

const (
	StateNoPayment       AttemptState = "NO_PAYMENT"
	StateAttemptInFlight AttemptState = "ATTEMPT_IN_FLIGHT"
	StateResolvedSuccess AttemptState = "RESOLVED_SUCCESS"
	StateResolvedFailure AttemptState = "RESOLVED_FAILURE"
)

// StateOf places an order's attempts in the retry state machine. Any
// successful attempt makes the state terminal; otherwise the latest attempt decides.
func StateOf(attempts []models.Payment) AttemptState {
	if DeriveStatus(attempts) == models.PaymentStatusSuccessful {
		return StateResolvedSuccess
	}
	latest, _ := LatestAttempt(attempts)
	switch {
	case latest == nil:
		return StateNoPayment
	case latest.Status == models.PaymentStatusPending:
		return StateAttemptInFlight
	}
	return StateResolvedFailure
}

// RetryPayment opens a new attempt for an order whose latest attempt failed.
// The new attempt references the failed one and charges the order's amount.
// Deciding and creating the attempt happen under the order lock, so two
// concurrent retries never both create a PENDING attempt.
func (s *Service) RetryPayment(ctx context.Context, actor models.Identity, orderID string) (*RetryResult, error) {
	var order *models.Order
	var attempt *models.Payment

	err := s.withOrder(ctx, orderID, func(st repository.Store) error {
		o, err := st.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(o) {
			return ErrForbidden
		}
		if o.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrInvalidOrderState)
		}

		latest, ambiguous := LatestAttempt(o.Payments)
		if latest == nil {
			utils.LogWarn("Data integrity: order %s has no payment attempts", o.ID)
			return fmt.Errorf("%w: order has no payment attempts", ErrInvalidOrderState)
		}
		if ambiguous {
			utils.LogWarn("Data integrity: order %s has a branched retry chain, retrying from %s", o.ID, latest.ID)
		}

		switch StateOf(o.Payments) {
		case StateResolvedSuccess:
			return ErrAlreadyPaid
		case StateAttemptInFlight:
			return ErrAttemptInProgress
		}
		if latest.Status != models.PaymentStatusFailed {
			return fmt.Errorf("%w: latest attempt has status %s", ErrInvalidOrderState, latest.Status)
		}

		next := s.newAttempt(o, latest.PaymentMethod, latest)
		created, err := st.CreatePaymentAttempt(ctx, o.ID, next)
		if errors.Is(err, repository.ErrPendingAttemptExists) {
			return ErrAttemptInProgress
		}
		if err != nil {
			return fmt.Errorf("create retry attempt: %w", err)
		}
		order, attempt = o, created
		return nil
	})
	if err != nil {
		utils.LogInfo("Retry for order %s refused: %v", orderID, err)
		return nil, err
	}

	utils.LogInfo("Retry attempt %s created for order %s, superseding %s", attempt.ID, order.ID, *attempt.RetryOfPaymentID)
	s.publish(ctx, events.PaymentAttemptCreated, order.ID, attempt)

	link, err := s.startAttempt(ctx, order, attempt)
	if err != nil {
		return nil, err
	}
	return &RetryResult{
		Message:        "Payment retry initiated successfully",
		RetryPaymentID: attempt.ID,
		Link:           link,
	}, nil
}
