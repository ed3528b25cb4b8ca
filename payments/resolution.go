package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeConflict  Outcome = "conflict"
	OutcomeIgnored   Outcome = "ignored"
)

// Resolution reports what a gateway notification did to the stored attempt.
type Resolution struct {
	Outcome   Outcome              `json:"outcome"`
	PaymentID string               `json:"payment_id,omitempty"`
	OrderID   string               `json:"order_id,omitempty"`
	Status    models.PaymentStatus `json:"status,omitempty"`
}

// ResolvePayment applies a final gateway outcome to the attempt with the
// notification's txRef. The attempt changes at most once; repeated or late
// notifications are logged and reported without error.
func (s *Service) ResolvePayment(ctx context.Context, n gateway.Notification) (*Resolution, error) {
	if n.TxRef == "" || !n.Status.Terminal() {
		return nil, fmt.Errorf("%w: tx_ref %q status %q", ErrInvalidNotification, n.TxRef, n.Status)
	}

	found, err := s.store.GetPaymentByTxRef(ctx, n.TxRef)
	if errors.Is(err, repository.ErrNotFound) {
		utils.LogWarn("Data integrity: gateway resolved unknown tx_ref %s as %s", n.TxRef, n.Status)
		return &Resolution{Outcome: OutcomeIgnored}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up tx_ref %s: %w", n.TxRef, err)
	}

	res := &Resolution{PaymentID: found.ID, OrderID: found.OrderID}
	var resolved *models.Payment
	err = s.withOrder(ctx, found.OrderID, func(st repository.Store) error {
		order, err := st.GetOrder(ctx, found.OrderID)
		if err != nil {
			return err
		}
		if !found.MatchesOrder(order) {
			utils.LogWarn("Data integrity: payment %s charges %s %s but order %s totals %s %s",
				found.ID, found.Amount.StringFixed(2), found.Currency, order.ID, order.Amount.StringFixed(2), order.Currency)
		}

		p, err := st.UpdatePaymentStatus(ctx, found.ID, n.Status, n.TransactionID)
		if errors.Is(err, repository.ErrAlreadyResolved) {
			res.Status = p.Status
			if p.Status == n.Status {
				res.Outcome = OutcomeDuplicate
			} else {
				res.Outcome = OutcomeConflict
			}
			return nil
		}
		if err != nil {
			return err
		}
		res.Outcome, res.Status, resolved = OutcomeApplied, p.Status, p
		if p.Status != models.PaymentStatusSuccessful {
			return nil
		}
		return completeOrder(ctx, st, order)
	})
	if err != nil {
		utils.LogError("Failed to resolve payment %s (tx_ref %s): %v", found.ID, n.TxRef, err)
		return nil, err
	}

	switch res.Outcome {
	case OutcomeApplied:
		utils.LogInfo("Payment %s resolved as %s for order %s", res.PaymentID, res.Status, res.OrderID)
		s.publish(ctx, events.PaymentResolved, res.OrderID, resolved)
	case OutcomeDuplicate:
		utils.LogInfo("Duplicate notification for payment %s (%s), ignored", res.PaymentID, res.Status)
	case OutcomeConflict:
		utils.LogWarn("Data integrity: payment %s is %s but gateway reported %s, ignored", res.PaymentID, res.Status, n.Status)
	}
	return res, nil
}

// completeOrder moves a pending order to COMPLETED once one of its attempts
// succeeds. Orders already completed or cancelled are left alone.
func completeOrder(ctx context.Context, st repository.Store, order *models.Order) error {
	orderID := order.ID
	switch order.Status {
	case models.OrderStatusPending:
		if _, err := st.UpdateOrderStatus(ctx, orderID, models.OrderStatusCompleted); err != nil {
			return fmt.Errorf("complete order %s: %w", orderID, err)
		}
		utils.LogInfo("Order %s marked COMPLETED after successful payment", orderID)
	case models.OrderStatusCancelled:
		utils.LogWarn("Data integrity: cancelled order %s received a successful payment", orderID)
	}
	return nil
}

// SimulateOutcome resolves an attempt as if the simulator gateway had called
// back. It is only available while the simulator is the active gateway.
func (s *Service) SimulateOutcome(ctx context.Context, txRef, outcome string) (*Resolution, error) {
	if s.gateway.Name() != gateway.SimulatorName {
		return nil, fmt.Errorf("%w: simulator gateway is not active", ErrInvalidNotification)
	}

	n := gateway.Notification{TxRef: txRef}
	switch strings.ToLower(outcome) {
	case "success", "successful", "":
		txID := "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		n.Status, n.TransactionID = models.PaymentStatusSuccessful, &txID
	case "failure", "failed":
		n.Status = models.PaymentStatusFailed
	default:
		return nil, fmt.Errorf("%w: unknown outcome %q", ErrInvalidNotification, outcome)
	}
	return s.ResolvePayment(ctx, n)
}
