package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
)

// OrderView is an order as served to clients, with its payment status
// derived from the attempts at read time.
type OrderView struct {
	*models.Order
	PaymentStatus models.PaymentStatus `json:"payment_status"`
}

func NewOrderView(o *models.Order) OrderView {
	return OrderView{Order: o, PaymentStatus: DeriveStatus(o.Payments)}
}

// ChainView is an order's retry chain, root attempt first.
type ChainView struct {
	OrderID       string               `json:"order_id"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Chain
}

func (s *Service) loadOrder(ctx context.Context, actor models.Identity, id string) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order) {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, actor models.Identity, id string) (*OrderView, error) {
	order, err := s.loadOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view := NewOrderView(order)
	return &view, nil
}

// ListOrders lists every order for an admin. Any other caller may only list
// their own orders by passing their user id in the filter.
func (s *Service) ListOrders(ctx context.Context, actor models.Identity, filter repository.OrderFilter) ([]OrderView, int64, error) {
	if !actor.IsAdmin() && (actor.Anonymous() || filter.UserID != actor.UserID) {
		return nil, 0, ErrForbidden
	}
	orders, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, NewOrderView(&orders[i]))
	}
	return views, total, nil
}

// GetChain returns the order's attempts laid out along the retry chain.
func (s *Service) GetChain(ctx context.Context, actor models.Identity, id string) (*ChainView, error) {
	order, err := s.loadOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.store.ListPaymentsForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if verr := VerifyChain(order.ID, attempts); verr != nil {
		utils.LogWarn("Data integrity: order %s retry chain: %v", order.ID, verr)
	}
	return &ChainView{
		OrderID:       order.ID,
		PaymentStatus: DeriveStatus(attempts),
		Chain:         BuildChain(attempts),
	}, nil
}

// UpdateOrderStatus applies an administrative status change. Only pending
// orders move; completion needs a successful payment and cancellation is
// refused while a payment succeeded or is still in flight.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor models.Identity, id string, status models.OrderStatus) (*OrderView, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	var updated *models.Order
	err := s.withOrder(ctx, id, func(st repository.Store) error {
		order, err := st.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(order, status); err != nil {
			return err
		}
		if _, err := st.UpdateOrderStatus(ctx, id, status); err != nil {
			return err
		}
		updated, err = st.GetOrder(ctx, id)
		return err
	})
	if err != nil {
		utils.LogInfo("Status change of order %s to %s refused: %v", id, status, err)
		return nil, err
	}

	utils.LogInfo("Order %s status changed to %s by %s", id, status, actor.UserID)
	view := NewOrderView(updated)
	return &view, nil
}

func checkTransition(order *models.Order, to models.OrderStatus) error {
	if order.Status != models.OrderStatusPending {
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}
	derived := DeriveStatus(order.Payments)
	switch to {
	case models.OrderStatusCompleted:
		if derived != models.PaymentStatusSuccessful {
			return fmt.Errorf("%w: payment status is %s", ErrInvalidTransition, derived)
		}
	case models.OrderStatusCancelled:
		if derived == models.PaymentStatusSuccessful || derived == models.PaymentStatusPending {
			return fmt.Errorf("%w: payment status is %s", ErrInvalidTransition, derived)
		}
	default:
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, order.Status)
	}
	return nil
}

// OrderReport is the derived payment state of one order for operators.
type OrderReport struct {
	Order         *models.Order
	PaymentStatus models.PaymentStatus
	State         AttemptState
	Chain         Chain
	Integrity     error
}

// Inspect reports an order's derived status and retry chain without
// any authorization check. It backs operator tooling only.
func (s *Service) Inspect(ctx context.Context, id string) (*OrderReport, error) {
	order, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &OrderReport{
		Order:         order,
		PaymentStatus: DeriveStatus(order.Payments),
		State:         StateOf(order.Payments),
		Chain:         BuildChain(order.Payments),
		Integrity:     VerifyChain(order.ID, order.Payments),
	}, nil
}
