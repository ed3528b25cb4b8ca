// Package repository persists orders and their payment attempts.
package repository

import (
	"context"
	"errors"

	"github.com/Govind-619/JewelSphere/models"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrPendingAttemptExists = errors.New("a pending payment attempt already exists for this order")
	ErrChainMismatch        = errors.New("payment attempt does not extend this order's retry chain")
	ErrAlreadyResolved      = errors.New("payment attempt already resolved")
	ErrInvalidStatus        = errors.New("invalid status")
)

// OrderFilter narrows ListOrders. A zero Limit means no limit.
type OrderFilter struct {
	UserID string
	Limit  int
	Offset int
}

// Store is the order and payment record store. Amounts, currencies, line
// items and the identity fields of a payment are written once at creation;
// no method updates them afterwards.
type Store interface {
	// CreateOrder persists the order, its items and its root payment attempt atomically.
	CreateOrder(ctx context.Context, order *models.Order, initial *models.Payment) (*models.Order, error)
	// CreatePaymentAttempt adds a retry attempt. It fails with ErrPendingAttemptExists
	// while another attempt of the order is still PENDING.
	CreatePaymentAttempt(ctx context.Context, orderID string, payment *models.Payment) (*models.Payment, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	ListPaymentsForOrder(ctx context.Context, orderID string) ([]models.Payment, error)
	GetPaymentByTxRef(ctx context.Context, txRef string) (*models.Payment, error)
	// UpdatePaymentStatus moves a PENDING attempt to a terminal status exactly once.
	UpdatePaymentStatus(ctx context.Context, paymentID string, status models.PaymentStatus, transactionID *string) (*models.Payment, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	// InOrderScope runs fn with exclusive access to the order. Writes made
	// through the Store passed to fn commit together or not at all.
	InOrderScope(ctx context.Context, orderID string, fn func(Store) error) error
}
