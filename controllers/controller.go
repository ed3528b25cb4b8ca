package controllers

import (
	"context"
	"net/http"

	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/payments"
	"github.com/Govind-619/JewelSphere/repository"
)

// PaymentService is the order payment core the handlers drive.
type PaymentService interface {
	GatewayName() string
	Checkout(ctx context.Context, actor models.Identity, in payments.CheckoutInput) (*payments.CheckoutResult, error)
	GetOrder(ctx context.Context, actor models.Identity, id string) (*payments.OrderView, error)
	ListOrders(ctx context.Context, actor models.Identity, filter repository.OrderFilter) ([]payments.OrderView, int64, error)
	GetChain(ctx context.Context, actor models.Identity, id string) (*payments.ChainView, error)
	RetryPayment(ctx context.Context, actor models.Identity, orderID string) (*payments.RetryResult, error)
	ParseNotification(provider string, header http.Header, body []byte) (gateway.Notification, error)
	ResolvePayment(ctx context.Context, n gateway.Notification) (*payments.Resolution, error)
	SimulateOutcome(ctx context.Context, txRef, outcome string) (*payments.Resolution, error)
	UpdateOrderStatus(ctx context.Context, actor models.Identity, id string, status models.OrderStatus) (*payments.OrderView, error)
}

// Controller holds the HTTP handlers of the order and payment API.
type Controller struct {
	payments PaymentService
}

func NewController(svc PaymentService) *Controller {
	return &Controller{payments: svc}
}
