package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/google/uuid"
)

const (
	DefaultGatewayTimeout = 10 * time.Second
	// abandonTimeout bounds the write that fails an attempt after the
	// gateway call went wrong; it runs even if the request was cancelled.
	abandonTimeout = 5 * time.Second
)

// Service is the only writer of payment attempts. Every read-decide-write
// sequence on an order runs under the order's lock and inside one store scope.
type Service struct {
	store           repository.Store
	gateway         gateway.Gateway
	locker          Locker
	publisher       events.Publisher
	now             func() time.Time
	gatewayTimeout  time.Duration
	defaultCurrency string
}

type Option func(*Service)

func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithGatewayTimeout(d time.Duration) Option {
	return func(s *Service) { s.gatewayTimeout = d }
}

func WithDefaultCurrency(currency string) Option {
	return func(s *Service) { s.defaultCurrency = strings.ToUpper(currency) }
}

func NewService(store repository.Store, gw gateway.Gateway, opts ...Option) *Service {
	s := &Service{
		store:           store,
		locker:          NewLocalLocker(),
		publisher:       events.LogPublisher{},
		now:             time.Now,
		gatewayTimeout:  DefaultGatewayTimeout,
		defaultCurrency: "INR",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gateway = gateway.WithTimeout(gw, s.gatewayTimeout)
	return s
}

// GatewayName reports which processor the service initiates attempts with.
func (s *Service) GatewayName() string {
	return s.gateway.Name()
}

// ParseNotification decodes a callback body with the configured processor.
func (s *Service) ParseNotification(provider string, header http.Header, body []byte) (gateway.Notification, error) {
	if provider != s.gateway.Name() {
		return gateway.Notification{}, fmt.Errorf("%w: unknown provider %q", ErrInvalidNotification, provider)
	}
	n, err := s.gateway.ParseNotification(header, body)
	if err != nil {
		return gateway.Notification{}, fmt.Errorf("%w: %w", ErrInvalidNotification, err)
	}
	return n, nil
}

// withOrder serialises fn against every other writer of the order.
func (s *Service) withOrder(ctx context.Context, orderID string, fn func(repository.Store) error) error {
	unlock, err := s.locker.Lock(ctx, "order:"+orderID)
	if err != nil {
		return fmt.Errorf("lock order %s: %w", orderID, err)
	}
	defer unlock()

	err = s.store.InOrderScope(ctx, orderID, fn)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// newAttempt builds a PENDING attempt charging the order's full amount.
func (s *Service) newAttempt(order *models.Order, method string, retryOf *models.Payment) *models.Payment {
	now := s.now()
	p := &models.Payment{
		ID:            uuid.NewString(),
		OrderID:       order.ID,
		Status:        models.PaymentStatusPending,
		Amount:        order.Amount,
		Currency:      order.Currency,
		PaymentMethod: method,
		TxRef:         NewTxRef(now),
	}
	if retryOf != nil {
		id := retryOf.ID
		p.RetryOfPaymentID = &id
		if !now.After(retryOf.CreatedAt) {
			now = retryOf.CreatedAt.Add(time.Microsecond)
		}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p
}

// NewTxRef generates the externally visible reference of an attempt.
func NewTxRef(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:16]
	return fmt.Sprintf("JS-%s-%s", now.UTC().Format("20060102"), suffix)
}

// startAttempt opens a committed PENDING attempt with the gateway. Any
// outcome other than an accepted link fails the attempt before returning, so
// the order never stays in flight without a way to retry.
func (s *Service) startAttempt(ctx context.Context, order *models.Order, attempt *models.Payment) (string, error) {
	res, err := s.gateway.Initiate(ctx, gateway.InitiateRequest{
		Amount:      attempt.Amount,
		Currency:    attempt.Currency,
		TxRef:       attempt.TxRef,
		Customer:    order.Customer(),
		Description: fmt.Sprintf("Order %s", order.ID),
	})
	if err != nil {
		utils.LogError("Gateway initiate failed for payment %s (order %s): %v", attempt.ID, order.ID, err)
		s.abandon(ctx, order.ID, attempt.ID)
		return "", &GatewayTimeoutError{PaymentID: attempt.ID, Err: err}
	}
	if !res.Accepted || res.Link == "" {
		reason := res.Reason
		if reason == "" {
			reason = "gateway returned no payment link"
		}
		utils.LogError("Gateway rejected payment %s (order %s): %s", attempt.ID, order.ID, reason)
		s.abandon(ctx, order.ID, attempt.ID)
		return "", &GatewayRejectedError{PaymentID: attempt.ID, Reason: reason}
	}

	utils.LogInfo("Gateway accepted payment %s (order %s), tx_ref %s", attempt.ID, order.ID, attempt.TxRef)
	return res.Link, nil
}

// abandon marks an attempt FAILED after the gateway call did not succeed.
// A callback that already resolved the attempt wins.
func (s *Service) abandon(ctx context.Context, orderID, paymentID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), abandonTimeout)
	defer cancel()

	var resolved *models.Payment
	err := s.withOrder(ctx, orderID, func(st repository.Store) error {
		p, err := st.UpdatePaymentStatus(ctx, paymentID, models.PaymentStatusFailed, nil)
		if errors.Is(err, repository.ErrAlreadyResolved) {
			utils.LogInfo("Payment %s already resolved as %s before it could be abandoned", paymentID, p.Status)
			return nil
		}
		if err != nil {
			return err
		}
		resolved = p
		return nil
	})
	if err != nil {
		utils.LogError("Failed to mark payment %s as FAILED: %v", paymentID, err)
		return
	}
	if resolved != nil {
		utils.LogInfo("Payment %s marked FAILED", paymentID)
		s.publish(ctx, events.PaymentResolved, orderID, resolved)
	}
}

func (s *Service) publish(ctx context.Context, eventType, orderID string, data interface{}) {
	event := events.Event{Type: eventType, OrderID: orderID, OccurredAt: s.now(), Data: data}
	if err := s.publisher.Publish(ctx, event); err != nil {
		utils.LogError("Failed to publish %s for order %s: %v", eventType, orderID, err)
	}
}
