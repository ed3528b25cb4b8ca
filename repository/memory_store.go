package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Govind-619/JewelSphere/models"
)

// MemoryStore keeps orders and payments in process memory. It backs the
// DB_DRIVER=memory development mode and the service tests. Writes inside
// InOrderScope are applied immediately; there is no rollback.
type MemoryStore struct {
	mu       sync.RWMutex
	orders   map[string]*models.Order
	payments map[string]*models.Payment
	byTxRef  map[string]string

	scopeMu sync.Mutex
	scopes  map[string]*sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:   make(map[string]*models.Order),
		payments: make(map[string]*models.Payment),
		byTxRef:  make(map[string]string),
		scopes:   make(map[string]*sync.Mutex),
	}
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *models.Order, initial *models.Payment) (*models.Order, error) {
	if initial == nil || initial.RetryOfPaymentID != nil {
		return nil, ErrChainMismatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byTxRef[initial.TxRef]; ok {
		return nil, ErrPendingAttemptExists
	}

	now := time.Now()
	stamp(&order.CreatedAt, &order.UpdatedAt, now)
	for i := range order.OrderItems {
		order.OrderItems[i].ID = uint(i + 1)
		order.OrderItems[i].OrderID = order.ID
	}
	initial.OrderID = order.ID
	stamp(&initial.CreatedAt, &initial.UpdatedAt, now)

	stored := *order
	stored.OrderItems = append([]models.OrderItem(nil), order.OrderItems...)
	stored.Payments = nil
	s.orders[order.ID] = &stored

	p := *initial
	s.payments[p.ID] = &p
	s.byTxRef[p.TxRef] = p.ID

	order.Payments = []models.Payment{*initial}
	return order, nil
}

func (s *MemoryStore) CreatePaymentAttempt(_ context.Context, orderID string, payment *models.Payment) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return nil, ErrNotFound
	}
	for _, p := range s.payments {
		if p.OrderID == orderID && p.Status == models.PaymentStatusPending {
			return nil, ErrPendingAttemptExists
		}
	}
	if payment.RetryOfPaymentID == nil {
		return nil, ErrChainMismatch
	}
	parent, ok := s.payments[*payment.RetryOfPaymentID]
	if !ok || parent.OrderID != orderID {
		return nil, ErrChainMismatch
	}
	if _, ok := s.byTxRef[payment.TxRef]; ok {
		return nil, ErrPendingAttemptExists
	}

	payment.OrderID = orderID
	stamp(&payment.CreatedAt, &payment.UpdatedAt, time.Now())
	p := *payment
	s.payments[p.ID] = &p
	s.byTxRef[p.TxRef] = p.ID
	return payment, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.assemble(o), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Order
	for _, o := range s.orders {
		if filter.UserID != "" && !o.OwnedBy(filter.UserID) {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	orders := make([]models.Order, 0, len(matched))
	for _, o := range matched {
		orders = append(orders, *s.assemble(o))
	}
	return orders, total, nil
}

func (s *MemoryStore) ListPaymentsForOrder(_ context.Context, orderID string) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paymentsOf(orderID), nil
}

func (s *MemoryStore) GetPaymentByTxRef(_ context.Context, txRef string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byTxRef[txRef]
	if !ok {
		return nil, ErrNotFound
	}
	p := *s.payments[id]
	return &p, nil
}

func (s *MemoryStore) UpdatePaymentStatus(_ context.Context, paymentID string, status models.PaymentStatus, transactionID *string) (*models.Payment, error) {
	if !status.Terminal() {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Status != models.PaymentStatusPending {
		current := *p
		return &current, ErrAlreadyResolved
	}

	p.Status = status
	if transactionID != nil {
		id := *transactionID
		p.TransactionID = &id
	}
	p.UpdatedAt = time.Now()
	updated := *p
	return &updated, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	s.mu.Unlock()

	return s.GetOrder(ctx, orderID)
}

func (s *MemoryStore) InOrderScope(ctx context.Context, orderID string, fn func(Store) error) error {
	lock := s.scopeFor(orderID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return err
	}
	return fn(scopedMemoryStore{s})
}

func (s *MemoryStore) scopeFor(orderID string) *sync.Mutex {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()

	lock, ok := s.scopes[orderID]
	if !ok {
		lock = &sync.Mutex{}
		s.scopes[orderID] = lock
	}
	return lock
}

// assemble copies the stored order and attaches its payments. Callers hold mu.
func (s *MemoryStore) assemble(o *models.Order) *models.Order {
	out := *o
	out.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	out.Payments = s.paymentsOf(o.ID)
	return &out
}

func (s *MemoryStore) paymentsOf(orderID string) []models.Payment {
	payments := []models.Payment{}
	for _, p := range s.payments {
		if p.OrderID == orderID {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].ID < payments[j].ID
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments
}

// scopedMemoryStore is handed to InOrderScope callbacks; the scope lock is
// already held, so a nested InOrderScope runs fn directly.
type scopedMemoryStore struct {
	*MemoryStore
}

func (s scopedMemoryStore) InOrderScope(_ context.Context, _ string, fn func(Store) error) error {
	return fn(s)
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}
