package payments

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/gateway"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// tickingClock advances one second on every reading.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// blockingGateway never answers until the context ends.
type blockingGateway struct {
	gateway.Gateway
}

func (blockingGateway) Initiate(ctx context.Context, _ gateway.InitiateRequest) (gateway.InitiateResult, error) {
	<-ctx.Done()
	return gateway.InitiateResult{}, ctx.Err()
}

// countingGateway records every request it accepts.
type countingGateway struct {
	*gateway.Simulator
	mu       sync.Mutex
	requests []gateway.InitiateRequest
}

func (g *countingGateway) Initiate(ctx context.Context, req gateway.InitiateRequest) (gateway.InitiateResult, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return g.Simulator.Initiate(ctx, req)
}

type fixture struct {
	svc       *Service
	store     *repository.MemoryStore
	publisher *events.MemoryPublisher
	clock     *tickingClock
	sim       *gateway.Simulator
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithGateway(t, nil, opts...)
}

func newFixtureWithGateway(t *testing.T, gw gateway.Gateway, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:     repository.NewMemoryStore(),
		publisher: &events.MemoryPublisher{},
		clock:     newTickingClock(),
		sim:       gateway.NewSimulator("http://shop.test", "secret"),
	}
	if gw == nil {
		gw = f.sim
	}
	all := append([]Option{WithPublisher(f.publisher), WithClock(f.clock.Now)}, opts...)
	f.svc = NewService(f.store, gw, all...)
	return f
}

// seedOrder stores an order whose retry chain has one attempt per status,
// oldest first. Every attempt but the last must be resolved.
func (f *fixture) seedOrder(t *testing.T, owner *string, statuses ...models.PaymentStatus) *models.Order {
	t.Helper()
	ctx := context.Background()

	now := f.clock.Now()
	order := &models.Order{
		ID:            "order-" + NewTxRef(now)[12:],
		UserID:        owner,
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+919800000000",
		Amount:        decimal.RequireFromString("1250.00"),
		Currency:      "INR",
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		OrderItems: []models.OrderItem{
			{Position: 1, ProductID: "ring-22k", ProductName: "22K gold ring", Price: decimal.RequireFromString("1250.00"), Quantity: 1},
		},
	}

	var prev *models.Payment
	for i, status := range statuses {
		attempt := f.svc.newAttempt(order, "card", prev)
		if i == 0 {
			_, err := f.store.CreateOrder(ctx, order, attempt)
			require.NoError(t, err)
		} else {
			_, err := f.store.CreatePaymentAttempt(ctx, order.ID, attempt)
			require.NoError(t, err)
		}
		if status != models.PaymentStatusPending {
			_, err := f.store.UpdatePaymentStatus(ctx, attempt.ID, status, nil)
			require.NoError(t, err)
		}
		prev = attempt
	}

	stored, err := f.store.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	return stored
}

func (f *fixture) payments(t *testing.T, orderID string) []models.Payment {
	t.Helper()
	list, err := f.store.ListPaymentsForOrder(context.Background(), orderID)
	require.NoError(t, err)
	return list
}

func countStatus(list []models.Payment, status models.PaymentStatus) int {
	n := 0
	for _, p := range list {
		if p.Status == status {
			n++
		}
	}
	return n
}

func strPtr(s string) *string { return &s }

var (
	guest    = models.Identity{}
	admin    = models.Identity{UserID: "admin-1", Role: models.RoleAdmin}
	customer = models.Identity{UserID: "user-7", Role: models.RoleCustomer}
	stranger = models.Identity{UserID: "user-8", Role: models.RoleCustomer}
)
