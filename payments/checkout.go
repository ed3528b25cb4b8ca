package payments

import (
	"context"
	"strconv"
	"strings"

	"github.com/Govind-619/JewelSphere/events"
	"github.com/Govind-619/JewelSphere/models"
	"github.com/Govind-619/JewelSphere/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits the numeric(14,2) amount columns.
var maxAmount = decimal.New(1, 12)

type CheckoutItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

type CheckoutInput struct {
	Customer      models.CustomerInfo
	Items         []CheckoutItem
	Currency      string
	PaymentMethod string
}

type CheckoutResult struct {
	Order       *models.Order
	PaymentLink string
}

// Checkout creates an order together with its root payment attempt and opens
// that attempt with the gateway. When the gateway refuses or times out the
// order still exists, with a FAILED root attempt; the result is returned
// alongside the error so the caller can offer a retry.
func (s *Service) Checkout(ctx context.Context, actor models.Identity, in CheckoutInput) (*CheckoutResult, error) {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = s.defaultCurrency
	}
	if err := validateCheckout(in, currency); err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:            uuid.NewString(),
		CustomerName:  strings.TrimSpace(in.Customer.Name),
		CustomerEmail: strings.TrimSpace(in.Customer.Email),
		CustomerPhone: strings.TrimSpace(in.Customer.Phone),
		Currency:      currency,
		Status:        models.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !actor.Anonymous() {
		userID := actor.UserID
		order.UserID = &userID
	}

	total := decimal.Zero
	for i, item := range in.Items {
		line := models.OrderItem{
			Position:    i + 1,
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Price:       item.UnitPrice,
			Quantity:    item.Quantity,
		}
		total = total.Add(line.LineTotal())
		order.OrderItems = append(order.OrderItems, line)
	}
	order.Amount = total

	method := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = s.gateway.Name()
	}
	initial := s.newAttempt(order, method, nil)

	created, err := s.store.CreateOrder(ctx, order, initial)
	if err != nil {
		utils.LogError("Failed to create order for %s: %v", order.CustomerEmail, err)
		return nil, err
	}
	utils.LogInfo("Created order %s (%s %s) with payment %s", created.ID, created.Amount.StringFixed(2), created.Currency, initial.ID)
	s.publish(ctx, events.OrderCreated, created.ID, created)
	s.publish(ctx, events.PaymentAttemptCreated, created.ID, initial)

	link, err := s.startAttempt(ctx, created, initial)
	if err != nil {
		if reloaded, rerr := s.store.GetOrder(ctx, created.ID); rerr == nil {
			created = reloaded
		}
		return &CheckoutResult{Order: created}, err
	}
	return &CheckoutResult{Order: created, PaymentLink: link}, nil
}

func validateCheckout(in CheckoutInput, currency string) error {
	fields := map[string]string{}
	check := func(field string, valid bool, msg string) {
		if !valid {
			fields[field] = msg
		}
	}

	valid, msg := utils.ValidateName(in.Customer.Name)
	check("customer.name", valid, msg)
	valid, msg = utils.ValidateEmail(strings.TrimSpace(in.Customer.Email))
	check("customer.email", valid, msg)
	valid, msg = utils.ValidatePhone(strings.TrimSpace(in.Customer.Phone))
	check("customer.phone", valid, msg)
	valid, msg = utils.ValidateCurrency(currency)
	check("currency", valid, msg)

	if len(in.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	total := decimal.Zero
	for i, item := range in.Items {
		prefix := "items[" + strconv.Itoa(i) + "]"
		valid, msg = utils.ValidateProductID(strings.TrimSpace(item.ProductID))
		check(prefix+".product_id", valid, msg)
		if item.Name != "" {
			valid, msg = utils.ValidateXSS(item.Name)
			check(prefix+".name", valid, msg)
		}
		if item.Quantity < 1 {
			fields[prefix+".quantity"] = "must be at least 1"
		}
		switch {
		case !item.UnitPrice.IsPositive():
			fields[prefix+".unit_price"] = "must be greater than 0"
		case !item.UnitPrice.Equal(item.UnitPrice.Round(2)):
			fields[prefix+".unit_price"] = "must not have more than 2 decimal places"
		case item.UnitPrice.GreaterThanOrEqual(maxAmount):
			fields[prefix+".unit_price"] = "is too large"
		}
		if item.Quantity > 0 {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if total.GreaterThanOrEqual(maxAmount) {
		fields["amount"] = "order total is too large"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
