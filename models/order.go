package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of an order. It is distinct from the
// payment status, which is always derived from the order's payment attempts.
type OrderStatus string

// Order status constants
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID string `gorm:"type:varchar(36);primaryKey" json:"id"`
	// UserID links the order to a registered account. Guest checkouts leave it nil.
	UserID        *string         `gorm:"type:varchar(64);index" json:"user_id,omitempty"`
	CustomerName  string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string          `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string          `gorm:"type:varchar(32)" json:"customer_phone"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency      string          `gorm:"type:char(3);not null" json:"currency"`
	Status        OrderStatus     `gorm:"type:varchar(16);not null;default:'PENDING'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	OrderItems    []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Payments      []Payment       `gorm:"foreignKey:OrderID" json:"payments"`
}

// OrderItem is a line item holding the product snapshot taken at purchase time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	Position    int             `gorm:"not null" json:"position"`
	ProductID   string          `gorm:"type:varchar(64);not null" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255)" json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

// LineTotal returns price multiplied by quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CustomerInfo is the purchaser snapshot handed to the payment gateway.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Customer returns the purchaser snapshot stored on the order.
func (o *Order) Customer() CustomerInfo {
	return CustomerInfo{Name: o.CustomerName, Email: o.CustomerEmail, Phone: o.CustomerPhone}
}

// OwnedBy reports whether the order is bound to the given account.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID != nil && *o.UserID == userID
}
