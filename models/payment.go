package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusSuccessful PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	// PaymentStatusNone is only ever derived, for an order with no attempts.
	PaymentStatusNone PaymentStatus = "NONE"
)

// Terminal reports whether s is a final gateway outcome.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccessful || s == PaymentStatusFailed
}

// Payment is a single attempt at charging an order. Attempts are never
// deleted; a retry points at the attempt it supersedes through RetryOfPaymentID.
type Payment struct {
	ID      string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID string `gorm:"type:varchar(36);not null;index;uniqueIndex:ux_payments_pending_order,where:status = 'PENDING'" json:"order_id"`
	// At most one PENDING attempt per order is enforced by the partial unique index above.
	Status           PaymentStatus   `gorm:"type:varchar(16);not null" json:"status"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Currency         string          `gorm:"type:char(3);not null" json:"currency"`
	PaymentMethod    string          `gorm:"type:varchar(64)" json:"payment_method"`
	TxRef            string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"tx_ref"`
	TransactionID    *string         `gorm:"type:varchar(128)" json:"transaction_id,omitempty"`
	RetryOfPaymentID *string         `gorm:"type:varchar(36);index" json:"retry_of_payment_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsRetry reports whether the attempt supersedes an earlier one.
func (p *Payment) IsRetry() bool {
	return p.RetryOfPaymentID != nil
}

// MatchesOrder reports whether the attempt charges exactly the order's total.
func (p *Payment) MatchesOrder(o *Order) bool {
	return p.OrderID == o.ID && p.Currency == o.Currency && p.Amount.Equal(o.Amount)
}
