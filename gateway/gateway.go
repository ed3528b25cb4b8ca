// Package gateway talks to the third-party payment processor.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/Govind-619/JewelSphere/models"
	"github.com/shopspring/decimal"
)

var (
	ErrTimeout               = errors.New("payment gateway did not respond in time")
	ErrInvalidSignature      = errors.New("invalid gateway signature")
	ErrUnsupportedEvent      = errors.New("unsupported gateway event")
	ErrMalformedNotification = errors.New("malformed gateway notification")
)

// InitiateRequest describes one payment attempt to open with the processor.
type InitiateRequest struct {
	Amount      decimal.Decimal
	Currency    string
	TxRef       string
	Customer    models.CustomerInfo
	Description string
}

// InitiateResult is the processor's synchronous answer. An accepted attempt
// carries the link the customer follows to complete payment.
type InitiateResult struct {
	Accepted bool
	Link     string
	Reason   string
}

// Rejected builds a refused result.
func Rejected(reason string) InitiateResult {
	return InitiateResult{Accepted: false, Reason: reason}
}

// Notification is an asynchronous final outcome reported by the processor.
type Notification struct {
	TxRef         string
	Status        models.PaymentStatus
	TransactionID *string
}

// Gateway is implemented by every processor adapter.
type Gateway interface {
	Name() string
	// Initiate opens a transaction. Refusals are reported through
	// InitiateResult; the error is reserved for timeouts and cancellation.
	Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error)
	// ParseNotification authenticates and decodes a callback body.
	ParseNotification(header http.Header, body []byte) (Notification, error)
}

// MinorUnits converts an amount to the smallest currency unit (paise, cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func verifySignature(body []byte, secret, signature string) error {
	if secret == "" {
		return nil
	}
	if signature == "" || !hmac.Equal([]byte(Sign(body, secret)), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
