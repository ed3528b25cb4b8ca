// Package payments reconciles orders with their payment attempts: it derives
// the effective payment status, coordinates retries and applies the
// processor's asynchronous outcomes.
package payments

import "github.com/Govind-619/JewelSphere/models"

// DeriveStatus computes an order's payment status from its attempts.
// Success is sticky: one SUCCESSFUL attempt wins over any number of failed or
// pending ones. Otherwise any PENDING attempt makes the order PENDING, a
// non-empty set of failures is FAILED, and no attempts at all is NONE.
//
// The result is never stored; callers derive it again from the attempts.
func DeriveStatus(attempts []models.Payment) models.PaymentStatus {
	pending := false
	for _, p := range attempts {
		switch p.Status {
		case models.PaymentStatusSuccessful:
			return models.PaymentStatusSuccessful
		case models.PaymentStatusPending:
			pending = true
		}
	}
	switch {
	case pending:
		return models.PaymentStatusPending
	case len(attempts) > 0:
		return models.PaymentStatusFailed
	}
	return models.PaymentStatusNone
}
