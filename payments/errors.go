package payments

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyPaid         = errors.New("order has already been paid")
	ErrAttemptInProgress   = errors.New("a payment attempt is already in progress for this order")
	ErrInvalidOrderState   = errors.New("order is not in a state that allows a payment attempt")
	ErrGatewayRejected     = errors.New("payment gateway rejected the attempt")
	ErrGatewayTimeout      = errors.New("payment gateway timed out")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCheckout     = errors.New("invalid checkout request")
	ErrInvalidTransition   = errors.New("order status transition not allowed")
	ErrInvalidNotification = errors.New("invalid gateway notification")
)

// GatewayRejectedError carries the processor's reason for refusing an attempt.
type GatewayRejectedError struct {
	PaymentID string
	Reason    string
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGatewayRejected.Error(), e.Reason)
}

func (e *GatewayRejectedError) Is(target error) bool {
	return target == ErrGatewayRejected
}

// GatewayTimeoutError reports an attempt abandoned because the processor did
// not answer in time. The attempt has been marked FAILED and may be retried.
type GatewayTimeoutError struct {
	PaymentID string
	Err       error
}

func (e *GatewayTimeoutError) Error() string {
	return fmt.Sprintf("%s: %v", ErrGatewayTimeout.Error(), e.Err)
}

func (e *GatewayTimeoutError) Is(target error) bool {
	return target == ErrGatewayTimeout
}

func (e *GatewayTimeoutError) Unwrap() error {
	return e.Err
}

// ValidationError lists the fields of a rejected checkout request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", ErrInvalidCheckout.Error(), len(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidCheckout
}
