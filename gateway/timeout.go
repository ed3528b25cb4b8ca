package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type boundedGateway struct {
	Gateway
	timeout time.Duration
}

// WithTimeout bounds every Initiate call of g by d. The inner call runs on
// its own goroutine so adapters whose client ignores the context are bounded
// too. Expiry is reported as ErrTimeout.
func WithTimeout(g Gateway, d time.Duration) Gateway {
	if d <= 0 {
		return g
	}
	return &boundedGateway{Gateway: g, timeout: d}
}

type initiateOutcome struct {
	result InitiateResult
	err    error
}

func (b *boundedGateway) Initiate(ctx context.Context, req InitiateRequest) (InitiateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan initiateOutcome, 1)
	go func() {
		res, err := b.Gateway.Initiate(ctx, req)
		done <- initiateOutcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) {
			return InitiateResult{}, fmt.Errorf("%w: %v", ErrTimeout, out.err)
		}
		return out.result, out.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return InitiateResult{}, fmt.Errorf("%w after %s", ErrTimeout, b.timeout)
		}
		return InitiateResult{}, ctx.Err()
	}
}
