package wizard

import (
	"context"
	"fmt"
	"time"

	"carrental/internal/domain"
)

// SimulatedPaymentProcessor stands in for a gateway: it waits a fixed delay
// and accepts every well-formed request.
type SimulatedPaymentProcessor struct {
	delay time.Duration
}

func NewSimulatedPaymentProcessor(delay time.Duration) *SimulatedPaymentProcessor {
	return &SimulatedPaymentProcessor{delay: delay}
}

func (p *SimulatedPaymentProcessor) Process(ctx context.Context, req domain.PaymentRequest) error {
	if req.Amount < 0 {
		return fmt.Errorf("amount %.2f: %w", req.Amount, domain.ErrInvalidInput)
	}
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
