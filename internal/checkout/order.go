package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/cart"
)

// Order is the snapshot handed to the gateway when the wizard confirms.
type Order struct {
	ID        string
	Lines     []cart.Line
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	PromoCode string
	Shipping  ShippingInfo
	Method    PaymentMethod
	CreatedAt time.Time
}

// Submitter places an order with the payment backend.
type Submitter interface {
	Submit(ctx context.Context, o *Order) error
}

// SimulatedGateway is a Submitter that approves every order after a fixed
// delay. The delay respects context cancellation, so an order abandoned by
// a closing session does not leak a sleeping goroutine.
type SimulatedGateway struct {
	delay time.Duration
}

// NewSimulatedGateway returns a gateway that waits delay before approving.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay}
}

// Submit waits out the configured delay and approves the order.
func (g *SimulatedGateway) Submit(ctx context.Context, _ *Order) error {
	if g.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
