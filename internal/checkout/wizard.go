// Package checkout implements the multi-step checkout wizard: a linear
// state machine collecting shipping and payment data, validating promo
// codes, and submitting the order snapshot to a payment gateway.
package checkout

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/cart"
)

// State identifies the wizard's current step.
type State string

const (
	StateShipping   State = "shipping"
	StatePayment    State = "payment"
	StateConfirming State = "confirming"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// PaymentMethod discriminates the supported payment variants.
type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "credit_card"
	// MethodBoleto is a Brazilian payment slip; it requires no extra fields.
	MethodBoleto PaymentMethod = "boleto"
)

// ShippingInfo holds the identification and delivery fields of step one.
type ShippingInfo struct {
	FullName string
	Email    string
	CPF      string
	Address  string
	City     string
	State    string
	ZipCode  string
}

// PaymentInfo holds the payment fields of step two. Card fields are only
// required when Method is MethodCreditCard.
type PaymentInfo struct {
	Method     PaymentMethod
	CardNumber string
	CardName   string
	CardExpiry string
	CardCVV    string
	PromoCode  string
}

// ErrEmptyCart rejects a submission with no line items.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError lists the required fields missing from a step submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// TransitionError reports an action attempted from the wrong state.
type TransitionError struct {
	From   State
	Action string
}

func (e *TransitionError) Error() string {
	return "cannot " + e.Action + " from state " + string(e.From)
}

// Wizard is the checkout state machine. It is not safe for concurrent use;
// the owning session serializes access.
type Wizard struct {
	cart     *cart.Cart
	promos   *PromoSet
	gateway  Submitter
	lg       *zap.Logger
	onPlaced func(*Order)

	state      State
	shipping   ShippingInfo
	payment    PaymentInfo
	order      *Order
	failReason string
}

// New creates a wizard at the Shipping step. onPlaced, when non-nil, runs
// after a successful submission with the placed order.
func New(c *cart.Cart, promos *PromoSet, gateway Submitter, lg *zap.Logger, onPlaced func(*Order)) *Wizard {
	return &Wizard{
		cart:     c,
		promos:   promos,
		gateway:  gateway,
		lg:       lg,
		onPlaced: onPlaced,
		state:    StateShipping,
	}
}

// State returns the current step.
func (w *Wizard) State() State { return w.state }

// Shipping returns the shipping fields entered so far.
func (w *Wizard) Shipping() ShippingInfo { return w.shipping }

// Payment returns the payment fields entered so far.
func (w *Wizard) Payment() PaymentInfo { return w.payment }

// Order returns the placed order after a successful submission, or nil.
func (w *Wizard) Order() *Order { return w.order }

// FailureReason returns the gateway error text after a failed submission.
func (w *Wizard) FailureReason() string { return w.failReason }

// Submitting reports whether a submission is in flight.
func (w *Wizard) Submitting() bool { return w.state == StateConfirming }

// SubmitShipping stores the shipping fields and advances to Payment. Every
// field is required; a ValidationError leaves the state and previously
// stored values untouched.
func (w *Wizard) SubmitShipping(info ShippingInfo) error {
	if w.state != StateShipping {
		return &TransitionError{From: w.state, Action: "submit shipping"}
	}
	missing := requiredFields(map[string]string{
		"fullName": info.FullName,
		"email":    info.Email,
		"cpf":      info.CPF,
		"address":  info.Address,
		"city":     info.City,
		"state":    info.State,
		"zipCode":  info.ZipCode,
	})
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	w.shipping = info
	w.state = StatePayment
	return nil
}

// Back returns from Payment to Shipping, preserving everything entered.
func (w *Wizard) Back() error {
	if w.state != StatePayment {
		return &TransitionError{From: w.state, Action: "go back"}
	}
	w.state = StateShipping
	return nil
}

// Retry returns from Failed to Payment so the visitor can resubmit.
func (w *Wizard) Retry() error {
	if w.state != StateFailed {
		return &TransitionError{From: w.state, Action: "retry"}
	}
	w.failReason = ""
	w.state = StatePayment
	return nil
}

// SubmitPayment validates the payment fields, snapshots the cart, and
// submits the order through the gateway. On success the wizard enters
// Success, the cart is cleared, and onPlaced fires. On gateway failure the
// wizard enters Failed, keeping all entered data for Retry.
func (w *Wizard) SubmitPayment(ctx context.Context, info PaymentInfo) (*Order, error) {
	if w.state != StatePayment {
		return nil, &TransitionError{From: w.state, Action: "submit payment"}
	}
	if err := validatePayment(info); err != nil {
		return nil, err
	}

	lines := w.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := w.cart.Total()
	discount := decimal.Zero
	if info.PromoCode != "" {
		d, err := w.promos.Validate(info.PromoCode, lines)
		if err != nil {
			return nil, errors.Wrap(err, "validate promo")
		}
		discount = d.Amount
	}

	// Total = subtotal - discount, floored at zero and rounded to 2 places.
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:        uuid.New().String(),
		Lines:     lines,
		Subtotal:  subtotal.Round(2),
		Discount:  discount.Round(2),
		Total:     total.Round(2),
		PromoCode: info.PromoCode,
		Shipping:  w.shipping,
		Method:    info.Method,
		CreatedAt: time.Now().UTC(),
	}

	w.payment = info
	w.state = StateConfirming

	ctx, span := otel.Tracer("checkout").Start(ctx, "checkout.submit")
	err := w.gateway.Submit(ctx, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submit order")
	}
	span.End()

	if err != nil {
		w.state = StateFailed
		w.failReason = err.Error()
		w.lg.Warn("Order submission failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "submit order")
	}

	w.order = o
	w.state = StateSuccess
	w.cart.Clear()
	w.lg.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
		zap.String("method", string(o.Method)),
	)
	if w.onPlaced != nil {
		w.onPlaced(o)
	}
	return o, nil
}

func validatePayment(info PaymentInfo) error {
	switch info.Method {
	case MethodBoleto:
		return nil
	case MethodCreditCard:
		missing := requiredFields(map[string]string{
			"cardNumber": info.CardNumber,
			"cardName":   info.CardName,
			"cardExpiry": info.CardExpiry,
			"cardCvv":    info.CardCVV,
		})
		if len(missing) > 0 {
			return &ValidationError{Fields: missing}
		}
		return nil
	default:
		return &ValidationError{Fields: []string{"paymentMethod"}}
	}
}

func requiredFields(fields map[string]string) []string {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	// Map iteration order is random; keep the error stable.
	slices.Sort(missing)
	return missing
}
