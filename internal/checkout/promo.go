package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/cart"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercentage applies a percentage-based discount to the subtotal.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed applies a fixed monetary discount capped at the subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountFreeLowest removes the cost of one unit of the cheapest item.
	DiscountFreeLowest DiscountType = "free_lowest"
)

// ErrInvalidPromo is returned when a promo code is unknown or the cart does
// not satisfy the code's minimum item requirement.
var ErrInvalidPromo = errors.New("invalid promo code")

// PromoRule defines a promo code's discount behaviour and eligibility.
type PromoRule struct {
	Code        string
	Type        DiscountType
	Value       decimal.Decimal
	MinItems    int
	Description string
}

// Discount holds a computed discount amount and its description.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// PromoSet validates promo codes against a fixed in-memory rule set.
type PromoSet struct {
	rules map[string]PromoRule
}

// NewPromoSet builds a PromoSet from the given rules.
func NewPromoSet(rules ...PromoRule) *PromoSet {
	m := make(map[string]PromoRule, len(rules))
	for _, r := range rules {
		m[r.Code] = r
	}
	return &PromoSet{rules: m}
}

// DefaultPromoRules returns the promo codes the storefront ships with.
func DefaultPromoRules() []PromoRule {
	return []PromoRule{
		{
			Code:        "AQUILA10",
			Type:        DiscountPercentage,
			Value:       decimal.NewFromInt(10),
			Description: "10% de desconto em todo o pedido",
		},
		{
			Code:        "BEMVINDA15",
			Type:        DiscountFixed,
			Value:       decimal.NewFromInt(15),
			Description: "R$ 15 de desconto na primeira compra",
		},
		{
			Code:        "LEVE3PAGUE2",
			Type:        DiscountFreeLowest,
			Value:       decimal.Zero,
			MinItems:    3,
			Description: "A peça mais barata sai de graça",
		},
	}
}

// Validate looks up code and computes its discount for the given lines.
// Unknown codes and unmet minimum-item requirements yield ErrInvalidPromo.
func (s *PromoSet) Validate(code string, lines []cart.Line) (Discount, error) {
	rule, ok := s.rules[code]
	if !ok {
		return Discount{}, ErrInvalidPromo
	}

	units := 0
	for _, l := range lines {
		units += l.Quantity
	}
	if units < rule.MinItems {
		return Discount{}, ErrInvalidPromo
	}

	return Discount{
		Amount:      rule.discount(lines),
		Description: rule.Description,
	}, nil
}

func (r PromoRule) discount(lines []cart.Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}

	switch r.Type {
	case DiscountPercentage:
		return subtotal.Mul(r.Value).Div(decimal.NewFromInt(100))
	case DiscountFixed:
		if r.Value.GreaterThan(subtotal) {
			return subtotal
		}
		return r.Value
	case DiscountFreeLowest:
		if len(lines) == 0 {
			return decimal.Zero
		}
		lowest := lines[0].Product.Price
		for _, l := range lines[1:] {
			if l.Product.Price.LessThan(lowest) {
				lowest = l.Product.Price
			}
		}
		return lowest
	default:
		return decimal.Zero
	}
}
