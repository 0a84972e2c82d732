// Package cart implements the shopping cart: an ordered list of line items
// keyed by product id, with explicit quantity policies and a domain event
// hook so the view layer can react to mutations without the cart knowing
// about presentation state.
package cart

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
)

// Line is a single cart entry. Line identity is the product id: adding the
// same product again increments the quantity of the existing line. The
// selected size is frozen at first add (the product's first listed size)
// and is not editable afterwards.
type Line struct {
	Product      catalog.Product
	Quantity     int
	SelectedSize string
}

// Subtotal returns price × quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// QuantityPolicy decides what happens when a quantity update would drop a
// line to zero or below.
type QuantityPolicy int

const (
	// RemoveAtZero deletes the line when a decrement reaches zero. This is
	// the adopted default.
	RemoveAtZero QuantityPolicy = iota
	// KeepLine ignores a decrement that would reach zero, leaving the line
	// unchanged. This preserves the storefront's legacy behavior.
	KeepLine
)

// EventKind enumerates cart domain events.
type EventKind string

const (
	EventItemAdded   EventKind = "item_added"
	EventItemRemoved EventKind = "item_removed"
	EventCleared     EventKind = "cleared"
)

// Event is emitted to subscribers after a cart mutation.
type Event struct {
	Kind      EventKind
	ProductID int
}

// Cart owns the set of line items. It is not safe for concurrent use; the
// owning session serializes access.
type Cart struct {
	policy QuantityPolicy
	lines  []Line
	subs   []func(Event)
}

// New creates an empty cart with the given quantity policy.
func New(policy QuantityPolicy) *Cart {
	return &Cart{policy: policy}
}

// Subscribe registers fn to receive domain events. Subscribers run
// synchronously inside the mutating call.
func (c *Cart) Subscribe(fn func(Event)) {
	c.subs = append(c.subs, fn)
}

func (c *Cart) emit(e Event) {
	for _, fn := range c.subs {
		fn(e)
	}
}

// Add puts one unit of p into the cart. An existing line for the same
// product id gets its quantity incremented, keeping its selected size; a
// new line starts at quantity 1 with the product's first listed size.
func (c *Cart) Add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, Line{
			Product:      p,
			Quantity:     1,
			SelectedSize: p.Sizes[0],
		})
	}
	c.emit(Event{Kind: EventItemAdded, ProductID: p.ID})
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op, not an error.
func (c *Cart) Remove(productID int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.lines = slices.Delete(c.lines, i, i+1)
	c.emit(Event{Kind: EventItemRemoved, ProductID: productID})
}

// UpdateQuantity applies delta to the line's quantity. Absent product ids
// are a no-op. When the new quantity would be zero or below, the configured
// policy decides between removing the line and leaving it untouched.
func (c *Cart) UpdateQuantity(productID, delta int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	next := c.lines[i].Quantity + delta
	if next > 0 {
		c.lines[i].Quantity = next
		return
	}
	if c.policy == RemoveAtZero {
		c.Remove(productID)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.emit(Event{Kind: EventCleared})
}

// Lines returns a copy of the current line items in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// ItemCount returns the total number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total returns the sum of price × quantity over all lines. It is
// recomputed from the line state on every call, never cached.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) index(productID int) int {
	return slices.IndexFunc(c.lines, func(l Line) bool {
		return l.Product.ID == productID
	})
}
