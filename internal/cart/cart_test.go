package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
)

func newTestProduct(id int, name, price string, sizes ...string) catalog.Product {
	if len(sizes) == 0 {
		sizes = []string{"4", "6"}
	}
	return catalog.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: "Menina",
		Sizes:    sizes,
	}
}

func TestAdd(t *testing.T) {
	vestido := newTestProduct(1, "Vestido", "89.90", "2", "4")
	camiseta := newTestProduct(2, "Camiseta", "49.90")

	t.Run("new line starts at quantity one with first size", func(t *testing.T) {
		c := New(RemoveAtZero)
		c.Add(vestido)

		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 1, lines[0].Quantity)
		assert.Equal(t, "2", lines[0].SelectedSize)
	})

	t.Run("same product merges into one line", func(t *testing.T) {
		c := New(RemoveAtZero)
		c.Add(vestido)
		c.Add(vestido)

		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
		assert.Equal(t, 2, c.ItemCount())
	})

	t.Run("selected size is frozen on merge", func(t *testing.T) {
		c := New(RemoveAtZero)
		c.Add(vestido)
		c.Add(vestido)
		assert.Equal(t, "2", c.Lines()[0].SelectedSize)
	})

	t.Run("distinct products keep insertion order", func(t *testing.T) {
		c := New(RemoveAtZero)
		c.Add(camiseta)
		c.Add(vestido)

		lines := c.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, 2, lines[0].Product.ID)
		assert.Equal(t, 1, lines[1].Product.ID)
	})
}

func TestRemove(t *testing.T) {
	vestido := newTestProduct(1, "Vestido", "89.90")

	c := New(RemoveAtZero)
	c.Add(vestido)
	c.Remove(1)
	assert.Equal(t, 0, c.Len())

	// Absent product is a no-op.
	c.Remove(999)
	assert.Equal(t, 0, c.Len())
}

func TestUpdateQuantity(t *testing.T) {
	vestido := newTestProduct(1, "Vestido", "89.90")

	tests := []struct {
		name      string
		policy    QuantityPolicy
		deltas    []int
		wantLines int
		wantQty   int
	}{
		{
			name:      "increment",
			policy:    RemoveAtZero,
			deltas:    []int{1, 1},
			wantLines: 1,
			wantQty:   3,
		},
		{
			name:      "decrement above zero",
			policy:    RemoveAtZero,
			deltas:    []int{2, -1},
			wantLines: 1,
			wantQty:   2,
		},
		{
			name:      "decrement to zero removes the line",
			policy:    RemoveAtZero,
			deltas:    []int{-1},
			wantLines: 0,
		},
		{
			name:      "decrement to zero keeps the line under KeepLine",
			policy:    KeepLine,
			deltas:    []int{-1},
			wantLines: 1,
			wantQty:   1,
		},
		{
			name:      "large negative delta removes the line",
			policy:    RemoveAtZero,
			deltas:    []int{-5},
			wantLines: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.policy)
			c.Add(vestido)
			for _, d := range tt.deltas {
				c.UpdateQuantity(1, d)
			}
			require.Equal(t, tt.wantLines, c.Len())
			if tt.wantLines > 0 {
				assert.Equal(t, tt.wantQty, c.Lines()[0].Quantity)
			}
		})
	}

	t.Run("absent product is a no-op", func(t *testing.T) {
		c := New(RemoveAtZero)
		c.UpdateQuantity(999, 1)
		assert.Equal(t, 0, c.Len())
	})
}

func TestTotal(t *testing.T) {
	vestido := newTestProduct(1, "Vestido", "89.90")
	camiseta := newTestProduct(2, "Camiseta", "49.90")

	c := New(RemoveAtZero)
	c.Add(vestido)
	c.Add(vestido)
	c.Add(vestido)
	assert.Equal(t, "269.70", c.Total().StringFixed(2))

	c.Add(camiseta)
	assert.Equal(t, "319.60", c.Total().StringFixed(2))

	// Total follows the line state after every mutation.
	c.UpdateQuantity(1, -2)
	assert.Equal(t, "139.80", c.Total().StringFixed(2))
	c.Remove(2)
	assert.Equal(t, "89.90", c.Total().StringFixed(2))
}

func TestClear(t *testing.T) {
	c := New(RemoveAtZero)
	c.Add(newTestProduct(1, "Vestido", "89.90"))
	c.Add(newTestProduct(2, "Camiseta", "49.90"))

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())
}

func TestEvents(t *testing.T) {
	vestido := newTestProduct(1, "Vestido", "89.90")

	c := New(RemoveAtZero)
	var events []Event
	c.Subscribe(func(e Event) { events = append(events, e) })

	c.Add(vestido)
	c.Add(vestido)
	c.Remove(1)
	c.Add(vestido)
	c.Clear()
	// Clearing an empty cart emits nothing.
	c.Clear()

	require.Len(t, events, 5)
	assert.Equal(t, Event{Kind: EventItemAdded, ProductID: 1}, events[0])
	assert.Equal(t, Event{Kind: EventItemAdded, ProductID: 1}, events[1])
	assert.Equal(t, Event{Kind: EventItemRemoved, ProductID: 1}, events[2])
	assert.Equal(t, Event{Kind: EventItemAdded, ProductID: 1}, events[3])
	assert.Equal(t, Event{Kind: EventCleared}, events[4])
}

func TestLines_ReturnsCopy(t *testing.T) {
	c := New(RemoveAtZero)
	c.Add(newTestProduct(1, "Vestido", "89.90"))

	lines := c.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, c.Lines()[0].Quantity)
}
