package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// CategoryAll is the sentinel category that matches every product.
const CategoryAll = "Todos"

// Product represents a catalog item available for purchase. Products are
// loaded once at startup from the embedded dataset and never mutated.
type Product struct {
	ID          int
	Name        string
	Price       decimal.Decimal
	Category    string
	Image       string
	Sizes       []string
	Description string
	New         bool
	BestSeller  bool
	Color       string
	AgeRange    string
}

// Vocabulary holds the enumerated filter values the storefront exposes
// alongside the product list.
type Vocabulary struct {
	Categories []string
	Colors     []string
	Sizes      []string
	AgeRanges  []string
}
