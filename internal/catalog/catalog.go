// Package catalog holds the static product catalog and the filter engine
// that powers the storefront's browse surface. The dataset is embedded in
// the binary and decoded once at startup; everything in this package is
// read-only after Load.
package catalog

import (
	_ "embed"
	"encoding/json"
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

//go:embed catalog.json
var rawDataset []byte

// highlightLimit caps the new-arrivals and best-sellers derived lists.
const highlightLimit = 4

type productJSON struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Sizes       []string        `json:"sizes"`
	Description string          `json:"description"`
	IsNew       bool            `json:"isNew"`
	IsBest      bool            `json:"isBestSeller"`
	Color       string          `json:"color"`
	AgeRange    string          `json:"ageRange"`
}

type datasetJSON struct {
	Categories []string `json:"categories"`
	Filters    struct {
		Colors    []string `json:"colors"`
		AgeRanges []string `json:"ageRanges"`
		Sizes     []string `json:"sizes"`
	} `json:"filters"`
	Products []productJSON `json:"products"`
}

// Catalog is the immutable, ordered product list plus the filter vocabulary.
type Catalog struct {
	products []Product
	byID     map[int]Product
	vocab    Vocabulary
}

// Load decodes and validates the embedded dataset.
func Load() (*Catalog, error) {
	return Parse(rawDataset)
}

// Parse decodes and validates a catalog dataset from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var ds datasetJSON
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(err, "decode dataset")
	}
	if len(ds.Products) == 0 {
		return nil, errors.New("dataset has no products")
	}

	c := &Catalog{
		products: make([]Product, 0, len(ds.Products)),
		byID:     make(map[int]Product, len(ds.Products)),
		vocab: Vocabulary{
			Categories: ds.Categories,
			Colors:     ds.Filters.Colors,
			Sizes:      ds.Filters.Sizes,
			AgeRanges:  ds.Filters.AgeRanges,
		},
	}

	for _, pj := range ds.Products {
		p := Product{
			ID:          pj.ID,
			Name:        pj.Name,
			Price:       pj.Price,
			Category:    pj.Category,
			Image:       pj.Image,
			Sizes:       pj.Sizes,
			Description: pj.Description,
			New:         pj.IsNew,
			BestSeller:  pj.IsBest,
			Color:       pj.Color,
			AgeRange:    pj.AgeRange,
		}
		if err := c.validate(p); err != nil {
			return nil, errors.Wrapf(err, "product %d", p.ID)
		}
		c.products = append(c.products, p)
		c.byID[p.ID] = p
	}
	return c, nil
}

// validate enforces the dataset invariants: unique positive ids, a name, a
// non-negative price, a non-empty size list, and category/age-range values
// drawn from the vocabulary. Sizes and colors are not checked against the
// vocabulary: the filter lists are a browse aid, not an exhaustive enum
// (e.g. size "GG" exists on baby products but is not filterable).
func (c *Catalog) validate(p Product) error {
	switch {
	case p.ID <= 0:
		return errors.New("id must be positive")
	case p.Name == "":
		return errors.New("name is required")
	case p.Price.IsNegative():
		return errors.New("price must not be negative")
	case len(p.Sizes) == 0:
		return errors.New("at least one size is required")
	}
	if _, dup := c.byID[p.ID]; dup {
		return errors.New("duplicate id")
	}
	if !slices.Contains(c.vocab.Categories, p.Category) || p.Category == CategoryAll {
		return errors.Errorf("unknown category %q", p.Category)
	}
	if !slices.Contains(c.vocab.AgeRanges, p.AgeRange) {
		return errors.Errorf("unknown age range %q", p.AgeRange)
	}
	return nil
}

// Products returns all products in catalog order.
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// GetByID returns a single product by its identifier.
func (c *Catalog) GetByID(id int) (Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Vocabulary returns the enumerated filter values.
func (c *Catalog) Vocabulary() Vocabulary {
	return c.vocab
}

// NewArrivals returns up to four products flagged as new, in catalog order.
func (c *Catalog) NewArrivals() []Product {
	return c.highlight(func(p Product) bool { return p.New })
}

// BestSellers returns up to four products flagged as best sellers, in
// catalog order.
func (c *Catalog) BestSellers() []Product {
	return c.highlight(func(p Product) bool { return p.BestSeller })
}

func (c *Catalog) highlight(keep func(Product) bool) []Product {
	out := make([]Product, 0, highlightLimit)
	for _, p := range c.products {
		if !keep(p) {
			continue
		}
		out = append(out, p)
		if len(out) == highlightLimit {
			break
		}
	}
	return out
}
