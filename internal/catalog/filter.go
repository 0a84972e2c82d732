package catalog

import (
	"slices"
	"strings"
)

// Query describes a storefront filter selection. The zero value matches
// every product: empty search, no color/size/age selection, and an empty
// category (treated like the "Todos" sentinel).
type Query struct {
	// Category is a single selected category, or CategoryAll / "" for all.
	Category string
	// Search is matched as a case-insensitive substring of the product name.
	Search string
	// Colors, Sizes and AgeRanges are multi-select; an empty set means the
	// clause is not applied. A product matches the size clause when its size
	// list shares at least one entry with the selection.
	Colors    []string
	Sizes     []string
	AgeRanges []string
}

// Match reports whether p satisfies every clause of the query. Unknown
// filter values are not an error; they simply match nothing.
func (q Query) Match(p Product) bool {
	if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	if len(q.Colors) > 0 && !slices.Contains(q.Colors, p.Color) {
		return false
	}
	if len(q.Sizes) > 0 && !intersects(p.Sizes, q.Sizes) {
		return false
	}
	if len(q.AgeRanges) > 0 && !slices.Contains(q.AgeRanges, p.AgeRange) {
		return false
	}
	return true
}

// Filter returns the ordered subsequence of the catalog matching q. The
// filter is stable: output preserves catalog order, and recomputing with
// the same query yields the same result.
func (c *Catalog) Filter(q Query) []Product {
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if q.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func intersects(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
