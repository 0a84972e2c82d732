// Package favorites tracks the set of products a visitor has liked.
package favorites

import "slices"

// Set is a collection of favorited product ids. It is not safe for
// concurrent use; the owning session serializes access.
type Set struct {
	ids map[int]struct{}
}

// New returns an empty favorites set.
func New() *Set {
	return &Set{ids: make(map[int]struct{})}
}

// Toggle flips membership for productID and reports whether the product is
// a favorite afterwards. Toggling twice restores the original state.
func (s *Set) Toggle(productID int) bool {
	if _, ok := s.ids[productID]; ok {
		delete(s.ids, productID)
		return false
	}
	s.ids[productID] = struct{}{}
	return true
}

// Contains reports whether productID is favorited.
func (s *Set) Contains(productID int) bool {
	_, ok := s.ids[productID]
	return ok
}

// Count returns the number of favorited products.
func (s *Set) Count() int {
	return len(s.ids)
}

// IDs returns the favorited product ids in ascending order.
func (s *Set) IDs() []int {
	out := make([]int, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
