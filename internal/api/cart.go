package api

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/cart"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/session"
)

// getCart returns the session's cart lines and totals.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	lines := s.Cart.Lines()
	count := s.Cart.ItemCount()
	total := s.Cart.Total()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, lines, count, total.InexactFloat64(), nil)
	})
}

// addCartItem puts one unit of a product into the cart. The body is
// {"productId": N}. The response carries the notices the add produced,
// which is how the storefront learns the cart drawer should open.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	d, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	productID := -1
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		productID, err = d.Int()
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if productID < 0 {
		writeError(w, http.StatusBadRequest, "productId required")
		return
	}

	p, err := h.catalog.GetByID(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	s.Cart.Add(p)
	lines := s.Cart.Lines()
	count := s.Cart.ItemCount()
	total := s.Cart.Total()
	notices := s.DrainNotices()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, lines, count, total.InexactFloat64(), notices)
	})
}

// updateCartItem applies a quantity delta to one line. The body is
// {"delta": N}; unknown product ids are a no-op.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	d, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	delta := 0
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "delta" {
			return d.Skip()
		}
		delta, err = d.Int()
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	s.Cart.UpdateQuantity(productID, delta)
	lines := s.Cart.Lines()
	count := s.Cart.ItemCount()
	total := s.Cart.Total()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, lines, count, total.InexactFloat64(), nil)
	})
}

// removeCartItem deletes one line; absent products are a no-op.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	s.Cart.Remove(productID)
	lines := s.Cart.Lines()
	count := s.Cart.ItemCount()
	total := s.Cart.Total()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, lines, count, total.InexactFloat64(), nil)
	})
}

// clearCart empties the cart.
func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	s.Cart.Clear()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, nil, 0, 0, nil)
	})
}

func encodeCart(e *jx.Encoder, lines []cart.Line, count int, total float64, notices []session.Notice) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range lines {
					encodeLine(e, l)
				}
			})
		})
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(count) })
		e.Field("total", func(e *jx.Encoder) { e.Float64(total) })
		if len(notices) > 0 {
			e.Field("notices", func(e *jx.Encoder) { encodeNotices(e, notices) })
		}
	})
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product", func(e *jx.Encoder) { encodeProduct(e, l.Product) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
		e.Field("selectedSize", func(e *jx.Encoder) { e.Str(l.SelectedSize) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(l.Subtotal().InexactFloat64()) })
	})
}

func encodeNotices(e *jx.Encoder, notices []session.Notice) {
	e.Arr(func(e *jx.Encoder) {
		for _, n := range notices {
			e.Obj(func(e *jx.Encoder) {
				e.Field("kind", func(e *jx.Encoder) { e.Str(n.Kind) })
				if n.ProductID != 0 {
					e.Field("productId", func(e *jx.Encoder) { e.Int(n.ProductID) })
				}
				if n.OrderID != "" {
					e.Field("orderId", func(e *jx.Encoder) { e.Str(n.OrderID) })
				}
			})
		}
	})
}
