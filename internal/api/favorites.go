package api

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
)

// listFavorites returns the favorited products in id order.
func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	ids := s.Favs.IDs()
	s.Unlock()

	products := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		// Favorites only ever hold ids that resolved at toggle time.
		if p, err := h.catalog.GetByID(id); err == nil {
			products = append(products, p)
		}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("products", func(e *jx.Encoder) { encodeProducts(e, products) })
			e.Field("count", func(e *jx.Encoder) { e.Int(len(products)) })
		})
	})
}

// toggleFavorite flips the favorite flag for one product and reports
// the resulting state.
func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "product id must be an integer")
		return
	}
	if _, err := h.catalog.GetByID(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusUnprocessableEntity, "product not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	favorited := s.Favs.Toggle(id)
	count := s.Favs.Count()
	s.Unlock()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("productId", func(e *jx.Encoder) { e.Int(id) })
			e.Field("favorited", func(e *jx.Encoder) { e.Bool(favorited) })
			e.Field("count", func(e *jx.Encoder) { e.Int(count) })
		})
	})
}
