// Package api exposes the storefront over a small session-scoped HTTP
// API. Handlers are thin adapters: they parse the request, run the
// domain operation under the session lock, and render the result.
package api

import (
	"net/http"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/session"
)

// SessionHeader carries the visitor's session id. Every response echoes
// the effective id so a fresh client can adopt its new session.
const SessionHeader = "X-Session-ID"

// Handler serves the storefront API.
type Handler struct {
	catalog  *catalog.Catalog
	sessions *session.Store
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(c *catalog.Catalog, sessions *session.Store) *Handler {
	return &Handler{catalog: c, sessions: sessions}
}

// Routes registers every API route on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/new", h.listNewArrivals)
	mux.HandleFunc("GET /api/products/best-sellers", h.listBestSellers)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/catalog/filters", h.getFilters)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	mux.HandleFunc("GET /api/favorites", h.listFavorites)
	mux.HandleFunc("POST /api/favorites/{id}/toggle", h.toggleFavorite)

	mux.HandleFunc("POST /api/checkout", h.openCheckout)
	mux.HandleFunc("GET /api/checkout", h.getCheckout)
	mux.HandleFunc("DELETE /api/checkout", h.closeCheckout)
	mux.HandleFunc("PUT /api/checkout/shipping", h.submitShipping)
	mux.HandleFunc("PUT /api/checkout/payment", h.submitPayment)
	mux.HandleFunc("POST /api/checkout/back", h.checkoutBack)
	mux.HandleFunc("POST /api/checkout/retry", h.checkoutRetry)

	mux.HandleFunc("GET /api/chat/messages", h.listChatMessages)
	mux.HandleFunc("POST /api/chat/messages", h.sendChatMessage)
}

// resolveSession loads or creates the visitor's session and echoes its
// id on the response.
func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) *session.Session {
	s := h.sessions.GetOrCreate(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, s.ID)
	return s
}
