// Package session ties one visitor's cart, favorites, checkout wizard, and
// chat transcript together under a single id, and bounds the lifetime of
// their in-flight work with a per-session context.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/cart"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/chat"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/checkout"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/favorites"
)

// Notice is a domain event queued for the view layer: the cart wants to be
// surfaced after an add, an order confirmation should be announced, etc.
type Notice struct {
	Kind      string
	ProductID int
	OrderID   string
}

// Notice kinds drained by the API layer.
const (
	NoticeShowCart    = "show_cart"
	NoticeOrderPlaced = "order_placed"
)

// Deps holds the shared collaborators a session needs.
type Deps struct {
	Promos    *checkout.PromoSet
	Gateway   checkout.Submitter
	Assistant chat.Assistant
	Logger    *zap.Logger
	// QuantityPolicy is applied to every new cart.
	QuantityPolicy cart.QuantityPolicy
}

// ErrNoCheckout is returned for checkout operations before Open.
var ErrNoCheckout = errors.New("checkout is not open")

// ErrCheckoutBusy rejects closing the wizard mid-submission.
var ErrCheckoutBusy = errors.New("checkout is confirming")

// Session aggregates one visitor's volatile state. All operations go
// through the session mutex, mirroring the single-threaded event loop the
// storefront view runs on. The chat session keeps its own lock so a slow
// assistant call never blocks cart or checkout work.
type Session struct {
	ID   string
	Cart *cart.Cart
	Favs *favorites.Set
	Chat *chat.Session

	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	wizard   *checkout.Wizard
	notices  []Notice
	lastSeen time.Time
}

// New creates a session whose context is a child of parent; cancelling the
// session (store eviction, shutdown) aborts its in-flight gateway and
// assistant calls.
func New(parent context.Context, id string, deps Deps) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:       id,
		Cart:     cart.New(deps.QuantityPolicy),
		Favs:     favorites.New(),
		Chat:     chat.NewSession(deps.Assistant, deps.Logger),
		deps:     deps,
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
	s.Cart.Subscribe(func(e cart.Event) {
		if e.Kind == cart.EventItemAdded {
			s.notices = append(s.notices, Notice{Kind: NoticeShowCart, ProductID: e.ProductID})
		}
	})
	return s
}

// Context returns the session-scoped context. Outbound calls made on
// behalf of this session should use it so teardown cancels them.
func (s *Session) Context() context.Context { return s.ctx }

// Lock serializes access to the session's cart, favorites, and wizard.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// Touch records activity for TTL-based eviction.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// DrainNotices returns and clears the queued notices. Callers must hold
// the session lock.
func (s *Session) DrainNotices() []Notice {
	out := s.notices
	s.notices = nil
	return out
}

// Checkout returns the open wizard, or ErrNoCheckout. Callers must hold
// the session lock.
func (s *Session) Checkout() (*checkout.Wizard, error) {
	if s.wizard == nil {
		return nil, ErrNoCheckout
	}
	return s.wizard, nil
}

// OpenCheckout creates a fresh wizard, discarding any previous one that is
// not mid-submission. Callers must hold the session lock.
func (s *Session) OpenCheckout() (*checkout.Wizard, error) {
	if s.wizard != nil && s.wizard.Submitting() {
		return nil, ErrCheckoutBusy
	}
	s.wizard = checkout.New(s.Cart, s.deps.Promos, s.deps.Gateway, s.deps.Logger, func(o *checkout.Order) {
		s.notices = append(s.notices, Notice{Kind: NoticeOrderPlaced, OrderID: o.ID})
	})
	return s.wizard, nil
}

// CloseCheckout discards the wizard and everything entered into it. A
// wizard mid-submission cannot be closed. Callers must hold the session
// lock.
func (s *Session) CloseCheckout() error {
	if s.wizard == nil {
		return nil
	}
	if s.wizard.Submitting() {
		return ErrCheckoutBusy
	}
	s.wizard = nil
	return nil
}

// close cancels the session context, aborting in-flight calls.
func (s *Session) close() {
	s.cancel()
}

func (s *Session) seen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
