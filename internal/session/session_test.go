package session

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/catalog"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/chat"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/checkout"
)

type stubAssistant struct{}

func (stubAssistant) Reply(context.Context, []chat.Turn) (string, error) {
	return "ok", nil
}

func testDeps() Deps {
	return Deps{
		Promos:    checkout.NewPromoSet(checkout.DefaultPromoRules()...),
		Gateway:   checkout.NewSimulatedGateway(0),
		Assistant: stubAssistant{},
		Logger:    zap.NewNop(),
	}
}

func testProduct(id int) catalog.Product {
	return catalog.Product{
		ID:    id,
		Name:  "Produto",
		Price: decimal.RequireFromString("89.90"),
		Sizes: []string{"4"},
	}
}

func TestSession_Notices(t *testing.T) {
	s := New(context.Background(), "s1", testDeps())

	s.Lock()
	s.Cart.Add(testProduct(1))
	s.Cart.Add(testProduct(1))
	s.Cart.Remove(1)

	notices := s.DrainNotices()
	s.Unlock()

	// Only adds surface the cart; removals stay quiet.
	require.Len(t, notices, 2)
	assert.Equal(t, NoticeShowCart, notices[0].Kind)
	assert.Equal(t, 1, notices[0].ProductID)

	s.Lock()
	assert.Empty(t, s.DrainNotices())
	s.Unlock()
}

func TestSession_Checkout(t *testing.T) {
	s := New(context.Background(), "s1", testDeps())
	s.Lock()
	defer s.Unlock()

	_, err := s.Checkout()
	require.ErrorIs(t, err, ErrNoCheckout)

	wiz, err := s.OpenCheckout()
	require.NoError(t, err)
	assert.Equal(t, checkout.StateShipping, wiz.State())

	got, err := s.Checkout()
	require.NoError(t, err)
	assert.Same(t, wiz, got)

	// Reopening replaces the wizard.
	wiz2, err := s.OpenCheckout()
	require.NoError(t, err)
	assert.NotSame(t, wiz, wiz2)

	require.NoError(t, s.CloseCheckout())
	_, err = s.Checkout()
	require.ErrorIs(t, err, ErrNoCheckout)

	// Closing again is a no-op.
	require.NoError(t, s.CloseCheckout())
}

func TestSession_OrderPlacedNotice(t *testing.T) {
	s := New(context.Background(), "s1", testDeps())
	s.Lock()
	defer s.Unlock()

	s.Cart.Add(testProduct(1))
	wiz, err := s.OpenCheckout()
	require.NoError(t, err)
	require.NoError(t, wiz.SubmitShipping(checkout.ShippingInfo{
		FullName: "Maria Souza",
		Email:    "maria@example.com",
		CPF:      "123.456.789-00",
		Address:  "Rua das Flores, 100",
		City:     "São Paulo",
		State:    "SP",
		ZipCode:  "01000-000",
	}))

	o, err := wiz.SubmitPayment(s.Context(), checkout.PaymentInfo{Method: checkout.MethodBoleto})
	require.NoError(t, err)

	notices := s.DrainNotices()
	require.NotEmpty(t, notices)
	last := notices[len(notices)-1]
	assert.Equal(t, NoticeOrderPlaced, last.Kind)
	assert.Equal(t, o.ID, last.OrderID)
}

func TestStore_GetOrCreate(t *testing.T) {
	st := NewStore(context.Background(), testDeps(), time.Hour)

	s1 := st.GetOrCreate("")
	require.NotEmpty(t, s1.ID)
	assert.Equal(t, 1, st.Len())

	// A known id returns the same session.
	s2 := st.GetOrCreate(s1.ID)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, st.Len())

	// An unknown id gets a fresh session, never the requested id.
	s3 := st.GetOrCreate("made-up")
	assert.NotEqual(t, "made-up", s3.ID)
	assert.Equal(t, 2, st.Len())
}

func TestStore_Get(t *testing.T) {
	st := NewStore(context.Background(), testDeps(), time.Hour)
	s := st.GetOrCreate("")

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = st.Get("missing")
	assert.False(t, ok)
}

func TestStore_EvictIdle(t *testing.T) {
	st := NewStore(context.Background(), testDeps(), time.Minute)

	idle := st.GetOrCreate("")
	active := st.GetOrCreate("")
	require.Equal(t, 2, st.Len())

	// Only the idle session crosses the TTL at sweep time.
	future := time.Now().Add(2 * time.Minute)
	active.Touch()
	active.mu.Lock()
	active.lastSeen = future
	active.mu.Unlock()

	st.evictIdle(future)
	assert.Equal(t, 1, st.Len())

	_, ok := st.Get(idle.ID)
	assert.False(t, ok)
	_, ok = st.Get(active.ID)
	assert.True(t, ok)

	// Eviction cancels the session context, aborting in-flight work.
	select {
	case <-idle.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("evicted session context was not cancelled")
	}
	select {
	case <-active.Context().Done():
		t.Fatal("surviving session context was cancelled")
	default:
	}
}
