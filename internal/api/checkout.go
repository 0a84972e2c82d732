package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/checkout"
	"github.com/r1988spaulos-cloud/aquila-modas-infantil/internal/session"
)

// openCheckout starts a fresh wizard at the shipping step, discarding
// any previous attempt that is not mid-submission.
func (h *Handler) openCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	wiz, err := s.OpenCheckout()
	s.Unlock()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeWizard(e, wiz)
	})
}

// getCheckout returns the wizard's current step and entered data.
func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	defer s.Unlock()
	wiz, err := s.Checkout()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeWizard(e, wiz)
	})
}

// closeCheckout abandons the wizard, discarding everything entered.
func (h *Handler) closeCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.resolveSession(w, r)
	s.Lock()
	err := s.CloseCheckout()
	s.Unlock()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submitShipping stores the shipping fields and advances to payment.
func (h *Handler) submitShipping(w http.ResponseWriter, r *http.Request) {
	d, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	var info checkout.ShippingInfo
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "fullName":
			info.FullName, err = d.Str()
		case "email":
			info.Email, err = d.Str()
		case "cpf":
			info.CPF, err = d.Str()
		case "address":
			info.Address, err = d.Str()
		case "city":
			info.City, err = d.Str()
		case "state":
			info.State, err = d.Str()
		case "zipCode":
			info.ZipCode, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	defer s.Unlock()
	wiz, err := s.Checkout()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	if err := wiz.SubmitShipping(info); err != nil {
		writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeWizard(e, wiz)
	})
}

// submitPayment validates the payment fields and submits the order. The
// gateway call runs under the session context so eviction or shutdown
// aborts it.
func (h *Handler) submitPayment(w http.ResponseWriter, r *http.Request) {
	d, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	var info checkout.PaymentInfo
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "method":
			var m string
			m, err = d.Str()
			info.Method = checkout.PaymentMethod(m)
		case "cardNumber":
			info.CardNumber, err = d.Str()
		case "cardName":
			info.CardName, err = d.Str()
		case "cardExpiry":
			info.CardExpiry, err = d.Str()
		case "cardCvv":
			info.CardCVV, err = d.Str()
		case "promoCode":
			info.PromoCode, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s := h.resolveSession(w, r)
	s.Lock()
	defer s.Unlock()
	wiz, err := s.Checkout()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}

	if _, err := wiz.SubmitPayment(s.Context(), info); err != nil {
		if wiz.State() == checkout.StateFailed {
			// The failure is part of the wizard state; render it so the
			// client can offer a retry.
			writeJSON(w, http.StatusBadGateway, func(e *jx.Encoder) {
				encodeWizard(e, wiz)
			})
			return
		}
		writeCheckoutError(w, r, err)
		return
	}

	notices := s.DrainNotices()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeWizardNotices(e, wiz, notices)
	})
}

// checkoutBack returns from payment to shipping, keeping entered data.
func (h *Handler) checkoutBack(w http.ResponseWriter, r *http.Request) {
	h.wizardAction(w, r, func(wiz *checkout.Wizard) error { return wiz.Back() })
}

// checkoutRetry returns from failed to payment for another attempt.
func (h *Handler) checkoutRetry(w http.ResponseWriter, r *http.Request) {
	h.wizardAction(w, r, func(wiz *checkout.Wizard) error { return wiz.Retry() })
}

func (h *Handler) wizardAction(w http.ResponseWriter, r *http.Request, action func(*checkout.Wizard) error) {
	s := h.resolveSession(w, r)
	s.Lock()
	defer s.Unlock()
	wiz, err := s.Checkout()
	if err != nil {
		writeCheckoutError(w, r, err)
		return
	}
	if err := action(wiz); err != nil {
		writeCheckoutError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeWizard(e, wiz)
	})
}

// writeCheckoutError maps domain checkout errors onto HTTP statuses.
func writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *checkout.ValidationError
	var tErr *checkout.TransitionError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusUnprocessableEntity, func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("code", func(e *jx.Encoder) { e.Int(http.StatusUnprocessableEntity) })
				e.Field("message", func(e *jx.Encoder) { e.Str(vErr.Error()) })
				e.Field("fields", func(e *jx.Encoder) { encodeStrings(e, vErr.Fields) })
			})
		})
	case errors.As(err, &tErr):
		writeError(w, http.StatusConflict, tErr.Error())
	case errors.Is(err, session.ErrNoCheckout):
		writeError(w, http.StatusConflict, "checkout is not open")
	case errors.Is(err, session.ErrCheckoutBusy):
		writeError(w, http.StatusConflict, "checkout is confirming")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "cart is empty")
	case errors.Is(err, checkout.ErrInvalidPromo):
		writeError(w, http.StatusUnprocessableEntity, "invalid promo code")
	default:
		writeInternalError(w, r, err)
	}
}

func encodeWizard(e *jx.Encoder, wiz *checkout.Wizard) {
	encodeWizardNotices(e, wiz, nil)
}

func encodeWizardNotices(e *jx.Encoder, wiz *checkout.Wizard, notices []session.Notice) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("state", func(e *jx.Encoder) { e.Str(string(wiz.State())) })

		ship := wiz.Shipping()
		e.Field("shipping", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("fullName", func(e *jx.Encoder) { e.Str(ship.FullName) })
				e.Field("email", func(e *jx.Encoder) { e.Str(ship.Email) })
				e.Field("cpf", func(e *jx.Encoder) { e.Str(ship.CPF) })
				e.Field("address", func(e *jx.Encoder) { e.Str(ship.Address) })
				e.Field("city", func(e *jx.Encoder) { e.Str(ship.City) })
				e.Field("state", func(e *jx.Encoder) { e.Str(ship.State) })
				e.Field("zipCode", func(e *jx.Encoder) { e.Str(ship.ZipCode) })
			})
		})

		pay := wiz.Payment()
		e.Field("payment", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("method", func(e *jx.Encoder) { e.Str(string(pay.Method)) })
				e.Field("promoCode", func(e *jx.Encoder) { e.Str(pay.PromoCode) })
			})
		})

		if reason := wiz.FailureReason(); reason != "" {
			e.Field("failureReason", func(e *jx.Encoder) { e.Str(reason) })
		}
		if o := wiz.Order(); o != nil {
			e.Field("order", func(e *jx.Encoder) { encodeOrder(e, o) })
		}
		if len(notices) > 0 {
			e.Field("notices", func(e *jx.Encoder) { encodeNotices(e, notices) })
		}
	})
}

func encodeOrder(e *jx.Encoder, o *checkout.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range o.Lines {
					encodeLine(e, l)
				}
			})
		})
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(o.Subtotal.InexactFloat64()) })
		e.Field("discount", func(e *jx.Encoder) { e.Float64(o.Discount.InexactFloat64()) })
		e.Field("total", func(e *jx.Encoder) { e.Float64(o.Total.InexactFloat64()) })
		if o.PromoCode != "" {
			e.Field("promoCode", func(e *jx.Encoder) { e.Str(o.PromoCode) })
		}
		e.Field("method", func(e *jx.Encoder) { e.Str(string(o.Method)) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(o.CreatedAt.Format("2006-01-02T15:04:05Z07:00")) })
	})
}
