package handler

import (
	"errors"
	"net/http"

	"github.com/rl1809/scoop-shop/internal/core/service"
	"github.com/rl1809/scoop-shop/internal/core/view"
)

type paymentPage struct {
	Summary   view.OrderSummary
	Confirmed bool
	OrderID   string
}

type confirmResponse struct {
	Success bool              `json:"success"`
	Status  string            `json:"status"`
	OrderID string            `json:"order_id"`
	Summary view.OrderSummary `json:"summary"`
}

// PaymentPage shows the order summary. Without a cart there is nothing to
// pay for and the shopper goes back to the catalog.
func (h *HTTPHandler) PaymentPage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.checkout.Summary(r.Context(), SessionID(r.Context()))
	if errors.Is(err, service.ErrEmptyCart) {
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.internalError(w, r, "load order summary", err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view.Summary(summary))
		return
	}
	h.render(w, http.StatusOK, "payment", paymentPage{Summary: view.Summary(summary)})
}

func (h *HTTPHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.Confirm(r.Context(), SessionID(r.Context()))
	if errors.Is(err, service.ErrEmptyCart) {
		http.Redirect(w, r, "/catalog", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.internalError(w, r, "confirm order", err)
		return
	}

	summary := view.Summary(service.Summary{Lines: order.Lines, Total: order.Total})
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, confirmResponse{
			Success: true,
			Status:  string(order.Status),
			OrderID: order.ID,
			Summary: summary,
		})
		return
	}
	h.render(w, http.StatusOK, "payment", paymentPage{
		Summary:   summary,
		Confirmed: true,
		OrderID:   order.ID,
	})
}

type contactsPage struct {
	Store StoreInfo
}

func (h *HTTPHandler) ContactsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "contacts", contactsPage{Store: h.opts.Store})
}
