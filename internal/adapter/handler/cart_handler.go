package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rl1809/scoop-shop/internal/core/domain"
	"github.com/rl1809/scoop-shop/internal/core/view"
)

const (
	msgEmptyCart     = "Cart is empty!"
	msgQuantityRange = "quantity out of range"
	maxDropBody      = 64
	maxQuantityDelta = 1000
)

type catalogPage struct {
	Products []view.ProductCard
	Panel    panelFragment
}

type panelFragment struct {
	view.CartPanel
	Notice string
}

type addItemRequest struct {
	ProductID int `json:"product_id"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *HTTPHandler) CatalogPage(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Load(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.internalError(w, r, "load cart", err)
		return
	}

	h.render(w, http.StatusOK, "catalog", catalogPage{
		Products: view.Products(h.cart.Catalog()),
		Panel:    panelFragment{CartPanel: view.Panel(cart)},
	})
}

func (h *HTTPHandler) CartPanel(w http.ResponseWriter, r *http.Request) {
	h.respondPanel(w, r, http.StatusOK, "")
}

// AddItem is the add-to-cart button.
func (h *HTTPHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		id, err := strconv.Atoi(strings.TrimSpace(r.FormValue("product_id")))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "product_id must be an integer")
			return
		}
		req.ProductID = id
	}

	if _, _, err := h.cart.Add(r.Context(), SessionID(r.Context()), req.ProductID); err != nil {
		h.mutationError(w, r, "add to cart", err)
		return
	}
	h.respondPanel(w, r, http.StatusOK, "")
}

// DropItem is the drag-and-drop channel. The body is whatever the drag
// carried as text/plain; it is read as a leading integer and anything else
// is ignored.
func (h *HTTPHandler) DropItem(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxDropBody))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	id, ok := parseLeadingInt(string(body))
	if !ok {
		h.log.Warn("drop ignored, no product id",
			zap.String("session_id", SessionID(r.Context())),
			zap.String("payload", string(body)),
		)
		h.respondPanel(w, r, http.StatusOK, "")
		return
	}

	if _, _, err := h.cart.Add(r.Context(), SessionID(r.Context()), id); err != nil {
		h.mutationError(w, r, "drop to cart", err)
		return
	}
	h.respondPanel(w, r, http.StatusOK, "")
}

func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "product_id must be an integer")
		return
	}

	if _, _, err := h.cart.Remove(r.Context(), SessionID(r.Context()), id); err != nil {
		h.internalError(w, r, "remove from cart", err)
		return
	}
	h.respondPanel(w, r, http.StatusOK, "")
}

func (h *HTTPHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "product_id must be an integer")
		return
	}

	var req changeQuantityRequest
	if isJSONBody(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		delta, err := strconv.Atoi(strings.TrimSpace(r.FormValue("delta")))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "delta must be an integer")
			return
		}
		req.Delta = delta
	}

	if req.Delta < -maxQuantityDelta || req.Delta > maxQuantityDelta {
		writeError(w, r, http.StatusBadRequest, "delta must be between -1000 and 1000")
		return
	}

	if _, _, err := h.cart.ChangeQuantity(r.Context(), SessionID(r.Context()), id, req.Delta); err != nil {
		h.mutationError(w, r, "change quantity", err)
		return
	}
	h.respondPanel(w, r, http.StatusOK, "")
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), SessionID(r.Context())); err != nil {
		h.internalError(w, r, "clear cart", err)
		return
	}
	h.respondPanel(w, r, http.StatusOK, "")
}

// Checkout moves a non-empty cart on to the payment page.
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Load(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.internalError(w, r, "load cart", err)
		return
	}
	if cart.IsEmpty() {
		if wantsJSON(r) {
			writeJSON(w, http.StatusConflict, errorResponse{Success: false, Message: msgEmptyCart})
			return
		}
		h.render(w, http.StatusConflict, "cart-panel", panelFragment{CartPanel: view.Panel(cart), Notice: msgEmptyCart})
		return
	}
	http.Redirect(w, r, "/payment", http.StatusSeeOther)
}

// mutationError maps a failed cart mutation to a response. A quantity that
// would leave the int range is the client's fault; anything else is ours.
func (h *HTTPHandler) mutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, domain.ErrQuantityOverflow) {
		h.log.Warn(op+" rejected",
			zap.String("session_id", SessionID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusBadRequest, msgQuantityRange)
		return
	}
	h.internalError(w, r, op, err)
}

// respondPanel reloads the cart from the store and renders the whole panel.
func (h *HTTPHandler) respondPanel(w http.ResponseWriter, r *http.Request, status int, notice string) {
	cart, err := h.cart.Load(r.Context(), SessionID(r.Context()))
	if err != nil {
		h.internalError(w, r, "load cart", err)
		return
	}

	panel := view.Panel(cart)
	if wantsJSON(r) {
		writeJSON(w, status, panel)
		return
	}
	h.render(w, status, "cart-panel", panelFragment{CartPanel: panel, Notice: notice})
}

func productIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "product_id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseLeadingInt reads an optionally signed run of digits after leading
// whitespace, ignoring whatever follows it ("12abc" is 12).
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
