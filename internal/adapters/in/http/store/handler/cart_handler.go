// internal/adapters/in/http/store/handler/cart_handler.go
package storeHandler

import (
	"net/http"
	"strings"

	"emporia/internal/adapters/in/http/middleware"
	usecase "emporia/internal/application/usecase"
	codom "emporia/internal/domain/checkout"
)

// CartHandler serves the authenticated cart endpoints:
//
//   GET    /store/me/cart                      active cart + live total
//   POST   /store/me/cart/items                {itemId, quantity}
//   PUT    /store/me/cart/items/{id}           {quantity}
//   DELETE /store/me/cart/items/{id}
//   POST   /store/me/cart/items/{id}/advance   {step}
//
// The verified uid comes from the auth middleware context; it is handed to
// the usecase as a plain parameter on every call.
type CartHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCartHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "cart handler is not configured")
		return
	}

	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/store/me/cart"):
		h.handleGet(w, r, uid)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/store/me/cart/items"):
		h.handleAdd(w, r, uid)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/advance"):
		if id, ok := trailingID(strings.TrimSuffix(path, "/advance"), "/store/me/cart/items/"); ok {
			h.handleAdvance(w, r, uid, id)
			return
		}
		writeErr(w, http.StatusNotFound, "not_found")

	case r.Method == http.MethodPut:
		if id, ok := trailingID(path, "/store/me/cart/items/"); ok {
			h.handleSetQty(w, r, uid, id)
			return
		}
		writeErr(w, http.StatusNotFound, "not_found")

	case r.Method == http.MethodDelete:
		if id, ok := trailingID(path, "/store/me/cart/items/"); ok {
			h.handleRemove(w, r, uid, id)
			return
		}
		writeErr(w, http.StatusNotFound, "not_found")

	default:
		methodNotAllowed(w)
	}
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request, uid string) {
	view, err := h.uc.ActiveCart(r.Context(), uid)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	type cartLineDTO struct {
		lineItemDTO
		ItemName  string `json:"itemName,omitempty"`
		UnitPrice string `json:"unitPrice"`
		Subtotal  string `json:"subtotal"`
	}

	lines := make([]cartLineDTO, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, cartLineDTO{
			lineItemDTO: lineItemToDTO(l.Line),
			ItemName:    l.ItemName,
			UnitPrice:   l.UnitPrice.StringFixed(2),
			Subtotal:    l.Subtotal.StringFixed(2),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"lines": lines,
		"total": view.Total.StringFixed(2),
	})
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request, uid string) {
	var body struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	id, err := h.uc.AddToCart(r.Context(), uid, body.ItemID, body.Quantity)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"lineItemId": id})
}

func (h *CartHandler) handleSetQty(w http.ResponseWriter, r *http.Request, uid, lineID string) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.uc.SetQuantity(r.Context(), uid, lineID, body.Quantity); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"lineItemId": lineID})
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request, uid, lineID string) {
	if err := h.uc.RemoveLineItem(r.Context(), uid, lineID); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) handleAdvance(w http.ResponseWriter, r *http.Request, uid, lineID string) {
	var body struct {
		Step string `json:"step"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if err := h.uc.AdvanceStep(r.Context(), uid, lineID, codom.Step(strings.TrimSpace(body.Step))); err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"lineItemId": lineID})
}
