// internal/adapters/in/http/store/handler/checkout_handler.go
package storeHandler

import (
	"net/http"
	"strings"

	"emporia/internal/adapters/in/http/middleware"
	usecase "emporia/internal/application/usecase"
)

// CheckoutHandler drives the two batch transitions:
//
//   POST /store/me/checkout/proceed    all added_to_cart lines → payment
//   POST /store/me/checkout/complete   {lineItemIds} → completed
//
// The payment step itself is a client-side pause; no gateway is involved,
// so "complete" is called by the storefront once its simulated payment ends.
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "checkout handler is not configured")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case strings.HasSuffix(path, "/store/me/checkout/proceed"):
		h.handleProceed(w, r, uid)
	case strings.HasSuffix(path, "/store/me/checkout/complete"):
		h.handleComplete(w, r, uid)
	default:
		writeErr(w, http.StatusNotFound, "not_found")
	}
}

func (h *CheckoutHandler) handleProceed(w http.ResponseWriter, r *http.Request, uid string) {
	n, err := h.uc.ProceedToCheckout(r.Context(), uid)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transitioned": n})
}

func (h *CheckoutHandler) handleComplete(w http.ResponseWriter, r *http.Request, uid string) {
	var body struct {
		LineItemIDs []string `json:"lineItemIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json body")
		return
	}

	orderID, err := h.uc.CompleteCheckout(r.Context(), uid, body.LineItemIDs)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"orderId": orderID})
}
