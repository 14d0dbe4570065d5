// internal/adapters/in/http/store/handler/order_handler.go
package storeHandler

import (
	"net/http"
	"strings"
	"time"

	"emporia/internal/adapters/in/http/middleware"
	usecase "emporia/internal/application/usecase"
)

// OrderHandler serves order history:
//
//   GET /store/me/orders
//
// Orders are derived from completed checkout records at read time; nothing
// here is a stored entity.
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) http.Handler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "order handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	uid := middleware.UserIDFromContext(r.Context())
	if uid == "" {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")
	if !strings.HasSuffix(path, "/store/me/orders") {
		writeErr(w, http.StatusNotFound, "not_found")
		return
	}

	orders, err := h.uc.CompletedOrders(r.Context(), uid)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	type orderLineDTO struct {
		LineItemID string `json:"lineItemId"`
		ItemID     string `json:"itemId"`
		ItemName   string `json:"itemName"`
		Quantity   int    `json:"quantity"`
		UnitPrice  string `json:"unitPrice"`
		Subtotal   string `json:"subtotal"`
	}
	type orderDTO struct {
		ID          string         `json:"id"`
		CompletedAt string         `json:"completedAt"`
		Lines       []orderLineDTO `json:"lines"`
		Total       string         `json:"total"`
	}

	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dto := orderDTO{
			ID:          o.ID,
			CompletedAt: o.CompletedAt.UTC().Format(time.RFC3339),
			Total:       o.Total.StringFixed(2),
			Lines:       make([]orderLineDTO, 0, len(o.Lines)),
		}
		for _, l := range o.Lines {
			dto.Lines = append(dto.Lines, orderLineDTO{
				LineItemID: l.LineItemID,
				ItemID:     l.ItemID,
				ItemName:   l.ItemName,
				Quantity:   l.Quantity,
				UnitPrice:  l.UnitPrice.StringFixed(2),
				Subtotal:   l.Subtotal.StringFixed(2),
			})
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}
