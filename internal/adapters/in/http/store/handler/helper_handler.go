// internal/adapters/in/http/store/handler/helper_handler.go
package storeHandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	fsrepo "emporia/internal/adapters/out/firestore"
	usecase "emporia/internal/application/usecase"
	catdom "emporia/internal/domain/category"
	codom "emporia/internal/domain/checkout"
	itemdom "emporia/internal/domain/item"
)

// ============================================================
// HTTP helpers
// ============================================================

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUsecaseErr maps domain/usecase sentinels onto HTTP statuses; anything
// unrecognized is a plain 500 (transient store failures land here — the core
// never retries, the client decides).
func writeUsecaseErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrCatalogInvalidArgument),
		errors.Is(err, usecase.ErrCheckoutInvalidArgument),
		errors.Is(err, usecase.ErrOrderInvalidArgument),
		errors.Is(err, codom.ErrInvalidQuantity),
		errors.Is(err, codom.ErrInvalidStep),
		errors.Is(err, fsrepo.ErrBadCursor):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrCheckoutForbidden):
		writeErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, itemdom.ErrNotFound),
		errors.Is(err, catdom.ErrNotFound),
		errors.Is(err, codom.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, codom.ErrAlreadyDone),
		errors.Is(err, usecase.ErrCheckoutEmptyBatch):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, fsrepo.ErrCategoryTooLarge):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeErr(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func decodeBody(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ============================================================
// DTOs
// ============================================================

// itemDTO serializes prices as fixed-point strings; float JSON numbers and
// money do not mix.
type itemDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	BannerImage string   `json:"bannerImage,omitempty"`
	Images      []string `json:"images,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

// ImageResolver maps stored image references to browser URLs (signed URLs
// for bucket objects, pass-through for https).
type ImageResolver interface {
	Resolve(ref string) (string, error)
	ResolveAll(refs []string) []string
}

func itemToDTO(it itemdom.Item, images ImageResolver) itemDTO {
	dto := itemDTO{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Price:       it.Price.StringFixed(2),
		BannerImage: it.BannerImage,
		Images:      it.Images,
		CategoryID:  it.CategoryID,
		CreatedAt:   it.CreatedAt.UTC().Format(time.RFC3339),
	}
	if images != nil {
		if u, _ := images.Resolve(it.BannerImage); u != "" {
			dto.BannerImage = u
		}
		dto.Images = images.ResolveAll(it.Images)
	}
	return dto
}

func itemsToDTO(items []itemdom.Item, images ImageResolver) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, itemToDTO(it, images))
	}
	return out
}

type lineItemDTO struct {
	ID        string `json:"id"`
	ItemID    string `json:"itemId"`
	Quantity  int    `json:"quantity"`
	IsDone    bool   `json:"isDone"`
	LastStep  string `json:"lastStep"`
	Reason    string `json:"reason,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func lineItemToDTO(li codom.LineItem) lineItemDTO {
	return lineItemDTO{
		ID:        li.ID,
		ItemID:    li.ItemID,
		Quantity:  li.Quantity,
		IsDone:    li.IsDone,
		LastStep:  string(li.LastStep),
		Reason:    li.Reason,
		OrderID:   li.OrderID,
		CreatedAt: li.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: li.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
