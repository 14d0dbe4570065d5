// internal/adapters/in/http/store/handler/catalog_handler.go
package storeHandler

import (
	"net/http"
	"strings"

	usecase "emporia/internal/application/usecase"
	itemdom "emporia/internal/domain/item"
)

// CatalogHandler serves the public storefront read endpoints:
//
//   GET /store/items?categoryId=&sortBy=&pageSize=&cursor=
//   GET /store/items/search?q=&limit=
//   GET /store/items/{id}
//   GET /store/categories
//   GET /store/categories/{id}
type CatalogHandler struct {
	uc     *usecase.CatalogUsecase
	images ImageResolver
}

func NewCatalogHandler(uc *usecase.CatalogUsecase, images ImageResolver) http.Handler {
	return &CatalogHandler{uc: uc, images: images}
}

func (h *CatalogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "catalog handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	path := strings.TrimRight(r.URL.Path, "/")

	switch {
	case strings.HasSuffix(path, "/store/items"):
		h.handleList(w, r)
	case strings.HasSuffix(path, "/store/items/search"):
		h.handleSearch(w, r)
	case strings.HasSuffix(path, "/store/categories"):
		h.handleCategories(w, r)
	default:
		if id, ok := trailingID(path, "/store/items/"); ok {
			h.handleGetItem(w, r, id)
			return
		}
		if id, ok := trailingID(path, "/store/categories/"); ok {
			h.handleGetCategory(w, r, id)
			return
		}
		writeErr(w, http.StatusNotFound, "not_found")
	}
}

func (h *CatalogHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortBy := itemdom.SortKey(strings.TrimSpace(q.Get("sortBy")))
	if sortBy == "" {
		sortBy = itemdom.SortNewest
	}

	page, err := h.uc.ListItems(
		r.Context(),
		q.Get("categoryId"),
		sortBy,
		parseIntDefault(q.Get("pageSize"), 24),
		q.Get("cursor"),
	)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	resp := map[string]any{
		"items": itemsToDTO(page.Items, h.images),
	}
	if page.NextCursor != nil {
		resp["nextCursor"] = *page.NextCursor
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, err := h.uc.SearchItems(r.Context(), q.Get("q"), parseIntDefault(q.Get("limit"), 20))
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": itemsToDTO(items, h.images)})
}

func (h *CatalogHandler) handleGetItem(w http.ResponseWriter, r *http.Request, id string) {
	it, err := h.uc.GetItem(r.Context(), id)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemToDTO(it, h.images))
}

func (h *CatalogHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	views, err := h.uc.ListCategories(r.Context())
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	type categoryDTO struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Image       string `json:"image,omitempty"`
		ParentID    string `json:"parentCategoryId,omitempty"`
		ParentName  string `json:"parentName,omitempty"`
	}

	out := make([]categoryDTO, 0, len(views))
	for _, v := range views {
		dto := categoryDTO{
			ID:          v.ID,
			Name:        v.Name,
			Description: v.Description,
			Image:       v.Image,
			ParentName:  v.ParentName,
		}
		if v.ParentCategoryID != nil {
			dto.ParentID = *v.ParentCategoryID
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (h *CatalogHandler) handleGetCategory(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.uc.GetCategory(r.Context(), id)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}

	resp := map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"image":       c.Image,
	}
	if c.ParentCategoryID != nil {
		resp["parentCategoryId"] = *c.ParentCategoryID
	}

	children, err := h.uc.ListSubcategories(r.Context(), id)
	if err != nil {
		writeUsecaseErr(w, err)
		return
	}
	sub := make([]map[string]string, 0, len(children))
	for _, ch := range children {
		sub = append(sub, map[string]string{"id": ch.ID, "name": ch.Name})
	}
	resp["children"] = sub

	writeJSON(w, http.StatusOK, resp)
}

// trailingID extracts the path segment after marker; false when the marker
// is absent or the segment is empty / nested.
func trailingID(path, marker string) (string, bool) {
	i := strings.LastIndex(path, marker)
	if i < 0 {
		return "", false
	}
	id := strings.TrimSpace(path[i+len(marker):])
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
