// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"

	catdom "emporia/internal/domain/category"
	itemdom "emporia/internal/domain/item"
)

var (
	ErrCatalogInvalidArgument = errors.New("catalog_usecase: invalid argument")
)

// ItemPage is one listing page with its resume token (nil = end of data).
type ItemPage struct {
	Items      []itemdom.Item
	NextCursor *string
}

// CategoryView is a category plus its hydrated parent name (empty for
// top-level categories or when the parent lookup 404s).
type CategoryView struct {
	catdom.Category
	ParentName string
}

// CatalogUsecase serves the storefront read path: filtered/sorted listing
// with forward-only cursors, prefix search, and detail lookups.
//
// It is stateless and performs no retries; store errors propagate unchanged
// to the caller.
type CatalogUsecase struct {
	items      itemdom.Repository
	categories catdom.Repository
}

func NewCatalogUsecase(items itemdom.Repository, categories catdom.Repository) *CatalogUsecase {
	return &CatalogUsecase{items: items, categories: categories}
}

// ListItems resolves a (category filter, sort order, page) tuple into one
// page. categoryID may be empty (no filter); cursor may be empty (page 1).
func (uc *CatalogUsecase) ListItems(
	ctx context.Context,
	categoryID string,
	sortBy itemdom.SortKey,
	pageSize int,
	cursor string,
) (ItemPage, error) {
	if uc == nil || uc.items == nil {
		return ItemPage{}, errors.New("catalog_usecase: not configured")
	}
	if !itemdom.IsValidSortKey(sortBy) {
		return ItemPage{}, ErrCatalogInvalidArgument
	}
	if pageSize < 1 {
		return ItemPage{}, ErrCatalogInvalidArgument
	}

	res, err := uc.items.ListByCursor(ctx, strings.TrimSpace(categoryID), sortBy, itemdom.CursorPage{
		After: strings.TrimSpace(cursor),
		Limit: pageSize,
	})
	if err != nil {
		return ItemPage{}, err
	}
	return ItemPage{Items: res.Items, NextCursor: res.NextCursor}, nil
}

// SearchItems is a name-prefix lookup, ordered by name. No cursor.
func (uc *CatalogUsecase) SearchItems(ctx context.Context, prefix string, limit int) ([]itemdom.Item, error) {
	if uc == nil || uc.items == nil {
		return nil, errors.New("catalog_usecase: not configured")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []itemdom.Item{}, nil
	}
	return uc.items.SearchByNamePrefix(ctx, prefix, limit)
}

func (uc *CatalogUsecase) GetItem(ctx context.Context, id string) (itemdom.Item, error) {
	if uc == nil || uc.items == nil {
		return itemdom.Item{}, errors.New("catalog_usecase: not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return itemdom.Item{}, ErrCatalogInvalidArgument
	}
	return uc.items.GetByID(ctx, id)
}

func (uc *CatalogUsecase) GetCategory(ctx context.Context, id string) (catdom.Category, error) {
	if uc == nil || uc.categories == nil {
		return catdom.Category{}, errors.New("catalog_usecase: not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return catdom.Category{}, ErrCatalogInvalidArgument
	}
	return uc.categories.GetByID(ctx, id)
}

// ListSubcategories returns the direct children of a category.
func (uc *CatalogUsecase) ListSubcategories(ctx context.Context, parentID string) ([]catdom.Category, error) {
	if uc == nil || uc.categories == nil {
		return nil, errors.New("catalog_usecase: not configured")
	}
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return nil, ErrCatalogInvalidArgument
	}
	return uc.categories.ListChildren(ctx, parentID)
}

// ListCategories returns every category with its parent name hydrated.
// A parent that no longer exists leaves ParentName empty (skip and continue).
func (uc *CatalogUsecase) ListCategories(ctx context.Context) ([]CategoryView, error) {
	if uc == nil || uc.categories == nil {
		return nil, errors.New("catalog_usecase: not configured")
	}

	cats, err := uc.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	out := make([]CategoryView, 0, len(cats))
	for _, c := range cats {
		v := CategoryView{Category: c}
		if c.ParentCategoryID != nil {
			if n, ok := names[*c.ParentCategoryID]; ok {
				v.ParentName = n
			} else if p, err := uc.categories.GetByID(ctx, *c.ParentCategoryID); err == nil {
				v.ParentName = p.Name
			} else if !errors.Is(err, catdom.ErrNotFound) {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}
