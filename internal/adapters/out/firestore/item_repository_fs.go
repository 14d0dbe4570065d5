// internal/adapters/out/firestore/item_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	itemdom "emporia/internal/domain/item"
)

const (
	itemsCollection = "items"

	// maxCategoryScan bounds the in-memory fallback: a category larger than
	// this cannot be listed without the composite index.
	maxCategoryScan = 5000
)

// ErrCategoryTooLarge means the category exceeded the in-memory sort bound.
var ErrCategoryTooLarge = errors.New("item_repository_fs: category exceeds in-memory sort bound")

// ItemRepositoryFS implements item.Repository using Firestore.
//
// The catalog is read-only from this core; items are written by the admin
// surface. Listing without a category filter is a plain server-side ordered
// scan. Listing with a category filter needs a (categoryId, sort-field)
// composite index; when Firestore reports the index is missing
// (FailedPrecondition) the repository falls back to reading the whole
// category and sorting in memory — bounded by maxCategoryScan.
type ItemRepositoryFS struct {
	Client *firestore.Client
}

func NewItemRepositoryFS(client *firestore.Client) *ItemRepositoryFS {
	return &ItemRepositoryFS{Client: client}
}

var _ itemdom.Repository = (*ItemRepositoryFS)(nil)

func (r *ItemRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(itemsCollection)
}

func mapItemSort(k itemdom.SortKey) (field string, dir firestore.Direction) {
	switch k {
	case itemdom.SortPriceAsc:
		return "price", firestore.Asc
	case itemdom.SortPriceDesc:
		return "price", firestore.Desc
	default: // newest
		return "createdAt", firestore.Desc
	}
}

// ==============================
// GetByID
// ==============================

func (r *ItemRepositoryFS) GetByID(ctx context.Context, id string) (itemdom.Item, error) {
	if r == nil || r.Client == nil {
		return itemdom.Item{}, errors.New("item_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return itemdom.Item{}, itemdom.ErrInvalidID
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return itemdom.Item{}, itemdom.ErrNotFound
	}
	if err != nil {
		return itemdom.Item{}, err
	}
	return itemFromSnapshot(snap), nil
}

// ==============================
// ListByCursor
// ==============================

func (r *ItemRepositoryFS) ListByCursor(
	ctx context.Context,
	categoryID string,
	sortKey itemdom.SortKey,
	page itemdom.CursorPage,
) (itemdom.CursorPageResult, error) {
	if r == nil || r.Client == nil {
		return itemdom.CursorPageResult{}, errors.New("item_repository_fs: firestore client is nil")
	}

	limit := page.Limit
	if limit <= 0 || limit > 200 {
		limit = 24
	}

	var cur *pageCursor
	if after := strings.TrimSpace(page.After); after != "" {
		c, err := decodeCursor(after)
		if err != nil {
			return itemdom.CursorPageResult{}, err
		}
		cur = &c
	}

	categoryID = strings.TrimSpace(categoryID)

	if categoryID == "" {
		return r.listOrdered(ctx, r.col().Query, sortKey, limit, cur)
	}

	// Category filter + order-by wants the composite index; try it first.
	q := r.col().Where("categoryId", "==", categoryID)
	res, err := r.listOrdered(ctx, q, sortKey, limit, cur)
	if err == nil {
		return res, nil
	}
	if status.Code(err) != codes.FailedPrecondition {
		return itemdom.CursorPageResult{}, err
	}

	// Missing composite index: documented in-memory fallback.
	return r.listCategoryInMemory(ctx, categoryID, sortKey, limit, cur)
}

// listOrdered runs a server-side ordered scan with the id tie-breaker and
// the limit+1 trick to decide whether a next page exists.
func (r *ItemRepositoryFS) listOrdered(
	ctx context.Context,
	q firestore.Query,
	sortKey itemdom.SortKey,
	limit int,
	cur *pageCursor,
) (itemdom.CursorPageResult, error) {

	field, dir := mapItemSort(sortKey)
	q = q.OrderBy(field, dir).OrderBy(firestore.DocumentID, firestore.Asc)

	if cur != nil {
		switch field {
		case "price":
			if cur.Price == nil {
				return itemdom.CursorPageResult{}, ErrBadCursor
			}
			q = q.StartAfter(*cur.Price, cur.ID)
		default:
			if cur.CreatedAt == nil {
				return itemdom.CursorPageResult{}, ErrBadCursor
			}
			q = q.StartAfter(*cur.CreatedAt, cur.ID)
		}
	}

	q = q.Limit(limit + 1)

	iter := q.Documents(ctx)
	defer iter.Stop()

	var items []itemdom.Item
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return itemdom.CursorPageResult{}, err
		}
		items = append(items, itemFromSnapshot(doc))
	}

	var next *string
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		tok := encodeCursor(itemCursor(last, sortKey))
		next = &tok
	}

	return itemdom.CursorPageResult{Items: items, NextCursor: next}, nil
}

// listCategoryInMemory reads the full category unordered, sorts it by the
// requested key, and slices the page after the cursor id's position in the
// sorted slice. Correct ordering at the cost of a full-category read; the
// maxCategoryScan cap keeps the cost explicit instead of unbounded.
func (r *ItemRepositoryFS) listCategoryInMemory(
	ctx context.Context,
	categoryID string,
	sortKey itemdom.SortKey,
	limit int,
	cur *pageCursor,
) (itemdom.CursorPageResult, error) {

	iter := r.col().Where("categoryId", "==", categoryID).Documents(ctx)
	defer iter.Stop()

	var all []itemdom.Item
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return itemdom.CursorPageResult{}, err
		}
		all = append(all, itemFromSnapshot(doc))
		if len(all) > maxCategoryScan {
			return itemdom.CursorPageResult{}, ErrCategoryTooLarge
		}
	}

	sortItems(all, sortKey)

	idx := -1
	if cur != nil {
		for i := range all {
			if all[i].ID == cur.ID {
				idx = i
				break
			}
		}
		// A cursor id that vanished restarts from the top (idx stays -1):
		// forward-only semantics, no guessing at a midpoint.
	}

	start := idx + 1
	if start >= len(all) {
		return itemdom.CursorPageResult{Items: []itemdom.Item{}}, nil
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	pageItems := all[start:end]

	var next *string
	if end < len(all) && len(pageItems) == limit {
		tok := encodeCursor(itemCursor(pageItems[len(pageItems)-1], sortKey))
		next = &tok
	}

	return itemdom.CursorPageResult{Items: pageItems, NextCursor: next}, nil
}

// sortItems orders items by the requested key with the id tie-breaker, the
// same total order the server-side scan produces.
func sortItems(items []itemdom.Item, key itemdom.SortKey) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch key {
		case itemdom.SortPriceAsc:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c < 0
			}
		case itemdom.SortPriceDesc:
			if c := a.Price.Cmp(b.Price); c != 0 {
				return c > 0
			}
		default: // newest
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

func itemCursor(it itemdom.Item, key itemdom.SortKey) pageCursor {
	c := pageCursor{ID: it.ID}
	switch key {
	case itemdom.SortPriceAsc, itemdom.SortPriceDesc:
		p := it.Price.InexactFloat64()
		c.Price = &p
	default:
		t := it.CreatedAt
		c.CreatedAt = &t
	}
	return c
}

// ==============================
// SearchByNamePrefix
// ==============================

// SearchByNamePrefix matches names in the half-open range
// [prefix, prefix+"￿"), ordered by name. A prefix-match substitute for
// full-text search; no cursor.
func (r *ItemRepositoryFS) SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]itemdom.Item, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("item_repository_fs: firestore client is nil")
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []itemdom.Item{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	iter := r.col().
		Where("name", ">=", prefix).
		Where("name", "<", prefix+"￿").
		OrderBy("name", firestore.Asc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	items := make([]itemdom.Item, 0, limit)
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		items = append(items, itemFromSnapshot(doc))
	}
	return items, nil
}

// -----------------------------------------
// Firestore decode
// -----------------------------------------

// itemFromSnapshot parses raw document data by hand; DataTo on a struct
// breaks when older docs carry an int price or a missing images field.
func itemFromSnapshot(snap *firestore.DocumentSnapshot) itemdom.Item {
	raw := snap.Data()
	if raw == nil {
		return itemdom.Item{ID: snap.Ref.ID}
	}

	it := itemdom.Item{
		ID:          snap.Ref.ID,
		Name:        asString(raw["name"]),
		Description: asString(raw["description"]),
		Price:       decimal.NewFromFloat(asFloat(raw["price"])),
		BannerImage: asString(raw["bannerImage"]),
		Images:      asStrings(raw["images"]),
		CategoryID:  asString(raw["categoryId"]),
	}
	if t, ok := asTime(raw["createdAt"]); ok {
		it.CreatedAt = t
	}
	return it
}
