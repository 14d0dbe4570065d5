// internal/domain/item/repository_port.go
package item

import "context"

// CursorPage is a forward-only cursor request.
// After is the opaque token returned by the previous page (empty = first page).
type CursorPage struct {
	After string
	Limit int
}

// CursorPageResult carries one page plus the resume token.
// NextCursor is nil when the scan is exhausted.
type CursorPageResult struct {
	Items      []Item
	NextCursor *string
}

// Repository is the catalog read port.
//
// ListByCursor resumes a sorted scan after the cursor. When categoryID is
// non-empty and the store cannot combine the equality filter with the
// requested order (missing composite index), the implementation falls back
// to an in-memory sort of the full category; cursor semantics stay forward-only.
type Repository interface {
	GetByID(ctx context.Context, id string) (Item, error)
	ListByCursor(ctx context.Context, categoryID string, sort SortKey, page CursorPage) (CursorPageResult, error)
	SearchByNamePrefix(ctx context.Context, prefix string, limit int) ([]Item, error)
}
