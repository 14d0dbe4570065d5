// internal/domain/category/entity.go
package category

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("category: not found")
	ErrInvalidCategory = errors.New("category: invalid")
)

// Category is one node of the two-level catalog tree.
// ParentCategoryID is nil for top-level categories and points at the parent
// for subcategories. Deletion guards (no delete while items/children exist)
// live on the admin surface, not here.
type Category struct {
	ID               string
	Name             string
	Description      string
	Image            string
	ParentCategoryID *string
	CreatedAt        time.Time
}

func (c *Category) Validate() error {
	if c == nil {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCategory
	}
	if c.ParentCategoryID != nil && strings.TrimSpace(*c.ParentCategoryID) == "" {
		return ErrInvalidCategory
	}
	return nil
}

// IsTopLevel reports whether the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c != nil && c.ParentCategoryID == nil
}
