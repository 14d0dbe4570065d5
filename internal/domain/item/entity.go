// internal/domain/item/entity.go
package item

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("item: not found")
	ErrInvalidItem    = errors.New("item: invalid")
	ErrInvalidID      = errors.New("item: invalid id")
	ErrInvalidName    = errors.New("item: invalid name")
	ErrInvalidPrice   = errors.New("item: invalid price")
	ErrInvalidSortKey = errors.New("item: invalid sort key")
)

// SortKey mirrors the storefront listing order options.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

func IsValidSortKey(k SortKey) bool {
	switch k {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	default:
		return false
	}
}

// Item is a catalog product.
//
// - Price is a positive decimal; it is stored as a number field in Firestore
//   and re-read live when order totals are computed.
// - CategoryID references the categories collection.
// - Items are created/edited only through the admin surface; this core reads them.
type Item struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	BannerImage string
	Images      []string
	CategoryID  string
	CreatedAt   time.Time
}

func (i *Item) Validate() error {
	if i == nil {
		return ErrInvalidItem
	}
	if strings.TrimSpace(i.ID) == "" {
		return ErrInvalidID
	}
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidName
	}
	if !i.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if i.CreatedAt.IsZero() {
		return ErrInvalidItem
	}
	return nil
}
