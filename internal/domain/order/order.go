// internal/domain/order/order.go
package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"emporia/internal/domain/checkout"
)

// Order is a derived view: completed line items grouped into one purchase.
// It is never persisted; the checkout records are the source of truth.
//
// Grouping key:
//   - lines completed by this codebase share a minted OrderID
//   - legacy lines without one fall back to the UTC calendar date of UpdatedAt
type Order struct {
	ID          string
	CompletedAt time.Time
	Lines       []Line
	Total       decimal.Decimal
}

// Line is one hydrated order row. Price is the item's live price at read
// time; lines whose item has vanished are omitted before grouping.
type Line struct {
	LineItemID string
	ItemID     string
	ItemName   string
	Quantity   int
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
}

// groupKey returns the stable order id when present, else the UTC date.
func groupKey(li checkout.LineItem) string {
	if li.OrderID != "" {
		return li.OrderID
	}
	return li.UpdatedAt.UTC().Format("2006-01-02")
}

// Group assembles orders out of completed line items and their hydrated rows.
// hydrated maps line-item id to its row; ids missing from the map (item
// lookups that 404ed) are dropped. Orders are returned newest first.
func Group(completed []checkout.LineItem, hydrated map[string]Line) []Order {
	byKey := map[string]*Order{}

	for _, li := range completed {
		if !li.IsDone {
			continue
		}
		row, ok := hydrated[li.ID]
		if !ok {
			continue
		}

		key := groupKey(li)
		o := byKey[key]
		if o == nil {
			o = &Order{ID: key, CompletedAt: li.UpdatedAt, Total: decimal.Zero}
			byKey[key] = o
		}
		if li.UpdatedAt.After(o.CompletedAt) {
			o.CompletedAt = li.UpdatedAt
		}
		o.Lines = append(o.Lines, row)
		o.Total = o.Total.Add(row.Subtotal)
	}

	out := make([]Order, 0, len(byKey))
	for _, o := range byKey {
		sort.Slice(o.Lines, func(i, j int) bool { return o.Lines[i].LineItemID < o.Lines[j].LineItemID })
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.After(out[j].CompletedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
