package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"emporia/internal/domain/checkout"
)

func completedLine(id, orderID string, at time.Time) checkout.LineItem {
	return checkout.LineItem{
		ID:        id,
		UserID:    "user-1",
		ItemID:    "item-" + id,
		Quantity:  1,
		IsDone:    true,
		LastStep:  checkout.StepCompleted,
		OrderID:   orderID,
		CreatedAt: at.Add(-time.Hour),
		UpdatedAt: at,
	}
}

func row(lineItemID string, qty int, price string) Line {
	p := decimal.RequireFromString(price)
	return Line{
		LineItemID: lineItemID,
		ItemID:     "item-" + lineItemID,
		ItemName:   "Item " + lineItemID,
		Quantity:   qty,
		UnitPrice:  p,
		Subtotal:   p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestGroupByOrderID(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	completed := []checkout.LineItem{
		completedLine("a", "ord-1", at),
		completedLine("b", "ord-1", at.Add(time.Second)),
		completedLine("c", "ord-2", at.Add(time.Hour)),
	}
	hydrated := map[string]Line{
		"a": row("a", 2, "10.00"),
		"b": row("b", 1, "5.00"),
		"c": row("c", 3, "1.50"),
	}

	orders := Group(completed, hydrated)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}

	// Newest first.
	if orders[0].ID != "ord-2" || orders[1].ID != "ord-1" {
		t.Errorf("order ids = %q, %q", orders[0].ID, orders[1].ID)
	}

	first := orders[1]
	if len(first.Lines) != 2 {
		t.Fatalf("ord-1 has %d lines, want 2", len(first.Lines))
	}
	want := decimal.RequireFromString("25.00")
	if !first.Total.Equal(want) {
		t.Errorf("ord-1 total = %s, want %s", first.Total, want)
	}
	if !first.CompletedAt.Equal(at.Add(time.Second)) {
		t.Errorf("CompletedAt = %v, want latest line time", first.CompletedAt)
	}
}

func TestGroupLegacyLinesFallBackToDate(t *testing.T) {
	morning := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	completed := []checkout.LineItem{
		completedLine("a", "", morning),
		completedLine("b", "", evening),
		completedLine("c", "", nextDay),
	}
	hydrated := map[string]Line{
		"a": row("a", 1, "1.00"),
		"b": row("b", 1, "2.00"),
		"c": row("c", 1, "4.00"),
	}

	orders := Group(completed, hydrated)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2 (one per day)", len(orders))
	}
	if orders[0].ID != "2025-03-11" || orders[1].ID != "2025-03-10" {
		t.Errorf("order ids = %q, %q", orders[0].ID, orders[1].ID)
	}
	if !orders[1].Total.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("same-day total = %s, want 3.00", orders[1].Total)
	}
}

func TestGroupDropsUnhydratedLines(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	completed := []checkout.LineItem{
		completedLine("a", "ord-1", at),
		completedLine("gone", "ord-1", at), // item vanished, no hydrated row
	}
	hydrated := map[string]Line{"a": row("a", 1, "9.99")}

	orders := Group(completed, hydrated)
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}
	if len(orders[0].Lines) != 1 || orders[0].Lines[0].LineItemID != "a" {
		t.Errorf("vanished line not dropped: %+v", orders[0].Lines)
	}
	if !orders[0].Total.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("total = %s, want 9.99", orders[0].Total)
	}
}

func TestGroupSkipsActiveLines(t *testing.T) {
	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	active := completedLine("a", "ord-1", at)
	active.IsDone = false
	active.LastStep = checkout.StepPayment

	orders := Group([]checkout.LineItem{active}, map[string]Line{"a": row("a", 1, "1.00")})
	if len(orders) != 0 {
		t.Fatalf("active line grouped into %d orders, want 0", len(orders))
	}
}

func TestGroupEmpty(t *testing.T) {
	if got := Group(nil, nil); len(got) != 0 {
		t.Errorf("Group(nil) = %d orders, want 0", len(got))
	}
}
