package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	codom "emporia/internal/domain/checkout"
	itemdom "emporia/internal/domain/item"
)

func catalogItem(id, name, price string) itemdom.Item {
	return itemdom.Item{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newCheckoutFixture() (*CheckoutUsecase, *fakeCheckoutRepo, *fakeItemRepo, *fixedClock) {
	items := newFakeItemRepo(
		catalogItem("item-a", "Alpha Mug", "10.00"),
		catalogItem("item-b", "Beta Lamp", "5.00"),
	)
	repo := newFakeCheckoutRepo()
	clock := &fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	return NewCheckoutUsecaseWithClock(repo, items, clock), repo, items, clock
}

func TestAddToCartCreatesLine(t *testing.T) {
	uc, repo, _, _ := newCheckoutFixture()
	ctx := context.Background()

	id, err := uc.AddToCart(ctx, "user-1", "item-a", 2)
	if err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	li, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if li.Quantity != 2 || li.LastStep != codom.StepAddedToCart || li.IsDone {
		t.Errorf("line = %+v", li)
	}
}

func TestAddToCartIncrementsExistingLine(t *testing.T) {
	uc, repo, _, clock := newCheckoutFixture()
	ctx := context.Background()

	first, err := uc.AddToCart(ctx, "user-1", "item-a", 2)
	if err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Minute)
	second, err := uc.AddToCart(ctx, "user-1", "item-a", 3)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Fatalf("second add created a new line %q, want increment of %q", second, first)
	}
	li, _ := repo.GetByID(ctx, first)
	if li.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", li.Quantity)
	}

	// Another user carting the same item gets their own line.
	other, err := uc.AddToCart(ctx, "user-2", "item-a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("lines of two users collapsed into one")
	}
}

func TestAddToCartUnknownItem(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	if _, err := uc.AddToCart(context.Background(), "user-1", "no-such-item", 1); !errors.Is(err, itemdom.ErrNotFound) {
		t.Errorf("err = %v, want item not found", err)
	}
}

func TestAddToCartValidation(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()
	for _, tc := range []struct {
		name   string
		user   string
		item   string
		qty    int
	}{
		{"empty user", "", "item-a", 1},
		{"empty item", "user-1", "  ", 1},
		{"zero qty", "user-1", "item-a", 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := uc.AddToCart(ctx, tc.user, tc.item, tc.qty); !errors.Is(err, ErrCheckoutInvalidArgument) {
				t.Errorf("err = %v, want ErrCheckoutInvalidArgument", err)
			}
		})
	}
}

func TestSetQuantityTouchesUpdatedAt(t *testing.T) {
	uc, repo, _, clock := newCheckoutFixture()
	ctx := context.Background()

	id, err := uc.AddToCart(ctx, "user-1", "item-a", 1)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := repo.GetByID(ctx, id)

	clock.advance(2 * time.Minute)
	if err := uc.SetQuantity(ctx, "user-1", id, 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}

	after, _ := repo.GetByID(ctx, id)
	if after.Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", after.Quantity)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestSetQuantityOwnershipAndValidation(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()

	id, err := uc.AddToCart(ctx, "user-1", "item-a", 1)
	if err != nil {
		t.Fatal(err)
	}

	if err := uc.SetQuantity(ctx, "user-2", id, 2); !errors.Is(err, ErrCheckoutForbidden) {
		t.Errorf("other user: err = %v, want ErrCheckoutForbidden", err)
	}
	if err := uc.SetQuantity(ctx, "user-1", id, 0); !errors.Is(err, ErrCheckoutInvalidArgument) {
		t.Errorf("qty 0: err = %v, want ErrCheckoutInvalidArgument", err)
	}
	if err := uc.SetQuantity(ctx, "user-1", "missing", 2); !errors.Is(err, codom.ErrNotFound) {
		t.Errorf("missing line: err = %v, want not found", err)
	}
}

func TestRemoveLineItem(t *testing.T) {
	uc, repo, _, _ := newCheckoutFixture()
	ctx := context.Background()

	id, err := uc.AddToCart(ctx, "user-1", "item-a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := uc.RemoveLineItem(ctx, "user-1", id); err != nil {
		t.Fatalf("RemoveLineItem: %v", err)
	}
	if _, err := repo.GetByID(ctx, id); !errors.Is(err, codom.ErrNotFound) {
		t.Error("line still present after removal")
	}

	// Removing a line that is not there surfaces not-found.
	if err := uc.RemoveLineItem(ctx, "user-1", id); !errors.Is(err, codom.ErrNotFound) {
		t.Errorf("second removal: err = %v, want not found", err)
	}
}

func TestRemoveCompletedLineIsRefused(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()

	id, err := uc.AddToCart(ctx, "user-1", "item-a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ProceedToCheckout(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.CompleteCheckout(ctx, "user-1", []string{id}); err != nil {
		t.Fatal(err)
	}

	if err := uc.RemoveLineItem(ctx, "user-1", id); !errors.Is(err, codom.ErrAlreadyDone) {
		t.Errorf("err = %v, want ErrAlreadyDone", err)
	}
}

func TestProceedToCheckout(t *testing.T) {
	uc, repo, _, _ := newCheckoutFixture()
	ctx := context.Background()

	idA, _ := uc.AddToCart(ctx, "user-1", "item-a", 2)
	idB, _ := uc.AddToCart(ctx, "user-1", "item-b", 1)

	n, err := uc.ProceedToCheckout(ctx, "user-1")
	if err != nil {
		t.Fatalf("ProceedToCheckout: %v", err)
	}
	if n != 2 {
		t.Errorf("transitioned = %d, want 2", n)
	}
	for _, id := range []string{idA, idB} {
		li, _ := repo.GetByID(ctx, id)
		if li.LastStep != codom.StepPayment {
			t.Errorf("line %s step = %q, want payment", id, li.LastStep)
		}
	}

	// All lines already at payment: nothing left to transition.
	if _, err := uc.ProceedToCheckout(ctx, "user-1"); !errors.Is(err, ErrCheckoutEmptyBatch) {
		t.Errorf("second proceed: err = %v, want ErrCheckoutEmptyBatch", err)
	}
}

func TestProceedToCheckoutEmptyCart(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	if _, err := uc.ProceedToCheckout(context.Background(), "user-1"); !errors.Is(err, ErrCheckoutEmptyBatch) {
		t.Errorf("err = %v, want ErrCheckoutEmptyBatch", err)
	}
}

func TestCompleteCheckoutMintsOrderID(t *testing.T) {
	uc, repo, _, _ := newCheckoutFixture()
	ctx := context.Background()

	idA, _ := uc.AddToCart(ctx, "user-1", "item-a", 2)
	idB, _ := uc.AddToCart(ctx, "user-1", "item-b", 1)
	if _, err := uc.ProceedToCheckout(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}

	orderID, err := uc.CompleteCheckout(ctx, "user-1", []string{idA, idB})
	if err != nil {
		t.Fatalf("CompleteCheckout: %v", err)
	}
	if orderID == "" {
		t.Fatal("empty order id")
	}

	for _, id := range []string{idA, idB} {
		li, _ := repo.GetByID(ctx, id)
		if !li.IsDone || li.LastStep != codom.StepCompleted {
			t.Errorf("line %s not completed: %+v", id, li)
		}
		if li.OrderID != orderID {
			t.Errorf("line %s order id = %q, want %q", id, li.OrderID, orderID)
		}
	}
}

func TestCompleteCheckoutRejectsForeignLines(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()

	mine, _ := uc.AddToCart(ctx, "user-1", "item-a", 1)
	theirs, _ := uc.AddToCart(ctx, "user-2", "item-a", 1)

	if _, err := uc.CompleteCheckout(ctx, "user-1", []string{mine, theirs}); !errors.Is(err, ErrCheckoutForbidden) {
		t.Errorf("err = %v, want ErrCheckoutForbidden", err)
	}
	if _, err := uc.CompleteCheckout(ctx, "user-1", []string{"", "  "}); !errors.Is(err, ErrCheckoutEmptyBatch) {
		t.Errorf("blank ids: err = %v, want ErrCheckoutEmptyBatch", err)
	}
}

func TestActiveCartHydratesLivePrices(t *testing.T) {
	uc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()

	uc.AddToCart(ctx, "user-1", "item-a", 2) // 2 x 10.00
	uc.AddToCart(ctx, "user-1", "item-b", 1) // 1 x 5.00

	view, err := uc.ActiveCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveCart: %v", err)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(view.Lines))
	}
	want := decimal.RequireFromString("25.00")
	if !view.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", view.Total, want)
	}
}

func TestActiveCartKeepsVanishedItemsAtZero(t *testing.T) {
	uc, _, items, _ := newCheckoutFixture()
	ctx := context.Background()

	uc.AddToCart(ctx, "user-1", "item-a", 3)
	delete(items.items, "item-a")

	view, err := uc.ActiveCart(ctx, "user-1")
	if err != nil {
		t.Fatalf("ActiveCart: %v", err)
	}
	if len(view.Lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(view.Lines))
	}
	line := view.Lines[0]
	if line.ItemName != "" || !line.UnitPrice.IsZero() || !line.Subtotal.IsZero() {
		t.Errorf("vanished item line = %+v", line)
	}
	if !view.Total.IsZero() {
		t.Errorf("Total = %s, want 0", view.Total)
	}
}

func TestCompletedOrdersEndToEnd(t *testing.T) {
	uc, repo, items, clock := newCheckoutFixture()
	orders := NewOrderUsecase(repo, items)
	ctx := context.Background()

	idA, _ := uc.AddToCart(ctx, "user-1", "item-a", 2)
	idB, _ := uc.AddToCart(ctx, "user-1", "item-b", 1)
	if _, err := uc.ProceedToCheckout(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Minute)
	orderID, err := uc.CompleteCheckout(ctx, "user-1", []string{idA, idB})
	if err != nil {
		t.Fatal(err)
	}

	// Cart is empty now.
	view, err := uc.ActiveCart(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Lines) != 0 {
		t.Errorf("active cart still has %d lines", len(view.Lines))
	}

	got, err := orders.CompletedOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("CompletedOrders: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d orders, want 1", len(got))
	}
	ord := got[0]
	if ord.ID != orderID {
		t.Errorf("order id = %q, want %q", ord.ID, orderID)
	}
	if len(ord.Lines) != 2 {
		t.Fatalf("order has %d lines, want 2", len(ord.Lines))
	}
	want := decimal.RequireFromString("25.00")
	if !ord.Total.Equal(want) {
		t.Errorf("Total = %s, want %s", ord.Total, want)
	}
}

func TestCompletedOrdersOmitsVanishedItems(t *testing.T) {
	uc, repo, items, _ := newCheckoutFixture()
	orders := NewOrderUsecase(repo, items)
	ctx := context.Background()

	idA, _ := uc.AddToCart(ctx, "user-1", "item-a", 1)
	idB, _ := uc.AddToCart(ctx, "user-1", "item-b", 1)
	if _, err := uc.ProceedToCheckout(ctx, "user-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.CompleteCheckout(ctx, "user-1", []string{idA, idB}); err != nil {
		t.Fatal(err)
	}

	delete(items.items, "item-b")

	got, err := orders.CompletedOrders(ctx, "user-1")
	if err != nil {
		t.Fatalf("CompletedOrders: %v", err)
	}
	if len(got) != 1 || len(got[0].Lines) != 1 {
		t.Fatalf("orders = %+v", got)
	}
	if got[0].Lines[0].ItemID != "item-a" {
		t.Errorf("surviving line item = %q, want item-a", got[0].Lines[0].ItemID)
	}
}

func TestCompletedOrdersEmptyHistory(t *testing.T) {
	_, repo, items, _ := newCheckoutFixture()
	orders := NewOrderUsecase(repo, items)

	got, err := orders.CompletedOrders(context.Background(), "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d orders, want 0", len(got))
	}

	if _, err := orders.CompletedOrders(context.Background(), "  "); !errors.Is(err, ErrOrderInvalidArgument) {
		t.Errorf("blank user: err = %v, want ErrOrderInvalidArgument", err)
	}
}
