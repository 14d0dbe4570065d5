package checkout

import (
	"errors"
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLine(t *testing.T) *LineItem {
	t.Helper()
	li, err := NewLineItem("user-1", "item-1", 2, t0)
	if err != nil {
		t.Fatalf("NewLineItem: %v", err)
	}
	li.ID = "li-1"
	return li
}

func TestNewLineItem(t *testing.T) {
	li := newTestLine(t)

	if li.LastStep != StepAddedToCart {
		t.Errorf("LastStep = %q, want %q", li.LastStep, StepAddedToCart)
	}
	if li.IsDone {
		t.Error("new line must not be done")
	}
	if li.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", li.Quantity)
	}
	if !li.CreatedAt.Equal(t0) || !li.UpdatedAt.Equal(t0) {
		t.Error("timestamps not stamped with now")
	}
}

func TestNewLineItemRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		userID  string
		itemID  string
		qty     int
		wantErr error
	}{
		{"empty user", "", "item-1", 1, ErrInvalidLineItem},
		{"blank user", "   ", "item-1", 1, ErrInvalidLineItem},
		{"empty item", "user-1", "", 1, ErrInvalidLineItem},
		{"zero qty", "user-1", "item-1", 0, ErrInvalidQuantity},
		{"negative qty", "user-1", "item-1", -3, ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewLineItem(tc.userID, tc.itemID, tc.qty, t0); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAdvanceToMovesForward(t *testing.T) {
	li := newTestLine(t)
	t1 := t0.Add(time.Minute)

	changed, err := li.AdvanceTo(StepPayment, t1)
	if err != nil {
		t.Fatalf("AdvanceTo(payment): %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if li.LastStep != StepPayment || li.IsDone {
		t.Errorf("after payment: step=%q done=%v", li.LastStep, li.IsDone)
	}
	if !li.UpdatedAt.Equal(t1) {
		t.Error("UpdatedAt not touched")
	}

	changed, err = li.AdvanceTo(StepCompleted, t1.Add(time.Minute))
	if err != nil {
		t.Fatalf("AdvanceTo(completed): %v", err)
	}
	if !changed || li.LastStep != StepCompleted || !li.IsDone {
		t.Errorf("after completed: changed=%v step=%q done=%v", changed, li.LastStep, li.IsDone)
	}
}

func TestAdvanceToIsMonotonic(t *testing.T) {
	li := newTestLine(t)
	t1 := t0.Add(time.Minute)
	if _, err := li.AdvanceTo(StepPayment, t1); err != nil {
		t.Fatal(err)
	}

	// Same step again: no-op, no error.
	changed, err := li.AdvanceTo(StepPayment, t1.Add(time.Minute))
	if err != nil || changed {
		t.Errorf("re-advance to same step: changed=%v err=%v", changed, err)
	}
	if !li.UpdatedAt.Equal(t1) {
		t.Error("no-op transition must not touch UpdatedAt")
	}

	// Backward: also a no-op.
	changed, err = li.AdvanceTo(StepAddedToCart, t1.Add(time.Minute))
	if err != nil || changed {
		t.Errorf("backward advance: changed=%v err=%v", changed, err)
	}
	if li.LastStep != StepPayment {
		t.Errorf("step regressed to %q", li.LastStep)
	}
}

func TestAdvanceToRejectsUnknownStep(t *testing.T) {
	li := newTestLine(t)
	if _, err := li.AdvanceTo(Step("shipped"), t0); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("err = %v, want ErrInvalidStep", err)
	}
}

func TestCompleteStampsOrderID(t *testing.T) {
	li := newTestLine(t)
	t1 := t0.Add(time.Hour)

	if err := li.Complete("ord-42", t1); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if li.OrderID != "ord-42" {
		t.Errorf("OrderID = %q, want ord-42", li.OrderID)
	}
	if li.LastStep != StepCompleted || !li.IsDone {
		t.Errorf("step=%q done=%v", li.LastStep, li.IsDone)
	}

	// Completing again keeps the first order id.
	if err := li.Complete("ord-99", t1.Add(time.Minute)); err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if li.OrderID != "ord-42" {
		t.Errorf("OrderID overwritten to %q", li.OrderID)
	}
}

func TestSetQuantity(t *testing.T) {
	li := newTestLine(t)
	t1 := t0.Add(time.Minute)

	if err := li.SetQuantity(5, t1); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if li.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", li.Quantity)
	}
	if li.UpdatedAt.Before(li.CreatedAt) {
		t.Error("UpdatedAt before CreatedAt")
	}

	if err := li.SetQuantity(0, t1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("qty 0: err = %v, want ErrInvalidQuantity", err)
	}

	if err := li.Complete("ord-1", t1); err != nil {
		t.Fatal(err)
	}
	if err := li.SetQuantity(3, t1); !errors.Is(err, ErrAlreadyDone) {
		t.Errorf("done line: err = %v, want ErrAlreadyDone", err)
	}
}

func TestRemovable(t *testing.T) {
	li := newTestLine(t)
	if !li.Removable() {
		t.Error("active line should be removable")
	}
	if _, err := li.AdvanceTo(StepPayment, t0.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if !li.Removable() {
		t.Error("payment-step line is still active, should be removable")
	}
	if err := li.Complete("ord-1", t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if li.Removable() {
		t.Error("completed line must never be removable")
	}

	var nilLine *LineItem
	if nilLine.Removable() {
		t.Error("nil line reported removable")
	}
}

func TestValidateDoneStepConsistency(t *testing.T) {
	li := newTestLine(t)
	li.IsDone = true // done without completed step
	if err := li.validate(false); !errors.Is(err, ErrInvalidLineItem) {
		t.Errorf("err = %v, want ErrInvalidLineItem", err)
	}
}
