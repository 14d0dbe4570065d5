// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("checkout: not found")
	ErrInvalidLineItem = errors.New("checkout: invalid line item")
	ErrInvalidQuantity = errors.New("checkout: quantity must be >= 1")
	ErrInvalidStep     = errors.New("checkout: invalid step")
	ErrAlreadyDone     = errors.New("checkout: line item already completed")
	ErrNotOwner        = errors.New("checkout: line item belongs to another user")
)

// Step is the checkout pipeline position of a line item.
// The sequence is strictly forward: added_to_cart → payment → completed.
type Step string

const (
	StepAddedToCart Step = "added_to_cart"
	StepPayment     Step = "payment"
	StepCompleted   Step = "completed"
)

func IsValidStep(s Step) bool {
	switch s {
	case StepAddedToCart, StepPayment, StepCompleted:
		return true
	default:
		return false
	}
}

// rank orders steps for the monotonic guard. Unknown steps rank lowest.
func rank(s Step) int {
	switch s {
	case StepAddedToCart:
		return 1
	case StepPayment:
		return 2
	case StepCompleted:
		return 3
	default:
		return 0
	}
}

// LineItem is one (user, item, quantity) cart entry tracked from cart to
// completed order.
//
// - IsDone is true iff LastStep == completed; such records are never deleted.
// - OrderID is minted when a checkout batch completes and groups the lines
//   of one purchase. Records written before order ids existed have it empty.
// - Reason annotates cancellations/refunds and may be empty.
type LineItem struct {
	ID       string
	UserID   string
	ItemID   string
	Quantity int
	IsDone   bool
	LastStep Step
	Reason   string
	OrderID  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLineItem creates a fresh cart line in the added_to_cart step.
func NewLineItem(userID, itemID string, qty int, now time.Time) (*LineItem, error) {
	uid := strings.TrimSpace(userID)
	iid := strings.TrimSpace(itemID)
	if uid == "" || iid == "" {
		return nil, ErrInvalidLineItem
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	li := &LineItem{
		UserID:    uid,
		ItemID:    iid,
		Quantity:  qty,
		IsDone:    false,
		LastStep:  StepAddedToCart,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := li.validate(true); err != nil {
		return nil, err
	}
	return li, nil
}

// SetQuantity replaces the quantity of an active line.
func (li *LineItem) SetQuantity(qty int, now time.Time) error {
	if li == nil {
		return ErrInvalidLineItem
	}
	if li.IsDone {
		return ErrAlreadyDone
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	li.Quantity = qty
	li.touch(now)
	return li.validate(false)
}

// AdvanceTo moves the line forward to step.
//
// The step sequence is monotonic: a target that is not strictly ahead of the
// current step is ignored (changed=false, no error), which makes re-issued
// batch transitions idempotent. Reaching completed also flips IsDone.
func (li *LineItem) AdvanceTo(step Step, now time.Time) (changed bool, err error) {
	if li == nil {
		return false, ErrInvalidLineItem
	}
	if !IsValidStep(step) {
		return false, ErrInvalidStep
	}
	if rank(step) <= rank(li.LastStep) {
		return false, nil
	}

	li.LastStep = step
	if step == StepCompleted {
		li.IsDone = true
	}
	li.touch(now)
	return true, li.validate(false)
}

// Complete finalizes the line and stamps the minted order id.
func (li *LineItem) Complete(orderID string, now time.Time) error {
	if li == nil {
		return ErrInvalidLineItem
	}
	if _, err := li.AdvanceTo(StepCompleted, now); err != nil {
		return err
	}
	if oid := strings.TrimSpace(orderID); oid != "" {
		li.OrderID = oid
	}
	return nil
}

// Removable reports whether physical deletion is allowed (active lines only).
func (li *LineItem) Removable() bool {
	return li != nil && !li.IsDone
}

func (li *LineItem) touch(now time.Time) {
	li.UpdatedAt = now
}

func (li *LineItem) validate(allowEmptyID bool) error {
	if li == nil {
		return ErrInvalidLineItem
	}
	if !allowEmptyID && strings.TrimSpace(li.ID) == "" {
		return ErrInvalidLineItem
	}
	if strings.TrimSpace(li.UserID) == "" || strings.TrimSpace(li.ItemID) == "" {
		return ErrInvalidLineItem
	}
	if li.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if !IsValidStep(li.LastStep) {
		return ErrInvalidStep
	}
	// IsDone and the completed step move together.
	if li.IsDone != (li.LastStep == StepCompleted) {
		return ErrInvalidLineItem
	}
	if li.CreatedAt.IsZero() || li.UpdatedAt.IsZero() {
		return ErrInvalidLineItem
	}
	if li.UpdatedAt.Before(li.CreatedAt) {
		return ErrInvalidLineItem
	}
	return nil
}
