// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	codom "emporia/internal/domain/checkout"
	itemdom "emporia/internal/domain/item"
	orderdom "emporia/internal/domain/order"
)

var (
	ErrCheckoutInvalidArgument = errors.New("checkout_usecase: invalid argument")
	ErrCheckoutForbidden       = errors.New("checkout_usecase: line item belongs to another user")
	ErrCheckoutEmptyBatch      = errors.New("checkout_usecase: no line items to transition")
)

// CartLine is one hydrated active-cart row.
type CartLine struct {
	Line      codom.LineItem
	ItemName  string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// CartView is the active cart with its live-priced total.
type CartView struct {
	Lines []CartLine
	Total decimal.Decimal
}

// OrderNotifier delivers a confirmation for a completed order. Best-effort:
// failures are logged, never surfaced to the buyer.
type OrderNotifier interface {
	NotifyOrderCompleted(ctx context.Context, userID string, ord orderdom.Order) error
}

// OrderExporter mirrors completed order lines into the reporting store.
// Best-effort, same policy as OrderNotifier.
type OrderExporter interface {
	ExportCompleted(ctx context.Context, orderID string, lines []codom.LineItem) error
}

// CheckoutUsecase drives a line item through
// added_to_cart → payment → completed.
//
// The user id arrives as an explicit parameter on every call — there is no
// ambient session state. Ownership is checked before any mutation.
type CheckoutUsecase struct {
	repo  codom.Repository
	items itemdom.Repository
	clock Clock

	notifier OrderNotifier
	exporter OrderExporter
}

func NewCheckoutUsecase(repo codom.Repository, items itemdom.Repository) *CheckoutUsecase {
	return &CheckoutUsecase{repo: repo, items: items, clock: systemClock{}}
}

// NewCheckoutUsecaseWithClock is useful for tests.
func NewCheckoutUsecaseWithClock(repo codom.Repository, items itemdom.Repository, clock Clock) *CheckoutUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	return &CheckoutUsecase{repo: repo, items: items, clock: clock}
}

// WithNotifier / WithExporter attach the optional post-completion hooks.
func (uc *CheckoutUsecase) WithNotifier(n OrderNotifier) *CheckoutUsecase {
	uc.notifier = n
	return uc
}

func (uc *CheckoutUsecase) WithExporter(e OrderExporter) *CheckoutUsecase {
	uc.exporter = e
	return uc
}

// ==============================
// Mutations
// ==============================

// AddToCart creates an added_to_cart line for (userID, itemID).
//
// One active line per (user, item): if one already exists its quantity is
// incremented instead of creating a duplicate row. The read-before-write
// check has a race window; two concurrent adds may still produce two rows,
// which the cart view renders as independent lines.
func (uc *CheckoutUsecase) AddToCart(ctx context.Context, userID, itemID string, qty int) (string, error) {
	uid := strings.TrimSpace(userID)
	iid := strings.TrimSpace(itemID)
	if uid == "" || iid == "" {
		return "", ErrCheckoutInvalidArgument
	}
	if qty < 1 {
		return "", ErrCheckoutInvalidArgument
	}

	// The item must exist; its price is re-read later, not snapshotted.
	if _, err := uc.items.GetByID(ctx, iid); err != nil {
		return "", err
	}

	now := uc.clock.Now()

	existing, err := uc.repo.ListActiveByItem(ctx, uid, iid)
	if err != nil {
		return "", err
	}
	if len(existing) > 0 {
		li := existing[0]
		if err := li.SetQuantity(li.Quantity+qty, now); err != nil {
			return "", err
		}
		if err := uc.repo.Update(ctx, &li); err != nil {
			return "", err
		}
		return li.ID, nil
	}

	li, err := codom.NewLineItem(uid, iid, qty, now)
	if err != nil {
		return "", err
	}
	return uc.repo.Create(ctx, li)
}

// SetQuantity replaces the quantity of an active line owned by userID.
func (uc *CheckoutUsecase) SetQuantity(ctx context.Context, userID, lineItemID string, qty int) error {
	if qty < 1 {
		return ErrCheckoutInvalidArgument
	}

	li, err := uc.ownedLine(ctx, userID, lineItemID)
	if err != nil {
		return err
	}

	if err := li.SetQuantity(qty, uc.clock.Now()); err != nil {
		return err
	}
	return uc.repo.Update(ctx, li)
}

// RemoveLineItem physically deletes an active line owned by userID.
// Completed lines are history and cannot be removed.
func (uc *CheckoutUsecase) RemoveLineItem(ctx context.Context, userID, lineItemID string) error {
	li, err := uc.ownedLine(ctx, userID, lineItemID)
	if err != nil {
		return err
	}
	if !li.Removable() {
		return codom.ErrAlreadyDone
	}
	return uc.repo.Delete(ctx, li.ID)
}

// AdvanceStep moves a single owned line forward. A target at or behind the
// current step is silently ignored (idempotent retries).
func (uc *CheckoutUsecase) AdvanceStep(ctx context.Context, userID, lineItemID string, step codom.Step) error {
	if !codom.IsValidStep(step) {
		return ErrCheckoutInvalidArgument
	}

	li, err := uc.ownedLine(ctx, userID, lineItemID)
	if err != nil {
		return err
	}

	changed, err := li.AdvanceTo(step, uc.clock.Now())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return uc.repo.Update(ctx, li)
}

// ProceedToCheckout moves every added_to_cart line of the user to payment in
// one transaction. Returns the number of lines transitioned.
func (uc *CheckoutUsecase) ProceedToCheckout(ctx context.Context, userID string) (int, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return 0, ErrCheckoutInvalidArgument
	}

	active, err := uc.repo.ListActive(ctx, uid)
	if err != nil {
		return 0, err
	}

	ids := make([]string, 0, len(active))
	for _, li := range active {
		if li.LastStep == codom.StepAddedToCart {
			ids = append(ids, li.ID)
		}
	}
	if len(ids) == 0 {
		return 0, ErrCheckoutEmptyBatch
	}

	return uc.repo.AdvanceSteps(ctx, ids, codom.StepPayment, uc.clock.Now())
}

// CompleteCheckout finalizes the given lines after payment settles: mints a
// stable order id, flips them to completed/is_done in one transaction, then
// fires the confirmation notification and reporting export best-effort.
// Returns the minted order id.
func (uc *CheckoutUsecase) CompleteCheckout(ctx context.Context, userID string, lineItemIDs []string) (string, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", ErrCheckoutInvalidArgument
	}

	ids := make([]string, 0, len(lineItemIDs))
	for _, id := range lineItemIDs {
		if t := strings.TrimSpace(id); t != "" {
			ids = append(ids, t)
		}
	}
	if len(ids) == 0 {
		return "", ErrCheckoutEmptyBatch
	}

	// Ownership gate: every id must be one of the caller's active lines.
	active, err := uc.repo.ListActive(ctx, uid)
	if err != nil {
		return "", err
	}
	owned := make(map[string]bool, len(active))
	for _, li := range active {
		owned[li.ID] = true
	}
	for _, id := range ids {
		if !owned[id] {
			return "", ErrCheckoutForbidden
		}
	}

	orderID := uuid.NewString()
	now := uc.clock.Now()

	if _, err := uc.repo.CompleteAll(ctx, ids, orderID, now); err != nil {
		return "", err
	}

	uc.afterCompletion(ctx, uid, orderID, ids)
	return orderID, nil
}

// afterCompletion runs the post-commit hooks. Failures are logged and
// swallowed: the order is already completed and must stay completed.
func (uc *CheckoutUsecase) afterCompletion(ctx context.Context, userID, orderID string, ids []string) {
	if uc.notifier == nil && uc.exporter == nil {
		return
	}

	lines := make([]codom.LineItem, 0, len(ids))
	for _, id := range ids {
		li, err := uc.repo.GetByID(ctx, id)
		if err != nil {
			log.Printf("[checkout_usecase] post-completion reread failed id=%s: %v", id, err)
			continue
		}
		lines = append(lines, *li)
	}
	if len(lines) == 0 {
		return
	}

	if uc.exporter != nil {
		if err := uc.exporter.ExportCompleted(ctx, orderID, lines); err != nil {
			log.Printf("[checkout_usecase] order export failed orderId=%s: %v", orderID, err)
		}
	}

	if uc.notifier != nil {
		hydrated := uc.hydrate(ctx, lines)
		orders := orderdom.Group(lines, hydrated)
		if len(orders) > 0 {
			if err := uc.notifier.NotifyOrderCompleted(ctx, userID, orders[0]); err != nil {
				log.Printf("[checkout_usecase] order notification failed orderId=%s: %v", orderID, err)
			}
		}
	}
}

// ==============================
// Queries
// ==============================

// ActiveCart returns the user's is_done=false lines, any step, with the
// live-priced total. Lines whose item has vanished are kept in the list
// (the row is still the user's) but priced at zero and unnamed.
func (uc *CheckoutUsecase) ActiveCart(ctx context.Context, userID string) (CartView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return CartView{}, ErrCheckoutInvalidArgument
	}

	active, err := uc.repo.ListActive(ctx, uid)
	if err != nil {
		return CartView{}, err
	}

	view := CartView{Lines: make([]CartLine, 0, len(active)), Total: decimal.Zero}
	for _, li := range active {
		row := CartLine{Line: li, UnitPrice: decimal.Zero, Subtotal: decimal.Zero}
		it, err := uc.items.GetByID(ctx, li.ItemID)
		switch {
		case err == nil:
			row.ItemName = it.Name
			row.UnitPrice = it.Price
			row.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
		case errors.Is(err, itemdom.ErrNotFound):
			// item deleted from the catalog after it was carted
		default:
			return CartView{}, err
		}
		view.Lines = append(view.Lines, row)
		view.Total = view.Total.Add(row.Subtotal)
	}
	return view, nil
}

func (uc *CheckoutUsecase) ownedLine(ctx context.Context, userID, lineItemID string) (*codom.LineItem, error) {
	uid := strings.TrimSpace(userID)
	lid := strings.TrimSpace(lineItemID)
	if uid == "" || lid == "" {
		return nil, ErrCheckoutInvalidArgument
	}

	li, err := uc.repo.GetByID(ctx, lid)
	if err != nil {
		return nil, err
	}
	if li.UserID != uid {
		return nil, ErrCheckoutForbidden
	}
	return li, nil
}

// hydrate builds order rows for completed lines; item lookups that 404 are
// dropped (the order view omits the vanished sub-record).
func (uc *CheckoutUsecase) hydrate(ctx context.Context, lines []codom.LineItem) map[string]orderdom.Line {
	out := make(map[string]orderdom.Line, len(lines))
	for _, li := range lines {
		it, err := uc.items.GetByID(ctx, li.ItemID)
		if err != nil {
			continue
		}
		sub := it.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
		out[li.ID] = orderdom.Line{
			LineItemID: li.ID,
			ItemID:     li.ItemID,
			ItemName:   it.Name,
			Quantity:   li.Quantity,
			UnitPrice:  it.Price,
			Subtotal:   sub,
		}
	}
	return out
}
