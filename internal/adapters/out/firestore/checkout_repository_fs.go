// internal/adapters/out/firestore/checkout_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	codom "emporia/internal/domain/checkout"
)

const (
	checkoutsCollection = "checkouts"

	// maxBatchWrites is the Firestore per-transaction write cap.
	maxBatchWrites = 500
)

var ErrBatchTooLarge = errors.New("checkout_repository_fs: batch exceeds transaction write limit")

// CheckoutRepositoryFS implements checkout.Repository using Firestore.
//
// Collection design:
// - collection: checkouts
// - docId: auto id (returned from Create)
// - fields: userId, itemId, quantity, isDone, lastStep, reason, orderId,
//   createdAt, updatedAt
//
// Active-cart and order-history reads are equality queries on
// (userId, isDone); both single-field values, no composite order-by, so no
// precomputed index is required.
type CheckoutRepositoryFS struct {
	Client *firestore.Client
}

func NewCheckoutRepositoryFS(client *firestore.Client) *CheckoutRepositoryFS {
	return &CheckoutRepositoryFS{Client: client}
}

var _ codom.Repository = (*CheckoutRepositoryFS)(nil)

func (r *CheckoutRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection(checkoutsCollection)
}

// ==============================
// Create / Get / Update / Delete
// ==============================

func (r *CheckoutRepositoryFS) Create(ctx context.Context, li *codom.LineItem) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("checkout_repository_fs: firestore client is nil")
	}
	if li == nil {
		return "", codom.ErrInvalidLineItem
	}

	ref := r.col().NewDoc()
	li.ID = ref.ID

	if _, err := ref.Set(ctx, lineItemDocFromDomain(li)); err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (r *CheckoutRepositoryFS) GetByID(ctx context.Context, id string) (*codom.LineItem, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("checkout_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, codom.ErrInvalidLineItem
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, codom.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lineItemFromSnapshot(snap), nil
}

// Update overwrites the full document (simple & predictable, one atomic write).
func (r *CheckoutRepositoryFS) Update(ctx context.Context, li *codom.LineItem) error {
	if r == nil || r.Client == nil {
		return errors.New("checkout_repository_fs: firestore client is nil")
	}
	if li == nil || strings.TrimSpace(li.ID) == "" {
		return codom.ErrInvalidLineItem
	}

	_, err := r.col().Doc(li.ID).Set(ctx, lineItemDocFromDomain(li))
	return err
}

func (r *CheckoutRepositoryFS) Delete(ctx context.Context, id string) error {
	if r == nil || r.Client == nil {
		return errors.New("checkout_repository_fs: firestore client is nil")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return codom.ErrInvalidLineItem
	}

	_, err := r.col().Doc(id).Delete(ctx)
	return err
}

// ==============================
// Queries
// ==============================

func (r *CheckoutRepositoryFS) ListActive(ctx context.Context, userID string) ([]codom.LineItem, error) {
	return r.listByFlags(ctx, userID, "", false)
}

func (r *CheckoutRepositoryFS) ListActiveByItem(ctx context.Context, userID, itemID string) ([]codom.LineItem, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, codom.ErrInvalidLineItem
	}
	return r.listByFlags(ctx, userID, itemID, false)
}

func (r *CheckoutRepositoryFS) ListCompleted(ctx context.Context, userID string) ([]codom.LineItem, error) {
	return r.listByFlags(ctx, userID, "", true)
}

func (r *CheckoutRepositoryFS) listByFlags(ctx context.Context, userID, itemID string, done bool) ([]codom.LineItem, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("checkout_repository_fs: firestore client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, codom.ErrInvalidLineItem
	}

	q := r.col().Where("userId", "==", uid).Where("isDone", "==", done)
	if itemID != "" {
		q = q.Where("itemId", "==", itemID)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []codom.LineItem
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *lineItemFromSnapshot(doc))
	}
	return out, nil
}

// ==============================
// Batch transitions (transactional)
// ==============================

// AdvanceSteps moves every id forward to step inside one transaction.
// Lines already at or past step are read but not written, so re-issuing the
// same batch after a failure is a no-op for the lines that made it.
func (r *CheckoutRepositoryFS) AdvanceSteps(ctx context.Context, ids []string, step codom.Step, now time.Time) (int, error) {
	return r.transition(ctx, ids, now, func(li *codom.LineItem) (bool, error) {
		return li.AdvanceTo(step, now)
	})
}

// CompleteAll finalizes every id inside one transaction, stamping orderID.
func (r *CheckoutRepositoryFS) CompleteAll(ctx context.Context, ids []string, orderID string, now time.Time) (int, error) {
	return r.transition(ctx, ids, now, func(li *codom.LineItem) (bool, error) {
		if li.IsDone {
			return false, nil
		}
		if err := li.Complete(orderID, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (r *CheckoutRepositoryFS) transition(
	ctx context.Context,
	ids []string,
	now time.Time,
	apply func(*codom.LineItem) (bool, error),
) (int, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("checkout_repository_fs: firestore client is nil")
	}

	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if t := strings.TrimSpace(id); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return 0, nil
	}
	if len(clean) > maxBatchWrites {
		return 0, ErrBatchTooLarge
	}

	changed := 0
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = 0

		// All reads before any write (Firestore transaction rule).
		lines := make([]*codom.LineItem, 0, len(clean))
		for _, id := range clean {
			snap, err := tx.Get(r.col().Doc(id))
			if status.Code(err) == codes.NotFound {
				return codom.ErrNotFound
			}
			if err != nil {
				return err
			}
			lines = append(lines, lineItemFromSnapshot(snap))
		}

		for _, li := range lines {
			ok, err := apply(li)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := tx.Set(r.col().Doc(li.ID), lineItemDocFromDomain(li)); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// -----------------------------------------
// Firestore DTO
// -----------------------------------------

type lineItemDoc struct {
	UserID    string    `firestore:"userId"`
	ItemID    string    `firestore:"itemId"`
	Quantity  int       `firestore:"quantity"`
	IsDone    bool      `firestore:"isDone"`
	LastStep  string    `firestore:"lastStep"`
	Reason    string    `firestore:"reason"`
	OrderID   string    `firestore:"orderId"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func lineItemDocFromDomain(li *codom.LineItem) lineItemDoc {
	return lineItemDoc{
		UserID:    li.UserID,
		ItemID:    li.ItemID,
		Quantity:  li.Quantity,
		IsDone:    li.IsDone,
		LastStep:  string(li.LastStep),
		Reason:    li.Reason,
		OrderID:   li.OrderID,
		CreatedAt: li.CreatedAt,
		UpdatedAt: li.UpdatedAt,
	}
}

// lineItemFromSnapshot parses raw document data for backward compatibility
// (older docs miss orderId/reason; quantity may be stored as float).
func lineItemFromSnapshot(snap *firestore.DocumentSnapshot) *codom.LineItem {
	raw := snap.Data()
	li := &codom.LineItem{ID: snap.Ref.ID}
	if raw == nil {
		return li
	}

	li.UserID = asString(raw["userId"])
	li.ItemID = asString(raw["itemId"])
	li.Quantity = asInt(raw["quantity"])
	li.IsDone = asBool(raw["isDone"])
	li.LastStep = codom.Step(asString(raw["lastStep"]))
	li.Reason = asString(raw["reason"])
	li.OrderID = asString(raw["orderId"])
	if t, ok := asTime(raw["createdAt"]); ok {
		li.CreatedAt = t
	}
	if t, ok := asTime(raw["updatedAt"]); ok {
		li.UpdatedAt = t
	}
	return li
}
