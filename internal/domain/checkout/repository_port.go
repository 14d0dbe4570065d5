// internal/domain/checkout/repository_port.go
package checkout

import (
	"context"
	"time"
)

// Repository is the line-item persistence port.
//
// Batch transitions (AdvanceSteps / CompleteAll) must be all-or-nothing: the
// Firestore implementation wraps them in a transaction, and the monotonic step
// guard keeps a retried batch idempotent. Single-record mutations are one
// atomic document write each.
type Repository interface {
	Create(ctx context.Context, li *LineItem) (string, error)
	GetByID(ctx context.Context, id string) (*LineItem, error)
	Update(ctx context.Context, li *LineItem) error
	Delete(ctx context.Context, id string) error

	// ListActive returns is_done=false lines for the user, any step.
	ListActive(ctx context.Context, userID string) ([]LineItem, error)
	// ListActiveByItem narrows ListActive to one item id (service-layer dedupe).
	ListActiveByItem(ctx context.Context, userID, itemID string) ([]LineItem, error)
	// ListCompleted returns is_done=true lines for the user.
	ListCompleted(ctx context.Context, userID string) ([]LineItem, error)

	// AdvanceSteps moves every id to step in one transaction; lines already at
	// or past step are left untouched. Returns the number of lines changed.
	AdvanceSteps(ctx context.Context, ids []string, step Step, now time.Time) (int, error)
	// CompleteAll finalizes every id in one transaction, stamping orderID.
	CompleteAll(ctx context.Context, ids []string, orderID string, now time.Time) (int, error)
}
