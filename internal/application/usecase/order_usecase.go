// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	codom "emporia/internal/domain/checkout"
	itemdom "emporia/internal/domain/item"
	orderdom "emporia/internal/domain/order"
)

var ErrOrderInvalidArgument = errors.New("order_usecase: invalid argument")

// orderHydrationFanout caps the concurrent item lookups when building order
// history (one lookup per line, fan-out/fan-in).
const orderHydrationFanout = 8

// OrderUsecase assembles the order-history view out of completed checkout
// records. An order is derived, never stored: lines sharing a minted order id
// (or, for legacy rows, a completion date) form one order, totalled with the
// items' live prices.
type OrderUsecase struct {
	repo  codom.Repository
	items itemdom.Repository
}

func NewOrderUsecase(repo codom.Repository, items itemdom.Repository) *OrderUsecase {
	return &OrderUsecase{repo: repo, items: items}
}

// CompletedOrders returns the user's orders, newest first. Lines whose item
// no longer exists in the catalog are omitted from their order (not-found is
// absorbed, not propagated); any other lookup error fails the whole call.
func (uc *OrderUsecase) CompletedOrders(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if uc == nil || uc.repo == nil || uc.items == nil {
		return nil, errors.New("order_usecase: not configured")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrOrderInvalidArgument
	}

	completed, err := uc.repo.ListCompleted(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return []orderdom.Order{}, nil
	}

	hydrated, err := uc.hydrateConcurrently(ctx, completed)
	if err != nil {
		return nil, err
	}

	return orderdom.Group(completed, hydrated), nil
}

func (uc *OrderUsecase) hydrateConcurrently(ctx context.Context, lines []codom.LineItem) (map[string]orderdom.Line, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]orderdom.Line, len(lines))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(orderHydrationFanout)

	for _, li := range lines {
		li := li
		g.Go(func() error {
			it, err := uc.items.GetByID(ctx, li.ItemID)
			if errors.Is(err, itemdom.ErrNotFound) {
				return nil // vanished item: drop the sub-record
			}
			if err != nil {
				return err
			}

			row := orderdom.Line{
				LineItemID: li.ID,
				ItemID:     li.ItemID,
				ItemName:   it.Name,
				Quantity:   li.Quantity,
				UnitPrice:  it.Price,
				Subtotal:   it.Price.Mul(decimal.NewFromInt(int64(li.Quantity))),
			}

			mu.Lock()
			out[li.ID] = row
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
