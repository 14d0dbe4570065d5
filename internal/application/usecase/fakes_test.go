package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	catdom "emporia/internal/domain/category"
	codom "emporia/internal/domain/checkout"
	itemdom "emporia/internal/domain/item"
)

// fixedClock returns a constant instant, advanced manually by tests.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fakeItemRepo is an in-memory catalog for usecase tests. ListByCursor pages
// over a pre-sorted slice using the item id itself as cursor token.
type fakeItemRepo struct {
	items map[string]itemdom.Item
	order []string // listing order for ListByCursor
	err   error    // when set, every call fails with it
}

func newFakeItemRepo(items ...itemdom.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: map[string]itemdom.Item{}}
	for _, it := range items {
		r.items[it.ID] = it
		r.order = append(r.order, it.ID)
	}
	return r
}

func (r *fakeItemRepo) GetByID(_ context.Context, id string) (itemdom.Item, error) {
	if r.err != nil {
		return itemdom.Item{}, r.err
	}
	it, ok := r.items[id]
	if !ok {
		return itemdom.Item{}, itemdom.ErrNotFound
	}
	return it, nil
}

func (r *fakeItemRepo) ListByCursor(_ context.Context, categoryID string, _ itemdom.SortKey, page itemdom.CursorPage) (itemdom.CursorPageResult, error) {
	if r.err != nil {
		return itemdom.CursorPageResult{}, r.err
	}

	ids := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if categoryID == "" || r.items[id].CategoryID == categoryID {
			ids = append(ids, id)
		}
	}

	start := 0
	if page.After != "" {
		for i, id := range ids {
			if id == page.After {
				start = i + 1
				break
			}
		}
	}

	end := start + page.Limit
	if end > len(ids) {
		end = len(ids)
	}

	res := itemdom.CursorPageResult{}
	for _, id := range ids[start:end] {
		res.Items = append(res.Items, r.items[id])
	}
	if end < len(ids) && len(res.Items) > 0 {
		last := res.Items[len(res.Items)-1].ID
		res.NextCursor = &last
	}
	return res, nil
}

func (r *fakeItemRepo) SearchByNamePrefix(_ context.Context, prefix string, limit int) ([]itemdom.Item, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []itemdom.Item
	for _, id := range r.order {
		it := r.items[id]
		if strings.HasPrefix(it.Name, prefix) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCategoryRepo struct {
	cats map[string]catdom.Category
	list []string
}

func newFakeCategoryRepo(cats ...catdom.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{cats: map[string]catdom.Category{}}
	for _, c := range cats {
		r.cats[c.ID] = c
		r.list = append(r.list, c.ID)
	}
	return r
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (catdom.Category, error) {
	c, ok := r.cats[id]
	if !ok {
		return catdom.Category{}, catdom.ErrNotFound
	}
	return c, nil
}

func (r *fakeCategoryRepo) ListAll(_ context.Context) ([]catdom.Category, error) {
	out := make([]catdom.Category, 0, len(r.list))
	for _, id := range r.list {
		out = append(out, r.cats[id])
	}
	return out, nil
}

func (r *fakeCategoryRepo) ListChildren(_ context.Context, parentID string) ([]catdom.Category, error) {
	var out []catdom.Category
	for _, id := range r.list {
		c := r.cats[id]
		if c.ParentCategoryID != nil && *c.ParentCategoryID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeCheckoutRepo is an in-memory line-item store. Batch transitions apply
// the same monotonic guard as the Firestore implementation.
type fakeCheckoutRepo struct {
	lines map[string]*codom.LineItem
	seq   int
}

func newFakeCheckoutRepo() *fakeCheckoutRepo {
	return &fakeCheckoutRepo{lines: map[string]*codom.LineItem{}}
}

func (r *fakeCheckoutRepo) Create(_ context.Context, li *codom.LineItem) (string, error) {
	r.seq++
	id := fmt.Sprintf("li-%d", r.seq)
	cp := *li
	cp.ID = id
	r.lines[id] = &cp
	li.ID = id
	return id, nil
}

func (r *fakeCheckoutRepo) GetByID(_ context.Context, id string) (*codom.LineItem, error) {
	li, ok := r.lines[id]
	if !ok {
		return nil, codom.ErrNotFound
	}
	cp := *li
	return &cp, nil
}

func (r *fakeCheckoutRepo) Update(_ context.Context, li *codom.LineItem) error {
	if _, ok := r.lines[li.ID]; !ok {
		return codom.ErrNotFound
	}
	cp := *li
	r.lines[li.ID] = &cp
	return nil
}

func (r *fakeCheckoutRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.lines[id]; !ok {
		return codom.ErrNotFound
	}
	delete(r.lines, id)
	return nil
}

func (r *fakeCheckoutRepo) listByFlags(userID string, done bool, itemID string) []codom.LineItem {
	var out []codom.LineItem
	for _, li := range r.lines {
		if li.UserID != userID || li.IsDone != done {
			continue
		}
		if itemID != "" && li.ItemID != itemID {
			continue
		}
		out = append(out, *li)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeCheckoutRepo) ListActive(_ context.Context, userID string) ([]codom.LineItem, error) {
	return r.listByFlags(userID, false, ""), nil
}

func (r *fakeCheckoutRepo) ListActiveByItem(_ context.Context, userID, itemID string) ([]codom.LineItem, error) {
	return r.listByFlags(userID, false, itemID), nil
}

func (r *fakeCheckoutRepo) ListCompleted(_ context.Context, userID string) ([]codom.LineItem, error) {
	return r.listByFlags(userID, true, ""), nil
}

func (r *fakeCheckoutRepo) AdvanceSteps(_ context.Context, ids []string, step codom.Step, now time.Time) (int, error) {
	changed := 0
	for _, id := range ids {
		li, ok := r.lines[id]
		if !ok {
			return 0, codom.ErrNotFound
		}
		moved, err := li.AdvanceTo(step, now)
		if err != nil {
			return 0, err
		}
		if moved {
			changed++
		}
	}
	return changed, nil
}

func (r *fakeCheckoutRepo) CompleteAll(_ context.Context, ids []string, orderID string, now time.Time) (int, error) {
	changed := 0
	for _, id := range ids {
		li, ok := r.lines[id]
		if !ok {
			return 0, codom.ErrNotFound
		}
		wasDone := li.IsDone
		if err := li.Complete(orderID, now); err != nil {
			return 0, err
		}
		if !wasDone {
			changed++
		}
	}
	return changed, nil
}
