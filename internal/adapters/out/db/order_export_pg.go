// internal/adapters/out/db/order_export_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	usecase "emporia/internal/application/usecase"
	codom "emporia/internal/domain/checkout"
)

// OrderExportDDL is the reporting mirror schema (see cmd/ddlgen).
const OrderExportDDL = `
CREATE TABLE IF NOT EXISTS order_lines (
    line_item_id TEXT PRIMARY KEY,
    order_id     TEXT NOT NULL,
    user_id      TEXT NOT NULL,
    item_id      TEXT NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity >= 1),
    last_step    TEXT NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_lines_order_id ON order_lines (order_id);
CREATE INDEX IF NOT EXISTS idx_order_lines_user_id  ON order_lines (user_id);
`

// OrderExportPG mirrors completed order lines into Postgres for reporting.
// Firestore stays the source of truth; the mirror is fed best-effort after
// checkout completion and rebuilt by re-export, hence the upsert.
type OrderExportPG struct {
	DB *sql.DB
}

var _ usecase.OrderExporter = (*OrderExportPG)(nil)

func NewOrderExportPG(db *sql.DB) *OrderExportPG {
	return &OrderExportPG{DB: db}
}

func (r *OrderExportPG) ExportCompleted(ctx context.Context, orderID string, lines []codom.LineItem) error {
	if r == nil || r.DB == nil {
		return errors.New("order_export_pg: db is nil")
	}

	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return errors.New("order_export_pg: orderID is empty")
	}
	if len(lines) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("order_export_pg: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO order_lines
  (line_item_id, order_id, user_id, item_id, quantity, last_step, reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (line_item_id) DO UPDATE SET
  order_id   = EXCLUDED.order_id,
  quantity   = EXCLUDED.quantity,
  last_step  = EXCLUDED.last_step,
  reason     = EXCLUDED.reason,
  updated_at = EXCLUDED.updated_at`

	for _, li := range lines {
		if _, err := tx.ExecContext(ctx, q,
			li.ID, oid, li.UserID, li.ItemID, li.Quantity,
			string(li.LastStep), li.Reason, li.CreatedAt, li.UpdatedAt,
		); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				return fmt.Errorf("order_export_pg: insert line=%s code=%s: %w", li.ID, pqErr.Code, err)
			}
			return fmt.Errorf("order_export_pg: insert line=%s: %w", li.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("order_export_pg: commit: %w", err)
	}
	return nil
}

// LineCountByOrder is a small reporting read used by ops tooling.
func (r *OrderExportPG) LineCountByOrder(ctx context.Context, orderID string) (int, error) {
	if r == nil || r.DB == nil {
		return 0, errors.New("order_export_pg: db is nil")
	}

	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_lines WHERE order_id = $1`,
		strings.TrimSpace(orderID),
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
