package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// PreorderRepo provides data access to concession pre-orders and the
// stock counters of concession items.  Stock reservation happens at
// order creation; cancellation and return release it through an
// idempotent compensating update guarded by the stock_restored flag.
type PreorderRepo struct {
    db *sql.DB
}

// NewPreorderRepo returns a new PreorderRepo bound to the given database.
func NewPreorderRepo(db *sql.DB) *PreorderRepo { return &PreorderRepo{db: db} }

// GetItemTx loads an active concession item for pricing and stock
// checks.
func (r *PreorderRepo) GetItemTx(ctx context.Context, tx *sql.Tx, itemID uint64) (*model.ConcessionItem, error) {
    const q = `SELECT id, cinema_id, name, unit_price_cents, stock_qty, is_active, created_at, updated_at
               FROM concession_items WHERE id = ? AND is_active = 1`
    var it model.ConcessionItem
    err := tx.QueryRowContext(ctx, q, itemID).Scan(
        &it.ID, &it.CinemaID, &it.Name, &it.UnitPriceCents, &it.StockQty, &it.IsActive, &it.CreatedAt, &it.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrItemNotFound
    }
    if err != nil {
        return nil, err
    }
    return &it, nil
}

// ReserveStockTx atomically deducts quantity from an item's stock.
// The conditional UPDATE doubles as the availability check: zero rows
// affected means the shelf is short and the whole booking must roll
// back with ErrInsufficientStock.
func (r *PreorderRepo) ReserveStockTx(ctx context.Context, tx *sql.Tx, itemID uint64, qty int64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE concession_items SET stock_qty = stock_qty - ? WHERE id = ? AND stock_qty >= ?`,
        qty, itemID, qty)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return model.ErrInsufficientStock
    }
    return nil
}

// CreateBulkTx inserts the pre-orders of an order in a single
// statement.  All rows of one order carry the same pickup code.
func (r *PreorderRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, preorders []model.ConcessionPreorder) error {
    if len(preorders) == 0 {
        return nil
    }
    query := `INSERT INTO concession_preorders (order_id, item_id, quantity, unit_price_cents, total_cents, pickup_code, status) VALUES `
    args := make([]interface{}, 0, len(preorders)*7)
    for i, p := range preorders {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?, ?)"
        args = append(args, p.OrderID, p.ItemID, p.Quantity, p.UnitPriceCents, p.TotalCents, p.PickupCode, string(p.Status))
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// ListByOrderTx returns all pre-orders belonging to an order.
func (r *PreorderRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.ConcessionPreorder, error) {
    const q = `SELECT id, order_id, item_id, quantity, unit_price_cents, total_cents, pickup_code, status, stock_restored, created_at, updated_at
               FROM concession_preorders WHERE order_id = ? FOR UPDATE`
    rows, err := tx.QueryContext(ctx, q, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var preorders []model.ConcessionPreorder
    for rows.Next() {
        var p model.ConcessionPreorder
        var status string
        if err := rows.Scan(&p.ID, &p.OrderID, &p.ItemID, &p.Quantity, &p.UnitPriceCents, &p.TotalCents, &p.PickupCode, &status, &p.StockRestored, &p.CreatedAt, &p.UpdatedAt); err != nil {
            return nil, err
        }
        if p.Status, err = model.ParsePreorderStatus(status); err != nil {
            return nil, err
        }
        preorders = append(preorders, p)
    }
    return preorders, rows.Err()
}

// CountByOrderInStatusTx counts the order's pre-orders in the given
// state.  The return flow uses it to refuse refunds once any pre-order
// has been handed over.
func (r *PreorderRepo) CountByOrderInStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status model.PreorderStatus) (int64, error) {
    var n int64
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM concession_preorders WHERE order_id = ? AND status = ?`,
        orderID, string(status)).Scan(&n)
    return n, err
}

// CancelByOrderTx cancels every pre-order of an order and returns the
// reserved quantities to stock.  The compensation is idempotent per
// row: only pre-orders whose stock_restored flag is still clear give
// their quantity back, so re-running the sweep never inflates
// inventory.
func (r *PreorderRepo) CancelByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
    preorders, err := r.ListByOrderTx(ctx, tx, orderID)
    if err != nil {
        return err
    }
    for _, p := range preorders {
        if !p.StockRestored {
            if _, err := tx.ExecContext(ctx,
                `UPDATE concession_items SET stock_qty = stock_qty + ? WHERE id = ?`,
                p.Quantity, p.ItemID); err != nil {
                return err
            }
        }
        if p.Status != model.PreorderCancelled || !p.StockRestored {
            if _, err := tx.ExecContext(ctx,
                `UPDATE concession_preorders SET status = 'CANCELLED', stock_restored = 1 WHERE id = ?`,
                p.ID); err != nil {
                return err
            }
        }
    }
    return nil
}
