package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// OrderRepo provides CRUD operations for orders.  Orders are the
// aggregate root of a checkout; tickets, pre-orders, payments and
// ledger entries reference them by foreign key.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, promocode_id, status, total_cents, discount_cents, final_cents, bonus_cents, token, expires_at, created_at, updated_at`

func scanOrder(scan func(dest ...interface{}) error) (*model.Order, error) {
    var o model.Order
    var promoID sql.NullInt64
    var token sql.NullString
    var status string
    err := scan(&o.ID, &o.UserID, &promoID, &status, &o.TotalCents, &o.DiscountCents, &o.FinalCents, &o.BonusCents, &token, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if o.Status, err = model.ParseOrderStatus(status); err != nil {
        return nil, err
    }
    if promoID.Valid {
        id := uint64(promoID.Int64)
        o.PromocodeID = &id
    }
    if token.Valid {
        tok := token.String
        o.Token = &tok
    }
    return &o, nil
}

// CreateTx inserts a new order and populates the generated ID and
// timestamps on the provided value.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    const q = `INSERT INTO orders (user_id, promocode_id, status, total_cents, discount_cents, final_cents, bonus_cents, expires_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    var promoID interface{}
    if o.PromocodeID != nil {
        promoID = *o.PromocodeID
    }
    result, err := tx.ExecContext(ctx, q, o.UserID, promoID, string(o.Status),
        o.TotalCents, o.DiscountCents, o.FinalCents, o.BonusCents,
        o.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, o.ID)
    created, err := scanOrder(row.Scan)
    if err != nil {
        return err
    }
    *o = *created
    return nil
}

// GetByIDTx loads an order under an exclusive row lock.  Every
// lifecycle transition goes through this lock so concurrent requests
// and scheduler sweeps serialize on the order row.
func (r *OrderRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id)
    o, err := scanOrder(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrOrderNotFound
    }
    return o, err
}

// GetByID loads an order without locking, for read-only display.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
    o, err := scanOrder(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrOrderNotFound
    }
    return o, err
}

// GetByToken resolves a redemption token to its order.  Tokens exist
// only on paid orders.
func (r *OrderRepo) GetByToken(ctx context.Context, token string) (*model.Order, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE token = ?`, token)
    o, err := scanOrder(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrOrderNotFound
    }
    return o, err
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    orders := make([]model.Order, 0)
    for rows.Next() {
        o, err := scanOrder(rows.Scan)
        if err != nil {
            return nil, err
        }
        orders = append(orders, *o)
    }
    return orders, rows.Err()
}

// UpdateStatusTx moves an order to the given state.  The legality of
// the transition is the service's responsibility; the repository only
// persists it.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status model.OrderStatus) error {
    _, err := tx.ExecContext(ctx, `UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
    return err
}

// SetTokenTx stamps the redemption token onto a paid order.
func (r *OrderRepo) SetTokenTx(ctx context.Context, tx *sql.Tx, orderID uint64, token string) error {
    _, err := tx.ExecContext(ctx, `UPDATE orders SET token = ? WHERE id = ?`, token, orderID)
    return err
}

// UpdateAmountsTx rewrites the monetary totals of a pending order
// after a requote.  Paid and terminal orders keep their recorded
// amounts forever.
func (r *OrderRepo) UpdateAmountsTx(ctx context.Context, tx *sql.Tx, orderID uint64, totalCents, discountCents, finalCents, bonusCents int64) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE orders SET total_cents = ?, discount_cents = ?, final_cents = ?, bonus_cents = ? WHERE id = ?`,
        totalCents, discountCents, finalCents, bonusCents, orderID)
    return err
}

// ListExpiredIDs returns the IDs of unpaid orders whose payment window
// has closed.  The expiry sweep drives each through the cancellation
// transition in its own transaction, so this read is deliberately
// unlocked; the per-order lock in GetByIDTx is the correctness point.
func (r *OrderRepo) ListExpiredIDs(ctx context.Context, limit int) ([]uint64, error) {
    const q = `SELECT id FROM orders
               WHERE status IN ('created','pending_payment') AND expires_at < UTC_TIMESTAMP()
               ORDER BY expires_at LIMIT ?`
    return r.listIDs(ctx, q, limit)
}

// ListDueCompletionIDs returns the IDs of orders that are neither
// cancelled, refunded nor completed and whose earliest linked session
// has already started.  Already-completed orders never reappear here,
// which makes the completion sweep safe to re-run.
func (r *OrderRepo) ListDueCompletionIDs(ctx context.Context, limit int) ([]uint64, error) {
    const q = `SELECT o.id FROM orders o
               JOIN tickets t ON t.order_id = o.id
               JOIN sessions s ON s.id = t.session_id
               WHERE o.status NOT IN ('cancelled','refunded','completed')
               GROUP BY o.id
               HAVING MIN(s.starts_at) <= UTC_TIMESTAMP()
               LIMIT ?`
    return r.listIDs(ctx, q, limit)
}

func (r *OrderRepo) listIDs(ctx context.Context, query string, limit int) ([]uint64, error) {
    rows, err := r.db.QueryContext(ctx, query, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}
