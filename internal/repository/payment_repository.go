package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// PaymentRepo provides data access to payment records.  An order holds
// at most one active charge row (a retry after FAILED updates it in
// place) plus at most one REFUNDED row written by the return flow.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// GetChargeByOrderTx loads the charge row of an order (any status
// except REFUNDED) under the surrounding transaction.  Returns nil
// without error when no attempt exists yet.
func (r *PaymentRepo) GetChargeByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (*model.Payment, error) {
    const q = `SELECT id, order_id, status, amount_cents, transaction_id, instrument, created_at, updated_at
               FROM payments WHERE order_id = ? AND status <> 'REFUNDED'`
    var p model.Payment
    var status string
    err := tx.QueryRowContext(ctx, q, orderID).Scan(
        &p.ID, &p.OrderID, &status, &p.AmountCents, &p.TransactionID, &p.Instrument, &p.CreatedAt, &p.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    if p.Status, err = model.ParsePaymentStatus(status); err != nil {
        return nil, err
    }
    return &p, nil
}

// CreateTx inserts a new payment row and populates the generated ID.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
    const q = `INSERT INTO payments (order_id, status, amount_cents, transaction_id, instrument)
               VALUES (?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, p.OrderID, string(p.Status), p.AmountCents, p.TransactionID, p.Instrument)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// UpdateTx rewrites the status, transaction ID and instrument of an
// existing payment row.  Used when a FAILED attempt is retried.
func (r *PaymentRepo) UpdateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
    const q = `UPDATE payments SET status = ?, amount_cents = ?, transaction_id = ?, instrument = ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, string(p.Status), p.AmountCents, p.TransactionID, p.Instrument, p.ID)
    return err
}
