package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// TicketRepo provides data access to tickets and implements the seat
// availability guard.  A (session, seat) pair is taken exactly when a
// ticket for it exists in a blocking state (RESERVED or PAID);
// CANCELLED and EXPIRED tickets free the seat without being deleted.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// GuardSeatTx asserts inside the order-creation transaction that the
// (session, seat) pair is free and takes an exclusive lock on any
// blocking ticket row.  FOR UPDATE NOWAIT keeps the wait bounded: when
// a concurrent booking already holds the row (or its index gap) the
// statement fails immediately and the conflict surfaces as
// ErrSeatUnavailable instead of blocking the caller.  Finding a
// blocking row at all is likewise a conflict.
//
// Under REPEATABLE READ the locking read also sets a gap lock on the
// (session_id, seat_id) index when no row exists, so two transactions
// racing to insert the first ticket for a pair cannot both commit; the
// loser's insert fails as a lock conflict and maps to the same error.
func (r *TicketRepo) GuardSeatTx(ctx context.Context, tx *sql.Tx, sessionID, seatID uint64) error {
    const q = `SELECT id FROM tickets
               WHERE session_id = ? AND seat_id = ? AND status IN ('RESERVED','PAID')
               FOR UPDATE NOWAIT`
    var id uint64
    err := tx.QueryRowContext(ctx, q, sessionID, seatID).Scan(&id)
    switch {
    case err == nil:
        return model.ErrSeatUnavailable
    case errors.Is(err, sql.ErrNoRows):
        return nil
    case isLockConflict(err):
        return model.ErrSeatUnavailable
    default:
        return err
    }
}

// CreateBulkTx inserts the tickets of a new order in a single
// statement.  The caller must have run GuardSeatTx for every pair in
// the same transaction.  A lock conflict on insert (the gap-lock race
// described on GuardSeatTx) is reported as ErrSeatUnavailable so the
// whole booking rolls back atomically.
func (r *TicketRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, tickets []model.Ticket) error {
    if len(tickets) == 0 {
        return nil
    }
    query := `INSERT INTO tickets (order_id, session_id, seat_id, price_cents, status) VALUES `
    args := make([]interface{}, 0, len(tickets)*5)
    for i, t := range tickets {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?)"
        args = append(args, t.OrderID, t.SessionID, t.SeatID, t.PriceCents, string(t.Status))
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        if isLockConflict(err) {
            return model.ErrSeatUnavailable
        }
        return err
    }
    return nil
}

// ListByOrderTx returns all tickets belonging to an order.
func (r *TicketRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.Ticket, error) {
    const q = `SELECT id, order_id, session_id, seat_id, price_cents, status, created_at, updated_at
               FROM tickets WHERE order_id = ?`
    rows, err := tx.QueryContext(ctx, q, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var tickets []model.Ticket
    for rows.Next() {
        var t model.Ticket
        var status string
        if err := rows.Scan(&t.ID, &t.OrderID, &t.SessionID, &t.SeatID, &t.PriceCents, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
            return nil, err
        }
        if t.Status, err = model.ParseTicketStatus(status); err != nil {
            return nil, err
        }
        tickets = append(tickets, t)
    }
    return tickets, rows.Err()
}

// UpdateStatusByOrderTx flips every ticket of an order from one of the
// given source states to the target state.  Tickets already outside
// the source set are left untouched, which keeps the lifecycle sweeps
// idempotent.
func (r *TicketRepo) UpdateStatusByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64, from []model.TicketStatus, to model.TicketStatus) error {
    if len(from) == 0 {
        return nil
    }
    query := `UPDATE tickets SET status = ? WHERE order_id = ? AND status IN (`
    args := []interface{}{string(to), orderID}
    for i, s := range from {
        if i > 0 {
            query += ","
        }
        query += "?"
        args = append(args, string(s))
    }
    query += ")"
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// CountByOrderInStatusTx counts the order's tickets currently in the
// given state.  The return flow uses it to refuse refunds once any
// ticket has been redeemed.
func (r *TicketRepo) CountByOrderInStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status model.TicketStatus) (int64, error) {
    var n int64
    err := tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM tickets WHERE order_id = ? AND status = ?`,
        orderID, string(status)).Scan(&n)
    return n, err
}
