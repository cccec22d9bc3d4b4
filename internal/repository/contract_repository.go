package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// ContractRepo provides data access to rental contracts and their
// settlement records.  The scheduler is the only writer: once a
// contract's rental window closes it computes the distributor's share
// of the window's ticket revenue, writes one PENDING settlement row
// and moves the contract to PENDING.
type ContractRepo struct {
    db *sql.DB
}

// NewContractRepo returns a new ContractRepo bound to the given database.
func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

// ListExpiredActiveIDs returns ACTIVE contracts whose rental window
// has closed.  Each is settled in its own transaction by the caller.
func (r *ContractRepo) ListExpiredActiveIDs(ctx context.Context, limit int) ([]uint64, error) {
    const q = `SELECT id FROM rental_contracts
               WHERE status = 'ACTIVE' AND end_date < UTC_TIMESTAMP()
               ORDER BY end_date LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, limit)
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

// GetByIDTx loads a contract under an exclusive row lock so only one
// sweep settles it.
func (r *ContractRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.RentalContract, error) {
    const q = `SELECT id, film_id, distributor_id, cinema_id, start_date, end_date, distributor_percent, status, created_at, updated_at
               FROM rental_contracts WHERE id = ? FOR UPDATE`
    var c model.RentalContract
    var status string
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &c.ID, &c.FilmID, &c.DistributorID, &c.CinemaID, &c.StartDate, &c.EndDate,
        &c.DistributorPercent, &status, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if c.Status, err = model.ParseContractStatus(status); err != nil {
        return nil, err
    }
    return &c, nil
}

// WindowRevenueTx sums the ticket revenue attributable to the
// contract: tickets in PAID or USED state whose session screens the
// contract's film in the contract's cinema and starts within the
// rental window.
func (r *ContractRepo) WindowRevenueTx(ctx context.Context, tx *sql.Tx, c *model.RentalContract) (int64, error) {
    const q = `SELECT COALESCE(SUM(t.price_cents), 0)
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               WHERE t.status IN ('PAID','USED')
                 AND s.film_id = ? AND s.cinema_id = ?
                 AND s.starts_at >= ? AND s.starts_at <= ?`
    var revenue int64
    err := tx.QueryRowContext(ctx, q, c.FilmID, c.CinemaID,
        c.StartDate.UTC().Format("2006-01-02 15:04:05"),
        c.EndDate.UTC().Format("2006-01-02 15:04:05")).Scan(&revenue)
    return revenue, err
}

// HasPendingSettlementTx reports whether a PENDING settlement record
// already exists for the contract.  This is the idempotence guard of
// the settlement sweep.
func (r *ContractRepo) HasPendingSettlementTx(ctx context.Context, tx *sql.Tx, contractID uint64) (bool, error) {
    var one int
    err := tx.QueryRowContext(ctx,
        `SELECT 1 FROM payment_history WHERE contract_id = ? AND status = 'PENDING' LIMIT 1`,
        contractID).Scan(&one)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// CreateSettlementTx writes one PENDING settlement record for the
// contract.
func (r *ContractRepo) CreateSettlementTx(ctx context.Context, tx *sql.Tx, contractID uint64, amountCents int64) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO payment_history (contract_id, amount_cents, status) VALUES (?, ?, 'PENDING')`,
        contractID, amountCents)
    return err
}

// UpdateStatusTx moves a contract to the given state.
func (r *ContractRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, contractID uint64, status model.ContractStatus) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE rental_contracts SET status = ? WHERE id = ?`, string(status), contractID)
    return err
}
