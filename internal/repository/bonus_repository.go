package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// BonusRepo implements the loyalty ledger.  The ledger is append-only:
// every balance mutation pairs exactly one bonus_transactions insert
// with one balance update inside the same transaction, under an
// exclusive lock on the account row.  The stored balance is a derived
// value and must always equal the sum of the account's entries.
type BonusRepo struct {
    db *sql.DB
}

// NewBonusRepo returns a new BonusRepo bound to the given database.
func NewBonusRepo(db *sql.DB) *BonusRepo { return &BonusRepo{db: db} }

// GetAccountByUserTx loads a user's bonus account under an exclusive
// row lock.  All ledger writes for the account serialize on this lock.
func (r *BonusRepo) GetAccountByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.BonusAccount, error) {
    const q = `SELECT id, user_id, balance_cents, created_at, updated_at
               FROM bonus_accounts WHERE user_id = ? FOR UPDATE`
    var a model.BonusAccount
    err := tx.QueryRowContext(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.BalanceCents, &a.CreatedAt, &a.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrAccountNotFound
    }
    if err != nil {
        return nil, err
    }
    return &a, nil
}

// EnsureAccountByUserTx loads a user's bonus account under an
// exclusive row lock, creating an empty account first when the user
// has none yet.  Accrual on first payment uses this so every user
// gains a ledger lazily.
func (r *BonusRepo) EnsureAccountByUserTx(ctx context.Context, tx *sql.Tx, userID uint64) (*model.BonusAccount, error) {
    a, err := r.GetAccountByUserTx(ctx, tx, userID)
    if !errors.Is(err, ErrAccountNotFound) {
        return a, err
    }
    if _, err := tx.ExecContext(ctx,
        `INSERT INTO bonus_accounts (user_id, balance_cents) VALUES (?, 0)`, userID); err != nil {
        return nil, err
    }
    return r.GetAccountByUserTx(ctx, tx, userID)
}

// GetBalanceByUser returns a user's current balance without locking.
func (r *BonusRepo) GetBalanceByUser(ctx context.Context, userID uint64) (int64, error) {
    var balance int64
    err := r.db.QueryRowContext(ctx,
        `SELECT balance_cents FROM bonus_accounts WHERE user_id = ?`, userID).Scan(&balance)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, ErrAccountNotFound
    }
    return balance, err
}

// AccrueTx credits the account with a positive ACCRUAL entry linked to
// the order.  The caller must hold the account lock from
// GetAccountByUserTx in the same transaction.
func (r *BonusRepo) AccrueTx(ctx context.Context, tx *sql.Tx, accountID uint64, orderID *uint64, amountCents int64) error {
    return r.appendTx(ctx, tx, accountID, orderID, model.BonusAccrual, amountCents)
}

// DeductTx debits the account with a negative DEDUCTION entry linked
// to the order.  A deduction that would push the balance negative
// fails with ErrInsufficientBonusBalance before any row is written.
func (r *BonusRepo) DeductTx(ctx context.Context, tx *sql.Tx, accountID uint64, orderID *uint64, amountCents int64) error {
    return r.appendTx(ctx, tx, accountID, orderID, model.BonusDeduction, -amountCents)
}

// appendTx writes one signed ledger entry and the matching balance
// update.  signedAmount is positive for credits and negative for
// debits; the pair is the only way the balance column ever changes.
func (r *BonusRepo) appendTx(ctx context.Context, tx *sql.Tx, accountID uint64, orderID *uint64, typ model.BonusTransactionType, signedAmount int64) error {
    if signedAmount < 0 {
        res, err := tx.ExecContext(ctx,
            `UPDATE bonus_accounts SET balance_cents = balance_cents + ? WHERE id = ? AND balance_cents >= ?`,
            signedAmount, accountID, -signedAmount)
        if err != nil {
            return err
        }
        n, err := res.RowsAffected()
        if err != nil {
            return err
        }
        if n == 0 {
            return model.ErrInsufficientBonusBalance
        }
    } else {
        if _, err := tx.ExecContext(ctx,
            `UPDATE bonus_accounts SET balance_cents = balance_cents + ? WHERE id = ?`,
            signedAmount, accountID); err != nil {
            return err
        }
    }
    var oid interface{}
    if orderID != nil {
        oid = *orderID
    }
    _, err := tx.ExecContext(ctx,
        `INSERT INTO bonus_transactions (account_id, order_id, type, amount_cents) VALUES (?, ?, ?, ?)`,
        accountID, oid, string(typ), signedAmount)
    return err
}

// ListByOrderTx returns all ledger entries linked to an order, oldest
// first.
func (r *BonusRepo) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.BonusTransaction, error) {
    const q = `SELECT id, account_id, order_id, type, amount_cents, created_at
               FROM bonus_transactions WHERE order_id = ? ORDER BY id`
    rows, err := tx.QueryContext(ctx, q, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var entries []model.BonusTransaction
    for rows.Next() {
        var e model.BonusTransaction
        var oid sql.NullInt64
        var typ string
        if err := rows.Scan(&e.ID, &e.AccountID, &oid, &typ, &e.AmountCents, &e.CreatedAt); err != nil {
            return nil, err
        }
        if e.Type, err = model.ParseBonusTransactionType(typ); err != nil {
            return nil, err
        }
        if oid.Valid {
            id := uint64(oid.Int64)
            e.OrderID = &id
        }
        entries = append(entries, e)
    }
    return entries, rows.Err()
}

// ReverseOrderEntriesTx reverses every ledger entry linked to the
// order with an equal-and-opposite entry of the other type, linked to
// the same order.  Originals are never mutated or deleted.  A fully
// reversed order nets to zero, so a repeated call writes nothing.
// The caller must hold the account lock.
func (r *BonusRepo) ReverseOrderEntriesTx(ctx context.Context, tx *sql.Tx, accountID, orderID uint64) error {
    entries, err := r.ListByOrderTx(ctx, tx, orderID)
    if err != nil {
        return err
    }
    var net int64
    for _, e := range entries {
        net += e.AmountCents
    }
    if net == 0 {
        return nil
    }
    for _, e := range entries {
        oid := orderID
        if err := r.appendTx(ctx, tx, accountID, &oid, e.Type.Opposite(), -e.AmountCents); err != nil {
            return err
        }
    }
    return nil
}
