package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// PromocodeRepo provides data access to promotional codes.  The code
// row is one of the three contested resources of the engine: usage
// increments take an exclusive lock on it so the counter and the
// DEPLETED flip stay atomic under concurrent checkouts.
type PromocodeRepo struct {
    db *sql.DB
}

// NewPromocodeRepo returns a new PromocodeRepo bound to the given database.
func NewPromocodeRepo(db *sql.DB) *PromocodeRepo { return &PromocodeRepo{db: db} }

const promoColumns = `id, code, discount_type, discount_value, valid_from, valid_until, max_uses, used_count, min_order_cents, category, status, created_at, updated_at`

func scanPromocode(scan func(dest ...interface{}) error) (*model.Promocode, error) {
    var p model.Promocode
    var dtype, category, status string
    err := scan(&p.ID, &p.Code, &dtype, &p.DiscountValue, &p.ValidFrom, &p.ValidUntil,
        &p.MaxUses, &p.UsedCount, &p.MinOrderCents, &category, &status, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if p.DiscountType, err = model.ParsePromoDiscountType(dtype); err != nil {
        return nil, err
    }
    if p.Category, err = model.ParsePromoCategory(category); err != nil {
        return nil, err
    }
    if p.Status, err = model.ParsePromoStatus(status); err != nil {
        return nil, err
    }
    return &p, nil
}

// GetByCodeForUpdateTx loads a code under an exclusive row lock so the
// validation snapshot cannot be invalidated by a concurrent increment
// before this transaction commits.  A missing code maps to the
// not-found promo rejection.
func (r *PromocodeRepo) GetByCodeForUpdateTx(ctx context.Context, tx *sql.Tx, code string) (*model.Promocode, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promocodes WHERE code = ? FOR UPDATE`, code)
    p, err := scanPromocode(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrPromoNotFound
    }
    return p, err
}

// GetByIDTx loads a code by primary key inside a transaction, without
// locking.  The requote path uses it: the stored counter is read for
// display but usage is not re-incremented.
func (r *PromocodeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Promocode, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promocodes WHERE id = ?`, id)
    p, err := scanPromocode(row.Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, model.ErrPromoNotFound
    }
    return p, err
}

// IncrementUsageTx raises used_count by one and flips the code to
// DEPLETED exactly when the new count reaches the cap.  The caller
// must hold the row lock from GetByCodeForUpdateTx, which makes the
// increment and the flip atomic with respect to concurrent uses.
func (r *PromocodeRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    const q = `UPDATE promocodes
               SET used_count = used_count + 1,
                   status = CASE WHEN max_uses > 0 AND used_count + 1 >= max_uses THEN 'DEPLETED' ELSE status END
               WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, id)
    return err
}

// ExpireOutdated flips ACTIVE codes whose validity window has passed
// to EXPIRED.  Run by the scheduler; idempotent by construction.
func (r *PromocodeRepo) ExpireOutdated(ctx context.Context) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE promocodes SET status = 'EXPIRED'
         WHERE status = 'ACTIVE' AND valid_until < UTC_TIMESTAMP()`)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
