package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// SessionRepo reads and advances screening sessions.  The engine never
// creates sessions; catalog management owns that.  Status advancement
// is a pure wall-clock comparison executed by the scheduler.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo returns a new SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

const sessionColumns = `id, film_id, cinema_id, hall_id, starts_at, ends_at, price_cents, status, created_at, updated_at`

func scanSession(row *sql.Row) (*model.Session, error) {
    var s model.Session
    var status string
    err := row.Scan(&s.ID, &s.FilmID, &s.CinemaID, &s.HallID, &s.StartsAt, &s.EndsAt, &s.PriceCents, &status, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    s.Status, err = model.ParseSessionStatus(status)
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// GetByID loads a single session outside any transaction.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
    s, err := scanSession(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSessionNotFound
    }
    return s, err
}

// GetByIDTx loads a session inside a transaction.  Sessions are
// read-mostly; no row lock is taken.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
    s, err := scanSession(row)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSessionNotFound
    }
    return s, err
}

// AdvanceStatuses moves sessions forward by wall-clock time:
// SCHEDULED becomes ONGOING once the start has passed, and anything
// not terminal becomes COMPLETED once the end has passed.  Both
// updates are idempotent and touch no order state.  It returns the
// number of rows changed.
func (r *SessionRepo) AdvanceStatuses(ctx context.Context) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE sessions SET status = 'ONGOING'
         WHERE status = 'SCHEDULED' AND starts_at <= UTC_TIMESTAMP()`)
    if err != nil {
        return 0, err
    }
    ongoing, _ := res.RowsAffected()
    res, err = r.db.ExecContext(ctx,
        `UPDATE sessions SET status = 'COMPLETED'
         WHERE status IN ('SCHEDULED','ONGOING') AND ends_at < UTC_TIMESTAMP()`)
    if err != nil {
        return ongoing, err
    }
    completed, _ := res.RowsAffected()
    return ongoing + completed, nil
}

// EarliestStartForOrderTx returns the start time of the earliest
// session linked to the order through its tickets.  It is consulted by
// the return flow (grace window and refund tier) and by the
// completion sweep.
func (r *SessionRepo) EarliestStartForOrderTx(ctx context.Context, tx *sql.Tx, orderID uint64) (startsAt sql.NullTime, err error) {
    const q = `SELECT MIN(s.starts_at)
               FROM tickets t
               JOIN sessions s ON s.id = t.session_id
               WHERE t.order_id = ?`
    err = tx.QueryRowContext(ctx, q, orderID).Scan(&startsAt)
    return startsAt, err
}
