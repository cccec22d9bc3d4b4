package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// SeatRepo reads the seat catalog.  The engine never writes seats.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo backed by the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// GetActiveInHallTx returns the seat only when it exists, is in
// service and belongs to the given hall.  Any other outcome is
// ErrSeatNotFound so callers cannot sell a seat from the wrong hall.
func (r *SeatRepo) GetActiveInHallTx(ctx context.Context, tx *sql.Tx, seatID, hallID uint64) (*model.Seat, error) {
    var s model.Seat
    err := tx.QueryRowContext(ctx,
        `SELECT id, hall_id, row_label, seat_number, is_active, created_at, updated_at
           FROM seats
          WHERE id = ? AND hall_id = ? AND is_active = 1`,
        seatID, hallID).
        Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrSeatNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}
