package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

var preorderColumns = []string{
    "id", "order_id", "item_id", "quantity", "unit_price_cents", "total_cents",
    "pickup_code", "status", "stock_restored", "created_at", "updated_at",
}

func TestCancelByOrderRestoresStockAndFlipsRow(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewPreorderRepo(db)

    now := time.Now()
    mock.ExpectQuery("FROM concession_preorders WHERE order_id").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows(preorderColumns).
            AddRow(5, 9, 2, 3, 450, 1350, "PKP-0A1B2C3D", "PENDING", false, now, now))

    mock.ExpectExec("UPDATE concession_items SET stock_qty").
        WithArgs(int64(3), uint64(2)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE concession_preorders SET status").
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    tx, err := db.Begin()
    require.NoError(t, err)
    require.NoError(t, repo.CancelByOrderTx(context.Background(), tx, 9))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelByOrderSecondRunLeavesStockAlone(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewPreorderRepo(db)

    // The row is already cancelled with its stock given back; a second
    // sweep may only read.
    now := time.Now()
    mock.ExpectQuery("FROM concession_preorders WHERE order_id").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows(preorderColumns).
            AddRow(5, 9, 2, 3, 450, 1350, "PKP-0A1B2C3D", "CANCELLED", true, now, now))

    tx, err := db.Begin()
    require.NoError(t, err)
    require.NoError(t, repo.CancelByOrderTx(context.Background(), tx, 9))
    assert.NoError(t, mock.ExpectationsWereMet(), "stock must be restored exactly once")
}
