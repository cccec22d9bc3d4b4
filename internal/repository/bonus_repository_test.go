package repository

import (
    "context"
    "database/sql"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

var ledgerColumns = []string{"id", "account_id", "order_id", "type", "amount_cents", "created_at"}

// newMockDB opens a sqlmock-backed database with an open transaction
// expected, for exercising the *Tx methods without a real server.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    mock.ExpectBegin()
    return db, mock
}

func TestReverseOrderEntriesWritesOppositePair(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewBonusRepo(db)

    now := time.Now()
    mock.ExpectQuery("FROM bonus_transactions").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows(ledgerColumns).
            AddRow(1, 3, 9, "DEDUCTION", -500, now).
            AddRow(2, 3, 9, "ACCRUAL", 1200, now))

    // Reversal of the deduction credits the account back.
    mock.ExpectExec("UPDATE bonus_accounts SET balance_cents").
        WithArgs(int64(500), uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO bonus_transactions").
        WithArgs(uint64(3), uint64(9), "ACCRUAL", int64(500)).
        WillReturnResult(sqlmock.NewResult(3, 1))

    // Reversal of the accrual takes the earned points back.
    mock.ExpectExec("UPDATE bonus_accounts SET balance_cents").
        WithArgs(int64(-1200), uint64(3), int64(1200)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO bonus_transactions").
        WithArgs(uint64(3), uint64(9), "DEDUCTION", int64(-1200)).
        WillReturnResult(sqlmock.NewResult(4, 1))

    tx, err := db.Begin()
    require.NoError(t, err)
    require.NoError(t, repo.ReverseOrderEntriesTx(context.Background(), tx, 3, 9))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReverseOrderEntriesSecondRunWritesNothing(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewBonusRepo(db)

    // A fully reversed order nets to zero; only the read may happen.
    now := time.Now()
    mock.ExpectQuery("FROM bonus_transactions").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows(ledgerColumns).
            AddRow(1, 3, 9, "DEDUCTION", -500, now).
            AddRow(2, 3, 9, "ACCRUAL", 1200, now).
            AddRow(3, 3, 9, "ACCRUAL", 500, now).
            AddRow(4, 3, 9, "DEDUCTION", -1200, now))

    tx, err := db.Begin()
    require.NoError(t, err)
    require.NoError(t, repo.ReverseOrderEntriesTx(context.Background(), tx, 3, 9))
    assert.NoError(t, mock.ExpectationsWereMet(), "a repeated reversal must not touch the ledger")
}

func TestDeductBelowBalanceWritesNoLedgerRow(t *testing.T) {
    db, mock := newMockDB(t)
    repo := NewBonusRepo(db)

    // The conditional balance update misses, so no entry may follow.
    mock.ExpectExec("UPDATE bonus_accounts SET balance_cents").
        WithArgs(int64(-900), uint64(3), int64(900)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    tx, err := db.Begin()
    require.NoError(t, err)
    oid := uint64(9)
    err = repo.DeductTx(context.Background(), tx, 3, &oid, 900)
    assert.ErrorIs(t, err, model.ErrInsufficientBonusBalance)
    assert.NoError(t, mock.ExpectationsWereMet())
}
