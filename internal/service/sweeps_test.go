package service

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-order-engine/internal/config"
    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
)

var orderRowColumns = []string{
    "id", "user_id", "promocode_id", "status", "total_cents", "discount_cents",
    "final_cents", "bonus_cents", "token", "expires_at", "created_at", "updated_at",
}

func newMockService(t *testing.T) (*OrderService, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    svc := NewOrderService(db,
        repository.NewOrderRepo(db),
        repository.NewTicketRepo(db),
        repository.NewSessionRepo(db),
        repository.NewSeatRepo(db),
        repository.NewPreorderRepo(db),
        repository.NewBonusRepo(db),
        repository.NewPromocodeRepo(db),
        repository.NewPaymentRepo(db),
        repository.NewContractRepo(db),
        config.Config{SweepBatchSize: 50, ReturnGrace: 10 * time.Minute})
    return svc, mock
}

func orderRow(id uint64, status string, expiresAt time.Time) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(orderRowColumns).
        AddRow(id, 3, nil, status, 5000, 0, 5000, 0, nil, expiresAt, now, now)
}

func TestExpireSweepSkipsPaidOrder(t *testing.T) {
    svc, mock := newMockService(t)

    // The candidate list is read without locks, so a payment may land
    // between the read and the per-order lock.  The re-check under the
    // lock must leave the paid order alone.
    mock.ExpectQuery("SELECT id FROM orders").
        WithArgs(50).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
    mock.ExpectBegin()
    mock.ExpectQuery("FROM orders WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(orderRow(7, "paid", time.Now().Add(-time.Hour)))
    mock.ExpectRollback()

    done, err := svc.ExpireStaleOrders(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 1, done)
    assert.NoError(t, mock.ExpectationsWereMet(), "a paid order must see no writes from the expiry sweep")
}

func TestCompleteSweepTouchesOnlyOrderStatus(t *testing.T) {
    svc, mock := newMockService(t)

    mock.ExpectQuery("SELECT o.id FROM orders").
        WithArgs(50).
        WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
    mock.ExpectBegin()
    mock.ExpectQuery("FROM orders WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(orderRow(7, "paid", time.Now().Add(time.Hour)))
    mock.ExpectExec("UPDATE orders SET status").
        WithArgs("completed", uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    done, err := svc.CompleteElapsedOrders(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 1, done)
    // Ticket rows keep their state; redemption alone moves them to USED.
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteSweepSecondRunSeesNoCandidates(t *testing.T) {
    svc, mock := newMockService(t)

    mock.ExpectQuery("SELECT o.id FROM orders").
        WithArgs(50).
        WillReturnRows(sqlmock.NewRows([]string{"id"}))

    done, err := svc.CompleteElapsedOrders(context.Background())
    require.NoError(t, err)
    assert.Equal(t, 0, done)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRequiresTickets(t *testing.T) {
    svc, mock := newMockService(t)

    _, err := svc.CreateOrder(context.Background(), 3, CreateOrderRequest{
        Concessions: []ConcessionRequest{{ItemID: 2, Quantity: 1}},
    })
    assert.ErrorIs(t, err, model.ErrEmptyOrder)
    assert.NoError(t, mock.ExpectationsWereMet(), "the rejection must happen before any database work")
}
