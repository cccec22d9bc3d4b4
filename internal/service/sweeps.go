package service

import (
    "context"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/cinema-order-engine/internal/metrics"
    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/queue"
)

// The sweep methods below back the background scheduler.  Each one
// works through a bounded batch of candidate rows, opens a fresh
// transaction per row and re-checks the row's state under lock before
// acting, so a sweep that races a user request simply skips the row.
// A failure on one row is logged and does not stop the batch.

// ExpireStaleOrders cancels orders whose payment window lapsed.  Seats
// move to EXPIRED (not CANCELLED) so reporting can tell abandonment
// from user cancellation; stock and bonus points are released the same
// way a user cancellation releases them.
func (s *OrderService) ExpireStaleOrders(ctx context.Context) (int, error) {
    ids, err := s.orders.ListExpiredIDs(ctx, s.cfg.SweepBatchSize)
    if err != nil {
        return 0, err
    }
    now := time.Now().UTC()
    done := 0
    for _, id := range ids {
        if err := s.expireOne(ctx, id, now); err != nil {
            s.log.Error("expire sweep: order failed", zap.Uint64("order_id", id), zap.Error(err))
            continue
        }
        done++
    }
    return done, nil
}

func (s *OrderService) expireOne(ctx context.Context, orderID uint64, now time.Time) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := s.orders.GetByIDTx(ctx, tx, orderID)
    if err != nil {
        return err
    }
    // A concurrent payment or cancellation may have won the lock race.
    if order.Status.Terminal() || order.Status == model.OrderPaid || !order.Expired(now) {
        return nil
    }

    if err := s.releaseOrderTx(ctx, tx, order, model.TicketExpired); err != nil {
        return err
    }
    if err := s.orders.UpdateStatusTx(ctx, tx, orderID, model.OrderCancelled); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    metrics.OrdersCancelledTotal.WithLabelValues("expired").Inc()
    s.log.Info("order expired", zap.Uint64("order_id", orderID))

    go s.publish(queue.OrderEvent{
        Kind:       queue.KindOrderCancelled,
        OrderID:    orderID,
        UserID:     order.UserID,
        Reason:     "expired",
        OccurredAt: now.Format(time.RFC3339),
    })
    return nil
}

// CompleteElapsedOrders settles orders whose earliest screening has
// started.  Only the order status moves; ticket rows keep their state,
// USED stays reserved for actual redemption at the hall entrance.
func (s *OrderService) CompleteElapsedOrders(ctx context.Context) (int, error) {
    ids, err := s.orders.ListDueCompletionIDs(ctx, s.cfg.SweepBatchSize)
    if err != nil {
        return 0, err
    }
    done := 0
    for _, id := range ids {
        if err := s.completeOne(ctx, id); err != nil {
            s.log.Error("complete sweep: order failed", zap.Uint64("order_id", id), zap.Error(err))
            continue
        }
        done++
    }
    return done, nil
}

func (s *OrderService) completeOne(ctx context.Context, orderID uint64) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := s.orders.GetByIDTx(ctx, tx, orderID)
    if err != nil {
        return err
    }
    if !order.Status.CanTransitionTo(model.OrderCompleted) {
        return nil
    }

    if err := s.orders.UpdateStatusTx(ctx, tx, orderID, model.OrderCompleted); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    metrics.OrdersCompletedTotal.Inc()
    s.log.Info("order completed", zap.Uint64("order_id", orderID))
    return nil
}

// AdvanceSessions moves screenings along their schedule (SCHEDULED to
// ONGOING to COMPLETED) and retires promocodes whose validity window
// has passed.  Both updates are bulk and idempotent.
func (s *OrderService) AdvanceSessions(ctx context.Context) (int, error) {
    moved, err := s.sessions.AdvanceStatuses(ctx)
    if err != nil {
        return 0, err
    }
    expired, err := s.promos.ExpireOutdated(ctx)
    if err != nil {
        return int(moved), err
    }
    if moved > 0 || expired > 0 {
        s.log.Info("sessions advanced",
            zap.Int64("sessions", moved),
            zap.Int64("promocodes_expired", expired))
    }
    return int(moved + expired), nil
}

// SettleExpiredContracts closes out film rental contracts whose
// showing window has ended: the distributor's share of window box
// office is written as a pending payout and the contract leaves
// ACTIVE.  A contract with a payout already pending is skipped.
func (s *OrderService) SettleExpiredContracts(ctx context.Context) (int, error) {
    ids, err := s.contracts.ListExpiredActiveIDs(ctx, s.cfg.SweepBatchSize)
    if err != nil {
        return 0, err
    }
    done := 0
    for _, id := range ids {
        if err := s.settleOne(ctx, id); err != nil {
            s.log.Error("settle sweep: contract failed", zap.Uint64("contract_id", id), zap.Error(err))
            continue
        }
        done++
    }
    return done, nil
}

func (s *OrderService) settleOne(ctx context.Context, contractID uint64) error {
    now := time.Now().UTC()

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    contract, err := s.contracts.GetByIDTx(ctx, tx, contractID)
    if err != nil {
        return err
    }
    if contract.Status != model.ContractActive || !contract.WindowClosed(now) {
        return nil
    }
    pending, err := s.contracts.HasPendingSettlementTx(ctx, tx, contractID)
    if err != nil {
        return err
    }
    if pending {
        return nil
    }

    revenue, err := s.contracts.WindowRevenueTx(ctx, tx, contract)
    if err != nil {
        return err
    }
    payout := (revenue*contract.DistributorPercent + 50) / 100

    if err := s.contracts.CreateSettlementTx(ctx, tx, contractID, payout); err != nil {
        return err
    }
    if err := s.contracts.UpdateStatusTx(ctx, tx, contractID, model.ContractPending); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    metrics.ContractsSettledTotal.Inc()
    s.log.Info("contract settled",
        zap.Uint64("contract_id", contractID),
        zap.Int64("revenue_cents", revenue),
        zap.Int64("payout_cents", payout))

    go s.publish(queue.OrderEvent{
        Kind:        queue.KindContractSettled,
        ContractID:  contractID,
        AmountCents: payout,
        OccurredAt:  now.Format(time.RFC3339),
    })
    return nil
}
