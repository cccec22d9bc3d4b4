package service

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/cinema-order-engine/internal/metrics"
    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/pricing"
    "github.com/iliyamo/cinema-order-engine/internal/queue"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
)

// PaymentRequest carries the instrument reference for a charge.
type PaymentRequest struct {
    Instrument string
}

// maskInstrument reduces an instrument reference to its last four
// characters so the raw value never reaches storage.
func maskInstrument(s string) string {
    s = strings.ReplaceAll(s, " ", "")
    if len(s) <= 4 {
        return "****" + s
    }
    return "****" + s[len(s)-4:]
}

// ProcessPayment finalizes a pending order.  The order row is locked
// first, so concurrent payment attempts serialize; the loser sees the
// already-paid state and gets ErrPaymentAlreadyFinalized.  On success
// the tickets flip to PAID, loyalty points accrue against the final
// amount and a redemption token is issued.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID, userID uint64, role model.Role, req PaymentRequest) (*model.Order, error) {
    now := time.Now().UTC()

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := s.orders.GetByIDTx(ctx, tx, orderID)
    if err != nil {
        return nil, err
    }
    if order.UserID != userID && !role.CanManageAnyOrder() {
        return nil, repository.ErrForbidden
    }
    if order.Status == model.OrderPaid {
        return nil, model.ErrPaymentAlreadyFinalized
    }
    if order.Status != model.OrderPendingPayment || order.Expired(now) {
        return nil, model.ErrInvalidOrderTransition
    }

    txnID := newTransactionID()

    // A FAILED attempt leaves its row behind; the retry updates it
    // instead of inserting a second charge.
    charge, err := s.payments.GetChargeByOrderTx(ctx, tx, orderID)
    if err != nil {
        return nil, err
    }
    if charge != nil && charge.Status == model.PaymentPaid {
        return nil, model.ErrPaymentAlreadyFinalized
    }
    instrument := maskInstrument(req.Instrument)
    if charge == nil {
        charge = &model.Payment{
            OrderID:       orderID,
            Status:        model.PaymentPaid,
            AmountCents:   order.FinalCents,
            TransactionID: txnID,
            Instrument:    instrument,
        }
        if err := s.payments.CreateTx(ctx, tx, charge); err != nil {
            return nil, err
        }
    } else {
        charge.Status = model.PaymentPaid
        charge.AmountCents = order.FinalCents
        charge.TransactionID = txnID
        charge.Instrument = instrument
        if err := s.payments.UpdateTx(ctx, tx, charge); err != nil {
            return nil, err
        }
    }

    if err := s.tickets.UpdateStatusByOrderTx(ctx, tx, orderID,
        []model.TicketStatus{model.TicketReserved}, model.TicketPaid); err != nil {
        return nil, err
    }

    // Accrue loyalty points on the paid amount.  The account is created
    // lazily on first accrual.
    if accrual := pricing.AccrualCents(order.FinalCents, s.cfg.BonusAccrualPercent); accrual > 0 {
        account, err := s.bonus.EnsureAccountByUserTx(ctx, tx, order.UserID)
        if err != nil {
            return nil, err
        }
        oid := order.ID
        if err := s.bonus.AccrueTx(ctx, tx, account.ID, &oid, accrual); err != nil {
            return nil, err
        }
    }

    token := newOrderToken(orderID, txnID)
    if err := s.orders.SetTokenTx(ctx, tx, orderID, token); err != nil {
        return nil, err
    }
    if err := s.orders.UpdateStatusTx(ctx, tx, orderID, model.OrderPaid); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    metrics.OrdersPaidTotal.Inc()
    s.log.Info("order paid",
        zap.Uint64("order_id", orderID),
        zap.Int64("amount_cents", order.FinalCents),
        zap.String("transaction_id", txnID))

    go s.publish(queue.OrderEvent{
        Kind:        queue.KindOrderPaid,
        OrderID:     orderID,
        UserID:      order.UserID,
        AmountCents: order.FinalCents,
        OccurredAt:  now.Format(time.RFC3339),
    })

    order.Status = model.OrderPaid
    order.Token = &token
    return order, nil
}

// CancelOrder cancels an unpaid order on the user's request.  Tickets
// flip to CANCELLED, concession stock goes back on the shelf and any
// spent bonus points return to the ledger.  Paid orders must go through
// ReturnOrder instead.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID uint64, role model.Role) error {
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
    if order.UserID != userID && !role.CanManageAnyOrder() {
        return repository.ErrForbidden
    }
    if !order.Status.CanTransitionTo(model.OrderCancelled) {
        return model.ErrInvalidOrderTransition
    }

    if err := s.releaseOrderTx(ctx, tx, order, model.TicketCancelled); err != nil {
        return err
    }
    if err := s.orders.UpdateStatusTx(ctx, tx, orderID, model.OrderCancelled); err != nil {
        return err
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    metrics.OrdersCancelledTotal.WithLabelValues("user").Inc()
    s.log.Info("order cancelled", zap.Uint64("order_id", orderID), zap.String("by", "user"))

    go s.publish(queue.OrderEvent{
        Kind:       queue.KindOrderCancelled,
        OrderID:    orderID,
        UserID:     order.UserID,
        Reason:     "user",
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
    return nil
}

// releaseOrderTx frees everything an order holds: seats (tickets move
// to the given terminal status), concession stock and spent bonus
// points.  Each step is idempotent against a partial earlier run.
func (s *OrderService) releaseOrderTx(ctx context.Context, tx *sql.Tx, order *model.Order, ticketTo model.TicketStatus) error {
    if err := s.tickets.UpdateStatusByOrderTx(ctx, tx, order.ID,
        []model.TicketStatus{model.TicketReserved, model.TicketPaid}, ticketTo); err != nil {
        return err
    }
    if err := s.preorders.CancelByOrderTx(ctx, tx, order.ID); err != nil {
        return err
    }
    account, err := s.bonus.GetAccountByUserTx(ctx, tx, order.UserID)
    if err != nil {
        if err == repository.ErrAccountNotFound {
            return nil // no ledger, nothing to reverse
        }
        return err
    }
    return s.bonus.ReverseOrderEntriesTx(ctx, tx, account.ID, order.ID)
}

// refundPercent maps the lead time before the earliest screening to
// the refunded share of the paid amount.  Returns within the grace
// window before start (or after it) are rejected.
func refundPercent(lead, grace time.Duration) (int64, error) {
    switch {
    case lead < grace:
        return 0, model.ErrReturnWindowClosed
    case lead < 24*time.Hour:
        return 10, nil
    case lead <= 7*24*time.Hour:
        return 95, nil
    default:
        return 100, nil
    }
}

// refundAmountCents applies a refund percentage to the paid amount,
// rounding half up.
func refundAmountCents(paidCents, percent int64) int64 {
    return (paidCents*percent + 50) / 100
}

// ReturnOrder refunds a paid order.  The refunded share depends on how
// far before the earliest screening the return lands: less than a day
// ahead refunds 10%, up to a week ahead 95%, earlier than that 100%.
// Orders with used tickets or completed pickups cannot be returned.
func (s *OrderService) ReturnOrder(ctx context.Context, orderID, userID uint64, role model.Role) (int64, error) {
    now := time.Now().UTC()

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    order, err := s.orders.GetByIDTx(ctx, tx, orderID)
    if err != nil {
        return 0, err
    }
    if order.UserID != userID && !role.CanManageAnyOrder() {
        return 0, repository.ErrForbidden
    }
    if order.Status != model.OrderPaid {
        return 0, model.ErrInvalidOrderTransition
    }

    used, err := s.tickets.CountByOrderInStatusTx(ctx, tx, orderID, model.TicketUsed)
    if err != nil {
        return 0, err
    }
    if used > 0 {
        return 0, model.ErrReturnWindowClosed
    }
    pickedUp, err := s.preorders.CountByOrderInStatusTx(ctx, tx, orderID, model.PreorderCompleted)
    if err != nil {
        return 0, err
    }
    if pickedUp > 0 {
        return 0, model.ErrReturnWindowClosed
    }

    // Every order owns at least one ticket, so the earliest screening
    // always exists.
    earliest, err := s.sessions.EarliestStartForOrderTx(ctx, tx, orderID)
    if err != nil {
        return 0, err
    }
    if !earliest.Valid {
        return 0, model.ErrInvalidOrderTransition
    }
    percent, err := refundPercent(earliest.Time.Sub(now), s.cfg.ReturnGrace)
    if err != nil {
        return 0, err
    }
    refund := refundAmountCents(order.FinalCents, percent)

    refundRow := &model.Payment{
        OrderID:       orderID,
        Status:        model.PaymentRefunded,
        AmountCents:   refund,
        TransactionID: newTransactionID(),
    }
    if err := s.payments.CreateTx(ctx, tx, refundRow); err != nil {
        return 0, err
    }

    if err := s.releaseOrderTx(ctx, tx, order, model.TicketCancelled); err != nil {
        return 0, err
    }
    if err := s.orders.UpdateStatusTx(ctx, tx, orderID, model.OrderRefunded); err != nil {
        return 0, err
    }

    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    metrics.OrdersRefundedTotal.Inc()
    s.log.Info("order refunded",
        zap.Uint64("order_id", orderID),
        zap.Int64("refund_cents", refund),
        zap.Int64("percent", percent))

    go s.publish(queue.OrderEvent{
        Kind:        queue.KindOrderRefunded,
        OrderID:     orderID,
        UserID:      order.UserID,
        AmountCents: refund,
        OccurredAt:  now.Format(time.RFC3339),
    })
    return refund, nil
}

// publish sends a lifecycle event to the broker.  Delivery is best
// effort: the state change is already committed, so a broker outage
// only costs the notification.
func (s *OrderService) publish(ev queue.OrderEvent) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := queue.PublishOrderEvent(ctx, ev); err != nil {
        s.log.Warn("event publish failed", zap.String("kind", ev.Kind), zap.Error(err))
    }
}
