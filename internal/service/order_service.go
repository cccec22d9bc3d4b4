// Package service implements the order and reservation lifecycle on
// top of the repository layer.  Every operation that mutates state
// runs in one database transaction: either all of its writes commit
// or none do, so partial bookings, half-paid orders and torn
// compensations are never observable.
package service

import (
    "context"
    "database/sql"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/cinema-order-engine/internal/config"
    "github.com/iliyamo/cinema-order-engine/internal/logger"
    "github.com/iliyamo/cinema-order-engine/internal/metrics"
    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/pricing"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
)

// OrderService coordinates repositories to implement the exposed
// operations and the scheduler sweeps.  All dependencies must be
// non-nil.
type OrderService struct {
    db        *sql.DB
    orders    *repository.OrderRepo
    tickets   *repository.TicketRepo
    sessions  *repository.SessionRepo
    seats     *repository.SeatRepo
    preorders *repository.PreorderRepo
    bonus     *repository.BonusRepo
    promos    *repository.PromocodeRepo
    payments  *repository.PaymentRepo
    contracts *repository.ContractRepo
    cfg       config.Config
    log       *zap.Logger
}

// NewOrderService constructs an OrderService with the provided
// repositories and configuration.
func NewOrderService(db *sql.DB,
    orders *repository.OrderRepo,
    tickets *repository.TicketRepo,
    sessions *repository.SessionRepo,
    seats *repository.SeatRepo,
    preorders *repository.PreorderRepo,
    bonus *repository.BonusRepo,
    promos *repository.PromocodeRepo,
    payments *repository.PaymentRepo,
    contracts *repository.ContractRepo,
    cfg config.Config) *OrderService {
    if db == nil || orders == nil || tickets == nil || sessions == nil || seats == nil ||
        preorders == nil || bonus == nil || promos == nil || payments == nil || contracts == nil {
        panic("nil dependency passed to NewOrderService")
    }
    return &OrderService{
        db:        db,
        orders:    orders,
        tickets:   tickets,
        sessions:  sessions,
        seats:     seats,
        preorders: preorders,
        bonus:     bonus,
        promos:    promos,
        payments:  payments,
        contracts: contracts,
        cfg:       cfg,
        log:       logger.WithComponent("service"),
    }
}

// TicketRequest asks for one seat in one session.
type TicketRequest struct {
    SessionID uint64
    SeatID    uint64
}

// ConcessionRequest asks for a quantity of one concession item.
type ConcessionRequest struct {
    ItemID   uint64
    Quantity int64
}

// CreateOrderRequest is the full input of a checkout.
type CreateOrderRequest struct {
    Tickets       []TicketRequest
    Concessions   []ConcessionRequest
    PromoCode     string
    PromoCategory model.PromoCategory // defaults to CategoryOrder
    BonusCents    int64
}

func (s *OrderService) pricingConfig() pricing.Config {
    return pricing.Config{
        MinPayableCents: s.cfg.MinPayableCents,
        MaxBonusPercent: s.cfg.MaxBonusPercent,
    }
}

// CreateOrder books seats and concession stock, prices the order and
// persists the whole aggregate atomically.  The order lands in
// pending_payment with its expiry stamped; any seat conflict, stock
// shortage or pricing rejection rolls everything back.
func (s *OrderService) CreateOrder(ctx context.Context, userID uint64, req CreateOrderRequest) (*model.Order, error) {
    // An order owns at least one ticket; concessions only ride along
    // with a screening booking.
    if len(req.Tickets) == 0 {
        return nil, model.ErrEmptyOrder
    }
    category := req.PromoCategory
    if category == "" {
        category = model.CategoryOrder
    }
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

    // Reserve every requested seat.  Duplicate (session, seat) pairs in
    // the request collapse to one ticket.
    seen := make(map[[2]uint64]struct{}, len(req.Tickets))
    var ticketSubtotal int64
    var ticketLines []model.Ticket
    for _, tr := range req.Tickets {
        key := [2]uint64{tr.SessionID, tr.SeatID}
        if _, dup := seen[key]; dup {
            continue
        }
        seen[key] = struct{}{}

        sess, err := s.sessions.GetByIDTx(ctx, tx, tr.SessionID)
        if err != nil {
            return nil, err
        }
        if !sess.Bookable(now) {
            return nil, model.ErrSessionClosed
        }
        if _, err := s.seats.GetActiveInHallTx(ctx, tx, tr.SeatID, sess.HallID); err != nil {
            return nil, err
        }
        if err := s.tickets.GuardSeatTx(ctx, tx, tr.SessionID, tr.SeatID); err != nil {
            if err == model.ErrSeatUnavailable {
                metrics.SeatConflictsTotal.Inc()
            }
            return nil, err
        }
        ticketSubtotal += sess.PriceCents
        ticketLines = append(ticketLines, model.Ticket{
            SessionID:  tr.SessionID,
            SeatID:     tr.SeatID,
            PriceCents: sess.PriceCents,
            Status:     model.TicketReserved,
        })
    }

    // Reserve concession stock and build the pre-order lines.
    var concessionSubtotal int64
    var preorderLines []model.ConcessionPreorder
    pickupCode := newPickupCode()
    for _, cr := range req.Concessions {
        if cr.Quantity <= 0 {
            continue
        }
        item, err := s.preorders.GetItemTx(ctx, tx, cr.ItemID)
        if err != nil {
            return nil, err
        }
        if err := s.preorders.ReserveStockTx(ctx, tx, item.ID, cr.Quantity); err != nil {
            return nil, err
        }
        total := item.UnitPriceCents * cr.Quantity
        concessionSubtotal += total
        preorderLines = append(preorderLines, model.ConcessionPreorder{
            ItemID:         item.ID,
            Quantity:       cr.Quantity,
            UnitPriceCents: item.UnitPriceCents,
            TotalCents:     total,
            PickupCode:     pickupCode,
            Status:         model.PreorderPending,
        })
    }

    // Lock the promocode row before validating so the snapshot holds
    // until commit.
    var promo *model.Promocode
    if req.PromoCode != "" {
        promo, err = s.promos.GetByCodeForUpdateTx(ctx, tx, req.PromoCode)
        if err != nil {
            return nil, err
        }
    }

    // Lock the bonus account row when points are spent.
    var account *model.BonusAccount
    var balance int64
    if req.BonusCents > 0 {
        account, err = s.bonus.GetAccountByUserTx(ctx, tx, userID)
        if err != nil {
            if err == repository.ErrAccountNotFound {
                return nil, model.ErrInsufficientBonusBalance
            }
            return nil, err
        }
        balance = account.BalanceCents
    }

    quote, err := pricing.Compute(ticketSubtotal, concessionSubtotal, promo, category,
        req.BonusCents, balance, s.pricingConfig(), now)
    if err != nil {
        return nil, err
    }

    order := &model.Order{
        UserID:        userID,
        Status:        model.OrderPendingPayment,
        TotalCents:    quote.GrossCents,
        DiscountCents: quote.DiscountCents(),
        FinalCents:    quote.FinalCents,
        BonusCents:    quote.BonusDeductionCents,
        ExpiresAt:     now.Add(s.cfg.OrderTTL),
    }
    if promo != nil {
        id := promo.ID
        order.PromocodeID = &id
    }
    if err := s.orders.CreateTx(ctx, tx, order); err != nil {
        return nil, err
    }
    for i := range ticketLines {
        ticketLines[i].OrderID = order.ID
    }
    if err := s.tickets.CreateBulkTx(ctx, tx, ticketLines); err != nil {
        return nil, err
    }
    for i := range preorderLines {
        preorderLines[i].OrderID = order.ID
    }
    if err := s.preorders.CreateBulkTx(ctx, tx, preorderLines); err != nil {
        return nil, err
    }
    if promo != nil {
        if err := s.promos.IncrementUsageTx(ctx, tx, promo.ID); err != nil {
            return nil, err
        }
    }
    if quote.BonusDeductionCents > 0 {
        oid := order.ID
        if err := s.bonus.DeductTx(ctx, tx, account.ID, &oid, quote.BonusDeductionCents); err != nil {
            return nil, err
        }
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    metrics.OrdersCreatedTotal.Inc()
    s.log.Info("order created",
        zap.Uint64("order_id", order.ID),
        zap.Uint64("user_id", userID),
        zap.Int64("final_cents", order.FinalCents),
        zap.Int("tickets", len(ticketLines)),
        zap.Int("preorders", len(preorderLines)))
    return order, nil
}

// AddConcessions appends concession lines to an order that is still
// awaiting payment and reprices it.  The promo discount is re-derived
// against the new gross; the bonus deduction may only shrink relative
// to what was originally authorized, never grow.  Any reduction is
// returned to the ledger immediately.
func (s *OrderService) AddConcessions(ctx context.Context, orderID, userID uint64, role model.Role, items []ConcessionRequest) (*model.Order, error) {
    if len(items) == 0 {
        return nil, model.ErrInsufficientStock
    }
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
    if order.Status != model.OrderPendingPayment || order.Expired(now) {
        return nil, model.ErrInvalidOrderTransition
    }

    existing, err := s.preorders.ListByOrderTx(ctx, tx, orderID)
    if err != nil {
        return nil, err
    }
    pickupCode := newPickupCode()
    if len(existing) > 0 {
        pickupCode = existing[0].PickupCode // one code per order
    }

    var added int64
    var lines []model.ConcessionPreorder
    for _, cr := range items {
        if cr.Quantity <= 0 {
            continue
        }
        item, err := s.preorders.GetItemTx(ctx, tx, cr.ItemID)
        if err != nil {
            return nil, err
        }
        if err := s.preorders.ReserveStockTx(ctx, tx, item.ID, cr.Quantity); err != nil {
            return nil, err
        }
        total := item.UnitPriceCents * cr.Quantity
        added += total
        lines = append(lines, model.ConcessionPreorder{
            OrderID:        orderID,
            ItemID:         item.ID,
            Quantity:       cr.Quantity,
            UnitPriceCents: item.UnitPriceCents,
            TotalCents:     total,
            PickupCode:     pickupCode,
            Status:         model.PreorderPending,
        })
    }
    if len(lines) == 0 {
        return nil, model.ErrInsufficientStock
    }

    // Recover the ticket/concession split of the current totals so the
    // requote sees the true new gross.
    var existingConcessions int64
    for _, p := range existing {
        existingConcessions += p.TotalCents
    }
    ticketCents := order.TotalCents - existingConcessions

    var promo *model.Promocode
    if order.PromocodeID != nil {
        promo, err = s.promos.GetByIDTx(ctx, tx, *order.PromocodeID)
        if err != nil {
            return nil, err
        }
    }

    quote, err := pricing.Requote(ticketCents, existingConcessions+added, promo,
        model.CategoryOrder, order.BonusCents, s.pricingConfig(), now)
    if err != nil {
        return nil, err
    }

    if err := s.preorders.CreateBulkTx(ctx, tx, lines); err != nil {
        return nil, err
    }

    // Return any shaved-off bonus points to the account.
    if released := order.BonusCents - quote.BonusDeductionCents; released > 0 {
        account, err := s.bonus.GetAccountByUserTx(ctx, tx, order.UserID)
        if err != nil {
            return nil, err
        }
        oid := order.ID
        if err := s.bonus.AccrueTx(ctx, tx, account.ID, &oid, released); err != nil {
            return nil, err
        }
    }

    if err := s.orders.UpdateAmountsTx(ctx, tx, orderID,
        quote.GrossCents, quote.DiscountCents(), quote.FinalCents, quote.BonusDeductionCents); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true

    order.TotalCents = quote.GrossCents
    order.DiscountCents = quote.DiscountCents()
    order.FinalCents = quote.FinalCents
    order.BonusCents = quote.BonusDeductionCents
    s.log.Info("concessions added",
        zap.Uint64("order_id", orderID),
        zap.Int64("added_cents", added),
        zap.Int64("final_cents", order.FinalCents))
    return order, nil
}

// GetOrder returns one order, enforcing ownership unless the caller's
// role may manage any order.
func (s *OrderService) GetOrder(ctx context.Context, orderID, userID uint64, role model.Role) (*model.Order, error) {
    order, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return nil, err
    }
    if order.UserID != userID && !role.CanManageAnyOrder() {
        return nil, repository.ErrForbidden
    }
    return order, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uint64) ([]model.Order, error) {
    return s.orders.ListByUser(ctx, userID)
}

// GetOrderByToken resolves a redemption token for entry and pickup
// scanning.  Only staff-capable roles may call it.
func (s *OrderService) GetOrderByToken(ctx context.Context, token string, role model.Role) (*model.Order, error) {
    if !role.CanRedeemTokens() {
        return nil, repository.ErrForbidden
    }
    return s.orders.GetByToken(ctx, token)
}
