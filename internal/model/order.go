package model

import "time"

// Order is the aggregate root of a checkout.  It owns 1..N tickets and
// 0..N concession pre-orders; children reference the order by foreign
// key and are never reached through mutable back-pointers.  The
// recorded monetary totals are write-once: cancellation and return
// compensate through ticket, pre-order, ledger and payment records
// while the original transaction value stays auditable.
//
// Invariant: FinalCents = TotalCents - DiscountCents, both non-negative.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who placed the order.
//  PromocodeID   – applied promotional code, if any.
//  Status        – order lifecycle state.
//  TotalCents    – gross amount before discounts, in minor units.
//  DiscountCents – promo discount plus bonus deduction.
//  FinalCents    – amount actually payable.
//  BonusCents    – bonus-point portion of DiscountCents, kept separately
//                  so a later requote can never raise it above what the
//                  user originally authorized.
//  Token         – redemption token, set when the order is paid.
//  ExpiresAt     – instant after which an unpaid order is reclaimed.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Order struct {
    ID            uint64      // orders.id
    UserID        uint64      // orders.user_id
    PromocodeID   *uint64     // orders.promocode_id (nullable)
    Status        OrderStatus // orders.status
    TotalCents    int64       // orders.total_cents
    DiscountCents int64       // orders.discount_cents
    FinalCents    int64       // orders.final_cents
    BonusCents    int64       // orders.bonus_cents
    Token         *string     // orders.token (nullable until paid)
    ExpiresAt     time.Time   // orders.expires_at
    CreatedAt     time.Time   // orders.created_at
    UpdatedAt     time.Time   // orders.updated_at
}

// Expired reports whether an unpaid order has outlived its payment
// window at the given instant.  Status is not consulted; callers gate
// on it separately.
func (o *Order) Expired(now time.Time) bool {
    return now.After(o.ExpiresAt)
}

// Ticket is one seat reserved for one session under exactly one order.
// Its presence in a blocking state is what makes the (session, seat)
// pair unavailable to everyone else.  Tickets are never physically
// deleted; lifecycle events only flip the status.
type Ticket struct {
    ID         uint64       // tickets.id
    OrderID    uint64       // tickets.order_id
    SessionID  uint64       // tickets.session_id
    SeatID     uint64       // tickets.seat_id
    PriceCents int64        // tickets.price_cents
    Status     TicketStatus // tickets.status
    CreatedAt  time.Time    // tickets.created_at
    UpdatedAt  time.Time    // tickets.updated_at
}
