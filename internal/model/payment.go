package model

import "time"

// Payment records one payment attempt for an order.  A retry after a
// FAILED attempt updates the same row; a refund is represented by a
// second row with status REFUNDED so the original charge remains
// visible.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – order the payment belongs to.
//  Status        – PENDING, PAID, FAILED or REFUNDED.
//  AmountCents   – amount charged or refunded, in minor units.
//  TransactionID – processor transaction identifier.
//  Instrument    – masked payment instrument reference (e.g. "****4242").
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Payment struct {
    ID            uint64        // payments.id
    OrderID       uint64        // payments.order_id
    Status        PaymentStatus // payments.status
    AmountCents   int64         // payments.amount_cents
    TransactionID string        // payments.transaction_id
    Instrument    string        // payments.instrument
    CreatedAt     time.Time     // payments.created_at
    UpdatedAt     time.Time     // payments.updated_at
}
