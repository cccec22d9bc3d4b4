// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderEventQueue is the durable queue carrying order lifecycle events.
const OrderEventQueue = "order.events"

// Event kinds published on OrderEventQueue.
const (
    KindOrderPaid       = "order.paid"
    KindOrderCancelled  = "order.cancelled"
    KindOrderRefunded   = "order.refunded"
    KindContractSettled = "contract.settled"
)

// OrderEvent is published when an order or contract crosses a lifecycle
// boundary.  It contains enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type OrderEvent struct {
    Kind        string `json:"kind"`
    OrderID     uint64 `json:"order_id,omitempty"`
    UserID      uint64 `json:"user_id,omitempty"`
    ContractID  uint64 `json:"contract_id,omitempty"`
    AmountCents int64  `json:"amount_cents"`
    Reason      string `json:"reason,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}
