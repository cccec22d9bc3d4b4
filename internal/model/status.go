// Package model defines the persistent entities of the order engine and
// the typed status enumerations used across storage, services and
// handlers.  Every status column in the database maps to exactly one
// typed string here; unknown values are rejected at the boundary by the
// Parse* constructors rather than silently defaulted.
package model

import "fmt"

// OrderStatus enumerates the lifecycle states of an order.  The values
// are stored verbatim in the orders.status column.
type OrderStatus string

const (
    OrderCreated        OrderStatus = "created"
    OrderPendingPayment OrderStatus = "pending_payment"
    OrderPaid           OrderStatus = "paid"
    OrderCancelled      OrderStatus = "cancelled"
    OrderRefunded       OrderStatus = "refunded"
    OrderCompleted      OrderStatus = "completed"
)

// ParseOrderStatus validates a raw status string read from storage or a
// request.  Unknown values are an error, never coerced to a default.
func ParseOrderStatus(s string) (OrderStatus, error) {
    switch OrderStatus(s) {
    case OrderCreated, OrderPendingPayment, OrderPaid, OrderCancelled, OrderRefunded, OrderCompleted:
        return OrderStatus(s), nil
    }
    return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether no further transition may leave this state.
func (s OrderStatus) Terminal() bool {
    return s == OrderCancelled || s == OrderRefunded || s == OrderCompleted
}

// CanTransitionTo encodes the legal order state machine.  Any pair not
// listed here is illegal and must surface ErrInvalidOrderTransition to
// the caller.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
    switch s {
    case OrderCreated:
        return next == OrderPendingPayment || next == OrderCancelled || next == OrderCompleted
    case OrderPendingPayment:
        return next == OrderPaid || next == OrderCancelled || next == OrderCompleted
    case OrderPaid:
        return next == OrderRefunded || next == OrderCompleted
    }
    return false
}

// TicketStatus enumerates the states of a single reserved seat.  A
// ticket in RESERVED or PAID is what blocks its (session, seat) pair;
// CANCELLED and EXPIRED tickets free the seat again.
type TicketStatus string

const (
    TicketReserved  TicketStatus = "RESERVED"
    TicketPaid      TicketStatus = "PAID"
    TicketUsed      TicketStatus = "USED"
    TicketCancelled TicketStatus = "CANCELLED"
    TicketExpired   TicketStatus = "EXPIRED"
)

// ParseTicketStatus rejects unknown ticket status values.
func ParseTicketStatus(s string) (TicketStatus, error) {
    switch TicketStatus(s) {
    case TicketReserved, TicketPaid, TicketUsed, TicketCancelled, TicketExpired:
        return TicketStatus(s), nil
    }
    return "", fmt.Errorf("unknown ticket status %q", s)
}

// Blocking reports whether a ticket in this state makes its seat
// unavailable to other orders.
func (s TicketStatus) Blocking() bool {
    return s == TicketReserved || s == TicketPaid
}

// SessionStatus enumerates the states of a scheduled screening.
// Transitions are driven purely by wall-clock time and are never
// reversed.
type SessionStatus string

const (
    SessionScheduled SessionStatus = "SCHEDULED"
    SessionOngoing   SessionStatus = "ONGOING"
    SessionCompleted SessionStatus = "COMPLETED"
    SessionCancelled SessionStatus = "CANCELLED"
)

// ParseSessionStatus rejects unknown session status values.
func ParseSessionStatus(s string) (SessionStatus, error) {
    switch SessionStatus(s) {
    case SessionScheduled, SessionOngoing, SessionCompleted, SessionCancelled:
        return SessionStatus(s), nil
    }
    return "", fmt.Errorf("unknown session status %q", s)
}

// PreorderStatus enumerates the states of a concession pre-order.
type PreorderStatus string

const (
    PreorderPending   PreorderStatus = "PENDING"
    PreorderReady     PreorderStatus = "READY"
    PreorderCompleted PreorderStatus = "COMPLETED"
    PreorderCancelled PreorderStatus = "CANCELLED"
)

// ParsePreorderStatus rejects unknown pre-order status values.
func ParsePreorderStatus(s string) (PreorderStatus, error) {
    switch PreorderStatus(s) {
    case PreorderPending, PreorderReady, PreorderCompleted, PreorderCancelled:
        return PreorderStatus(s), nil
    }
    return "", fmt.Errorf("unknown preorder status %q", s)
}

// PaymentStatus enumerates the states of a payment attempt.
type PaymentStatus string

const (
    PaymentPending  PaymentStatus = "PENDING"
    PaymentPaid     PaymentStatus = "PAID"
    PaymentFailed   PaymentStatus = "FAILED"
    PaymentRefunded PaymentStatus = "REFUNDED"
)

// ParsePaymentStatus rejects unknown payment status values.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
    switch PaymentStatus(s) {
    case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
        return PaymentStatus(s), nil
    }
    return "", fmt.Errorf("unknown payment status %q", s)
}

// ContractStatus enumerates the states of a rental contract.
type ContractStatus string

const (
    ContractActive     ContractStatus = "ACTIVE"
    ContractPending    ContractStatus = "PENDING"
    ContractPaid       ContractStatus = "PAID"
    ContractExpired    ContractStatus = "EXPIRED"
    ContractTerminated ContractStatus = "TERMINATED"
)

// ParseContractStatus rejects unknown contract status values.
func ParseContractStatus(s string) (ContractStatus, error) {
    switch ContractStatus(s) {
    case ContractActive, ContractPending, ContractPaid, ContractExpired, ContractTerminated:
        return ContractStatus(s), nil
    }
    return "", fmt.Errorf("unknown contract status %q", s)
}
