package model

import (
    "fmt"
    "time"
)

// BonusTransactionType enumerates the kinds of loyalty ledger entries.
type BonusTransactionType string

const (
    BonusAccrual    BonusTransactionType = "ACCRUAL"
    BonusDeduction  BonusTransactionType = "DEDUCTION"
    BonusExpiration BonusTransactionType = "EXPIRATION"
)

// ParseBonusTransactionType rejects unknown ledger entry types.
func ParseBonusTransactionType(s string) (BonusTransactionType, error) {
    switch BonusTransactionType(s) {
    case BonusAccrual, BonusDeduction, BonusExpiration:
        return BonusTransactionType(s), nil
    }
    return "", fmt.Errorf("unknown bonus transaction type %q", s)
}

// Opposite returns the ledger entry type that reverses this one.
func (t BonusTransactionType) Opposite() BonusTransactionType {
    if t == BonusDeduction || t == BonusExpiration {
        return BonusAccrual
    }
    return BonusDeduction
}

// BonusAccount is the per-user loyalty balance.  BalanceCents is a
// derived convenience value: it must always equal the sum of the
// account's ledger entries and is only ever written in the same
// transaction as a ledger insert.
type BonusAccount struct {
    ID           uint64    // bonus_accounts.id
    UserID       uint64    // bonus_accounts.user_id
    BalanceCents int64     // bonus_accounts.balance_cents
    CreatedAt    time.Time // bonus_accounts.created_at
    UpdatedAt    time.Time // bonus_accounts.updated_at
}

// BonusTransaction is one append-only loyalty ledger entry.  The
// amount is signed: positive for ACCRUAL, negative for DEDUCTION and
// EXPIRATION.  Entries are never updated or deleted; a reversal is a
// new entry of the opposite type with the negated amount, linked to
// the same order.
type BonusTransaction struct {
    ID          uint64               // bonus_transactions.id
    AccountID   uint64               // bonus_transactions.account_id
    OrderID     *uint64              // bonus_transactions.order_id (nullable)
    Type        BonusTransactionType // bonus_transactions.type
    AmountCents int64                // bonus_transactions.amount_cents (signed)
    CreatedAt   time.Time            // bonus_transactions.created_at
}
