package model

import (
    "fmt"
    "time"
)

// PromoDiscountType distinguishes percentage codes from fixed-amount
// codes.
type PromoDiscountType string

const (
    PromoPercentage  PromoDiscountType = "PERCENTAGE"
    PromoFixedAmount PromoDiscountType = "FIXED_AMOUNT"
)

// ParsePromoDiscountType rejects unknown discount types.
func ParsePromoDiscountType(s string) (PromoDiscountType, error) {
    switch t := PromoDiscountType(s); t {
    case PromoPercentage, PromoFixedAmount:
        return t, nil
    }
    return "", fmt.Errorf("unknown promo discount type %q", s)
}

// PromoStatus enumerates the states of a promotional code.  Only
// ACTIVE codes can validate; the scheduler flips codes to EXPIRED and
// usage increments flip them to DEPLETED.
type PromoStatus string

const (
    PromoActive   PromoStatus = "ACTIVE"
    PromoExpired  PromoStatus = "EXPIRED"
    PromoDepleted PromoStatus = "DEPLETED"
    PromoInactive PromoStatus = "INACTIVE"
)

// ParsePromoStatus rejects unknown promocode states.
func ParsePromoStatus(s string) (PromoStatus, error) {
    switch st := PromoStatus(s); st {
    case PromoActive, PromoExpired, PromoDepleted, PromoInactive:
        return st, nil
    }
    return "", fmt.Errorf("unknown promo status %q", s)
}

// PromoCategory scopes a code to a slice of the order.  A code scoped
// to CategoryOrder applies to anything; a code scoped to tickets or
// concessions applies only to requests declaring that sub-category or
// the whole order.
type PromoCategory string

const (
    CategoryOrder       PromoCategory = "order"
    CategoryTickets     PromoCategory = "tickets"
    CategoryConcessions PromoCategory = "concessions"
)

// ParsePromoCategory converts user input into a PromoCategory,
// rejecting unknown values.
func ParsePromoCategory(s string) (PromoCategory, error) {
    switch c := PromoCategory(s); c {
    case CategoryOrder, CategoryTickets, CategoryConcessions:
        return c, nil
    }
    return "", fmt.Errorf("unknown promo category %q", s)
}

// Satisfies reports whether a code scoped to c may serve a request
// declared under the given category.
func (c PromoCategory) Satisfies(requested PromoCategory) bool {
    return c == CategoryOrder || requested == CategoryOrder || c == requested
}

// Promocode is a discount code with validity, usage and category
// constraints.  The engine mutates it in exactly two places: the
// atomic usage increment on successful application and the
// scheduler's expiry sweep.
type Promocode struct {
    ID            uint64            // promocodes.id
    Code          string            // promocodes.code
    DiscountType  PromoDiscountType // promocodes.discount_type
    DiscountValue int64             // percent for PERCENTAGE, cents for FIXED_AMOUNT
    ValidFrom     time.Time         // promocodes.valid_from
    ValidUntil    time.Time         // promocodes.valid_until
    MaxUses       int64             // promocodes.max_uses (0 = uncapped)
    UsedCount     int64             // promocodes.used_count
    MinOrderCents int64             // promocodes.min_order_cents
    Category      PromoCategory     // promocodes.category
    Status        PromoStatus       // promocodes.status
    CreatedAt     time.Time         // promocodes.created_at
    UpdatedAt     time.Time         // promocodes.updated_at
}

// Validate checks the code against an order's gross amount and
// declared category at a point in time.  It consults state only and
// never mutates the code.  Each rejection maps to a distinct error
// wrapping ErrPromoInvalid.
func (p *Promocode) Validate(grossCents int64, requested PromoCategory, now time.Time) error {
    switch p.Status {
    case PromoActive:
    case PromoExpired:
        return ErrPromoExpired
    case PromoDepleted:
        return ErrPromoDepleted
    default:
        return ErrPromoInactive
    }
    if now.Before(p.ValidFrom) {
        return ErrPromoNotStarted
    }
    if now.After(p.ValidUntil) {
        return ErrPromoExpired
    }
    if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
        return ErrPromoDepleted
    }
    if grossCents < p.MinOrderCents {
        return ErrPromoBelowMinimum
    }
    if !p.Category.Satisfies(requested) {
        return ErrPromoCategoryMismatch
    }
    return nil
}

// DiscountCents computes the discount the code grants on the given
// gross amount.  Percentage codes round half-up to the minor unit;
// fixed codes never exceed the gross.
func (p *Promocode) DiscountCents(grossCents int64) int64 {
    switch p.DiscountType {
    case PromoPercentage:
        return (grossCents*p.DiscountValue + 50) / 100
    case PromoFixedAmount:
        if p.DiscountValue > grossCents {
            return grossCents
        }
        return p.DiscountValue
    }
    return 0
}
