// Package pricing computes the payable amount of an order from its
// ticket and concession lines, an optional promotional code and an
// optional bonus-point deduction.  All money is handled in integer
// minor units (cents); percentages round half-up.  The package is pure
// so both order creation and the add-items requote share one rule.
package pricing

import (
    "time"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// Config carries the tunable pricing limits.
type Config struct {
    // MinPayableCents is the floor the final amount must reach after
    // all discounts.
    MinPayableCents int64
    // MaxBonusPercent caps the bonus deduction at this percentage of
    // the gross after the promo discount.
    MaxBonusPercent int64
}

// Quote is the pricing outcome persisted onto an order.
// Discount() = PromoDiscountCents + BonusDeductionCents and
// FinalCents = GrossCents - Discount().
type Quote struct {
    GrossCents          int64
    PromoDiscountCents  int64
    BonusDeductionCents int64
    FinalCents          int64
}

// DiscountCents returns the combined discount recorded on the order.
func (q Quote) DiscountCents() int64 {
    return q.PromoDiscountCents + q.BonusDeductionCents
}

// Compute prices a new order.
//
// Steps: sum the lines into the gross, validate and apply the promo
// code against the declared category, then clamp the requested bonus
// deduction to the account balance, the configured percentage cap and
// the minimum-payable floor.  Only the bonus deduction is ever reduced
// to satisfy the floor; if the floor still cannot be reached the whole
// computation fails with ErrOrderBelowMinimum.
func Compute(ticketCents, concessionCents int64, promo *model.Promocode, category model.PromoCategory, requestedBonusCents, balanceCents int64, cfg Config, now time.Time) (Quote, error) {
    gross := ticketCents + concessionCents

    var promoDiscount int64
    if promo != nil {
        if err := promo.Validate(gross, category, now); err != nil {
            return Quote{}, err
        }
        promoDiscount = promo.DiscountCents(gross)
        if promoDiscount > gross {
            promoDiscount = gross
        }
    }

    bonus := requestedBonusCents
    if bonus > 0 {
        if bonus > balanceCents {
            return Quote{}, model.ErrInsufficientBonusBalance
        }
        if cap := (gross - promoDiscount) * cfg.MaxBonusPercent / 100; bonus > cap {
            bonus = cap
        }
    }

    return clamp(gross, promoDiscount, bonus, cfg)
}

// Requote reprices an existing order after concession lines were added.
// The promo discount is re-derived against the new gross with the same
// rule as Compute; the bonus deduction is bounded above by the amount
// originally authorized so a requote can never charge more points than
// the user agreed to.
func Requote(newTicketCents, newConcessionCents int64, promo *model.Promocode, category model.PromoCategory, authorizedBonusCents int64, cfg Config, now time.Time) (Quote, error) {
    gross := newTicketCents + newConcessionCents

    var promoDiscount int64
    if promo != nil {
        if err := promo.Validate(gross, category, now); err != nil {
            return Quote{}, err
        }
        promoDiscount = promo.DiscountCents(gross)
        if promoDiscount > gross {
            promoDiscount = gross
        }
    }

    bonus := authorizedBonusCents
    if cap := (gross - promoDiscount) * cfg.MaxBonusPercent / 100; bonus > cap {
        bonus = cap
    }

    return clamp(gross, promoDiscount, bonus, cfg)
}

// clamp applies the minimum-payable floor, reducing only the bonus
// deduction.
func clamp(gross, promoDiscount, bonus int64, cfg Config) (Quote, error) {
    final := gross - promoDiscount - bonus
    if final < cfg.MinPayableCents {
        shortfall := cfg.MinPayableCents - final
        if shortfall > bonus {
            return Quote{}, model.ErrOrderBelowMinimum
        }
        bonus -= shortfall
        final = gross - promoDiscount - bonus
    }
    return Quote{
        GrossCents:          gross,
        PromoDiscountCents:  promoDiscount,
        BonusDeductionCents: bonus,
        FinalCents:          final,
    }, nil
}

// AccrualCents computes the loyalty points granted for a paid order:
// the configured percentage of the final amount, rounded half-up to
// the minor unit.
func AccrualCents(finalCents, accrualPercent int64) int64 {
    return (finalCents*accrualPercent + 50) / 100
}
