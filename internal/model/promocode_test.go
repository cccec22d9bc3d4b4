package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func activeCode() *Promocode {
    return &Promocode{
        Code:          "SAVE10",
        DiscountType:  PromoPercentage,
        DiscountValue: 10,
        ValidFrom:     time.Now().Add(-time.Hour),
        ValidUntil:    time.Now().Add(time.Hour),
        MaxUses:       5,
        UsedCount:     0,
        MinOrderCents: 50000,
        Category:      CategoryOrder,
        Status:        PromoActive,
    }
}

func TestPromocodeValidateStates(t *testing.T) {
    now := time.Now()

    p := activeCode()
    assert.NoError(t, p.Validate(100000, CategoryOrder, now))

    p.Status = PromoExpired
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, now), ErrPromoExpired)

    p.Status = PromoDepleted
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, now), ErrPromoDepleted)

    p.Status = PromoInactive
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, now), ErrPromoInactive)
}

func TestPromocodeValidateWindow(t *testing.T) {
    now := time.Now()

    p := activeCode()
    p.ValidFrom = now.Add(time.Hour)
    p.ValidUntil = now.Add(2 * time.Hour)
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, now), ErrPromoNotStarted)

    p = activeCode()
    p.ValidUntil = now.Add(-time.Minute)
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, now), ErrPromoExpired)
}

func TestPromocodeValidateUsageCap(t *testing.T) {
    p := activeCode()
    p.UsedCount = 5
    assert.ErrorIs(t, p.Validate(100000, CategoryOrder, time.Now()), ErrPromoDepleted)

    // MaxUses == 0 means uncapped
    p.MaxUses = 0
    p.UsedCount = 9999
    assert.NoError(t, p.Validate(100000, CategoryOrder, time.Now()))
}

func TestPromocodeValidateMinimum(t *testing.T) {
    p := activeCode()
    err := p.Validate(40000, CategoryOrder, time.Now())
    assert.ErrorIs(t, err, ErrPromoBelowMinimum)
    assert.ErrorIs(t, err, ErrPromoInvalid)
}

func TestPromoCategorySatisfies(t *testing.T) {
    assert.True(t, CategoryOrder.Satisfies(CategoryTickets))
    assert.True(t, CategoryOrder.Satisfies(CategoryConcessions))
    assert.True(t, CategoryOrder.Satisfies(CategoryOrder))
    assert.True(t, CategoryTickets.Satisfies(CategoryTickets))
    assert.True(t, CategoryTickets.Satisfies(CategoryOrder))
    assert.False(t, CategoryTickets.Satisfies(CategoryConcessions))
    assert.False(t, CategoryConcessions.Satisfies(CategoryTickets))
}

func TestParsePromoEnumsRejectUnknown(t *testing.T) {
    dt, err := ParsePromoDiscountType("PERCENTAGE")
    assert.NoError(t, err)
    assert.Equal(t, PromoPercentage, dt)
    _, err = ParsePromoDiscountType("percentage")
    assert.Error(t, err)
    _, err = ParsePromoDiscountType("")
    assert.Error(t, err)

    st, err := ParsePromoStatus("DEPLETED")
    assert.NoError(t, err)
    assert.Equal(t, PromoDepleted, st)
    _, err = ParsePromoStatus("ARCHIVED")
    assert.Error(t, err)

    c, err := ParsePromoCategory("tickets")
    assert.NoError(t, err)
    assert.Equal(t, CategoryTickets, c)
    _, err = ParsePromoCategory("TICKETS")
    assert.Error(t, err)
}

func TestPromocodeDiscountCents(t *testing.T) {
    p := activeCode()
    assert.Equal(t, int64(10000), p.DiscountCents(100000))

    p.DiscountType = PromoFixedAmount
    p.DiscountValue = 3000
    assert.Equal(t, int64(3000), p.DiscountCents(100000))
    assert.Equal(t, int64(2000), p.DiscountCents(2000))
}
