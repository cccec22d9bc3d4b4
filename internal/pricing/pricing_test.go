package pricing

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

var testCfg = Config{MinPayableCents: 1000, MaxBonusPercent: 30}

func save10(min int64) *model.Promocode {
    return &model.Promocode{
        ID:            7,
        Code:          "SAVE10",
        DiscountType:  model.PromoPercentage,
        DiscountValue: 10,
        ValidFrom:     time.Now().Add(-24 * time.Hour),
        ValidUntil:    time.Now().Add(24 * time.Hour),
        MinOrderCents: min,
        Category:      model.CategoryOrder,
        Status:        model.PromoActive,
    }
}

func TestComputePercentagePromo(t *testing.T) {
    q, err := Compute(100000, 0, save10(50000), model.CategoryOrder, 0, 0, testCfg, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(100000), q.GrossCents)
    assert.Equal(t, int64(10000), q.PromoDiscountCents)
    assert.Equal(t, int64(90000), q.FinalCents)
    assert.Equal(t, int64(10000), q.DiscountCents())
}

func TestComputePromoBelowCodeMinimum(t *testing.T) {
    _, err := Compute(40000, 0, save10(50000), model.CategoryOrder, 0, 0, testCfg, time.Now())
    require.Error(t, err)
    assert.ErrorIs(t, err, model.ErrPromoInvalid)
    assert.ErrorIs(t, err, model.ErrPromoBelowMinimum)
}

func TestComputeFixedAmountClampedToGross(t *testing.T) {
    promo := save10(0)
    promo.DiscountType = model.PromoFixedAmount
    promo.DiscountValue = 250000
    q, err := Compute(100000, 20000, promo, model.CategoryOrder, 0, 0, Config{}, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(120000), q.PromoDiscountCents)
    assert.Equal(t, int64(0), q.FinalCents)
}

func TestComputeFixedAmountClampFailsFloor(t *testing.T) {
    // A fixed discount eating the whole gross cannot be rescued by
    // shrinking a bonus that was never requested.
    promo := save10(0)
    promo.DiscountType = model.PromoFixedAmount
    promo.DiscountValue = 250000
    _, err := Compute(100000, 20000, promo, model.CategoryOrder, 0, 0, Config{MinPayableCents: 500, MaxBonusPercent: 30}, time.Now())
    assert.ErrorIs(t, err, model.ErrOrderBelowMinimum)
}

func TestComputePercentageRoundsHalfUp(t *testing.T) {
    promo := save10(0)
    promo.DiscountValue = 15
    // 15% of 1005 cents = 150.75 -> 151
    q, err := Compute(1005, 0, promo, model.CategoryOrder, 0, 0, Config{}, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(151), q.PromoDiscountCents)
}

func TestComputeBonusExceedsBalance(t *testing.T) {
    _, err := Compute(100000, 0, nil, model.CategoryOrder, 5000, 4000, testCfg, time.Now())
    assert.ErrorIs(t, err, model.ErrInsufficientBonusBalance)
}

func TestComputeBonusCappedByPercent(t *testing.T) {
    // cap = (100000-10000) * 30% = 27000
    q, err := Compute(100000, 0, save10(0), model.CategoryOrder, 50000, 60000, testCfg, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(27000), q.BonusDeductionCents)
    assert.Equal(t, int64(63000), q.FinalCents)
}

func TestComputeBonusReducedToKeepFloor(t *testing.T) {
    cfg := Config{MinPayableCents: 1500, MaxBonusPercent: 100}
    // gross 2000, bonus request 1000 -> final would be 1000, below the
    // 1500 floor; bonus shrinks to 500.
    q, err := Compute(2000, 0, nil, model.CategoryOrder, 1000, 5000, cfg, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(500), q.BonusDeductionCents)
    assert.Equal(t, int64(1500), q.FinalCents)
}

func TestComputeFloorUnreachable(t *testing.T) {
    cfg := Config{MinPayableCents: 5000, MaxBonusPercent: 100}
    _, err := Compute(2000, 0, nil, model.CategoryOrder, 0, 0, cfg, time.Now())
    assert.ErrorIs(t, err, model.ErrOrderBelowMinimum)
}

func TestComputeCategoryScoping(t *testing.T) {
    promo := save10(0)
    promo.Category = model.CategoryTickets

    _, err := Compute(100000, 0, promo, model.CategoryTickets, 0, 0, testCfg, time.Now())
    assert.NoError(t, err)

    // a tickets-scoped code also serves a whole-order request
    _, err = Compute(100000, 0, promo, model.CategoryOrder, 0, 0, testCfg, time.Now())
    assert.NoError(t, err)

    _, err = Compute(100000, 0, promo, model.CategoryConcessions, 0, 0, testCfg, time.Now())
    assert.ErrorIs(t, err, model.ErrPromoCategoryMismatch)

    // an order-scoped code serves every sub-category
    promo.Category = model.CategoryOrder
    _, err = Compute(100000, 0, promo, model.CategoryConcessions, 0, 0, testCfg, time.Now())
    assert.NoError(t, err)
}

func TestRequoteNeverRaisesBonus(t *testing.T) {
    cfg := Config{MinPayableCents: 0, MaxBonusPercent: 100}
    // originally authorized 3000 of bonus; adding concessions raises
    // the gross, but the deduction must stay at most 3000.
    q, err := Requote(10000, 5000, nil, model.CategoryOrder, 3000, cfg, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(3000), q.BonusDeductionCents)
    assert.Equal(t, int64(12000), q.FinalCents)
}

func TestRequoteRederivesPromoOnNewGross(t *testing.T) {
    q, err := Requote(100000, 20000, save10(0), model.CategoryOrder, 0, testCfg, time.Now())
    require.NoError(t, err)
    assert.Equal(t, int64(12000), q.PromoDiscountCents)
    assert.Equal(t, int64(108000), q.FinalCents)
}

func TestAccrualCents(t *testing.T) {
    assert.Equal(t, int64(9000), AccrualCents(90000, 10))
    // 10% of 995 = 99.5 -> 100, half-up
    assert.Equal(t, int64(100), AccrualCents(995, 10))
}
