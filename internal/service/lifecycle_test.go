package service

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

const grace = 10 * time.Minute

func TestRefundPercentTiers(t *testing.T) {
    cases := []struct {
        name string
        lead time.Duration
        want int64
    }{
        {"eight days ahead", 8 * 24 * time.Hour, 100},
        {"exactly one week ahead", 7 * 24 * time.Hour, 95},
        {"three days ahead", 3 * 24 * time.Hour, 95},
        {"twelve hours ahead", 12 * time.Hour, 10},
        {"one hour ahead", time.Hour, 10},
        {"just outside grace", 11 * time.Minute, 10},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            got, err := refundPercent(tc.lead, grace)
            require.NoError(t, err)
            assert.Equal(t, tc.want, got)
        })
    }
}

func TestRefundPercentWindowClosed(t *testing.T) {
    for _, lead := range []time.Duration{9 * time.Minute, 0, -time.Hour} {
        _, err := refundPercent(lead, grace)
        assert.ErrorIs(t, err, model.ErrReturnWindowClosed, "lead %s", lead)
    }
}

func TestMaskInstrumentKeepsOnlyLastFour(t *testing.T) {
    cases := []struct {
        in   string
        want string
    }{
        {"4242 4242 4242 4242", "****4242"},
        {"5500000000000004", "****0004"},
        {"gift-card-7781", "****7781"},
        {"1234", "****1234"},
        {"42", "****42"},
        {"", "****"},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.want, maskInstrument(tc.in), "input %q", tc.in)
    }
}

func TestRefundAmountRoundsHalfUp(t *testing.T) {
    // 95% of 1000.00 keeps the odd cents.
    assert.Equal(t, int64(95000), refundAmountCents(100000, 95))
    // 10% of 10.05 is 1.005, rounded up to 1.01.
    assert.Equal(t, int64(101), refundAmountCents(1005, 10))
    // 10% of 10.04 is 1.004, rounded down to 1.00.
    assert.Equal(t, int64(100), refundAmountCents(1004, 10))
    assert.Equal(t, int64(100000), refundAmountCents(100000, 100))
    assert.Equal(t, int64(0), refundAmountCents(0, 95))
}
