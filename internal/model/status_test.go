package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
    legal := []struct{ from, to OrderStatus }{
        {OrderCreated, OrderPendingPayment},
        {OrderCreated, OrderCancelled},
        {OrderCreated, OrderCompleted},
        {OrderPendingPayment, OrderPaid},
        {OrderPendingPayment, OrderCancelled},
        {OrderPendingPayment, OrderCompleted},
        {OrderPaid, OrderRefunded},
        {OrderPaid, OrderCompleted},
    }
    for _, tc := range legal {
        assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be legal", tc.from, tc.to)
    }

    illegal := []struct{ from, to OrderStatus }{
        {OrderPaid, OrderPendingPayment},
        {OrderPaid, OrderCancelled},
        {OrderCancelled, OrderCompleted},
        {OrderRefunded, OrderCompleted},
        {OrderCompleted, OrderPaid},
        {OrderCancelled, OrderPendingPayment},
        {OrderPendingPayment, OrderRefunded},
        {OrderCreated, OrderPaid},
    }
    for _, tc := range illegal {
        assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be illegal", tc.from, tc.to)
    }
}

func TestOrderStatusTerminal(t *testing.T) {
    assert.True(t, OrderCancelled.Terminal())
    assert.True(t, OrderRefunded.Terminal())
    assert.True(t, OrderCompleted.Terminal())
    assert.False(t, OrderCreated.Terminal())
    assert.False(t, OrderPendingPayment.Terminal())
    assert.False(t, OrderPaid.Terminal())
}

func TestParseRejectsUnknownValues(t *testing.T) {
    _, err := ParseOrderStatus("CONFIRMED")
    assert.Error(t, err)
    _, err = ParseOrderStatus("")
    assert.Error(t, err)
    _, err = ParseTicketStatus("reserved") // legacy lowercase must not slip through
    assert.Error(t, err)
    _, err = ParseSessionStatus("FINISHED")
    assert.Error(t, err)
    _, err = ParsePaymentStatus("DONE")
    assert.Error(t, err)
    _, err = ParseContractStatus("CLOSED")
    assert.Error(t, err)
    _, err = ParseBonusTransactionType("REFUND")
    assert.Error(t, err)
}

func TestParseRoundTrips(t *testing.T) {
    s, err := ParseOrderStatus("pending_payment")
    require.NoError(t, err)
    assert.Equal(t, OrderPendingPayment, s)

    ts, err := ParseTicketStatus("RESERVED")
    require.NoError(t, err)
    assert.True(t, ts.Blocking())
    ts, err = ParseTicketStatus("CANCELLED")
    require.NoError(t, err)
    assert.False(t, ts.Blocking())
}

func TestBonusTransactionOpposite(t *testing.T) {
    assert.Equal(t, BonusDeduction, BonusAccrual.Opposite())
    assert.Equal(t, BonusAccrual, BonusDeduction.Opposite())
    assert.Equal(t, BonusAccrual, BonusExpiration.Opposite())
}

func TestRoleCapabilities(t *testing.T) {
    r, err := ParseRole("STAFF")
    require.NoError(t, err)
    assert.True(t, r.CanPlaceOrders())
    assert.True(t, r.CanManageAnyOrder())
    assert.True(t, r.CanRedeemTokens())

    u, err := ParseRole("USER")
    require.NoError(t, err)
    assert.True(t, u.CanPlaceOrders())
    assert.False(t, u.CanManageAnyOrder())
    assert.False(t, u.CanRedeemTokens())

    _, err = ParseRole("owner")
    assert.Error(t, err)
}
