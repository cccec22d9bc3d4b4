package service

import (
    "regexp"
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestOrderTokenFormat(t *testing.T) {
    token := newOrderToken(42, "1f2e3d4c-5b6a-7980-aabb-ccddeeff0011")
    assert.Equal(t, "ORDER-42-1F2E3D4C5B6A", token)
}

func TestOrderTokenShortTransactionID(t *testing.T) {
    assert.Equal(t, "ORDER-7-ABC", newOrderToken(7, "abc"))
}

func TestPickupCodeFormat(t *testing.T) {
    re := regexp.MustCompile(`^PKP-[0-9A-F]{8}$`)
    seen := map[string]bool{}
    for i := 0; i < 16; i++ {
        code := newPickupCode()
        assert.Regexp(t, re, code)
        assert.False(t, seen[code], "duplicate pickup code %s", code)
        seen[code] = true
    }
}

func TestTransactionIDsUnique(t *testing.T) {
    assert.NotEqual(t, newTransactionID(), newTransactionID())
}
