package service

import (
    "fmt"
    "strings"

    "github.com/google/uuid"
)

// newTransactionID returns a fresh processor transaction identifier.
func newTransactionID() string {
    return uuid.NewString()
}

// newOrderToken builds the redemption token handed out after payment.
// The short transaction suffix makes the token unguessable without
// making it unwieldy to scan.
func newOrderToken(orderID uint64, txnID string) string {
    suffix := strings.ToUpper(strings.ReplaceAll(txnID, "-", ""))
    if len(suffix) > 12 {
        suffix = suffix[:12]
    }
    return fmt.Sprintf("ORDER-%d-%s", orderID, suffix)
}

// newPickupCode builds the counter pickup code shared by all
// concession lines of one order.
func newPickupCode() string {
    raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
    return "PKP-" + raw[:8]
}
