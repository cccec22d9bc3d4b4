package model

import (
    "errors"
    "fmt"
)

// Domain error kinds surfaced by the order engine.  Handlers translate
// each into a stable HTTP status and message; services and repositories
// match on them with errors.Is.  Promocode rejections wrap
// ErrPromoInvalid so callers can treat the family uniformly while the
// message keeps the precise reason.
var (
    ErrEmptyOrder               = errors.New("order requires at least one ticket")
    ErrSeatUnavailable          = errors.New("seat unavailable")
    ErrSessionClosed            = errors.New("session closed for booking")
    ErrPromoInvalid             = errors.New("promocode invalid")
    ErrInsufficientBonusBalance = errors.New("insufficient bonus balance")
    ErrOrderBelowMinimum        = errors.New("order total below minimum payable amount")
    ErrInvalidOrderTransition   = errors.New("invalid order state transition")
    ErrPaymentAlreadyFinalized  = errors.New("payment already finalized")
    ErrInsufficientStock        = errors.New("insufficient concession stock")
    ErrReturnWindowClosed       = errors.New("return window closed")
)

// Promocode rejection reasons.  Each wraps ErrPromoInvalid.
var (
    ErrPromoNotFound         = fmt.Errorf("%w: not found", ErrPromoInvalid)
    ErrPromoInactive         = fmt.Errorf("%w: inactive", ErrPromoInvalid)
    ErrPromoExpired          = fmt.Errorf("%w: expired", ErrPromoInvalid)
    ErrPromoDepleted         = fmt.Errorf("%w: usage limit reached", ErrPromoInvalid)
    ErrPromoNotStarted       = fmt.Errorf("%w: not valid yet", ErrPromoInvalid)
    ErrPromoBelowMinimum     = fmt.Errorf("%w: order below code minimum", ErrPromoInvalid)
    ErrPromoCategoryMismatch = fmt.Errorf("%w: category mismatch", ErrPromoInvalid)
)
