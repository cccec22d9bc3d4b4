package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
)

// getUserID extracts the authenticated user's ID from echo.Context.
// The JWT middleware stores it as uint64; anything else means the
// request slipped past authentication.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := c.Get("user_id").(uint64); ok && id > 0 {
        return id, nil
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole extracts the authenticated user's role.  The JWT middleware
// only admits known roles, so a missing value is an auth bug, not user
// input.
func getRole(c echo.Context) (model.Role, error) {
    if r, ok := c.Get("role").(model.Role); ok {
        return r, nil
    }
    return "", errors.New("invalid role in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid " + name)
    }
    return id, nil
}

// respondError maps domain and repository errors onto HTTP statuses.
// Conflicts over contested rows return 409, validation failures 400,
// missing rows 404 and ownership violations 403; anything unrecognized
// is a 500 with a generic body so internals do not leak.
func respondError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, model.ErrSeatUnavailable),
        errors.Is(err, model.ErrInvalidOrderTransition),
        errors.Is(err, model.ErrPaymentAlreadyFinalized),
        errors.Is(err, model.ErrInsufficientStock),
        errors.Is(err, model.ErrReturnWindowClosed):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, model.ErrPromoInvalid),
        errors.Is(err, model.ErrInsufficientBonusBalance),
        errors.Is(err, model.ErrOrderBelowMinimum),
        errors.Is(err, model.ErrEmptyOrder),
        errors.Is(err, model.ErrSessionClosed):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrOrderNotFound),
        errors.Is(err, repository.ErrSessionNotFound),
        errors.Is(err, repository.ErrSeatNotFound),
        errors.Is(err, repository.ErrItemNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

// orderView is the JSON shape returned for an order.
type orderView struct {
    ID            uint64  `json:"id"`
    Status        string  `json:"status"`
    TotalCents    int64   `json:"total_cents"`
    DiscountCents int64   `json:"discount_cents"`
    FinalCents    int64   `json:"final_cents"`
    BonusCents    int64   `json:"bonus_cents"`
    Token         *string `json:"token,omitempty"`
    ExpiresAt     string  `json:"expires_at"`
    CreatedAt     string  `json:"created_at"`
}

func viewOrder(o *model.Order) orderView {
    return orderView{
        ID:            o.ID,
        Status:        string(o.Status),
        TotalCents:    o.TotalCents,
        DiscountCents: o.DiscountCents,
        FinalCents:    o.FinalCents,
        BonusCents:    o.BonusCents,
        Token:         o.Token,
        ExpiresAt:     o.ExpiresAt.UTC().Format(time.RFC3339),
        CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
    }
}
