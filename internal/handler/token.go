package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// GetByToken handles GET /v1/orders/token/:token.  Staff scan a
// redemption token at the hall entrance or the concession counter to
// pull up the paid order behind it.  Route-level role middleware keeps
// regular users out; the service re-checks the role anyway.
func (h *OrderHandler) GetByToken(c echo.Context) error {
    role, err := getRole(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
    }
    order, err := h.Svc.GetOrderByToken(c.Request().Context(), token, role)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, viewOrder(order))
}
