package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-order-engine/internal/service"
)

// Pay handles POST /v1/orders/:id/payment.  It charges a pending
// order; a second attempt on an already paid order gets 409.  The
// response carries the redemption token for entry and pickup.
func (h *OrderHandler) Pay(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    role, err := getRole(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orderID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    var body struct {
        Instrument string `json:"instrument" validate:"required"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    order, err := h.Svc.ProcessPayment(c.Request().Context(), orderID, userID, role,
        service.PaymentRequest{Instrument: body.Instrument})
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, viewOrder(order))
}
