package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/service"
)

// OrderHandler exposes the order lifecycle over HTTP.  All methods
// assume that JWT authentication and role validation has already been
// performed by middleware; the service layer re-checks ownership on
// every operation.
type OrderHandler struct {
    Svc *service.OrderService
}

// NewOrderHandler constructs an OrderHandler.  The service must be
// non-nil.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
    if svc == nil {
        panic("nil service passed to NewOrderHandler")
    }
    return &OrderHandler{Svc: svc}
}

type ticketInput struct {
    SessionID uint64 `json:"session_id" validate:"required,gt=0"`
    SeatID    uint64 `json:"seat_id" validate:"required,gt=0"`
}

type concessionInput struct {
    ItemID   uint64 `json:"item_id" validate:"required,gt=0"`
    Quantity int64  `json:"quantity" validate:"required,gt=0"`
}

type createOrderInput struct {
    Tickets       []ticketInput     `json:"tickets" validate:"required,min=1,dive"`
    Concessions   []concessionInput `json:"concessions" validate:"dive"`
    PromoCode     string            `json:"promo_code"`
    PromoCategory string            `json:"promo_category"`
    BonusCents    int64             `json:"bonus_cents" validate:"gte=0"`
}

// CreateOrder handles POST /v1/orders.  It books the requested seats
// and concessions, applies the promocode and bonus deduction and
// returns the priced order in pending_payment.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var body createOrderInput
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    category := model.CategoryOrder
    if body.PromoCategory != "" {
        category, err = model.ParsePromoCategory(body.PromoCategory)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown promo category"})
        }
    }

    req := service.CreateOrderRequest{
        PromoCode:     body.PromoCode,
        PromoCategory: category,
        BonusCents:    body.BonusCents,
    }
    for _, t := range body.Tickets {
        req.Tickets = append(req.Tickets, service.TicketRequest{SessionID: t.SessionID, SeatID: t.SeatID})
    }
    for _, ci := range body.Concessions {
        req.Concessions = append(req.Concessions, service.ConcessionRequest{ItemID: ci.ItemID, Quantity: ci.Quantity})
    }

    order, err := h.Svc.CreateOrder(c.Request().Context(), userID, req)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, viewOrder(order))
}

// AddItems handles POST /v1/orders/:id/items.  It appends concession
// lines to an order still awaiting payment and returns the repriced
// order.
func (h *OrderHandler) AddItems(c echo.Context) error {
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
        Concessions []concessionInput `json:"concessions" validate:"required,min=1,dive"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    items := make([]service.ConcessionRequest, 0, len(body.Concessions))
    for _, ci := range body.Concessions {
        items = append(items, service.ConcessionRequest{ItemID: ci.ItemID, Quantity: ci.Quantity})
    }

    order, err := h.Svc.AddConcessions(c.Request().Context(), orderID, userID, role, items)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, viewOrder(order))
}

// CancelOrder handles DELETE /v1/orders/:id.  Only unpaid orders can
// be cancelled; paid ones go through the return flow.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
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
    if err := h.Svc.CancelOrder(c.Request().Context(), orderID, userID, role); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}

// ReturnOrder handles POST /v1/orders/:id/return.  It refunds a paid
// order according to how far ahead of the screening the return lands
// and reports the refunded amount.
func (h *OrderHandler) ReturnOrder(c echo.Context) error {
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
    refund, err := h.Svc.ReturnOrder(c.Request().Context(), orderID, userID, role)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "refunded", "refund_cents": refund})
}

// GetOrder handles GET /v1/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
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
    order, err := h.Svc.GetOrder(c.Request().Context(), orderID, userID, role)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, viewOrder(order))
}

// ListMyOrders handles GET /v1/my-orders, newest first.
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orders, err := h.Svc.ListOrders(c.Request().Context(), userID)
    if err != nil {
        return respondError(c, err)
    }
    views := make([]orderView, 0, len(orders))
    for i := range orders {
        views = append(views, viewOrder(&orders[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": views})
}
