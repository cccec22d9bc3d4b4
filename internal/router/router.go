// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/iliyamo/cinema-order-engine/internal/handler"
    "github.com/iliyamo/cinema-order-engine/internal/middleware"
    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check for load balancers and the Prometheus scrape
// endpoint.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
    e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterOrders registers the order lifecycle endpoints under /v1.
// Every route requires a valid access token; the rate limiter, when
// given, wraps the whole group.  Token redemption is additionally
// restricted to staff-capable roles.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    if limiter != nil {
        g.Use(limiter)
    }

    g.POST("/orders", h.CreateOrder,
        middleware.RequireRole(model.RoleUser, model.RoleStaff, model.RoleAdmin, model.RoleSuperAdmin))
    g.GET("/orders/:id", h.GetOrder)
    g.POST("/orders/:id/items", h.AddItems)
    g.POST("/orders/:id/payment", h.Pay)
    g.DELETE("/orders/:id", h.CancelOrder)
    g.POST("/orders/:id/return", h.ReturnOrder)
    g.GET("/my-orders", h.ListMyOrders)

    g.GET("/orders/token/:token", h.GetByToken,
        middleware.RequireRole(model.RoleStaff, model.RoleAdmin, model.RoleSuperAdmin))
}
