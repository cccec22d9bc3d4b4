package main

import (
    "context"
    "errors"
    stdlog "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/cinema-order-engine/internal/config"
    "github.com/iliyamo/cinema-order-engine/internal/database"
    "github.com/iliyamo/cinema-order-engine/internal/handler"
    "github.com/iliyamo/cinema-order-engine/internal/logger"
    "github.com/iliyamo/cinema-order-engine/internal/middleware"
    "github.com/iliyamo/cinema-order-engine/internal/queue"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
    "github.com/iliyamo/cinema-order-engine/internal/router"
    "github.com/iliyamo/cinema-order-engine/internal/scheduler"
    "github.com/iliyamo/cinema-order-engine/internal/service"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments use the environment

    cfg := config.Load()
    if err := logger.Init(cfg.Env); err != nil {
        stdlog.Fatalf("logger init failed: %v", err)
    }
    defer logger.Sync()
    log := logger.WithComponent("main")

    db, err := database.Open(cfg)
    if err != nil {
        log.Fatal("database connection failed", zap.Error(err))
    }
    defer db.Close()

    orders := repository.NewOrderRepo(db)
    tickets := repository.NewTicketRepo(db)
    sessions := repository.NewSessionRepo(db)
    seats := repository.NewSeatRepo(db)
    preorders := repository.NewPreorderRepo(db)
    bonus := repository.NewBonusRepo(db)
    promos := repository.NewPromocodeRepo(db)
    payments := repository.NewPaymentRepo(db)
    contracts := repository.NewContractRepo(db)

    svc := service.NewOrderService(db, orders, tickets, sessions, seats,
        preorders, bonus, promos, payments, contracts, cfg)

    sched := scheduler.New(
        scheduler.Job{Name: "expire_orders", Interval: cfg.ExpireInterval, Run: svc.ExpireStaleOrders},
        scheduler.Job{Name: "complete_orders", Interval: cfg.CompleteInterval, Run: svc.CompleteElapsedOrders},
        scheduler.Job{Name: "advance_sessions", Interval: cfg.SessionInterval, Run: svc.AdvanceSessions},
        scheduler.Job{Name: "settle_contracts", Interval: cfg.SettleInterval, Run: svc.SettleExpiredContracts},
    )
    sched.Start(context.Background())
    defer sched.Stop()

    // Audit trail for lifecycle events; reconnects on its own.
    go func() {
        if err := queue.StartOrderEventConsumer(); err != nil {
            log.Warn("order event consumer stopped", zap.Error(err))
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewValidator()

    var limiter echo.MiddlewareFunc
    if rdb := config.NewRedisClient(); rdb != nil {
        limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    } else {
        log.Warn("redis unavailable, rate limiting disabled")
    }

    router.RegisterRoutes(e)
    router.RegisterOrders(e, handler.NewOrderHandler(svc), cfg.JWTSecret, limiter)

    addr := ":" + cfg.Port
    go func() {
        log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal("server stopped", zap.Error(err))
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
    <-quit

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(ctx); err != nil {
        log.Error("shutdown failed", zap.Error(err))
    }
}
