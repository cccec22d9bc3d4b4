// Package metrics registers the engine's Prometheus collectors.  The
// counters cover the order lifecycle and the scheduler sweeps; the
// /metrics route exposes them via promhttp.
package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "orders_created_total",
        Help: "Total number of orders created",
    })

    OrdersPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "orders_paid_total",
        Help: "Total number of orders successfully paid",
    })

    OrdersCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "orders_cancelled_total",
        Help: "Total number of cancelled orders",
    }, []string{"reason"}) // "user" or "expired"

    OrdersRefundedTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "orders_refunded_total",
        Help: "Total number of refunded orders",
    })

    OrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "orders_completed_total",
        Help: "Total number of orders completed after their session",
    })

    SeatConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "seat_conflicts_total",
        Help: "Total number of bookings rejected because a seat was taken",
    })

    ContractsSettledTotal = promauto.NewCounter(prometheus.CounterOpts{
        Name: "contracts_settled_total",
        Help: "Total number of rental contracts moved to pending settlement",
    })

    SchedulerRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
        Name: "scheduler_runs_total",
        Help: "Total scheduler job executions",
    }, []string{"job", "result"}) // result: "ok" or "error"
)
