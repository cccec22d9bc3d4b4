// Package repository implements data access for the order engine on a
// transactional MySQL store.  Repositories own a *sql.DB and expose
// *Tx variants that operate inside a caller-supplied transaction; the
// caller commits or rolls back.  All timestamps are stored and
// compared in UTC.  Sentinel errors defined here let services and
// handlers distinguish failure scenarios with errors.Is.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrOrderNotFound is returned when an order lookup matches no row.
var ErrOrderNotFound = errors.New("order not found")

// ErrSessionNotFound is returned when a session lookup matches no row.
var ErrSessionNotFound = errors.New("session not found")

// ErrSeatNotFound is returned when a seat lookup matches no row, the
// seat is out of service or it sits in a different hall than the
// requested session.
var ErrSeatNotFound = errors.New("seat not found")

// ErrItemNotFound is returned when a concession item lookup matches no
// row or the item is inactive.
var ErrItemNotFound = errors.New("concession item not found")

// ErrAccountNotFound is returned when a user has no bonus account row.
var ErrAccountNotFound = errors.New("bonus account not found")

// MySQL error numbers signalling that a row lock could not be taken:
// 3572 (NOWAIT lock rejected), 1205 (lock wait timeout) and 1213
// (deadlock victim).  Within an order-creation transaction all three
// mean another booking holds the contested row right now.
const (
    mysqlErrLockNowait      = 3572
    mysqlErrLockWaitTimeout = 1205
    mysqlErrDeadlock        = 1213
)

// isLockConflict reports whether err is a MySQL row-lock acquisition
// failure rather than a genuine query error.
func isLockConflict(err error) bool {
    var me *mysql.MySQLError
    if !errors.As(err, &me) {
        return false
    }
    switch me.Number {
    case mysqlErrLockNowait, mysqlErrLockWaitTimeout, mysqlErrDeadlock:
        return true
    }
    return false
}
