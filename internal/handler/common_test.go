package handler

import (
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"

    "github.com/iliyamo/cinema-order-engine/internal/model"
    "github.com/iliyamo/cinema-order-engine/internal/repository"
)

func statusFor(t *testing.T, err error) int {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    _ = respondError(c, err)
    return rec.Code
}

func TestRespondErrorStatusMapping(t *testing.T) {
    conflict := []error{
        model.ErrSeatUnavailable,
        model.ErrInvalidOrderTransition,
        model.ErrPaymentAlreadyFinalized,
        model.ErrInsufficientStock,
        model.ErrReturnWindowClosed,
    }
    for _, err := range conflict {
        assert.Equal(t, http.StatusConflict, statusFor(t, err), "%v", err)
    }

    badRequest := []error{
        model.ErrPromoInvalid,
        model.ErrPromoExpired, // wraps ErrPromoInvalid
        model.ErrInsufficientBonusBalance,
        model.ErrOrderBelowMinimum,
        model.ErrEmptyOrder,
        model.ErrSessionClosed,
    }
    for _, err := range badRequest {
        assert.Equal(t, http.StatusBadRequest, statusFor(t, err), "%v", err)
    }

    notFound := []error{
        repository.ErrOrderNotFound,
        repository.ErrSessionNotFound,
        repository.ErrSeatNotFound,
        repository.ErrItemNotFound,
    }
    for _, err := range notFound {
        assert.Equal(t, http.StatusNotFound, statusFor(t, err), "%v", err)
    }

    assert.Equal(t, http.StatusForbidden, statusFor(t, repository.ErrForbidden))
    assert.Equal(t, http.StatusInternalServerError, statusFor(t, errors.New("driver: bad connection")))
}

func TestPathID(t *testing.T) {
    e := echo.New()
    newCtx := func(val string) echo.Context {
        req := httptest.NewRequest(http.MethodGet, "/", nil)
        c := e.NewContext(req, httptest.NewRecorder())
        c.SetParamNames("id")
        c.SetParamValues(val)
        return c
    }

    id, err := pathID(newCtx("17"), "id")
    assert.NoError(t, err)
    assert.Equal(t, uint64(17), id)

    for _, bad := range []string{"0", "-3", "abc", ""} {
        _, err := pathID(newCtx(bad), "id")
        assert.Error(t, err, "value %q", bad)
    }
}
