package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, sub interface{}, role string) string {
    t.Helper()
    claims := jwt.MapClaims{
        "sub":  sub,
        "role": role,
        "exp":  time.Now().Add(time.Hour).Unix(),
    }
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := tok.SignedString([]byte(testSecret))
    require.NoError(t, err)
    return signed
}

func invoke(token string) (*httptest.ResponseRecorder, echo.Context) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var captured echo.Context
    h := JWTAuth(testSecret)(func(c echo.Context) error {
        captured = c
        return c.NoContent(http.StatusOK)
    })
    _ = h(c)
    return rec, captured
}

func TestJWTAuthInjectsTypedClaims(t *testing.T) {
    rec, c := invoke(signToken(t, 42, "USER"))
    require.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, c)

    assert.Equal(t, uint64(42), c.Get("user_id"))
    assert.Equal(t, model.RoleUser, c.Get("role"))
}

func TestJWTAuthAcceptsStringSubject(t *testing.T) {
    rec, c := invoke(signToken(t, "7", "STAFF"))
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, uint64(7), c.Get("user_id"))
    assert.Equal(t, model.RoleStaff, c.Get("role"))
}

func TestJWTAuthRejectsUnknownRole(t *testing.T) {
    rec, _ := invoke(signToken(t, 42, "WIZARD"))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
    rec, _ := invoke("")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
    claims := jwt.MapClaims{"sub": 1, "role": "USER", "exp": time.Now().Add(time.Hour).Unix()}
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := tok.SignedString([]byte("other-secret"))
    require.NoError(t, err)

    rec, _ := invoke(signed)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleFiltersByRole(t *testing.T) {
    e := echo.New()
    guard := RequireRole(model.RoleStaff, model.RoleAdmin)

    run := func(role interface{}) int {
        req := httptest.NewRequest(http.MethodGet, "/", nil)
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        if role != nil {
            c.Set("role", role)
        }
        _ = guard(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
        return rec.Code
    }

    assert.Equal(t, http.StatusOK, run(model.RoleStaff))
    assert.Equal(t, http.StatusOK, run(model.RoleAdmin))
    assert.Equal(t, http.StatusForbidden, run(model.RoleUser))
    assert.Equal(t, http.StatusForbidden, run("STAFF"), "raw string role must not pass")
    assert.Equal(t, http.StatusForbidden, run(nil))
}
