// Package middleware contains reusable HTTP middleware: JWT
// authentication, role gating and Redis-backed rate limiting.
package middleware

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-order-engine/internal/model"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role claims into the
// request context.  The subject lands as uint64 under "user_id" and
// the role as model.Role under "role"; a token carrying an unknown
// role is rejected outright rather than mapped to a default.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            userID, ok := subjectID(claims["sub"])
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
            }
            roleStr, _ := claims["role"].(string)
            role, err := model.ParseRole(roleStr)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown role"})
            }

            c.Set("user_id", userID)
            c.Set("role", role)
            return next(c)
        }
    }
}

// subjectID normalizes the "sub" claim, which arrives as a JSON number
// or a numeric string depending on the issuer.
func subjectID(v interface{}) (uint64, bool) {
    switch t := v.(type) {
    case float64:
        if t > 0 {
            return uint64(t), true
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
            return n, true
        }
    }
    return 0, false
}
