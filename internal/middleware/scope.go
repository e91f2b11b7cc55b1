package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequireScope aborts with 403 unless the token scope stored by JWTAuth is
// one of scopes.
func RequireScope(scopes ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(scopes))
    for _, s := range scopes {
        allowed[s] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            scope, ok := c.Get(CtxScope).(string)
            if !ok || !allowed[scope] {
                return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
