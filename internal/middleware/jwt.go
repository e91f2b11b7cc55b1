package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    CtxBoardID = "board_id"
    CtxScope   = "scope"
    CtxName    = "name"
)

// JWTAuth returns an Echo middleware that validates a Bearer board token and
// injects its subject (the board id), scope and display name into the
// request context.  EventSource cannot set headers, so the token is also
// accepted in the access_token query parameter.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := ""
            if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
                raw = strings.TrimPrefix(auth, "Bearer ")
            } else if q := c.QueryParam("access_token"); q != "" {
                raw = q
            }
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }

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
            sub, _ := claims["sub"].(string)
            if sub == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set(CtxBoardID, sub)
            c.Set(CtxScope, claims["scope"])
            c.Set(CtxName, claims["name"])
            return next(c)
        }
    }
}
