package middleware

import "github.com/labstack/echo/v4"

// BoardID returns the board id stored by JWTAuth, or "" when the request is
// anonymous.
func BoardID(c echo.Context) string {
    if v, ok := c.Get(CtxBoardID).(string); ok {
        return v
    }
    return ""
}

// boardKey is BoardID with "anon" for anonymous callers; used in rate
// limit keys.
func boardKey(c echo.Context) string {
    if id := BoardID(c); id != "" {
        return id
    }
    return "anon"
}
