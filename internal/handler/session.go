package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/utils"
)

// SessionHandler issues board tokens.
type SessionHandler struct {
    Secret string
    TTLMin int
}

type sessionReq struct {
    Name string `json:"name"`
}

// Create exchanges a display name for a token that opens that name's
// board.  The same name always opens the same board.
func (h *SessionHandler) Create(c echo.Context) error {
    var req sessionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    tok, err := utils.NewBoardToken(h.Secret, req.Name, h.TTLMin)
    if errors.Is(err, utils.ErrEmptyName) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
    }
    return c.JSON(http.StatusCreated, tok)
}
