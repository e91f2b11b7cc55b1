package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/board"
    "github.com/iliyamo/cinema-moodboard/internal/middleware"
    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

// storageTimeout bounds every store write made on behalf of a request.
const storageTimeout = 5 * time.Second

// BoardHandler serves the board routes.  Every request operates on the
// board named by the token subject.
type BoardHandler struct {
    Boards *board.Manager
}

// NewBoardHandler panics on a nil manager.
func NewBoardHandler(m *board.Manager) *BoardHandler {
    if m == nil {
        panic("nil board manager passed to NewBoardHandler")
    }
    return &BoardHandler{Boards: m}
}

func (h *BoardHandler) current(c echo.Context) (*board.Board, error) {
    id := middleware.BoardID(c)
    if id == "" {
        return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing board")
    }
    return h.Boards.Board(c.Request().Context(), id)
}

func withStorageTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), storageTimeout)
}

// fail maps domain errors to status codes with the usual error body.
func fail(c echo.Context, err error) error {
    var he *echo.HTTPError
    switch {
    case errors.As(err, &he):
        return c.JSON(he.Code, echo.Map{"error": he.Message})
    case errors.Is(err, board.ErrDragInProgress):
        return c.JSON(http.StatusConflict, echo.Map{"error": "drag_in_progress", "message": err.Error()})
    case errors.Is(err, board.ErrNoActiveDrag):
        return c.JSON(http.StatusConflict, echo.Map{"error": "no_active_drag", "message": err.Error()})
    case errors.Is(err, board.ErrSourceNotFound), errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
    case errors.Is(err, board.ErrInvalidSource), errors.Is(err, board.ErrInvalidTarget),
        errors.Is(err, model.ErrUnknownVariant), errors.Is(err, model.ErrUnknownQuestion),
        errors.Is(err, model.ErrUnsupportedQuestion):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": err.Error()})
    default:
        c.Logger().Errorf("board request failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage_error", "message": err.Error()})
    }
}
