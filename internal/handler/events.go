package handler

import (
    "encoding/json"
    "fmt"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/board"
)

// heartbeatEvery keeps idle SSE connections open through proxies.
var heartbeatEvery = 25 * time.Second

type changeView struct {
    Collection string `json:"collection"` // shelf | grid
    board.ChangeEvent
}

// Events streams board changes as server-sent events.  Each event names
// the collection that changed; clients refetch it.  Writes from other
// server processes arrive here too, through the stores' reload path.
func (h *BoardHandler) Events(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }

    changes := make(chan changeView, 16)
    forward := func(name string) board.Listener {
        return func(ev board.ChangeEvent) {
            select {
            case changes <- changeView{Collection: name, ChangeEvent: ev}:
            default: // client is behind; it will refetch on the next event
            }
        }
    }
    unsubGrid := b.Grid.Subscribe(forward("grid"))
    defer unsubGrid()
    unsubShelf := b.Shelf.Subscribe(forward("shelf"))
    defer unsubShelf()

    res := c.Response()
    res.Header().Set(echo.HeaderContentType, "text/event-stream")
    res.Header().Set("Cache-Control", "no-cache")
    res.Header().Set("Connection", "keep-alive")
    res.WriteHeader(http.StatusOK)
    fmt.Fprintf(res, "event: ready\ndata: {\"board_id\":%q}\n\n", b.ID)
    res.Flush()

    ticker := time.NewTicker(heartbeatEvery)
    defer ticker.Stop()
    ctx := c.Request().Context()
    for {
        select {
        case <-ctx.Done():
            return nil
        case <-ticker.C:
            fmt.Fprint(res, ": ping\n\n")
            res.Flush()
        case ev := <-changes:
            data, err := json.Marshal(ev)
            if err != nil {
                continue
            }
            fmt.Fprintf(res, "event: change\ndata: %s\n\n", data)
            res.Flush()
        }
    }
}
