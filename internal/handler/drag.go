package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/board"
)

// sourceReq is the wire form of board.Source:
//   {"kind":"shelf","entry_id":"..."} or {"kind":"grid","block_id":"..."}
type sourceReq struct {
    Kind    string `json:"kind"`
    EntryID string `json:"entry_id,omitempty"`
    BlockID string `json:"block_id,omitempty"`
    Origin  *int   `json:"origin,omitempty"`
}

func (r sourceReq) toSource() (board.Source, error) {
    switch r.Kind {
    case "shelf":
        if r.EntryID == "" {
            return nil, board.ErrInvalidSource
        }
        return board.FromShelf{EntryID: r.EntryID}, nil
    case "grid":
        if r.BlockID == "" {
            return nil, board.ErrInvalidSource
        }
        return board.FromGrid{BlockID: r.BlockID}, nil
    }
    return nil, board.ErrInvalidSource
}

func sourceView(s board.Source) sourceReq {
    switch v := s.(type) {
    case board.FromShelf:
        return sourceReq{Kind: "shelf", EntryID: v.EntryID}
    case board.FromGrid:
        origin := v.Origin
        return sourceReq{Kind: "grid", BlockID: v.BlockID, Origin: &origin}
    }
    return sourceReq{}
}

// targetReq is the wire form of board.Target:
//   {"kind":"cell","index":5}, {"kind":"shelf"} or {"kind":"none"}
type targetReq struct {
    Kind  string `json:"kind"`
    Index *int   `json:"index,omitempty"`
}

func (r targetReq) toTarget() (board.Target, error) {
    switch r.Kind {
    case "cell":
        if r.Index == nil {
            return nil, board.ErrInvalidTarget
        }
        return board.CellTarget{Index: *r.Index}, nil
    case "shelf":
        return board.ShelfTarget{}, nil
    case "none", "":
        return board.NoTarget{}, nil
    }
    return nil, board.ErrInvalidTarget
}

type dropView struct {
    board.DropResult
    Occupied []int `json:"occupied"`
}

// DragState reports the current drag.
func (h *BoardHandler) DragState(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, dragSnapshot(b.Drag))
}

// DragStart picks up a shelf entry or a placed block.
func (h *BoardHandler) DragStart(c echo.Context) error {
    var req sourceReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    src, err := req.toSource()
    if err != nil {
        return fail(c, err)
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    if _, err := b.Drag.Start(src); err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, dragSnapshot(b.Drag))
}

// DragOver moves the pointer and returns the highlight for the new target.
func (h *BoardHandler) DragOver(c echo.Context) error {
    var req targetReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    target, err := req.toTarget()
    if err != nil {
        return fail(c, err)
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    hl, err := b.Drag.Over(target)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, hl)
}

// DragDrop releases the block.  A rejected placement is a 200 with outcome
// dropped_invalid and the offending cells.
func (h *BoardHandler) DragDrop(c echo.Context) error {
    var req targetReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    target, err := req.toTarget()
    if err != nil {
        return fail(c, err)
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := withStorageTimeout(c)
    defer cancel()
    res, err := b.Drag.Drop(ctx, target)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, dropView{DropResult: res, Occupied: b.Grid.OccupiedList()})
}

// DragCancel abandons the drag.  Cancelling while idle is harmless.
func (h *BoardHandler) DragCancel(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, b.Drag.Cancel())
}
