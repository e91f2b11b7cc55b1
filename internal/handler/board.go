package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/board"
    "github.com/iliyamo/cinema-moodboard/internal/model"
)

type dragView struct {
    State     board.DragState    `json:"state"`
    Active    *board.ActiveDrag  `json:"active,omitempty"`
    Source    *sourceReq         `json:"source,omitempty"`
    Highlight board.Highlight    `json:"highlight"`
}

func dragSnapshot(d *board.DragController) dragView {
    v := dragView{State: d.State(), Highlight: d.Highlight()}
    if a, ok := d.Active(); ok {
        v.Active = &a
        s := sourceView(a.Source)
        v.Source = &s
    }
    return v
}

// Get returns the whole board: dimensions, shelf, placed blocks, the
// occupied cell list and the drag state.
func (h *BoardHandler) Get(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "board_id": b.ID,
        "grid":     b.Engine.Grid(),
        "shelf":    b.Shelf.Blocks(),
        "blocks":   b.Grid.Blocks(),
        "occupied": b.Grid.OccupiedList(),
        "drag":     dragSnapshot(b.Drag),
    })
}

// ListShelf returns the shelf in display order.
func (h *BoardHandler) ListShelf(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"data": b.Shelf.Blocks()})
}

type addShelfReq struct {
    Question string         `json:"question"`
    Movie    model.MovieRef `json:"movie"`
    Variant  string         `json:"variant"`
}

// AddShelf answers a prompt with a movie and a block shape; the block lands
// at the end of the shelf.
func (h *BoardHandler) AddShelf(c echo.Context) error {
    var req addShelfReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Movie.ID == 0 || strings.TrimSpace(req.Movie.Title) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie id and title required"})
    }
    if req.Question == "" {
        req.Question = string(model.QuestionMovie)
    }
    q, err := model.ParseQuestion(req.Question)
    if err != nil {
        return fail(c, err)
    }
    v, err := model.ParseVariant(req.Variant)
    if err != nil {
        return fail(c, err)
    }
    ans, err := model.NewAnswer(q, req.Movie, v)
    if err != nil {
        return fail(c, err)
    }

    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := withStorageTimeout(c)
    defer cancel()
    entry, err := b.Shelf.Add(ctx, ans.Movie, ans.Variant)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, entry)
}

// DeleteShelf removes one shelf entry by id.
func (h *BoardHandler) DeleteShelf(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := withStorageTimeout(c)
    defer cancel()
    ok, err := b.Shelf.Remove(ctx, c.Param("id"))
    if err != nil {
        return fail(c, err)
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf entry not found"})
    }
    return c.NoContent(http.StatusNoContent)
}

// DeleteShelfByMovie removes the nth entry (zero based, default 0) for a
// movie.  Clients that predate shelf entry ids address entries this way.
func (h *BoardHandler) DeleteShelfByMovie(c echo.Context) error {
    movieID, err := strconv.ParseInt(c.QueryParam("movie_id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
    }
    nth := 0
    if s := c.QueryParam("nth"); s != "" {
        if nth, err = strconv.Atoi(s); err != nil || nth < 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nth"})
        }
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    ctx, cancel := withStorageTimeout(c)
    defer cancel()
    ok, err := b.Shelf.RemoveNth(ctx, movieID, nth)
    if err != nil {
        return fail(c, err)
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "shelf entry not found"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListGrid returns the placed blocks and the occupied cells.
func (h *BoardHandler) ListGrid(c echo.Context) error {
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "grid":     b.Engine.Grid(),
        "data":     b.Grid.Blocks(),
        "occupied": b.Grid.OccupiedList(),
    })
}

// Cell returns the block covering a cell.
func (h *BoardHandler) Cell(c echo.Context) error {
    pos, err := strconv.Atoi(c.Param("position"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position"})
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    if !b.Engine.Grid().Contains(pos) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "position outside the grid"})
    }
    blk, ok := b.Grid.BlockAt(pos)
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "cell is empty"})
    }
    cells, _ := b.Grid.CellsOf(blk.ID)
    return c.JSON(http.StatusOK, echo.Map{"block": blk, "cells": cells})
}

type previewReq struct {
    Variant string `json:"variant"`
    Target  *int   `json:"target"`
    Exclude string `json:"exclude"`
}

// Preview evaluates a placement without touching the board.
func (h *BoardHandler) Preview(c echo.Context) error {
    var req previewReq
    if err := c.Bind(&req); err != nil || req.Target == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "variant and target required"})
    }
    v, err := model.ParseVariant(req.Variant)
    if err != nil {
        return fail(c, err)
    }
    b, err := h.current(c)
    if err != nil {
        return fail(c, err)
    }
    p, err := b.Engine.Evaluate(v, *req.Target, req.Exclude)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, p)
}
