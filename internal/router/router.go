package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/handler"
    "github.com/iliyamo/cinema-moodboard/internal/middleware"
    "github.com/iliyamo/cinema-moodboard/internal/utils"
)

// RegisterRoutes registers routes that do not require a token: health,
// sign-in and the read-only catalog.  catalogCache wraps the catalog routes,
// searchCache the movie search proxy, and limit sign-in and search.
func RegisterRoutes(e *echo.Echo, s *handler.SessionHandler, m *handler.MovieHandler, catalogCache, searchCache, limit echo.MiddlewareFunc) {
    e.GET("/healthz", handler.Health)

    v1 := e.Group("/v1")
    v1.POST("/session", s.Create, limit)

    catalog := v1.Group("/catalog", catalogCache)
    catalog.GET("/variants", handler.Variants)
    catalog.GET("/questions", handler.Questions)

    v1.GET("/movies/search", m.Search, limit, searchCache)
}

// RegisterBoard registers the board routes.  All of them require a board
// token; the board is the token's subject.
func RegisterBoard(e *echo.Echo, h *handler.BoardHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1/board",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireScope(utils.BoardScope),
    )

    g.GET("", h.Get)
    g.GET("/events", h.Events)

    // ---- Shelf ----
    g.GET("/shelf", h.ListShelf)
    g.POST("/shelf", h.AddShelf, limit)
    g.DELETE("/shelf", h.DeleteShelfByMovie, limit)
    g.DELETE("/shelf/:id", h.DeleteShelf, limit)

    // ---- Grid ----
    g.GET("/grid", h.ListGrid)
    g.GET("/grid/cells/:position", h.Cell)
    g.POST("/placements/preview", h.Preview)

    // ---- Drag ----
    // drag/over fires on every pointer move and is not rate limited
    g.GET("/drag", h.DragState)
    g.POST("/drag/start", h.DragStart, limit)
    g.POST("/drag/over", h.DragOver)
    g.POST("/drag/drop", h.DragDrop, limit)
    g.POST("/drag/cancel", h.DragCancel)
}
