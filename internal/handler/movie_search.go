package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/tmdb"
)

// MovieHandler proxies the movie catalog.
type MovieHandler struct {
    Catalog tmdb.Searcher
}

// Search never surfaces a catalog failure as a crash: the response is an
// empty page with a message, and a non-200 status so it is not cached.
func (h *MovieHandler) Search(c echo.Context) error {
    query := c.QueryParam("query")
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 { page = 1 }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.Catalog.Search(ctx, query, page)
    if errors.Is(err, tmdb.ErrEmptyQuery) {
        return c.JSON(http.StatusBadRequest, emptyPage(page, "검색어를 입력해주세요"))
    }
    if err != nil {
        c.Logger().Warnf("movie search %q failed: %v", query, err)
        return c.JSON(http.StatusBadGateway, emptyPage(page, "영화 검색 중 오류가 발생했습니다"))
    }
    return c.JSON(http.StatusOK, res)
}

func emptyPage(page int, msg string) echo.Map {
    return echo.Map{
        "page":          page,
        "results":       []model.MovieRef{},
        "total_pages":   0,
        "total_results": 0,
        "error":         msg,
    }
}
