package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-moodboard/internal/model"
)

type variantView struct {
    Variant model.BlockVariant `json:"variant"`
    Cols    int                `json:"cols"`
    Rows    int                `json:"rows"`
    Cells   int                `json:"cells"`
    Preview model.PreviewCell  `json:"preview"`
}

// Variants lists the block catalog with each variant's spot on the preview
// board.
func Variants(c echo.Context) error {
    layout := model.PreviewLayout()
    items := make([]variantView, 0, len(layout))
    for _, v := range model.Variants() {
        fp, _ := model.FootprintOf(v)
        items = append(items, variantView{Variant: v, Cols: fp.Cols, Rows: fp.Rows, Cells: fp.Cells(), Preview: layout[v]})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "data":    items,
        "preview": echo.Map{"cols": model.PreviewCols, "rows": model.PreviewRows},
    })
}

// Questions lists the prompts in display order.
func Questions(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"data": model.Questions()})
}
