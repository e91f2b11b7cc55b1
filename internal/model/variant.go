package model

import (
    "errors"
    "strings"
)

// BlockVariant is the shape tag of a moodboard block.  Each variant maps to
// a fixed footprint measured in grid cells.
type BlockVariant string

const (
    VariantTiny   BlockVariant = "tiny"
    VariantTall   BlockVariant = "tall"
    VariantMedium BlockVariant = "medium"
    VariantWide   BlockVariant = "wide"
    VariantLarge  BlockVariant = "large"
)

// ErrUnknownVariant is returned when a variant tag is not part of the catalog.
var ErrUnknownVariant = errors.New("unknown block variant")

// Footprint is the size of a block in grid cells.
type Footprint struct {
    Cols int `json:"cols"`
    Rows int `json:"rows"`
}

// Cells returns the number of grid cells covered by the footprint.
func (f Footprint) Cells() int { return f.Cols * f.Rows }

// catalog order is also the display order of the variant picker.
var variantOrder = []BlockVariant{VariantTiny, VariantTall, VariantMedium, VariantWide, VariantLarge}

var footprints = map[BlockVariant]Footprint{
    VariantTiny:   {Cols: 1, Rows: 1},
    VariantTall:   {Cols: 1, Rows: 3},
    VariantMedium: {Cols: 2, Rows: 3},
    VariantWide:   {Cols: 3, Rows: 1},
    VariantLarge:  {Cols: 3, Rows: 2},
}

// FootprintOf returns the footprint of v.  The second result is false for
// variants outside the catalog.
func FootprintOf(v BlockVariant) (Footprint, bool) {
    f, ok := footprints[v]
    return f, ok
}

// Valid reports whether v is part of the catalog.
func (v BlockVariant) Valid() bool {
    _, ok := footprints[v]
    return ok
}

// Variants returns every catalog variant in display order.
func Variants() []BlockVariant {
    out := make([]BlockVariant, len(variantOrder))
    copy(out, variantOrder)
    return out
}

// ParseVariant converts a user supplied tag into a BlockVariant.  Matching
// ignores case and surrounding whitespace.
func ParseVariant(s string) (BlockVariant, error) {
    v := BlockVariant(strings.ToLower(strings.TrimSpace(s)))
    if !v.Valid() {
        return "", ErrUnknownVariant
    }
    return v, nil
}

// PreviewCell is a column/row pair on the variant preview board.
type PreviewCell struct {
    Col int `json:"col"`
    Row int `json:"row"`
}

// PreviewCols and PreviewRows size the board used to show all five variants
// side by side when a user picks a block for a movie.
const (
    PreviewCols = 4
    PreviewRows = 10
)

var previewOrigins = map[BlockVariant]PreviewCell{
    VariantTiny:   {Col: 3, Row: 0},
    VariantWide:   {Col: 0, Row: 1},
    VariantTall:   {Col: 0, Row: 3},
    VariantMedium: {Col: 2, Row: 3},
    VariantLarge:  {Col: 0, Row: 7},
}

// PreviewLayout returns the fixed origin of each variant on the preview
// board.  The layout never overlaps.
func PreviewLayout() map[BlockVariant]PreviewCell {
    out := make(map[BlockVariant]PreviewCell, len(previewOrigins))
    for k, v := range previewOrigins {
        out[k] = v
    }
    return out
}
