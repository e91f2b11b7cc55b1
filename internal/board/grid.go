package board

import (
    "sort"

    "github.com/iliyamo/cinema-moodboard/internal/model"
)

// Default board dimensions.
const (
    DefaultCols = 4
    DefaultRows = 6
)

// Grid is a fixed Cols×Rows board addressed by row-major cell index.
type Grid struct {
    Cols int `json:"cols"`
    Rows int `json:"rows"`
}

// DefaultGrid returns the 4×6 board.
func DefaultGrid() Grid { return Grid{Cols: DefaultCols, Rows: DefaultRows} }

// Size returns the number of cells.
func (g Grid) Size() int { return g.Cols * g.Rows }

// Contains reports whether cell is a valid index.
func (g Grid) Contains(cell int) bool { return cell >= 0 && cell < g.Size() }

// Footprint computes the cells a block of size fp covers when its top-left
// corner sits on origin.  When the block does not fit, inBounds is false and
// cells holds only the part of the footprint that lies inside the grid.
func (g Grid) Footprint(origin int, fp model.Footprint) (cells []int, inBounds bool) {
    if origin < 0 || g.Cols <= 0 {
        return nil, false
    }
    baseRow := origin / g.Cols
    baseCol := origin % g.Cols
    inBounds = baseCol+fp.Cols <= g.Cols && baseRow+fp.Rows <= g.Rows
    cells = make([]int, 0, fp.Cells())
    for r := 0; r < fp.Rows; r++ {
        row := baseRow + r
        if row >= g.Rows {
            break
        }
        for c := 0; c < fp.Cols; c++ {
            col := baseCol + c
            if col >= g.Cols {
                break
            }
            cells = append(cells, row*g.Cols+col)
        }
    }
    return cells, inBounds
}

// PlacementStatus is the verdict of the placement engine.
type PlacementStatus string

const (
    PlacementValid       PlacementStatus = "valid"
    PlacementOutOfBounds PlacementStatus = "out_of_bounds"
    PlacementCollision   PlacementStatus = "collision"
)

// Placement is the evaluation of one candidate drop.  Valid and Invalid are
// the cells to highlight; exactly one of them is non-empty unless the block
// lies entirely outside the grid.
type Placement struct {
    Status  PlacementStatus    `json:"status"`
    Target  int                `json:"target"`
    Variant model.BlockVariant `json:"variant"`
    Valid   []int              `json:"valid"`
    Invalid []int              `json:"invalid"`
}

// OK reports whether the placement may be committed.
func (p Placement) OK() bool { return p.Status == PlacementValid }

// Occupancy is the view of the grid the engine needs.  GridStore
// implements it.
type Occupancy interface {
    OccupiedCells() map[int]struct{}
    CellsOf(id string) ([]int, bool)
}

// Engine decides whether a block fits at a target cell.  It holds no state
// of its own; every call reads the current occupancy, so drag-over previews
// and drop-time validation always agree.
type Engine struct {
    grid Grid
    occ  Occupancy
}

// NewEngine returns an engine over the given grid and occupancy source.
func NewEngine(grid Grid, occ Occupancy) *Engine {
    return &Engine{grid: grid, occ: occ}
}

// Grid returns the board dimensions.
func (e *Engine) Grid() Grid { return e.grid }

// Evaluate checks a block of variant v whose top-left corner lands on
// target.  exclude names the grid block being moved (empty for a fresh
// placement); its current cells do not count as collisions.
//
// Placement is all-or-nothing: one colliding cell rejects the whole shape
// and every target cell is reported invalid.
func (e *Engine) Evaluate(v model.BlockVariant, target int, exclude string) (Placement, error) {
    fp, ok := model.FootprintOf(v)
    if !ok {
        return Placement{}, model.ErrUnknownVariant
    }
    p := Placement{Target: target, Variant: v, Valid: []int{}, Invalid: []int{}}

    cells, inBounds := e.grid.Footprint(target, fp)
    if !inBounds {
        p.Status = PlacementOutOfBounds
        p.Invalid = append(p.Invalid, cells...)
        return p, nil
    }

    var self map[int]struct{}
    if exclude != "" {
        if own, ok := e.occ.CellsOf(exclude); ok {
            self = make(map[int]struct{}, len(own))
            for _, c := range own {
                self[c] = struct{}{}
            }
        }
    }

    occupied := e.occ.OccupiedCells()
    for _, c := range cells {
        if _, taken := occupied[c]; !taken {
            continue
        }
        if _, mine := self[c]; mine {
            continue
        }
        p.Status = PlacementCollision
        p.Invalid = append(p.Invalid, cells...)
        return p, nil
    }

    p.Status = PlacementValid
    p.Valid = append(p.Valid, cells...)
    return p, nil
}

// sortedCells returns the keys of a cell set in ascending order.
func sortedCells(set map[int]struct{}) []int {
    out := make([]int, 0, len(set))
    for c := range set {
        out = append(out, c)
    }
    sort.Ints(out)
    return out
}
