package board

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/cinema-moodboard/internal/model"
)

var (
    // ErrDragInProgress is returned by Start while another block is active.
    ErrDragInProgress = errors.New("a drag is already in progress")
    // ErrNoActiveDrag is returned by Over and Drop when nothing is dragged.
    ErrNoActiveDrag = errors.New("no active drag")
    // ErrSourceNotFound means the dragged block no longer exists.
    ErrSourceNotFound = errors.New("drag source not found")
    // ErrInvalidSource and ErrInvalidTarget reject malformed union values.
    ErrInvalidSource = errors.New("invalid drag source")
    ErrInvalidTarget = errors.New("invalid drop target")
)

// Source identifies the block being dragged.  It is either FromShelf or
// FromGrid; the drop handler switches on the concrete type.
type Source interface {
    isSource()
}

// FromShelf drags a shelf entry.
type FromShelf struct {
    EntryID string `json:"entry_id"`
}

// FromGrid drags a placed block.  Origin is filled in by Start from the
// store; a value supplied by the caller is ignored.
type FromGrid struct {
    BlockID string `json:"block_id"`
    Origin  int    `json:"origin"`
}

func (FromShelf) isSource() {}
func (FromGrid) isSource()  {}

// Target is where the pointer is: a grid cell, the shelf, or nowhere.
type Target interface {
    isTarget()
}

// CellTarget is a grid cell; Index is the cell under the block's top-left
// corner.
type CellTarget struct {
    Index int `json:"index"`
}

// ShelfTarget is the shelf region.
type ShelfTarget struct{}

// NoTarget means the pointer is over nothing droppable.
type NoTarget struct{}

func (CellTarget) isTarget()  {}
func (ShelfTarget) isTarget() {}
func (NoTarget) isTarget()    {}

// DragState is the controller state between requests.
type DragState string

const (
    StateIdle     DragState = "idle"
    StateDragging DragState = "dragging"
)

// Outcome is the terminal state of one drag.
type Outcome string

const (
    OutcomeDroppedValid   Outcome = "dropped_valid"
    OutcomeDroppedInvalid Outcome = "dropped_invalid"
    OutcomeCancelled      Outcome = "cancelled"
)

// ActiveDrag is the ephemeral record of the block in flight.
type ActiveDrag struct {
    Source    Source             `json:"-"`
    Kind      string             `json:"kind"`
    Movie     model.MovieRef     `json:"movie"`
    Variant   model.BlockVariant `json:"variant"`
    StartedAt time.Time          `json:"started_at"`
}

// Highlight is the live feedback for the current hover target.  Placement
// is nil while the pointer is over the shelf or over nothing.
type Highlight struct {
    OverShelf bool       `json:"over_shelf"`
    Placement *Placement `json:"placement,omitempty"`
}

// DropResult describes what a drop did.  Changed is false for drops that
// were accepted but had nothing to do (a shelf block dropped on the shelf).
type DropResult struct {
    Outcome    Outcome           `json:"outcome"`
    Changed    bool              `json:"changed"`
    Placement  *Placement        `json:"placement,omitempty"`
    GridBlock  *model.GridBlock  `json:"grid_block,omitempty"`
    ShelfBlock *model.ShelfBlock `json:"shelf_block,omitempty"`
}

// EventKind names a committed board change.
type EventKind string

const (
    EventPlaced  EventKind = "placed"
    EventMoved   EventKind = "moved"
    EventShelved EventKind = "shelved"
)

// Event is emitted for every committed drop.
type Event struct {
    Kind        EventKind          `json:"kind"`
    BoardID     string             `json:"board_id"`
    BlockID     string             `json:"block_id"`
    PrevBlockID string             `json:"prev_block_id,omitempty"`
    MovieID     int64              `json:"movie_id"`
    MovieTitle  string             `json:"movie_title"`
    Variant     model.BlockVariant `json:"variant"`
    Position    int                `json:"position"`
    Cells       []int              `json:"cells,omitempty"`
    At          time.Time          `json:"at"`
}

// EventSink receives committed board events.  Implementations must not
// block the caller for long and must not fail the drop.
type EventSink interface {
    BoardEvent(ctx context.Context, ev Event)
}

// DragController runs the drag lifecycle for one board.  It is the only
// writer that combines the two stores, and it holds its lock across
// validation and commit so a drop is decided and applied atomically.
type DragController struct {
    boardID string
    grid    *GridStore
    shelf   *ShelfStore
    engine  *Engine
    sink    EventSink
    now     func() time.Time

    mu        sync.Mutex
    active    *ActiveDrag
    highlight Highlight
}

// NewDragController wires a controller to the board's stores.  sink may be
// nil.
func NewDragController(boardID string, grid *GridStore, shelf *ShelfStore, engine *Engine, sink EventSink) *DragController {
    return &DragController{
        boardID: boardID,
        grid:    grid,
        shelf:   shelf,
        engine:  engine,
        sink:    sink,
        now:     func() time.Time { return time.Now().UTC() },
    }
}

// State reports whether a block is being dragged.
func (d *DragController) State() DragState {
    d.mu.Lock()
    defer d.mu.Unlock()
    if d.active == nil {
        return StateIdle
    }
    return StateDragging
}

// Active returns a copy of the active drag.
func (d *DragController) Active() (ActiveDrag, bool) {
    d.mu.Lock()
    defer d.mu.Unlock()
    if d.active == nil {
        return ActiveDrag{}, false
    }
    return *d.active, true
}

// Highlight returns the feedback computed by the last Over call.
func (d *DragController) Highlight() Highlight {
    d.mu.Lock()
    defer d.mu.Unlock()
    return d.highlight
}

// Start begins dragging src.  The block's movie, variant and, for grid
// blocks, current position are captured from the stores.
func (d *DragController) Start(src Source) (ActiveDrag, error) {
    d.mu.Lock()
    defer d.mu.Unlock()
    if d.active != nil {
        return ActiveDrag{}, ErrDragInProgress
    }
    var a ActiveDrag
    switch s := src.(type) {
    case FromShelf:
        b, ok := d.shelf.Get(s.EntryID)
        if !ok {
            return ActiveDrag{}, ErrSourceNotFound
        }
        a = ActiveDrag{Source: s, Kind: "shelf", Movie: b.Movie, Variant: b.Variant}
    case FromGrid:
        b, ok := d.grid.Get(s.BlockID)
        if !ok {
            return ActiveDrag{}, ErrSourceNotFound
        }
        s.Origin = b.Position
        a = ActiveDrag{Source: s, Kind: "grid", Movie: b.Movie, Variant: b.Variant}
    default:
        return ActiveDrag{}, ErrInvalidSource
    }
    a.StartedAt = d.now()
    d.active = &a
    d.highlight = Highlight{}
    return a, nil
}

// Over recomputes the highlight for the hover target.
func (d *DragController) Over(target Target) (Highlight, error) {
    d.mu.Lock()
    defer d.mu.Unlock()
    if d.active == nil {
        return Highlight{}, ErrNoActiveDrag
    }
    switch t := target.(type) {
    case CellTarget:
        p, err := d.engine.Evaluate(d.active.Variant, t.Index, excludeID(d.active.Source))
        if err != nil {
            return Highlight{}, err
        }
        d.highlight = Highlight{Placement: &p}
    case ShelfTarget:
        d.highlight = Highlight{OverShelf: true}
    case NoTarget:
        d.highlight = Highlight{}
    default:
        return Highlight{}, ErrInvalidTarget
    }
    return d.highlight, nil
}

// Cancel abandons the active drag without touching the stores.
func (d *DragController) Cancel() DropResult {
    d.mu.Lock()
    defer d.mu.Unlock()
    d.resetLocked()
    return DropResult{Outcome: OutcomeCancelled}
}

// Drop ends the active drag on target.  A rejected placement is a normal
// result (OutcomeDroppedInvalid), not an error; errors are reserved for a
// missing drag, a vanished source and storage failures.  The controller is
// idle again whatever the result.
func (d *DragController) Drop(ctx context.Context, target Target) (DropResult, error) {
    d.mu.Lock()
    defer d.mu.Unlock()
    if d.active == nil {
        return DropResult{}, ErrNoActiveDrag
    }
    a := *d.active
    defer d.resetLocked()

    switch t := target.(type) {
    case CellTarget:
        return d.dropOnCell(ctx, a, t.Index)
    case ShelfTarget:
        return d.dropOnShelf(ctx, a)
    case NoTarget, nil:
        return DropResult{Outcome: OutcomeCancelled}, nil
    default:
        return DropResult{}, ErrInvalidTarget
    }
}

func (d *DragController) dropOnCell(ctx context.Context, a ActiveDrag, index int) (DropResult, error) {
    p, err := d.engine.Evaluate(a.Variant, index, excludeID(a.Source))
    if err != nil {
        return DropResult{}, err
    }
    if !p.OK() {
        return DropResult{Outcome: OutcomeDroppedInvalid, Placement: &p}, nil
    }

    switch s := a.Source.(type) {
    case FromGrid:
        old, ok := d.grid.Get(s.BlockID)
        if !ok {
            return DropResult{}, ErrSourceNotFound
        }
        nb := model.GridBlock{Movie: old.Movie, Variant: old.Variant, Position: index}
        id, err := d.grid.Replace(ctx, old.ID, nb)
        if err != nil {
            return DropResult{}, fmt.Errorf("move block: %w", err)
        }
        nb, _ = d.grid.Get(id)
        d.emit(ctx, Event{Kind: EventMoved, BlockID: id, PrevBlockID: old.ID, MovieID: nb.Movie.ID,
            MovieTitle: nb.Movie.Title, Variant: nb.Variant, Position: index, Cells: p.Valid})
        return DropResult{Outcome: OutcomeDroppedValid, Changed: true, Placement: &p, GridBlock: &nb}, nil

    case FromShelf:
        entry, ok := d.shelf.Get(s.EntryID)
        if !ok {
            return DropResult{}, ErrSourceNotFound
        }
        nb := model.GridBlock{Movie: entry.Movie, Variant: entry.Variant, Position: index}
        id, err := d.grid.Add(ctx, nb)
        if err != nil {
            return DropResult{}, fmt.Errorf("place block: %w", err)
        }
        removed, err := d.shelf.Remove(ctx, entry.ID)
        if err == nil && !removed {
            // a reload dropped the entry after Get
            err = ErrSourceNotFound
        }
        if err != nil {
            // keep the block in exactly one collection
            if rbErr := d.grid.Remove(ctx, id); rbErr != nil {
                return DropResult{}, fmt.Errorf("remove shelf entry: %v; rollback grid block: %w", err, rbErr)
            }
            return DropResult{}, fmt.Errorf("remove shelf entry: %w", err)
        }
        nb, _ = d.grid.Get(id)
        d.emit(ctx, Event{Kind: EventPlaced, BlockID: id, MovieID: nb.Movie.ID,
            MovieTitle: nb.Movie.Title, Variant: nb.Variant, Position: index, Cells: p.Valid})
        return DropResult{Outcome: OutcomeDroppedValid, Changed: true, Placement: &p, GridBlock: &nb}, nil

    default:
        return DropResult{}, ErrInvalidSource
    }
}

func (d *DragController) dropOnShelf(ctx context.Context, a ActiveDrag) (DropResult, error) {
    switch s := a.Source.(type) {
    case FromShelf:
        return DropResult{Outcome: OutcomeDroppedValid}, nil

    case FromGrid:
        old, ok := d.grid.Get(s.BlockID)
        if !ok {
            return DropResult{}, ErrSourceNotFound
        }
        if err := d.grid.Remove(ctx, old.ID); err != nil {
            return DropResult{}, fmt.Errorf("remove grid block: %w", err)
        }
        entry, err := d.shelf.Add(ctx, old.Movie, old.Variant)
        if err != nil {
            // put the block back where it was
            if _, rbErr := d.grid.Add(ctx, old); rbErr != nil {
                return DropResult{}, fmt.Errorf("add shelf entry: %v; restore grid block: %w", err, rbErr)
            }
            return DropResult{}, fmt.Errorf("add shelf entry: %w", err)
        }
        d.emit(ctx, Event{Kind: EventShelved, BlockID: entry.ID, PrevBlockID: old.ID, MovieID: old.Movie.ID,
            MovieTitle: old.Movie.Title, Variant: old.Variant, Position: old.Position})
        return DropResult{Outcome: OutcomeDroppedValid, Changed: true, ShelfBlock: &entry}, nil

    default:
        return DropResult{}, ErrInvalidSource
    }
}

func (d *DragController) resetLocked() {
    d.active = nil
    d.highlight = Highlight{}
}

func (d *DragController) emit(ctx context.Context, ev Event) {
    if d.sink == nil {
        return
    }
    ev.BoardID = d.boardID
    ev.At = d.now()
    d.sink.BoardEvent(ctx, ev)
}

func excludeID(src Source) string {
    if g, ok := src.(FromGrid); ok {
        return g.BlockID
    }
    return ""
}
