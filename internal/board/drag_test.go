package board

import (
    "context"
    "errors"
    "math/rand"
    "testing"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

type recordingSink struct{ events []Event }

func (r *recordingSink) BoardEvent(_ context.Context, ev Event) { r.events = append(r.events, ev) }

type dragFixture struct {
    grid  *GridStore
    shelf *ShelfStore
    drag  *DragController
    sink  *recordingSink
}

func newDragFixture(t *testing.T, repo repository.StateRepo) *dragFixture {
    t.Helper()
    g := newTestGrid(t, repo)
    s := newTestShelf(t, repo)
    sink := &recordingSink{}
    d := NewDragController("t", g, s, NewEngine(g.Grid(), g), sink)
    d.now = fixedClock
    return &dragFixture{grid: g, shelf: s, drag: d, sink: sink}
}

func (f *dragFixture) shelve(t *testing.T, id int64, v model.BlockVariant) model.ShelfBlock {
    t.Helper()
    b, err := f.shelf.Add(context.Background(), movie(id, "m"), v)
    if err != nil {
        t.Fatal(err)
    }
    return b
}

func TestDrag_ShelfToGrid(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    f.shelve(t, 1, model.VariantWide)
    entry := f.shelve(t, 1, model.VariantWide)

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatalf("Start: %v", err)
    }
    if f.drag.State() != StateDragging {
        t.Fatalf("state = %s", f.drag.State())
    }
    h, err := f.drag.Over(CellTarget{Index: 0})
    if err != nil || h.Placement == nil || !h.Placement.OK() {
        t.Fatalf("Over = %+v, %v", h, err)
    }
    res, err := f.drag.Drop(ctx, CellTarget{Index: 0})
    if err != nil {
        t.Fatalf("Drop: %v", err)
    }
    if res.Outcome != OutcomeDroppedValid || !res.Changed || res.GridBlock == nil {
        t.Fatalf("result = %+v", res)
    }
    if f.shelf.Len() != 1 {
        t.Fatalf("shelf len = %d, want exactly one entry removed", f.shelf.Len())
    }
    if _, ok := f.shelf.Get(entry.ID); ok {
        t.Fatalf("dragged entry still on shelf")
    }
    if got := f.grid.OccupiedList(); !equalInts(got, []int{0, 1, 2}) {
        t.Fatalf("occupied = %v", got)
    }
    if f.drag.State() != StateIdle {
        t.Fatalf("controller not idle after drop")
    }
    if len(f.sink.events) != 1 || f.sink.events[0].Kind != EventPlaced || f.sink.events[0].BoardID != "t" {
        t.Fatalf("events = %+v", f.sink.events)
    }
}

func TestDrag_InvalidDropChangesNothing(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    place(t, f.grid, model.VariantWide, 0)
    entry := f.shelve(t, 2, model.VariantTiny)

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    res, err := f.drag.Drop(ctx, CellTarget{Index: 1})
    if err != nil {
        t.Fatalf("Drop: %v", err)
    }
    if res.Outcome != OutcomeDroppedInvalid || res.Changed {
        t.Fatalf("result = %+v", res)
    }
    if res.Placement == nil || res.Placement.Status != PlacementCollision {
        t.Fatalf("placement = %+v", res.Placement)
    }
    if f.shelf.Len() != 1 || len(f.grid.Blocks()) != 1 {
        t.Fatalf("stores mutated by a rejected drop")
    }
    if len(f.sink.events) != 0 {
        t.Fatalf("events emitted for a rejected drop: %+v", f.sink.events)
    }
}

func TestDrag_MoveWithinGrid(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    id := place(t, f.grid, model.VariantWide, 0)
    place(t, f.grid, model.VariantTiny, 3)

    a, err := f.drag.Start(FromGrid{BlockID: id, Origin: 99})
    if err != nil {
        t.Fatal(err)
    }
    if src := a.Source.(FromGrid); src.Origin != 0 {
        t.Fatalf("origin = %d, want the stored position", src.Origin)
    }
    res, err := f.drag.Drop(ctx, CellTarget{Index: 4})
    if err != nil || res.Outcome != OutcomeDroppedValid {
        t.Fatalf("Drop = %+v, %v", res, err)
    }
    if got := f.grid.OccupiedList(); !equalInts(got, []int{3, 4, 5, 6}) {
        t.Fatalf("occupied = %v", got)
    }
    if _, ok := f.grid.Get(id); ok {
        t.Fatalf("moved block kept its id")
    }
    if ev := f.sink.events[0]; ev.Kind != EventMoved || ev.PrevBlockID != id {
        t.Fatalf("event = %+v", ev)
    }
}

func TestDrag_MoveOntoOwnCells(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    id := place(t, f.grid, model.VariantMedium, 0)

    if _, err := f.drag.Start(FromGrid{BlockID: id}); err != nil {
        t.Fatal(err)
    }
    res, err := f.drag.Drop(ctx, CellTarget{Index: 1})
    if err != nil || res.Outcome != OutcomeDroppedValid {
        t.Fatalf("Drop = %+v, %v", res, err)
    }
    if got := f.grid.OccupiedList(); !equalInts(got, []int{1, 2, 5, 6, 9, 10}) {
        t.Fatalf("occupied = %v", got)
    }
}

func TestDrag_GridToShelf(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    id := place(t, f.grid, model.VariantLarge, 0)

    if _, err := f.drag.Start(FromGrid{BlockID: id}); err != nil {
        t.Fatal(err)
    }
    h, err := f.drag.Over(ShelfTarget{})
    if err != nil || !h.OverShelf || h.Placement != nil {
        t.Fatalf("Over shelf = %+v, %v", h, err)
    }
    res, err := f.drag.Drop(ctx, ShelfTarget{})
    if err != nil || !res.Changed || res.ShelfBlock == nil {
        t.Fatalf("Drop = %+v, %v", res, err)
    }
    if len(f.grid.Blocks()) != 0 {
        t.Fatalf("grid not empty")
    }
    shelf := f.shelf.Blocks()
    if len(shelf) != 1 || shelf[0].Variant != model.VariantLarge {
        t.Fatalf("shelf = %+v", shelf)
    }
}

func TestDrag_ShelfToShelfIsNoop(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    entry := f.shelve(t, 1, model.VariantTiny)

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    res, err := f.drag.Drop(ctx, ShelfTarget{})
    if err != nil || res.Changed {
        t.Fatalf("Drop = %+v, %v", res, err)
    }
    if blocks := f.shelf.Blocks(); len(blocks) != 1 || blocks[0].ID != entry.ID {
        t.Fatalf("shelf changed: %+v", blocks)
    }
}

func TestDrag_CancelAndNoTarget(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    entry := f.shelve(t, 1, model.VariantTiny)

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    if res := f.drag.Cancel(); res.Outcome != OutcomeCancelled {
        t.Fatalf("Cancel = %+v", res)
    }
    if f.drag.State() != StateIdle {
        t.Fatalf("not idle after cancel")
    }

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    res, err := f.drag.Drop(ctx, NoTarget{})
    if err != nil || res.Outcome != OutcomeCancelled {
        t.Fatalf("Drop nowhere = %+v, %v", res, err)
    }
    if f.shelf.Len() != 1 {
        t.Fatalf("shelf mutated by a drop on nothing")
    }
}

func TestDrag_LifecycleErrors(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    entry := f.shelve(t, 1, model.VariantTiny)

    if _, err := f.drag.Drop(ctx, CellTarget{Index: 0}); !errors.Is(err, ErrNoActiveDrag) {
        t.Fatalf("Drop while idle err = %v", err)
    }
    if _, err := f.drag.Over(CellTarget{Index: 0}); !errors.Is(err, ErrNoActiveDrag) {
        t.Fatalf("Over while idle err = %v", err)
    }
    if _, err := f.drag.Start(FromShelf{EntryID: "missing"}); !errors.Is(err, ErrSourceNotFound) {
        t.Fatalf("Start missing err = %v", err)
    }
    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); !errors.Is(err, ErrDragInProgress) {
        t.Fatalf("second Start err = %v", err)
    }
}

func TestDrag_OutOfBoundsHighlight(t *testing.T) {
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    entry := f.shelve(t, 1, model.VariantLarge)
    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    h, err := f.drag.Over(CellTarget{Index: 3})
    if err != nil {
        t.Fatal(err)
    }
    if h.Placement.Status != PlacementOutOfBounds || len(h.Placement.Valid) != 0 {
        t.Fatalf("highlight = %+v", h.Placement)
    }
    if f.drag.Highlight().Placement == nil {
        t.Fatalf("highlight not retained")
    }
}

func TestDrag_ShelfEntryVanishingMidDropRollsBack(t *testing.T) {
    ctx := context.Background()
    repo := repository.NewMemoryStateRepo()
    f := newDragFixture(t, repo)
    entry := f.shelve(t, 1, model.VariantTiny)
    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }

    // another process deletes the entry right after the grid write
    elsewhere := newTestShelf(t, repo, WithOrigin("other"))
    fired := false
    unsub := f.grid.Subscribe(func(ChangeEvent) {
        if fired {
            return
        }
        fired = true
        if _, err := elsewhere.Remove(ctx, entry.ID); err != nil {
            t.Errorf("foreign remove: %v", err)
        }
        if _, err := f.shelf.Reload(ctx); err != nil {
            t.Errorf("Reload: %v", err)
        }
    })
    defer unsub()

    _, err := f.drag.Drop(ctx, CellTarget{Index: 4})
    if !errors.Is(err, ErrSourceNotFound) {
        t.Fatalf("Drop err = %v, want ErrSourceNotFound", err)
    }
    if n := len(f.grid.Blocks()); n != 0 {
        t.Fatalf("grid kept %d blocks after rollback", n)
    }
    if f.shelf.Len() != 0 {
        t.Fatalf("shelf len = %d", f.shelf.Len())
    }
    if f.drag.State() != StateIdle || len(f.sink.events) != 0 {
        t.Fatalf("state = %s, events = %+v", f.drag.State(), f.sink.events)
    }
}

func TestDrag_PersistFailureRollsBack(t *testing.T) {
    ctx := context.Background()
    repo := &failingRepo{StateRepo: repository.NewMemoryStateRepo()}
    f := newDragFixture(t, repo)
    entry := f.shelve(t, 1, model.VariantTiny)

    if _, err := f.drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    repo.failSaves = true
    if _, err := f.drag.Drop(ctx, CellTarget{Index: 0}); !errors.Is(err, errDiskFull) {
        t.Fatalf("Drop err = %v", err)
    }
    if f.shelf.Len() != 1 || len(f.grid.Blocks()) != 0 {
        t.Fatalf("block not in exactly one collection after failed drop")
    }
    if f.drag.State() != StateIdle {
        t.Fatalf("controller not idle after failed drop")
    }
}

// Random drags must never break the grid invariants or lose a block.
func TestDrag_RandomSequenceKeepsInvariants(t *testing.T) {
    ctx := context.Background()
    f := newDragFixture(t, repository.NewMemoryStateRepo())
    variants := model.Variants()
    for i := 0; i < 12; i++ {
        f.shelve(t, int64(i), variants[i%len(variants)])
    }
    total := 12
    rng := rand.New(rand.NewSource(42))

    for step := 0; step < 300; step++ {
        var src Source
        shelf, grid := f.shelf.Blocks(), f.grid.Blocks()
        if len(grid) == 0 || (len(shelf) > 0 && rng.Intn(2) == 0) {
            src = FromShelf{EntryID: shelf[rng.Intn(len(shelf))].ID}
        } else {
            src = FromGrid{BlockID: grid[rng.Intn(len(grid))].ID}
        }
        if _, err := f.drag.Start(src); err != nil {
            t.Fatalf("step %d Start: %v", step, err)
        }
        var target Target = CellTarget{Index: rng.Intn(f.grid.Grid().Size())}
        if rng.Intn(6) == 0 {
            target = ShelfTarget{}
        }
        if _, err := f.drag.Drop(ctx, target); err != nil {
            t.Fatalf("step %d Drop: %v", step, err)
        }
        assertNoOverlap(t, f.grid)
        if n := f.shelf.Len() + len(f.grid.Blocks()); n != total {
            t.Fatalf("step %d: %d blocks, want %d", step, n, total)
        }
    }
}
