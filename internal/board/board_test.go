package board

import (
    "context"
    "testing"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/notify"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

func TestKeys(t *testing.T) {
    if got := ShelfKey("abc"); got != "board:abc:blocks" {
        t.Errorf("ShelfKey = %q", got)
    }
    if got := GridKey("abc"); got != "board:abc:placedBlocks" {
        t.Errorf("GridKey = %q", got)
    }
}

func TestManager_OpensBoardOnce(t *testing.T) {
    ctx := context.Background()
    m := NewManager(ManagerConfig{Repo: repository.NewMemoryStateRepo(), Logger: &quietLogger{}})
    defer m.Close()

    a, err := m.Board(ctx, "x")
    if err != nil {
        t.Fatal(err)
    }
    b, err := m.Board(ctx, "x")
    if err != nil {
        t.Fatal(err)
    }
    if a != b {
        t.Fatalf("Board returned a different instance for the same id")
    }
    if m.Grid() != DefaultGrid() {
        t.Fatalf("grid = %+v", m.Grid())
    }
    other, _ := m.Board(ctx, "y")
    if other == a {
        t.Fatalf("boards share an instance")
    }
}

func TestManager_ClosedRejectsBoards(t *testing.T) {
    m := NewManager(ManagerConfig{Repo: repository.NewMemoryStateRepo(), Logger: &quietLogger{}})
    m.Close()
    if _, err := m.Board(context.Background(), "x"); err == nil {
        t.Fatalf("expected an error from a closed manager")
    }
}

// Two managers sharing storage stand in for two server processes.
func TestManager_SyncAcrossProcesses(t *testing.T) {
    ctx := context.Background()
    repo := repository.NewMemoryStateRepo()
    bus := notify.NewLocal()
    m1 := NewManager(ManagerConfig{Repo: repo, Notifier: bus, Origin: "one", Logger: &quietLogger{}})
    m2 := NewManager(ManagerConfig{Repo: repo, Notifier: bus, Origin: "two", Logger: &quietLogger{}})
    defer m1.Close()
    defer m2.Close()

    b1, err := m1.Board(ctx, "shared")
    if err != nil {
        t.Fatal(err)
    }
    b2, err := m2.Board(ctx, "shared")
    if err != nil {
        t.Fatal(err)
    }

    entry, err := b1.Shelf.Add(ctx, movie(5, "Perfect Blue"), model.VariantTall)
    if err != nil {
        t.Fatal(err)
    }
    if _, ok := b2.Shelf.Get(entry.ID); !ok {
        t.Fatalf("second process did not see the new shelf entry")
    }

    if _, err := b2.Drag.Start(FromShelf{EntryID: entry.ID}); err != nil {
        t.Fatal(err)
    }
    if _, err := b2.Drag.Drop(ctx, CellTarget{Index: 3}); err != nil {
        t.Fatal(err)
    }
    if got := b1.Grid.OccupiedList(); !equalInts(got, []int{3, 7, 11}) {
        t.Fatalf("first process grid = %v", got)
    }
    if b1.Shelf.Len() != 0 {
        t.Fatalf("first process shelf len = %d", b1.Shelf.Len())
    }
}
