package repository

import (
    "context"
    "errors"
    "os"
    "path/filepath"
    "testing"

    "github.com/iliyamo/cinema-moodboard/internal/database"
)

// exerciseRepo runs the contract every StateRepo must honour.
func exerciseRepo(t *testing.T, repo StateRepo) {
    t.Helper()
    ctx := context.Background()

    if _, err := repo.Load(ctx, "board:x:blocks"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("Load of a missing key err = %v, want ErrNotFound", err)
    }
    if err := repo.Save(ctx, "board:x:blocks", []byte(`[1]`)); err != nil {
        t.Fatalf("Save: %v", err)
    }
    if err := repo.Save(ctx, "board:x:blocks", []byte(`[1,2]`)); err != nil {
        t.Fatalf("Save overwrite: %v", err)
    }
    got, err := repo.Load(ctx, "board:x:blocks")
    if err != nil {
        t.Fatalf("Load: %v", err)
    }
    if string(got) != `[1,2]` {
        t.Fatalf("Load = %s, want [1,2]", got)
    }
    if _, err := repo.Load(ctx, "board:x:placedBlocks"); !errors.Is(err, ErrNotFound) {
        t.Fatalf("keys are not independent: %v", err)
    }
}

func TestMemoryStateRepo(t *testing.T) {
    exerciseRepo(t, NewMemoryStateRepo())
}

func TestMemoryStateRepo_CopiesPayload(t *testing.T) {
    ctx := context.Background()
    repo := NewMemoryStateRepo()
    buf := []byte(`[1]`)
    _ = repo.Save(ctx, "k", buf)
    buf[1] = '9'
    got, _ := repo.Load(ctx, "k")
    if string(got) != `[1]` {
        t.Fatalf("stored payload aliased the caller's slice: %s", got)
    }
}

func TestFileStateRepo(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "state")
    repo, err := NewFileStateRepo(dir)
    if err != nil {
        t.Fatal(err)
    }
    exerciseRepo(t, repo)

    if _, err := os.Stat(filepath.Join(dir, "board__x__blocks.json")); err != nil {
        t.Fatalf("expected the key file on disk: %v", err)
    }
    entries, _ := os.ReadDir(dir)
    for _, e := range entries {
        if _, ok := FileNameToKey(e.Name()); !ok {
            t.Errorf("stray file left behind: %s", e.Name())
        }
    }
}

func TestFileNameToKey(t *testing.T) {
    tests := []struct {
        name string
        key  string
        ok   bool
    }{
        {"board__abc__placedBlocks.json", "board:abc:placedBlocks", true},
        {"/data/board__abc__blocks.json", "board:abc:blocks", true},
        {".state-12345", "", false},
        {"notes.txt", "", false},
    }
    for _, tt := range tests {
        key, ok := FileNameToKey(tt.name)
        if key != tt.key || ok != tt.ok {
            t.Errorf("FileNameToKey(%q) = %q, %v; want %q, %v", tt.name, key, ok, tt.key, tt.ok)
        }
    }
    if got := KeyToFileName("board:abc:blocks"); got != "board__abc__blocks.json" {
        t.Errorf("KeyToFileName = %q", got)
    }
}

func TestSQLStateRepo_SQLite(t *testing.T) {
    db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "board.db"))
    if err != nil {
        t.Fatal(err)
    }
    defer db.Close()
    repo := NewSQLStateRepo(db, DialectSQLite)
    exerciseRepo(t, repo)
    if repo.DB() != db {
        t.Fatal("DB() returned a different handle")
    }
}
