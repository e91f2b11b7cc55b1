package board

import (
    "context"
    "errors"
    "fmt"
    "testing"
    "time"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

var testNow = time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func seqIDs(prefix string) func() string {
    n := 0
    return func() string {
        n++
        return fmt.Sprintf("%s-%d", prefix, n)
    }
}

func movie(id int64, title string) model.MovieRef {
    return model.MovieRef{ID: id, Title: title, ReleaseDate: "2001-07-20"}
}

type quietLogger struct{ warnings []string }

func (l *quietLogger) Debugf(string, ...interface{}) {}
func (l *quietLogger) Warnf(format string, args ...interface{}) {
    l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

// failingRepo wraps a repo and fails every Save once armed.
type failingRepo struct {
    repository.StateRepo
    failSaves bool
}

var errDiskFull = errors.New("disk full")

func (r *failingRepo) Save(ctx context.Context, key string, payload []byte) error {
    if r.failSaves {
        return errDiskFull
    }
    return r.StateRepo.Save(ctx, key, payload)
}

// hookRepo runs afterLoad once, after a Load has read the stored bytes and
// before it returns them.
type hookRepo struct {
    repository.StateRepo
    afterLoad func()
}

func (r *hookRepo) Load(ctx context.Context, key string) ([]byte, error) {
    payload, err := r.StateRepo.Load(ctx, key)
    if fn := r.afterLoad; fn != nil {
        r.afterLoad = nil
        fn()
    }
    return payload, err
}

func newTestGrid(t *testing.T, repo repository.StateRepo, opts ...Option) *GridStore {
    t.Helper()
    opts = append([]Option{WithClock(fixedClock), WithIDGenerator(seqIDs("g")), WithLogger(&quietLogger{})}, opts...)
    s, err := NewGridStore(context.Background(), repo, "board:t:placedBlocks", DefaultGrid(), opts...)
    if err != nil {
        t.Fatalf("NewGridStore: %v", err)
    }
    return s
}

func newTestShelf(t *testing.T, repo repository.StateRepo, opts ...Option) *ShelfStore {
    t.Helper()
    opts = append([]Option{WithClock(fixedClock), WithIDGenerator(seqIDs("s")), WithLogger(&quietLogger{})}, opts...)
    s, err := NewShelfStore(context.Background(), repo, "board:t:blocks", opts...)
    if err != nil {
        t.Fatalf("NewShelfStore: %v", err)
    }
    return s
}

func place(t *testing.T, g *GridStore, v model.BlockVariant, pos int) string {
    t.Helper()
    id, err := g.Add(context.Background(), model.GridBlock{Movie: movie(int64(pos+1), "m"), Variant: v, Position: pos})
    if err != nil {
        t.Fatalf("Add %s at %d: %v", v, pos, err)
    }
    return id
}

func assertNoOverlap(t *testing.T, g *GridStore) {
    t.Helper()
    seen := map[int]string{}
    for _, b := range g.Blocks() {
        cells, ok := g.CellsOf(b.ID)
        if !ok {
            t.Fatalf("CellsOf(%s) not found", b.ID)
        }
        for _, c := range cells {
            if !g.Grid().Contains(c) {
                t.Fatalf("block %s covers out-of-grid cell %d", b.ID, c)
            }
            if other, dup := seen[c]; dup {
                t.Fatalf("cell %d covered by %s and %s", c, other, b.ID)
            }
            seen[c] = b.ID
        }
    }
}

func equalInts(a, b []int) bool {
    if len(a) != len(b) {
        return false
    }
    for i := range a {
        if a[i] != b[i] {
            return false
        }
    }
    return true
}
