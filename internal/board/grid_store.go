package board

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

// GridStore is the authoritative record of the blocks placed on one board.
// It performs no placement validation; callers run the Engine first.
//
// Every mutation serializes the full collection and saves it before the
// in-memory copy is replaced, so memory never runs ahead of storage.
type GridStore struct {
    repo repository.StateRepo
    key  string
    grid Grid
    opts storeOptions

    mu     sync.RWMutex
    blocks []model.GridBlock
    raw    []byte

    // commits counts local writes; a reload that overlaps one is discarded.
    commits uint64

    listeners listenerSet
}

// NewGridStore loads the collection stored under key.  Malformed data is
// logged and treated as an empty board; storage failures are returned.
func NewGridStore(ctx context.Context, repo repository.StateRepo, key string, grid Grid, opts ...Option) (*GridStore, error) {
    s := &GridStore{repo: repo, key: key, grid: grid, opts: applyOptions(opts), blocks: []model.GridBlock{}}
    if _, err := s.Reload(ctx); err != nil {
        return nil, err
    }
    return s, nil
}

// Key returns the storage key.
func (s *GridStore) Key() string { return s.key }

// Grid returns the board dimensions.
func (s *GridStore) Grid() Grid { return s.grid }

// Watch reloads the store whenever another process writes its key.  It
// returns once the subscription is active; delivery stops when ctx ends.
func (s *GridStore) Watch(ctx context.Context) error {
    return watchKey(ctx, s.opts, s.key, s.Reload)
}

// Subscribe registers fn for change events and returns the function that
// removes it.
func (s *GridStore) Subscribe(fn Listener) (unsubscribe func()) {
    return s.listeners.add(fn)
}

// Blocks returns a copy of the placed blocks in insertion order.
func (s *GridStore) Blocks() []model.GridBlock {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.GridBlock, len(s.blocks))
    copy(out, s.blocks)
    return out
}

// Get returns the block with the given id.
func (s *GridStore) Get(id string) (model.GridBlock, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    for _, b := range s.blocks {
        if b.ID == id {
            return b, true
        }
    }
    return model.GridBlock{}, false
}

// Add appends a block under a freshly generated id and persists the board.
// Any ID set on block is ignored.
func (s *GridStore) Add(ctx context.Context, block model.GridBlock) (string, error) {
    block.ID = s.opts.newID()
    if block.CreatedAt.IsZero() {
        block.CreatedAt = s.opts.now()
    }
    s.mu.Lock()
    next := make([]model.GridBlock, 0, len(s.blocks)+1)
    next = append(next, s.blocks...)
    next = append(next, block)
    err := s.commitLocked(ctx, next)
    s.mu.Unlock()
    if err != nil {
        return "", err
    }
    s.changed(ctx)
    return block.ID, nil
}

// Remove deletes the block with the given id.  Removing an unknown id is a
// no-op: nothing is written and no error is returned.
func (s *GridStore) Remove(ctx context.Context, id string) error {
    s.mu.Lock()
    idx := s.indexLocked(id)
    if idx < 0 {
        s.mu.Unlock()
        return nil
    }
    next := make([]model.GridBlock, 0, len(s.blocks)-1)
    next = append(next, s.blocks[:idx]...)
    next = append(next, s.blocks[idx+1:]...)
    err := s.commitLocked(ctx, next)
    s.mu.Unlock()
    if err != nil {
        return err
    }
    s.changed(ctx)
    return nil
}

// Replace removes oldID and appends block under a new id in one write.
// This is how a block moves: its position is never edited in place.
func (s *GridStore) Replace(ctx context.Context, oldID string, block model.GridBlock) (string, error) {
    block.ID = s.opts.newID()
    if block.CreatedAt.IsZero() {
        block.CreatedAt = s.opts.now()
    }
    s.mu.Lock()
    next := make([]model.GridBlock, 0, len(s.blocks)+1)
    for _, b := range s.blocks {
        if b.ID != oldID {
            next = append(next, b)
        }
    }
    next = append(next, block)
    err := s.commitLocked(ctx, next)
    s.mu.Unlock()
    if err != nil {
        return "", err
    }
    s.changed(ctx)
    return block.ID, nil
}

// BlockAt returns the block whose footprint covers position.
func (s *GridStore) BlockAt(position int) (model.GridBlock, bool) {
    if !s.grid.Contains(position) {
        return model.GridBlock{}, false
    }
    s.mu.RLock()
    defer s.mu.RUnlock()
    for _, b := range s.blocks {
        for _, c := range s.cellsLocked(b) {
            if c == position {
                return b, true
            }
        }
    }
    return model.GridBlock{}, false
}

// OccupiedCells returns the union of all footprints.  It is recomputed on
// every call.
func (s *GridStore) OccupiedCells() map[int]struct{} {
    s.mu.RLock()
    defer s.mu.RUnlock()
    set := make(map[int]struct{}, s.grid.Size())
    for _, b := range s.blocks {
        for _, c := range s.cellsLocked(b) {
            set[c] = struct{}{}
        }
    }
    return set
}

// OccupiedList returns OccupiedCells in ascending order.
func (s *GridStore) OccupiedList() []int {
    return sortedCells(s.OccupiedCells())
}

// CellsOf returns the current footprint of the block with the given id.
func (s *GridStore) CellsOf(id string) ([]int, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    idx := s.indexLocked(id)
    if idx < 0 {
        return nil, false
    }
    return s.cellsLocked(s.blocks[idx]), true
}

// Reload re-reads the key.  It reports whether the collection changed and
// notifies listeners when it did.
func (s *GridStore) Reload(ctx context.Context) (bool, error) {
    var payload []byte
    for attempt := 1; ; attempt++ {
        s.mu.RLock()
        before := s.commits
        s.mu.RUnlock()

        var err error
        payload, err = s.repo.Load(ctx, s.key)
        if err != nil && !errors.Is(err, repository.ErrNotFound) {
            return false, fmt.Errorf("load %s: %w", s.key, err)
        }
        s.mu.Lock()
        if s.commits == before {
            break
        }
        // a local write landed while loading; payload may predate it
        s.mu.Unlock()
        if attempt == reloadAttempts {
            s.opts.logger.Debugf("reload %s: gave up after %d racing commits", s.key, attempt)
            return false, nil
        }
    }
    if payload != nil && bytes.Equal(payload, s.raw) {
        s.mu.Unlock()
        return false, nil
    }
    blocks := s.decode(payload)
    wasEmpty := s.raw == nil && len(s.blocks) == 0
    s.blocks = blocks
    s.raw = payload
    s.mu.Unlock()

    if wasEmpty && len(blocks) == 0 {
        return false, nil
    }
    s.listeners.emit(ChangeEvent{Key: s.key, External: true, At: s.opts.now()})
    return true, nil
}

func (s *GridStore) changed(ctx context.Context) {
    at := s.opts.now()
    s.listeners.emit(ChangeEvent{Key: s.key, Origin: s.opts.origin, At: at})
    publish(ctx, s.opts, s.key, at)
}

func (s *GridStore) commitLocked(ctx context.Context, next []model.GridBlock) error {
    payload, err := json.Marshal(next)
    if err != nil {
        return fmt.Errorf("encode %s: %w", s.key, err)
    }
    if err := s.repo.Save(ctx, s.key, payload); err != nil {
        return fmt.Errorf("save %s: %w", s.key, err)
    }
    s.blocks = next
    s.raw = payload
    s.commits++
    return nil
}

func (s *GridStore) indexLocked(id string) int {
    for i, b := range s.blocks {
        if b.ID == id {
            return i
        }
    }
    return -1
}

func (s *GridStore) cellsLocked(b model.GridBlock) []int {
    fp, ok := model.FootprintOf(b.Variant)
    if !ok {
        return nil
    }
    cells, _ := s.grid.Footprint(b.Position, fp)
    return cells
}

// gridRecord mirrors model.GridBlock with pointers so missing fields can be
// told apart from zero values.
type gridRecord struct {
    ID        *string             `json:"id"`
    Movie     *model.MovieRef     `json:"movie"`
    Variant   *model.BlockVariant `json:"variant"`
    Position  *int                `json:"position"`
    CreatedAt *time.Time          `json:"createdAt"`
}

// decode adopts payload only when it is an array of complete records.
// Anything else means an empty board.  Records that would break the
// in-bounds or no-overlap invariants are dropped individually.
func (s *GridStore) decode(payload []byte) []model.GridBlock {
    if payload == nil {
        return []model.GridBlock{}
    }
    var items []json.RawMessage
    if err := json.Unmarshal(payload, &items); err != nil {
        s.opts.logger.Warnf("grid %s: stored value is not an array, starting empty: %v", s.key, err)
        return []model.GridBlock{}
    }
    decoded := make([]model.GridBlock, 0, len(items))
    for i, raw := range items {
        var rec gridRecord
        if err := json.Unmarshal(raw, &rec); err != nil ||
            rec.ID == nil || *rec.ID == "" || rec.Movie == nil || rec.Variant == nil ||
            rec.Position == nil || rec.CreatedAt == nil || !rec.Variant.Valid() {
            s.opts.logger.Warnf("grid %s: record %d is malformed, starting empty", s.key, i)
            return []model.GridBlock{}
        }
        decoded = append(decoded, model.GridBlock{
            ID:        *rec.ID,
            Movie:     *rec.Movie,
            Variant:   *rec.Variant,
            Position:  *rec.Position,
            CreatedAt: *rec.CreatedAt,
        })
    }

    out := make([]model.GridBlock, 0, len(decoded))
    taken := make(map[int]struct{}, s.grid.Size())
    for _, b := range decoded {
        fp, _ := model.FootprintOf(b.Variant)
        cells, inBounds := s.grid.Footprint(b.Position, fp)
        if !inBounds {
            s.opts.logger.Warnf("grid %s: dropping block %s, out of bounds at %d", s.key, b.ID, b.Position)
            continue
        }
        overlap := false
        for _, c := range cells {
            if _, ok := taken[c]; ok {
                overlap = true
                break
            }
        }
        if overlap {
            s.opts.logger.Warnf("grid %s: dropping block %s, overlaps an earlier block", s.key, b.ID)
            continue
        }
        for _, c := range cells {
            taken[c] = struct{}{}
        }
        out = append(out, b)
    }
    return out
}
