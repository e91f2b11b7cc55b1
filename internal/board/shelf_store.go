package board

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strconv"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-moodboard/internal/model"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

// ShelfStore holds the blocks that have been created but not placed.  The
// collection is ordered; insertion order is display order.
type ShelfStore struct {
    repo repository.StateRepo
    key  string
    opts storeOptions

    mu     sync.RWMutex
    blocks []model.ShelfBlock
    raw    []byte

    // commits counts local writes; a reload that overlaps one is discarded.
    commits uint64

    listeners listenerSet
}

// NewShelfStore loads the shelf stored under key.  Malformed entries are
// dropped one by one; storage failures are returned.
func NewShelfStore(ctx context.Context, repo repository.StateRepo, key string, opts ...Option) (*ShelfStore, error) {
    s := &ShelfStore{repo: repo, key: key, opts: applyOptions(opts), blocks: []model.ShelfBlock{}}
    if _, err := s.Reload(ctx); err != nil {
        return nil, err
    }
    return s, nil
}

// Key returns the storage key.
func (s *ShelfStore) Key() string { return s.key }

// Watch reloads the shelf whenever another process writes its key.
func (s *ShelfStore) Watch(ctx context.Context) error {
    return watchKey(ctx, s.opts, s.key, s.Reload)
}

// Subscribe registers fn for change events.
func (s *ShelfStore) Subscribe(fn Listener) (unsubscribe func()) {
    return s.listeners.add(fn)
}

// Blocks returns a copy of the shelf in display order.
func (s *ShelfStore) Blocks() []model.ShelfBlock {
    s.mu.RLock()
    defer s.mu.RUnlock()
    out := make([]model.ShelfBlock, len(s.blocks))
    copy(out, s.blocks)
    return out
}

// Len returns the number of shelf entries.
func (s *ShelfStore) Len() int {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return len(s.blocks)
}

// Get returns the entry with the given id.
func (s *ShelfStore) Get(id string) (model.ShelfBlock, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    for _, b := range s.blocks {
        if b.ID == id {
            return b, true
        }
    }
    return model.ShelfBlock{}, false
}

// Add appends a block for movie with the given variant and persists the
// shelf.
func (s *ShelfStore) Add(ctx context.Context, movie model.MovieRef, variant model.BlockVariant) (model.ShelfBlock, error) {
    fp, ok := model.FootprintOf(variant)
    if !ok {
        return model.ShelfBlock{}, model.ErrUnknownVariant
    }
    block := model.ShelfBlock{
        ID:        s.opts.newID(),
        Movie:     movie,
        Variant:   variant,
        BlockSize: fp,
        CreatedAt: s.opts.now(),
    }
    s.mu.Lock()
    next := make([]model.ShelfBlock, 0, len(s.blocks)+1)
    next = append(next, s.blocks...)
    next = append(next, block)
    err := s.commitLocked(ctx, next)
    s.mu.Unlock()
    if err != nil {
        return model.ShelfBlock{}, err
    }
    s.changed(ctx)
    return block, nil
}

// RemoveFirst deletes the first entry for which match returns true.  It
// reports whether an entry was removed; no match writes nothing.
func (s *ShelfStore) RemoveFirst(ctx context.Context, match func(model.ShelfBlock) bool) (bool, error) {
    s.mu.Lock()
    idx := -1
    for i, b := range s.blocks {
        if match(b) {
            idx = i
            break
        }
    }
    if idx < 0 {
        s.mu.Unlock()
        return false, nil
    }
    next := make([]model.ShelfBlock, 0, len(s.blocks)-1)
    next = append(next, s.blocks[:idx]...)
    next = append(next, s.blocks[idx+1:]...)
    err := s.commitLocked(ctx, next)
    s.mu.Unlock()
    if err != nil {
        return false, err
    }
    s.changed(ctx)
    return true, nil
}

// Remove deletes the entry with the given id.
func (s *ShelfStore) Remove(ctx context.Context, id string) (bool, error) {
    return s.RemoveFirst(ctx, func(b model.ShelfBlock) bool { return b.ID == id })
}

// RemoveNth deletes the n-th (zero based) entry for movieID, counting only
// entries of that movie in shelf order.  Older clients address shelf
// entries this way.
func (s *ShelfStore) RemoveNth(ctx context.Context, movieID int64, n int) (bool, error) {
    seen := 0
    return s.RemoveFirst(ctx, func(b model.ShelfBlock) bool {
        if b.Movie.ID != movieID {
            return false
        }
        if seen == n {
            return true
        }
        seen++
        return false
    })
}

// Reload re-reads the key and notifies listeners when the shelf changed.
func (s *ShelfStore) Reload(ctx context.Context) (bool, error) {
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

func (s *ShelfStore) changed(ctx context.Context) {
    at := s.opts.now()
    s.listeners.emit(ChangeEvent{Key: s.key, Origin: s.opts.origin, At: at})
    publish(ctx, s.opts, s.key, at)
}

func (s *ShelfStore) commitLocked(ctx context.Context, next []model.ShelfBlock) error {
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

type shelfSizeRecord struct {
    Cols *int `json:"cols"`
    Rows *int `json:"rows"`
}

type shelfRecord struct {
    ID        *string             `json:"id"`
    Movie     *model.MovieRef     `json:"movie"`
    Variant   *model.BlockVariant `json:"variant"`
    BlockSize *shelfSizeRecord    `json:"blockSize"`
    CreatedAt *time.Time          `json:"createdAt"`
}

// shelfIDSpace namespaces ids derived for entries written before shelf
// entries carried their own id.
var shelfIDSpace = uuid.MustParse("6f1c3c1e-8a4e-4d8f-9a57-2d7c1f0b8e11")

// decode keeps every well formed entry and silently drops the rest.
func (s *ShelfStore) decode(payload []byte) []model.ShelfBlock {
    if payload == nil {
        return []model.ShelfBlock{}
    }
    var items []json.RawMessage
    if err := json.Unmarshal(payload, &items); err != nil {
        s.opts.logger.Warnf("shelf %s: stored value is not an array, starting empty: %v", s.key, err)
        return []model.ShelfBlock{}
    }
    out := make([]model.ShelfBlock, 0, len(items))
    for i, raw := range items {
        var rec shelfRecord
        if err := json.Unmarshal(raw, &rec); err != nil {
            s.opts.logger.Debugf("shelf %s: dropping entry %d: %v", s.key, i, err)
            continue
        }
        if rec.Movie == nil || rec.Variant == nil || !rec.Variant.Valid() ||
            rec.BlockSize == nil || rec.BlockSize.Cols == nil || rec.BlockSize.Rows == nil ||
            rec.CreatedAt == nil {
            s.opts.logger.Debugf("shelf %s: dropping incomplete entry %d", s.key, i)
            continue
        }
        id := ""
        if rec.ID != nil {
            id = *rec.ID
        }
        if id == "" {
            name := strconv.FormatInt(rec.Movie.ID, 10) + "/" + rec.CreatedAt.UTC().Format(time.RFC3339Nano) + "/" + strconv.Itoa(i)
            id = uuid.NewSHA1(shelfIDSpace, []byte(name)).String()
        }
        fp, _ := model.FootprintOf(*rec.Variant)
        out = append(out, model.ShelfBlock{
            ID:        id,
            Movie:     *rec.Movie,
            Variant:   *rec.Variant,
            BlockSize: fp,
            CreatedAt: *rec.CreatedAt,
        })
    }
    return out
}
