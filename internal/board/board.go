package board

import (
    "context"
    "fmt"
    "sync"

    "github.com/iliyamo/cinema-moodboard/internal/notify"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

// Storage key suffixes.  They match the keys the browser client has always
// used so exported local storage can be imported as is.
const (
    shelfKeySuffix = "blocks"
    gridKeySuffix  = "placedBlocks"
)

// ShelfKey returns the storage key of a board's shelf.
func ShelfKey(boardID string) string { return "board:" + boardID + ":" + shelfKeySuffix }

// GridKey returns the storage key of a board's grid.
func GridKey(boardID string) string { return "board:" + boardID + ":" + gridKeySuffix }

// Board bundles the stores and controller of one moodboard.
type Board struct {
    ID     string
    Grid   *GridStore
    Shelf  *ShelfStore
    Engine *Engine
    Drag   *DragController

    cancel context.CancelFunc
}

// Close stops the board's storage watchers.
func (b *Board) Close() {
    if b.cancel != nil {
        b.cancel()
    }
}

// ManagerConfig wires a Manager.
type ManagerConfig struct {
    Repo     repository.StateRepo
    Notifier notify.Notifier
    Grid     Grid
    Origin   string
    Logger   Logger
    Sink     EventSink
}

// Manager opens boards on first use and keeps them for the lifetime of the
// process.
type Manager struct {
    cfg ManagerConfig

    mu     sync.Mutex
    boards map[string]*Board
    closed bool
}

// NewManager returns an empty manager.  A zero Grid means DefaultGrid.
func NewManager(cfg ManagerConfig) *Manager {
    if cfg.Grid.Cols <= 0 || cfg.Grid.Rows <= 0 {
        cfg.Grid = DefaultGrid()
    }
    if cfg.Notifier == nil {
        cfg.Notifier = notify.Nop{}
    }
    return &Manager{cfg: cfg, boards: make(map[string]*Board)}
}

// Grid returns the dimensions every board uses.
func (m *Manager) Grid() Grid { return m.cfg.Grid }

// Board returns the board with the given id, loading it from storage the
// first time it is requested.
func (m *Manager) Board(ctx context.Context, id string) (*Board, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.closed {
        return nil, fmt.Errorf("board manager closed")
    }
    if b, ok := m.boards[id]; ok {
        return b, nil
    }
    b, err := m.open(ctx, id)
    if err != nil {
        return nil, err
    }
    m.boards[id] = b
    return b, nil
}

func (m *Manager) open(ctx context.Context, id string) (*Board, error) {
    opts := []Option{
        WithNotifier(m.cfg.Notifier),
        WithOrigin(m.cfg.Origin),
        WithLogger(m.cfg.Logger),
    }
    grid, err := NewGridStore(ctx, m.cfg.Repo, GridKey(id), m.cfg.Grid, opts...)
    if err != nil {
        return nil, fmt.Errorf("open grid of board %s: %w", id, err)
    }
    shelf, err := NewShelfStore(ctx, m.cfg.Repo, ShelfKey(id), opts...)
    if err != nil {
        return nil, fmt.Errorf("open shelf of board %s: %w", id, err)
    }

    watchCtx, cancel := context.WithCancel(context.Background())
    if err := grid.Watch(watchCtx); err != nil {
        cancel()
        return nil, fmt.Errorf("watch grid of board %s: %w", id, err)
    }
    if err := shelf.Watch(watchCtx); err != nil {
        cancel()
        return nil, fmt.Errorf("watch shelf of board %s: %w", id, err)
    }

    engine := NewEngine(m.cfg.Grid, grid)
    return &Board{
        ID:     id,
        Grid:   grid,
        Shelf:  shelf,
        Engine: engine,
        Drag:   NewDragController(id, grid, shelf, engine, m.cfg.Sink),
        cancel: cancel,
    }, nil
}

// Close stops every board's watchers.  Board returns an error afterwards.
func (m *Manager) Close() {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, b := range m.boards {
        b.Close()
    }
    m.boards = map[string]*Board{}
    m.closed = true
}
