package repository

import (
    "context"
    "sync"
)

// StateRepo persists opaque JSON blobs under string keys.  The board keeps
// exactly two keys per board (shelf and grid) and always writes the full
// collection, so no partial update API is needed.
type StateRepo interface {
    // Load returns the blob stored under key or ErrNotFound.
    Load(ctx context.Context, key string) ([]byte, error)
    // Save replaces the blob stored under key.
    Save(ctx context.Context, key string, payload []byte) error
}

// MemoryStateRepo keeps blobs in process memory.  It backs tests and the
// "memory" storage driver.
type MemoryStateRepo struct {
    mu    sync.RWMutex
    blobs map[string][]byte
}

// NewMemoryStateRepo returns an empty in-memory repository.
func NewMemoryStateRepo() *MemoryStateRepo {
    return &MemoryStateRepo{blobs: make(map[string][]byte)}
}

func (r *MemoryStateRepo) Load(_ context.Context, key string) ([]byte, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    b, ok := r.blobs[key]
    if !ok {
        return nil, ErrNotFound
    }
    out := make([]byte, len(b))
    copy(out, b)
    return out, nil
}

func (r *MemoryStateRepo) Save(_ context.Context, key string, payload []byte) error {
    b := make([]byte, len(payload))
    copy(b, payload)
    r.mu.Lock()
    r.blobs[key] = b
    r.mu.Unlock()
    return nil
}
