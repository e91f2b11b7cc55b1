// Package notify carries "this key changed" signals between processes that
// share the same board storage.  It plays the role the browser storage event
// plays between tabs: receivers reload the key, nobody merges.
package notify

import (
    "context"
    "sync"
    "time"
)

// Message announces a committed write.  Origin identifies the writer so a
// store can ignore its own echoes.
type Message struct {
    Key    string    `json:"key"`
    Origin string    `json:"origin"`
    At     time.Time `json:"at"`
}

// Handler receives messages.  It must not block for long; slow handlers
// delay delivery to every other subscriber on the same notifier.
type Handler func(Message)

// Notifier publishes and delivers change messages.
type Notifier interface {
    Publish(ctx context.Context, msg Message) error
    // Subscribe registers h until ctx is cancelled.
    Subscribe(ctx context.Context, h Handler) error
}

// Local delivers messages to subscribers in the same process, synchronously
// from Publish.  It backs the memory storage driver and tests.
type Local struct {
    mu     sync.RWMutex
    nextID int
    subs   map[int]Handler
}

// NewLocal returns an empty in-process notifier.
func NewLocal() *Local {
    return &Local{subs: make(map[int]Handler)}
}

func (l *Local) Publish(_ context.Context, msg Message) error {
    l.mu.RLock()
    hs := make([]Handler, 0, len(l.subs))
    for _, h := range l.subs {
        hs = append(hs, h)
    }
    l.mu.RUnlock()
    for _, h := range hs {
        h(msg)
    }
    return nil
}

func (l *Local) Subscribe(ctx context.Context, h Handler) error {
    l.mu.Lock()
    id := l.nextID
    l.nextID++
    l.subs[id] = h
    l.mu.Unlock()
    go func() {
        <-ctx.Done()
        l.mu.Lock()
        delete(l.subs, id)
        l.mu.Unlock()
    }()
    return nil
}

// Nop drops every message.  Used when cross-process sync is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, Message) error   { return nil }
func (Nop) Subscribe(context.Context, Handler) error { return nil }
