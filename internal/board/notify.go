package board

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/cinema-moodboard/internal/notify"
)

// ChangeEvent tells listeners that a store's collection changed.  External
// is true when the change was written by another process and picked up by
// a reload.
type ChangeEvent struct {
    Key      string    `json:"key"`
    Origin   string    `json:"origin"`
    External bool      `json:"external"`
    At       time.Time `json:"at"`
}

// Listener is called synchronously after every committed change.
type Listener func(ChangeEvent)

type listenerSet struct {
    mu     sync.Mutex
    nextID int
    ids    []int
    fns    map[int]Listener
}

func (l *listenerSet) add(fn Listener) func() {
    l.mu.Lock()
    defer l.mu.Unlock()
    if l.fns == nil {
        l.fns = make(map[int]Listener)
    }
    id := l.nextID
    l.nextID++
    l.ids = append(l.ids, id)
    l.fns[id] = fn
    var once sync.Once
    return func() {
        once.Do(func() {
            l.mu.Lock()
            defer l.mu.Unlock()
            delete(l.fns, id)
            for i, v := range l.ids {
                if v == id {
                    l.ids = append(l.ids[:i], l.ids[i+1:]...)
                    break
                }
            }
        })
    }
}

func (l *listenerSet) emit(ev ChangeEvent) {
    l.mu.Lock()
    fns := make([]Listener, 0, len(l.ids))
    for _, id := range l.ids {
        fns = append(fns, l.fns[id])
    }
    l.mu.Unlock()
    for _, fn := range fns {
        fn(ev)
    }
}

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
    notifier notify.Notifier
    origin   string
    logger   Logger
    now      func() time.Time
    newID    func() string
}

func defaultStoreOptions() storeOptions {
    return storeOptions{
        notifier: notify.Nop{},
        origin:   uuid.NewString(),
        logger:   defaultLogger(),
        now:      func() time.Time { return time.Now().UTC() },
        newID:    uuid.NewString,
    }
}

// WithNotifier publishes committed writes on n and reloads on foreign ones.
func WithNotifier(n notify.Notifier) Option {
    return func(o *storeOptions) {
        if n != nil {
            o.notifier = n
        }
    }
}

// WithOrigin sets the writer identity attached to published messages.
// Stores ignore messages carrying their own origin.
func WithOrigin(origin string) Option {
    return func(o *storeOptions) {
        if origin != "" {
            o.origin = origin
        }
    }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
    return func(o *storeOptions) {
        if l != nil {
            o.logger = l
        }
    }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
    return func(o *storeOptions) {
        if now != nil {
            o.now = now
        }
    }
}

// WithIDGenerator overrides the block id generator.
func WithIDGenerator(gen func() string) Option {
    return func(o *storeOptions) {
        if gen != nil {
            o.newID = gen
        }
    }
}

func applyOptions(opts []Option) storeOptions {
    o := defaultStoreOptions()
    for _, fn := range opts {
        fn(&o)
    }
    return o
}

// reloadTimeout bounds a reload triggered by a foreign write.
const reloadTimeout = 5 * time.Second

// reloadAttempts caps how often Reload re-reads a key that local commits
// keep changing underneath it.
const reloadAttempts = 3

// watchKey subscribes reload to foreign messages about key.
func watchKey(ctx context.Context, o storeOptions, key string, reload func(context.Context) (bool, error)) error {
    return o.notifier.Subscribe(ctx, func(msg notify.Message) {
        if msg.Key != key || msg.Origin == o.origin {
            return
        }
        rctx, cancel := context.WithTimeout(ctx, reloadTimeout)
        defer cancel()
        if _, err := reload(rctx); err != nil {
            o.logger.Warnf("reload %s after foreign write: %v", key, err)
        }
    })
}

func publish(ctx context.Context, o storeOptions, key string, at time.Time) {
    msg := notify.Message{Key: key, Origin: o.origin, At: at}
    if err := o.notifier.Publish(ctx, msg); err != nil {
        o.logger.Warnf("publish change of %s: %v", key, err)
    }
}
