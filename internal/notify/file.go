package notify

import (
    "context"
    "log"
    "sync"
    "time"

    "github.com/fsnotify/fsnotify"

    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

// FileOrigin marks messages produced by the file watcher.  The watcher
// cannot tell who wrote a file, so receivers reload and compare.
const FileOrigin = "file"

// File watches a FileStateRepo directory and turns file writes into
// messages.  Publish is a no-op: the write itself is the signal.
type File struct {
    watcher *fsnotify.Watcher
    mu      sync.RWMutex
    nextID  int
    subs    map[int]Handler
    done    chan struct{}
}

// NewFile starts watching dir.  Call Close to stop the watcher.
func NewFile(dir string) (*File, error) {
    w, err := fsnotify.NewWatcher()
    if err != nil {
        return nil, err
    }
    if err := w.Add(dir); err != nil {
        w.Close()
        return nil, err
    }
    f := &File{watcher: w, subs: make(map[int]Handler), done: make(chan struct{})}
    go f.loop()
    return f, nil
}

func (f *File) loop() {
    defer close(f.done)
    for {
        select {
        case ev, ok := <-f.watcher.Events:
            if !ok {
                return
            }
            if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
                continue
            }
            key, ok := repository.FileNameToKey(ev.Name)
            if !ok {
                continue
            }
            f.dispatch(Message{Key: key, Origin: FileOrigin, At: time.Now().UTC()})
        case err, ok := <-f.watcher.Errors:
            if !ok {
                return
            }
            log.Printf("notify: file watcher error: %v", err)
        }
    }
}

func (f *File) dispatch(msg Message) {
    f.mu.RLock()
    hs := make([]Handler, 0, len(f.subs))
    for _, h := range f.subs {
        hs = append(hs, h)
    }
    f.mu.RUnlock()
    for _, h := range hs {
        h(msg)
    }
}

func (f *File) Publish(context.Context, Message) error { return nil }

func (f *File) Subscribe(ctx context.Context, h Handler) error {
    f.mu.Lock()
    id := f.nextID
    f.nextID++
    f.subs[id] = h
    f.mu.Unlock()
    go func() {
        <-ctx.Done()
        f.mu.Lock()
        delete(f.subs, id)
        f.mu.Unlock()
    }()
    return nil
}

// Close stops the watcher and waits for the event loop to exit.
func (f *File) Close() error {
    err := f.watcher.Close()
    <-f.done
    return err
}
