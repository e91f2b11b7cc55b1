package repository

import (
    "context"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
)

// FileStateRepo stores each key as <dir>/<key>.json.  Writes go to a
// temporary file first and are renamed into place so a watcher never reads a
// half written document.
type FileStateRepo struct {
    dir string
}

// NewFileStateRepo creates dir if needed and returns a repository rooted there.
func NewFileStateRepo(dir string) (*FileStateRepo, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return nil, fmt.Errorf("create state directory: %w", err)
    }
    return &FileStateRepo{dir: dir}, nil
}

// Dir returns the root directory.
func (r *FileStateRepo) Dir() string { return r.dir }

// Path maps a key to its file.  ':' is not portable in file names.
func (r *FileStateRepo) Path(key string) string {
    return filepath.Join(r.dir, KeyToFileName(key))
}

// KeyToFileName is the inverse of FileNameToKey.
func KeyToFileName(key string) string {
    return strings.ReplaceAll(key, ":", "__") + ".json"
}

// FileNameToKey recovers a key from a file name written by Save.  The second
// result is false for files that are not state documents.
func FileNameToKey(name string) (string, bool) {
    name = filepath.Base(name)
    if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
        return "", false
    }
    return strings.ReplaceAll(strings.TrimSuffix(name, ".json"), "__", ":"), true
}

func (r *FileStateRepo) Load(_ context.Context, key string) ([]byte, error) {
    b, err := os.ReadFile(r.Path(key))
    if errors.Is(err, os.ErrNotExist) {
        return nil, ErrNotFound
    }
    return b, err
}

func (r *FileStateRepo) Save(_ context.Context, key string, payload []byte) error {
    tmp, err := os.CreateTemp(r.dir, ".state-*")
    if err != nil {
        return fmt.Errorf("create temp file: %w", err)
    }
    if _, err := tmp.Write(payload); err != nil {
        tmp.Close()
        os.Remove(tmp.Name())
        return fmt.Errorf("write temp file: %w", err)
    }
    if err := tmp.Close(); err != nil {
        os.Remove(tmp.Name())
        return err
    }
    return os.Rename(tmp.Name(), r.Path(key))
}
