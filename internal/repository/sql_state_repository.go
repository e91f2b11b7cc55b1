package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"
)

// Dialect selects the upsert statement used by SQLStateRepo.
type Dialect string

const (
    DialectMySQL  Dialect = "mysql"
    DialectSQLite Dialect = "sqlite"
)

// SQLStateRepo stores blobs in the board_state table created by
// database.Migrate.  One row per key; payload is the raw JSON document.
type SQLStateRepo struct {
    db      *sql.DB
    dialect Dialect
}

// NewSQLStateRepo returns a repository bound to the provided database.
func NewSQLStateRepo(db *sql.DB, dialect Dialect) *SQLStateRepo {
    return &SQLStateRepo{db: db, dialect: dialect}
}

// DB exposes the underlying handle for health checks.
func (r *SQLStateRepo) DB() *sql.DB { return r.db }

func (r *SQLStateRepo) Load(ctx context.Context, key string) ([]byte, error) {
    var payload []byte
    err := r.db.QueryRowContext(ctx,
        `SELECT payload FROM board_state WHERE state_key = ? LIMIT 1`, key,
    ).Scan(&payload)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return payload, nil
}

func (r *SQLStateRepo) Save(ctx context.Context, key string, payload []byte) error {
    now := time.Now().UTC()
    var q string
    switch r.dialect {
    case DialectSQLite:
        q = `INSERT INTO board_state (state_key, payload, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(state_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
    default:
        q = `INSERT INTO board_state (state_key, payload, updated_at) VALUES (?, ?, ?)
             ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
    }
    _, err := r.db.ExecContext(ctx, q, key, payload, now)
    return err
}
