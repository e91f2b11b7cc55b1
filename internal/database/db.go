package database

import (
    "context"
    "database/sql"
    "fmt"
    "os"
    "path/filepath"
    "time"

    _ "github.com/go-sql-driver/mysql"
    _ "modernc.org/sqlite"
)

// Open connects to MySQL, verifies the connection and creates the
// board_state table when it is missing.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    auth := user
    if pass != "" {
        auth = fmt.Sprintf("%s:%s", user, pass)
    }
    // parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
    dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, host, port, name)

    db, err := sql.Open("mysql", dsn)
    if err != nil {
        return nil, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    // Ping with timeout
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    if err := Migrate(ctx, db, mysqlSchema); err != nil {
        db.Close()
        return nil, fmt.Errorf("migrate: %w", err)
    }
    return db, nil
}

// OpenSQLite opens (or creates) the SQLite file at path.
func OpenSQLite(path string) (*sql.DB, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, fmt.Errorf("create db directory: %w", err)
    }
    db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
    if err != nil {
        return nil, fmt.Errorf("open sqlite: %w", err)
    }
    // SQLite only supports one writer
    db.SetMaxOpenConns(1)

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := Migrate(ctx, db, sqliteSchema); err != nil {
        db.Close()
        return nil, fmt.Errorf("migrate: %w", err)
    }
    return db, nil
}

const mysqlSchema = `CREATE TABLE IF NOT EXISTS board_state (
    state_key  VARCHAR(191) NOT NULL PRIMARY KEY,
    payload    LONGBLOB     NOT NULL,
    updated_at DATETIME     NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS board_state (
    state_key  TEXT PRIMARY KEY,
    payload    BLOB NOT NULL,
    updated_at DATETIME NOT NULL
)`

// Migrate runs the given DDL statements in order.
func Migrate(ctx context.Context, db *sql.DB, stmts ...string) error {
    for _, s := range stmts {
        if _, err := db.ExecContext(ctx, s); err != nil {
            return err
        }
    }
    return nil
}
