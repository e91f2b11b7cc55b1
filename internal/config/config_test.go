package config

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func TestParse_DefaultsAndEnv(t *testing.T) {
    t.Setenv("JWT_SECRET", "s3cret")
    t.Setenv("STORAGE_DRIVER", "FILE")
    t.Setenv("GRID_ROWS", "8")
    t.Setenv("TMDB_TIMEOUT", "750ms")

    cfg, err := Parse("")
    if err != nil {
        t.Fatalf("Parse: %v", err)
    }
    if cfg.StorageDriver != DriverFile {
        t.Errorf("driver = %q", cfg.StorageDriver)
    }
    if cfg.GridCols != 4 || cfg.GridRows != 8 {
        t.Errorf("grid = %dx%d", cfg.GridCols, cfg.GridRows)
    }
    if cfg.TMDBTimeout != 750*time.Millisecond {
        t.Errorf("tmdb timeout = %s", cfg.TMDBTimeout)
    }
    if cfg.TMDBLanguage != "ko-KR" {
        t.Errorf("tmdb language = %q", cfg.TMDBLanguage)
    }
}

func TestParse_YAMLOverlayLosesToEnv(t *testing.T) {
    dir := t.TempDir()
    path := filepath.Join(dir, "moodboard.yaml")
    doc := `
port: "9000"
storage_driver: sqlite
sqlite_path: /tmp/board.db
jwt_secret: from-file
tmdb_timeout: 2s
redis:
  addr: cache:6380
  db: 3
`
    if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
        t.Fatal(err)
    }
    t.Setenv("APP_PORT", "9100")

    cfg, err := Parse(path)
    if err != nil {
        t.Fatalf("Parse: %v", err)
    }
    if cfg.Port != "9100" {
        t.Errorf("port = %q, want the env value", cfg.Port)
    }
    if cfg.StorageDriver != DriverSQLite || cfg.SQLitePath != "/tmp/board.db" {
        t.Errorf("storage = %q %q", cfg.StorageDriver, cfg.SQLitePath)
    }
    if cfg.JWTSecret != "from-file" {
        t.Errorf("jwt secret = %q", cfg.JWTSecret)
    }
    if cfg.TMDBTimeout != 2*time.Second {
        t.Errorf("tmdb timeout = %s", cfg.TMDBTimeout)
    }
    if cfg.Redis.Addr != "cache:6380" || cfg.Redis.DB != 3 {
        t.Errorf("redis = %+v", cfg.Redis)
    }
}

func TestParse_Invalid(t *testing.T) {
    tests := []struct {
        name string
        env  map[string]string
        want string
    }{
        {"missing secret", map[string]string{}, "JWT_SECRET"},
        {"unknown driver", map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "etcd"}, "STORAGE_DRIVER"},
        {"mysql without user", map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "mysql", "DB_USER": ""}, "DB_USER"},
        {"zero grid", map[string]string{"JWT_SECRET": "x", "GRID_COLS": "0"}, "grid"},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            t.Setenv("JWT_SECRET", "")
            for k, v := range tt.env {
                t.Setenv(k, v)
            }
            _, err := Parse("")
            if err == nil || !strings.Contains(err.Error(), tt.want) {
                t.Fatalf("err = %v, want mention of %s", err, tt.want)
            }
        })
    }
}

func TestParse_MissingFile(t *testing.T) {
    t.Setenv("JWT_SECRET", "x")
    if _, err := Parse(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
        t.Fatal("expected an error for a missing config file")
    }
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
    t.Setenv("RATE_LIMIT_TTL", "1s")
    cfg := LoadRateLimitConfig()
    if cfg.Capacity != 1 {
        t.Errorf("capacity = %d", cfg.Capacity)
    }
    if cfg.TTL != 10*time.Second {
        t.Errorf("ttl = %s, want 5 refill intervals", cfg.TTL)
    }
}

func TestLoadCacheConfig_Methods(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    cfg := LoadCacheConfig()
    if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] || cfg.Methods["POST"] {
        t.Errorf("methods = %v", cfg.Methods)
    }
}
