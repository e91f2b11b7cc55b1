package config

// Redis backs the redis storage driver, cross-process change notification,
// response caching and rate limiting.  When the server cannot be reached the
// client is nil and callers degrade: caching and rate limiting switch off.

import (
    "context"
    "crypto/tls"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings.
type RedisConfig struct {
    Addr     string `yaml:"addr"`
    Password string `yaml:"password"`
    DB       int    `yaml:"db"`
    TLS      bool   `yaml:"tls"`
}

// loadRedisConfig overlays REDIS_* variables on base.  REDIS_HOST and
// REDIS_PORT together take precedence over REDIS_ADDR.
func loadRedisConfig(base RedisConfig) RedisConfig {
    base.Addr = envStr("REDIS_ADDR", base.Addr)
    if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
        base.Addr = host + ":" + port
    }
    base.Password = envStr("REDIS_PASSWORD", base.Password)
    base.DB = envInt("REDIS_DB", base.DB)
    base.TLS = envBool("REDIS_TLS", base.TLS)
    return base
}

// NewRedisClient connects using cfg and pings the server with a short
// timeout.  It returns nil on failure.
func NewRedisClient(cfg RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if cfg.TLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      cfg.Addr,
        Password:  cfg.Password,
        DB:        cfg.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
