package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-moodboard/internal/config"
    "github.com/iliyamo/cinema-moodboard/internal/tmdb"
)

// CacheKeyFunc names the cached resource a request asks for.  Requests for
// which it reports false bypass the cache.
type CacheKeyFunc func(c echo.Context) (string, bool)

// RouteKey ignores the query string.  The catalog routes serve fixed data,
// so any query a client adds must not split the entry.
func RouteKey(c echo.Context) (string, bool) {
    return "route:" + c.Path(), true
}

// MovieSearchKey keys search pages on (language, page, query).  The query is
// whitespace-collapsed and lower-cased and a missing or bad page means page
// 1, the same way the search handler reads them, so parameter order and
// letter case never split an entry.  Empty queries are not cached.
func MovieSearchKey(language string) CacheKeyFunc {
    lang := strings.ToLower(strings.TrimSpace(language))
    return func(c echo.Context) (string, bool) {
        q := strings.ToLower(tmdb.NormalizeQuery(c.QueryParam("query")))
        if q == "" {
            return "", false
        }
        page, err := strconv.Atoi(c.QueryParam("page"))
        if err != nil || page < 1 {
            page = 1
        }
        return fmt.Sprintf("search:%s:%d:%s", lang, page, q), true
    }
}

// cachedResponse is what one entry holds.  Only the content type survives
// from the original headers.
type cachedResponse struct {
    Status      int       `json:"status"`
    ContentType string    `json:"content_type"`
    Body        []byte    `json:"body"`
    StoredAt    time.Time `json:"stored_at"`
}

// responseStore is the slice of Redis the cache needs.  A miss is redis.Nil.
type responseStore interface {
    Get(ctx context.Context, key string) ([]byte, error)
    SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type redisResponses struct{ rdb *redis.Client }

func (r redisResponses) Get(ctx context.Context, key string) ([]byte, error) {
    return r.rdb.Get(ctx, key).Bytes()
}

func (r redisResponses) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
    return r.rdb.SetEx(ctx, key, value, ttl).Err()
}

// bodyRecorder tees the response body.  Once the body outgrows limit the
// copy is abandoned and the response is not stored.
type bodyRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// NewRedisCache caches 200 responses of the wrapped routes in Redis under
// prefix + sha1(key(c)).  Without Redis, or when disabled, it passes
// requests straight through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, key CacheKeyFunc) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return newResponseCache(cfg, redisResponses{rdb: rdb}, key)
}

func newResponseCache(cfg config.CacheConfig, store responseStore, key CacheKeyFunc) echo.MiddlewareFunc {
    ttl := cfg.TTL
    if ttl <= 0 { ttl = 5 * time.Minute }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            name, ok := key(c)
            if !ok {
                return next(c)
            }
            sum := sha1.Sum([]byte(name))
            redisKey := fmt.Sprintf("%s:%x", cfg.Prefix, sum)
            ctx := c.Request().Context()

            bs, err := store.Get(ctx, redisKey)
            switch {
            case err == nil:
                var hit cachedResponse
                if jerr := json.Unmarshal(bs, &hit); jerr == nil {
                    res := c.Response()
                    if hit.ContentType != "" {
                        res.Header().Set(echo.HeaderContentType, hit.ContentType)
                    }
                    res.Header().Set("X-Cache", "HIT")
                    res.Header().Set("Age", strconv.Itoa(int(time.Since(hit.StoredAt).Seconds())))
                    res.WriteHeader(hit.Status)
                    _, werr := res.Write(hit.Body)
                    return werr
                }
                c.Logger().Warnf("cache: dropping unreadable entry for %s", name)
            case !errors.Is(err, redis.Nil):
                c.Logger().Warnf("cache: read %s: %v", name, err)
            }

            rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            // search failures answer 400/502 and must not stick
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }
            entry, err := json.Marshal(cachedResponse{
                Status:      rec.status,
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        rec.buf.Bytes(),
                StoredAt:    time.Now().UTC(),
            })
            if err != nil {
                return nil
            }
            if err := store.SetEx(context.Background(), redisKey, entry, ttl); err != nil {
                c.Logger().Warnf("cache: store %s: %v", name, err)
            }
            return nil
        }
    }
}
