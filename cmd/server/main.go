package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    glog "github.com/labstack/gommon/log"

    "github.com/iliyamo/cinema-moodboard/internal/board"
    "github.com/iliyamo/cinema-moodboard/internal/config"
    "github.com/iliyamo/cinema-moodboard/internal/handler"
    "github.com/iliyamo/cinema-moodboard/internal/middleware"
    "github.com/iliyamo/cinema-moodboard/internal/queue"
    queue_publisher "github.com/iliyamo/cinema-moodboard/internal/service"
    "github.com/iliyamo/cinema-moodboard/internal/router"
    "github.com/iliyamo/cinema-moodboard/internal/tmdb"
)

func main() {
    cfg := config.Load()
    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    e := echo.New()
    e.HideBanner = true
    e.Logger.SetLevel(glog.INFO)
    if cfg.Env == "dev" {
        e.Logger.SetLevel(glog.DEBUG)
    }

    rdb := config.NewRedisClient(cfg.Redis)
    if rdb == nil {
        log.Printf("redis unavailable at %s; caching and rate limiting disabled", cfg.Redis.Addr)
    }

    st, err := openStorage(cfg, rdb)
    if err != nil {
        log.Fatalf("storage: %v", err)
    }
    defer st.close()

    var sink board.EventSink
    if cfg.EventsEnabled {
        pub := queue_publisher.NewPublisher(cfg.RabbitURL, 256)
        go pub.Run(ctx)
        go func() {
            if err := queue.StartBoardConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
                log.Printf("board-consumer stopped: %v", err)
            }
        }()
        sink = pub
    }

    boards := board.NewManager(board.ManagerConfig{
        Repo:     st.repo,
        Notifier: st.notifier,
        Grid:     board.Grid{Cols: cfg.GridCols, Rows: cfg.GridRows},
        Origin:   uuid.NewString(),
        Logger:   e.Logger,
        Sink:     sink,
    })
    defer boards.Close()

    cacheCfg := config.LoadCacheConfig()
    catalogCache := middleware.NewRedisCache(cacheCfg, rdb, middleware.RouteKey)
    searchCache := middleware.NewRedisCache(cacheCfg, rdb, middleware.MovieSearchKey(cfg.TMDBLanguage))
    limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    catalog := tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBLanguage, cfg.TMDBTimeout)

    router.RegisterRoutes(e,
        &handler.SessionHandler{Secret: cfg.JWTSecret, TTLMin: cfg.SessionTTLMin},
        &handler.MovieHandler{Catalog: catalog},
        catalogCache, searchCache, limit)
    router.RegisterBoard(e, handler.NewBoardHandler(boards), cfg.JWTSecret, limit)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s, storage=%s, grid=%dx%d)", addr, cfg.Env, cfg.StorageDriver, cfg.GridCols, cfg.GridRows)
    go func() {
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal(err)
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}
