package main

import (
    "fmt"
    "log"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-moodboard/internal/config"
    "github.com/iliyamo/cinema-moodboard/internal/database"
    "github.com/iliyamo/cinema-moodboard/internal/notify"
    "github.com/iliyamo/cinema-moodboard/internal/repository"
)

type storage struct {
    repo     repository.StateRepo
    notifier notify.Notifier
    closers  []func() error
}

func (s *storage) close() {
    for i := len(s.closers) - 1; i >= 0; i-- {
        if err := s.closers[i](); err != nil {
            log.Printf("storage close: %v", err)
        }
    }
}

// openStorage picks the state repository for cfg.StorageDriver and the
// notifier that tells other processes about writes.  Redis pub/sub is used
// for shared backends whenever Redis is reachable; the file driver watches
// its directory; the memory driver keeps changes in process.
func openStorage(cfg config.Config, rdb *redis.Client) (*storage, error) {
    st := &storage{}
    switch cfg.StorageDriver {
    case config.DriverRedis:
        if rdb == nil {
            return nil, fmt.Errorf("redis storage selected but redis is unavailable at %s", cfg.Redis.Addr)
        }
        st.repo = repository.NewRedisStateRepo(rdb, cfg.KeyPrefix)
    case config.DriverMySQL:
        db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        if err != nil {
            return nil, err
        }
        st.closers = append(st.closers, db.Close)
        st.repo = repository.NewSQLStateRepo(db, repository.DialectMySQL)
    case config.DriverSQLite:
        db, err := database.OpenSQLite(cfg.SQLitePath)
        if err != nil {
            return nil, err
        }
        st.closers = append(st.closers, db.Close)
        st.repo = repository.NewSQLStateRepo(db, repository.DialectSQLite)
    case config.DriverFile:
        repo, err := repository.NewFileStateRepo(cfg.DataDir)
        if err != nil {
            return nil, err
        }
        fn, err := notify.NewFile(repo.Dir())
        if err != nil {
            return nil, fmt.Errorf("watch %s: %w", repo.Dir(), err)
        }
        st.closers = append(st.closers, fn.Close)
        st.repo, st.notifier = repo, fn
        return st, nil
    default:
        st.repo, st.notifier = repository.NewMemoryStateRepo(), notify.NewLocal()
        return st, nil
    }

    if rdb != nil {
        st.notifier = notify.NewRedis(rdb, cfg.NotifyChannel)
    } else {
        st.notifier = notify.NewLocal()
    }
    return st, nil
}
