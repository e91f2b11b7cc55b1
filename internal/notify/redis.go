package notify

import (
    "context"
    "encoding/json"
    "log"

    "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "moodboard:changes"

// Redis fans messages out over a Redis pub/sub channel so every server
// instance sharing the Redis state learns about foreign writes.
type Redis struct {
    rdb     *redis.Client
    channel string
}

// NewRedis returns a notifier publishing on channel (DefaultChannel if empty).
func NewRedis(rdb *redis.Client, channel string) *Redis {
    if channel == "" {
        channel = DefaultChannel
    }
    return &Redis{rdb: rdb, channel: channel}
}

func (r *Redis) Publish(ctx context.Context, msg Message) error {
    body, err := json.Marshal(msg)
    if err != nil {
        return err
    }
    return r.rdb.Publish(ctx, r.channel, body).Err()
}

// Subscribe opens a dedicated pub/sub connection.  It waits for the
// subscription to be confirmed so no message published after Subscribe
// returns is missed.
func (r *Redis) Subscribe(ctx context.Context, h Handler) error {
    ps := r.rdb.Subscribe(ctx, r.channel)
    if _, err := ps.Receive(ctx); err != nil {
        _ = ps.Close()
        return err
    }
    ch := ps.Channel()
    go func() {
        defer func() { _ = ps.Close() }()
        for {
            select {
            case <-ctx.Done():
                return
            case m, ok := <-ch:
                if !ok {
                    return
                }
                var msg Message
                if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
                    log.Printf("notify: drop malformed message on %s: %v", r.channel, err)
                    continue
                }
                h(msg)
            }
        }
    }()
    return nil
}
