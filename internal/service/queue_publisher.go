// Package queue_publisher publishes board activity to RabbitMQ.  Publishing
// never fails a drop: events are queued in memory, sent by a background
// worker, and errors are only logged.
package queue_publisher

import (
    "context"
    "encoding/json"
    "log"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/cinema-moodboard/internal/board"
    q "github.com/iliyamo/cinema-moodboard/internal/queue"
)

// Publisher implements board.EventSink.
type Publisher struct {
    url    string
    events chan q.BoardEvent
    send   func(ctx context.Context, ev q.BoardEvent) error

    mu   sync.Mutex
    conn *amqp.Connection
    ch   *amqp.Channel
}

// NewPublisher returns a publisher for the broker at url.  buffer bounds the
// number of events waiting for Run; when it is full new events are dropped.
func NewPublisher(url string, buffer int) *Publisher {
    if buffer < 1 {
        buffer = 256
    }
    p := &Publisher{url: url, events: make(chan q.BoardEvent, buffer)}
    p.send = p.Publish
    return p
}

// ToQueueEvent converts a board event into its wire payload.
func ToQueueEvent(ev board.Event) q.BoardEvent {
    return q.BoardEvent{
        Kind:        string(ev.Kind),
        BoardID:     ev.BoardID,
        BlockID:     ev.BlockID,
        PrevBlockID: ev.PrevBlockID,
        MovieID:     ev.MovieID,
        MovieTitle:  ev.MovieTitle,
        Variant:     string(ev.Variant),
        Position:    ev.Position,
        Cells:       ev.Cells,
        OccurredAt:  ev.At.UTC().Format(time.RFC3339),
    }
}

// BoardEvent queues ev for publishing without blocking.
func (p *Publisher) BoardEvent(_ context.Context, ev board.Event) {
    select {
    case p.events <- ToQueueEvent(ev):
    default:
        log.Printf("rabbitmq: event buffer full, dropping %s event for board %s", ev.Kind, ev.BoardID)
    }
}

// Run publishes queued events until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
    for {
        select {
        case <-ctx.Done():
            p.Close()
            return
        case ev := <-p.events:
            pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
            if err := p.send(pctx, ev); err != nil {
                log.Printf("rabbitmq: publish %s event for board %s failed: %v", ev.Kind, ev.BoardID, err)
            }
            cancel()
        }
    }
}

// Publish sends one event to the board.changed queue, dialing the broker
// on first use.  A failed publish drops the connection so the next call
// redials.  Messages are persistent.
func (p *Publisher) Publish(ctx context.Context, event q.BoardEvent) error {
    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channelLocked()
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.BoardQueueName, false, false, pub); err != nil {
        p.resetLocked()
        return err
    }
    return nil
}

func (p *Publisher) channelLocked() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    p.resetLocked()
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, err
    }
    // idempotent; durable so messages survive broker restarts
    if _, err := ch.QueueDeclare(q.BoardQueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, err
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
        p.ch = nil
    }
    if p.conn != nil {
        _ = p.conn.Close()
        p.conn = nil
    }
}

// Close drops the broker connection.
func (p *Publisher) Close() {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.resetLocked()
}
