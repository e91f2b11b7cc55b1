// Package queue defines the board activity messages exchanged over RabbitMQ
// and the consumer that records them.
package queue

import (
    "fmt"
    "strings"
    "time"
)

// BoardQueueName is the durable queue board activity is published to.
const BoardQueueName = "board.changed"

// BoardEvent is published after every committed drop.  It carries enough
// for downstream consumers to log or build activity feeds without reading
// board storage.
type BoardEvent struct {
    Kind        string `json:"kind"` // placed | moved | shelved
    BoardID     string `json:"board_id"`
    BlockID     string `json:"block_id"`
    PrevBlockID string `json:"prev_block_id,omitempty"`
    MovieID     int64  `json:"movie_id"`
    MovieTitle  string `json:"movie_title"`
    Variant     string `json:"variant"`
    Position    int    `json:"position"`
    Cells       []int  `json:"cells,omitempty"`
    OccurredAt  string `json:"occurred_at"` // RFC3339
}

// LogLine renders ev as the single line appended to the activity log.
func (ev BoardEvent) LogLine() string {
    cells := "[]"
    if len(ev.Cells) > 0 {
        parts := make([]string, len(ev.Cells))
        for i, c := range ev.Cells {
            parts[i] = fmt.Sprint(c)
        }
        cells = "[" + strings.Join(parts, ",") + "]"
    }
    at := ev.OccurredAt
    if at == "" {
        at = time.Now().UTC().Format(time.RFC3339)
    }
    line := fmt.Sprintf("[%s] Block %s | board_id=%s | block_id=%s", at, ev.Kind, ev.BoardID, ev.BlockID)
    if ev.PrevBlockID != "" {
        line += " | prev_block_id=" + ev.PrevBlockID
    }
    return line + fmt.Sprintf(" | movie_id=%d | movie=%q | variant=%s | position=%d | cells=%s\n",
        ev.MovieID, ev.MovieTitle, ev.Variant, ev.Position, cells)
}
