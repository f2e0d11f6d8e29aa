package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"github.com/azrishaharin/KonMari/internal/db"
)

// channel is the NOTIFY channel the row_change triggers publish on.
const channel = "konmari_changes"

// reconnectDelay spaces out redial attempts after a connection failure.
const reconnectDelay = 3 * time.Second

// Listener holds a dedicated Postgres connection on LISTEN and forwards
// decoded notifications to a Broker.
type Listener struct {
	dsn    string
	broker *Broker
	logger *log.Logger
}

// NewListener builds a Listener publishing into broker.
func NewListener(dsn string, broker *Broker, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Listener{dsn: dsn, broker: broker, logger: logger}
}

// Run listens until ctx is done, redialing after connection errors.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Printf("changefeed: listener error=%v, reconnecting", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := db.ConnectListener(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		return err
	}

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return err
		}

		var e Event
		if err := json.Unmarshal([]byte(notification.Payload), &e); err != nil {
			l.logger.Printf("changefeed: bad payload %q: %v", notification.Payload, err)
			continue
		}
		l.broker.Publish(e)
	}
}
