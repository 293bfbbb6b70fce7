package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"varicat/pkg/logger"
)

// RevisionChannel is the NOTIFY channel the edit pipeline raises whenever an
// item's active revision flips. The reconciler listens on it to trigger a
// sweep.
const RevisionChannel = "catalog_revision_changed"

// NotifyListener holds a dedicated connection in LISTEN mode. Notifications
// are coalesced: if the consumer has not drained the signal channel yet,
// further notifications are dropped, which is safe because a sweep covers the
// whole catalog anyway.
type NotifyListener struct {
	dsn     string
	channel string
}

// NewNotifyListener creates a listener for a NOTIFY channel.
func NewNotifyListener(dsn, channel string) *NotifyListener {
	return &NotifyListener{dsn: dsn, channel: channel}
}

// Listen blocks receiving notifications and signalling them on notify until
// the context is cancelled. It uses its own connection: a pooled connection
// cannot sit in LISTEN mode.
func (l *NotifyListener) Listen(ctx context.Context, notify chan<- struct{}) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	defer func() { _ = conn.Close(context.Background()) }()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}

	logger.Info(ctx, "listening for notifications", "channel", l.channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}

		logger.Debug(ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload,
		)

		select {
		case notify <- struct{}{}:
		default:
			// Consumer is busy; the pending signal already covers this one.
		}
	}
}
