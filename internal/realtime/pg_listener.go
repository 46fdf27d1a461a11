package realtime

import (
	"context"
	"fmt"

	"github.com/anonto42/beawarely-feed/internal/repositories"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// PGListener receives table changes through Postgres LISTEN/NOTIFY. The
// triggers installed by repositories.Migrate publish the table name as payload.
type PGListener struct {
	connStr string
	channel string
	logger  *zap.Logger
}

// NewPGListener creates a PGListener on the feed change channel
func NewPGListener(connStr string, logger *zap.Logger) *PGListener {
	return &PGListener{connStr: connStr, channel: repositories.ChangeChannel, logger: logger}
}

// Listen opens a dedicated connection and forwards notifications to out
func (l *PGListener) Listen(ctx context.Context, out chan<- Change) error {
	conn, err := pgx.Connect(ctx, l.connStr)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info("listening for feed changes", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		if !isSourceTable(n.Payload) {
			continue
		}
		if !send(ctx, out, Change{Table: n.Payload}) {
			return nil
		}
	}
}
