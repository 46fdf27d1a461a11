package realtime

import (
	"context"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"go.uber.org/zap"
)

// Bridge is the single subscriber loop between a ChangeSource and a Notifier
type Bridge struct {
	source   ChangeSource
	notifier Notifier
	logger   *zap.Logger
}

// NewBridge creates a Bridge
func NewBridge(source ChangeSource, notifier Notifier, logger *zap.Logger) *Bridge {
	return &Bridge{source: source, notifier: notifier, logger: logger}
}

// Run forwards changes until ctx is done or the subscription ends. A failed
// subscription is logged and Run returns; the feed stays usable through
// manual reloads.
func (b *Bridge) Run(ctx context.Context) {
	changes := make(chan Change, 16)
	go func() {
		defer close(changes)
		if err := b.source.Listen(ctx, changes); err != nil {
			b.logger.Error("realtime subscription failed, live updates disabled",
				zap.Error(feed.NewError(feed.RealtimeError, "subscribe", err)))
		}
	}()

	for change := range changes {
		b.logger.Debug("feed source changed", zap.String("table", change.Table))
		b.notifier.Notify(change)
	}
}
