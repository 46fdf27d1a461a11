// Package realtime turns backend change notifications into feed reloads pushed
// to connected browsers.
package realtime

import (
	"context"

	"github.com/anonto42/beawarely-feed/internal/models"
)

// Change says that something in Table changed. No row payload is carried.
type Change struct {
	Table string `json:"table"`
}

// ChangeSource delivers changes on the feed source tables until ctx is done or
// the subscription fails. It must not send on out after returning.
type ChangeSource interface {
	Listen(ctx context.Context, out chan<- Change) error
}

// Notifier receives every change observed by the Bridge
type Notifier interface {
	Notify(change Change)
}

func isSourceTable(table string) bool {
	for _, t := range models.SourceTables {
		if t == table {
			return true
		}
	}
	return false
}

func send(ctx context.Context, out chan<- Change, change Change) bool {
	select {
	case out <- change:
		return true
	case <-ctx.Done():
		return false
	}
}
