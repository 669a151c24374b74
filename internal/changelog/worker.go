package changelog

import (
	"context"
	"log/slog"
)

// Worker drains an event channel into the store. The server wires Publisher
// straight to its store and appends synchronously; deployments that buffer
// mutations through a channel run a Worker over the inbox instead. A failed
// append is logged and the event dropped rather than stalling every later
// event behind it.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run loops until the context ends and returns its error.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "changelog append failed",
					"event_id", event.ID,
					"action", string(event.Action),
					"error", err,
				)
			}
		}
	}
}
