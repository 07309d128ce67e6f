package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/terrence-gonsalves/truespend/internal/amqp"
	"github.com/terrence-gonsalves/truespend/internal/store"
)

// EventWorker consumes import-completed events and verifies each batch
// against the database, logging a per-owner summary. It is the hook point for
// notification fan-out (mail, webhooks) without touching the API server.
type EventWorker struct {
	store store.Store

	batchesSeen  int64
	rowsImported int64
}

func NewEventWorker(st store.Store) *EventWorker {
	return &EventWorker{store: st}
}

// HandleImportCompleted processes a single import-completed message.
func (w *EventWorker) HandleImportCompleted(ctx context.Context, msg *amqp.ImportCompletedMessage) error {
	slog.InfoContext(ctx, "Processing import completed event",
		"batch_id", msg.BatchID,
		"owner_id", msg.OwnerID,
		"filename", msg.Filename)

	// Cross-check the event against the audit record; a missing batch means
	// the message outlived its database row and is safe to drop.
	batches, err := w.store.ListImportBatches(ctx, msg.OwnerID)
	if err != nil {
		return fmt.Errorf("list import batches: %w", err)
	}
	found := false
	for _, b := range batches {
		if b.ID == msg.BatchID {
			found = true
			break
		}
	}
	if !found {
		slog.WarnContext(ctx, "Import batch not found, dropping event",
			"batch_id", msg.BatchID, "owner_id", msg.OwnerID)
		return nil
	}

	atomic.AddInt64(&w.batchesSeen, 1)
	atomic.AddInt64(&w.rowsImported, int64(msg.Imported))

	slog.InfoContext(ctx, "Import batch verified",
		"batch_id", msg.BatchID,
		"imported", msg.Imported,
		"duplicates", msg.Duplicates)
	return nil
}

// Run consumes events until the context is cancelled, logging throughput
// stats on an interval.
func (w *EventWorker) Run(ctx context.Context, client *amqp.Client, statsInterval time.Duration) error {
	if statsInterval <= 0 {
		statsInterval = time.Minute
	}

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				batches, rows := w.Stats()
				slog.InfoContext(ctx, "Worker stats",
					"batches_processed", batches,
					"rows_imported", rows)
			}
		}
	}()

	return client.ConsumeImportCompleted(ctx, func(msg *amqp.ImportCompletedMessage) error {
		return w.HandleImportCompleted(ctx, msg)
	})
}

// Stats returns the totals processed since startup.
func (w *EventWorker) Stats() (batches, rows int64) {
	return atomic.LoadInt64(&w.batchesSeen), atomic.LoadInt64(&w.rowsImported)
}
