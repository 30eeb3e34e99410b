package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"canestats/internal/amqp"
	"canestats/internal/core"
	"canestats/internal/dataset"
	"canestats/internal/metrics"
	"canestats/internal/storage"
)

// SnapshotStore is the write side of the snapshot repository.
type SnapshotStore interface {
	Save(ctx context.Context, source string, divisions []core.Division) (storage.Snapshot, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// Publisher announces stored snapshots.
type Publisher interface {
	PublishSnapshot(ctx context.Context, msg *amqp.SnapshotPublishedMessage) error
}

// ImportWorker copies the configured source into the snapshot store and
// announces each new snapshot.
type ImportWorker struct {
	loader    dataset.Loader
	store     SnapshotStore
	publisher Publisher
	metrics   *metrics.Metrics
	keep      int
}

// NewImportWorker creates a worker. publisher and m may be nil; keep <= 0
// disables pruning.
func NewImportWorker(loader dataset.Loader, store SnapshotStore, publisher Publisher, m *metrics.Metrics, keep int) *ImportWorker {
	return &ImportWorker{
		loader:    loader,
		store:     store,
		publisher: publisher,
		metrics:   m,
		keep:      keep,
	}
}

// RunOnce performs a single import.
func (w *ImportWorker) RunOnce(ctx context.Context) (storage.Snapshot, error) {
	source := w.loader.Source()

	divisions, err := w.loader.Load(ctx)
	if err != nil {
		w.record(source, "load_error")
		return storage.Snapshot{}, fmt.Errorf("load %s dataset: %w", source, err)
	}

	snap, err := w.store.Save(ctx, source, divisions)
	if err != nil {
		w.record(source, "store_error")
		return storage.Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	if snap.RecordCount == 0 {
		slog.WarnContext(ctx, "Imported dataset has no taluka records", "snapshot_id", snap.ID, "source", source)
	}

	if w.keep > 0 {
		if n, err := w.store.Prune(ctx, w.keep); err != nil {
			slog.WarnContext(ctx, "Failed to prune old snapshots", "error", err)
		} else if n > 0 {
			slog.InfoContext(ctx, "Pruned old snapshots", "count", n)
		}
	}

	if w.publisher != nil {
		msg := amqp.NewSnapshotPublishedMessage(snap.ID, snap.Source, snap.RecordCount)
		if err := w.publisher.PublishSnapshot(ctx, msg); err != nil {
			// The snapshot is stored; servers pick it up on their next reload.
			slog.ErrorContext(ctx, "Failed to publish snapshot message", "snapshot_id", snap.ID, "error", err)
			w.record(source, "publish_error")
			return snap, nil
		}
	}

	w.record(source, "success")
	slog.InfoContext(ctx, "Dataset imported",
		"snapshot_id", snap.ID,
		"source", source,
		"divisions", snap.DivisionCount,
		"records", snap.RecordCount)
	return snap, nil
}

// Run imports immediately and then on every interval until ctx is done.
// Failed runs are logged and retried on the next tick.
func (w *ImportWorker) Run(ctx context.Context, interval time.Duration) error {
	if _, err := w.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial import failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Import worker stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "Import failed", "error", err)
			}
		}
	}
}

func (w *ImportWorker) record(source, result string) {
	if w.metrics != nil {
		w.metrics.Imports.WithLabelValues(source, result).Inc()
	}
}
