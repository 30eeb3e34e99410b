// Package snapshot serves the most recently imported dataset stored in
// SQLite.
package snapshot

import (
	"context"
	"fmt"

	"canestats/internal/core"
	"canestats/internal/dataset"
	"canestats/internal/storage"
)

// Store is the read side of the snapshot repository.
type Store interface {
	Latest(ctx context.Context) (storage.Snapshot, []core.Division, error)
	Get(ctx context.Context, id string) (storage.Snapshot, []core.Division, error)
}

type Loader struct {
	store Store
}

var _ dataset.Loader = (*Loader)(nil)

func New(store Store) *Loader {
	return &Loader{store: store}
}

func (l *Loader) Source() string { return "sqlite" }

// Load returns the latest snapshot's tree.
func (l *Loader) Load(ctx context.Context) ([]core.Division, error) {
	_, divisions, err := l.LoadLatest(ctx)
	return divisions, err
}

// LoadLatest also returns the snapshot metadata.
func (l *Loader) LoadLatest(ctx context.Context) (storage.Snapshot, []core.Division, error) {
	snap, divisions, err := l.store.Latest(ctx)
	if err != nil {
		return storage.Snapshot{}, nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, divisions, nil
}

// LoadID returns one specific snapshot.
func (l *Loader) LoadID(ctx context.Context, id string) (storage.Snapshot, []core.Division, error) {
	snap, divisions, err := l.store.Get(ctx, id)
	if err != nil {
		return storage.Snapshot{}, nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, divisions, nil
}
