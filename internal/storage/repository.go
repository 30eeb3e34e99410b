package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"canestats/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when the store holds no matching snapshot.
var ErrNoSnapshot = errors.New("no dataset snapshot")

// Snapshot describes one imported dataset version.
type Snapshot struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	DivisionCount int       `json:"division_count"`
	RecordCount   int       `json:"record_count"`
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	schema  uint
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema, err := migrateSnapshots(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Snapshot store ready", "path", dbPath, "schema_version", schema)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		schema:  schema,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// SchemaVersion is the migration version the store opened at.
func (r *SQLiteRepository) SchemaVersion() uint { return r.schema }

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores the tree as a new snapshot and returns its metadata.
func (r *SQLiteRepository) Save(ctx context.Context, source string, divisions []core.Division) (Snapshot, error) {
	payload, err := json.Marshal(divisions)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}

	ds := core.NewDataset(divisions)
	snap := Snapshot{
		ID:            uuid.NewString(),
		Source:        source,
		CreatedAt:     r.now(),
		DivisionCount: len(ds.Divisions()),
		RecordCount:   len(ds.Records()),
	}

	err = r.queries.InsertSnapshot(ctx, snapshotRow{
		ID:            snap.ID,
		Source:        snap.Source,
		CreatedAt:     snap.CreatedAt,
		DivisionCount: int64(snap.DivisionCount),
		RecordCount:   int64(snap.RecordCount),
		Payload:       payload,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved to SQLite",
		"snapshot_id", snap.ID,
		"source", snap.Source,
		"records", snap.RecordCount)

	return snap, nil
}

// Latest returns the most recent snapshot and its tree.
func (r *SQLiteRepository) Latest(ctx context.Context) (Snapshot, []core.Division, error) {
	row, err := r.queries.GetLatestSnapshot(ctx)
	return decodeRow(row, err)
}

// Get returns one snapshot by id.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (Snapshot, []core.Division, error) {
	row, err := r.queries.GetSnapshot(ctx, id)
	return decodeRow(row, err)
}

// List returns snapshot metadata, newest first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.queries.ListSnapshots(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.meta())
	}
	return out, nil
}

// Prune keeps the newest keep snapshots and deletes the rest.
func (r *SQLiteRepository) Prune(ctx context.Context, keep int) (int64, error) {
	n, err := r.queries.DeleteOldSnapshots(ctx, int64(keep))
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return n, nil
}

func (row snapshotRow) meta() Snapshot {
	return Snapshot{
		ID:            row.ID,
		Source:        row.Source,
		CreatedAt:     row.CreatedAt,
		DivisionCount: int(row.DivisionCount),
		RecordCount:   int(row.RecordCount),
	}
}

func decodeRow(row snapshotRow, err error) (Snapshot, []core.Division, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("get snapshot: %w", err)
	}
	divisions, err := core.DecodeDivisions(bytes.NewReader(row.Payload))
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("snapshot %s: %w", row.ID, err)
	}
	return row.meta(), divisions, nil
}
