package storage

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type snapshotRow struct {
	ID            string
	Source        string
	CreatedAt     time.Time
	DivisionCount int64
	RecordCount   int64
	Payload       []byte
}

const insertSnapshot = `
INSERT INTO snapshots (id, source, created_at, division_count, record_count, payload)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertSnapshot(ctx context.Context, row snapshotRow) error {
	_, err := q.db.ExecContext(ctx, insertSnapshot,
		row.ID, row.Source, row.CreatedAt, row.DivisionCount, row.RecordCount, row.Payload)
	return err
}

const getLatestSnapshot = `
SELECT id, source, created_at, division_count, record_count, payload
FROM snapshots
ORDER BY created_at DESC, rowid DESC
LIMIT 1`

func (q *Queries) GetLatestSnapshot(ctx context.Context) (snapshotRow, error) {
	var r snapshotRow
	err := q.db.QueryRowContext(ctx, getLatestSnapshot).
		Scan(&r.ID, &r.Source, &r.CreatedAt, &r.DivisionCount, &r.RecordCount, &r.Payload)
	return r, err
}

const getSnapshot = `
SELECT id, source, created_at, division_count, record_count, payload
FROM snapshots
WHERE id = ?`

func (q *Queries) GetSnapshot(ctx context.Context, id string) (snapshotRow, error) {
	var r snapshotRow
	err := q.db.QueryRowContext(ctx, getSnapshot, id).
		Scan(&r.ID, &r.Source, &r.CreatedAt, &r.DivisionCount, &r.RecordCount, &r.Payload)
	return r, err
}

const listSnapshots = `
SELECT id, source, created_at, division_count, record_count
FROM snapshots
ORDER BY created_at DESC, rowid DESC
LIMIT ?`

func (q *Queries) ListSnapshots(ctx context.Context, limit int64) ([]snapshotRow, error) {
	rows, err := q.db.QueryContext(ctx, listSnapshots, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []snapshotRow
	for rows.Next() {
		var r snapshotRow
		if err := rows.Scan(&r.ID, &r.Source, &r.CreatedAt, &r.DivisionCount, &r.RecordCount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteSnapshotsBefore = `
DELETE FROM snapshots
WHERE id NOT IN (SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?)`

func (q *Queries) DeleteOldSnapshots(ctx context.Context, keep int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSnapshotsBefore, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
