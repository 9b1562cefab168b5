package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SnapshotInfo describes one stored collection without its data
type SnapshotInfo struct {
	Collection string
	Version    int64
	Size       int
	UpdatedAt  time.Time
}

// Load returns the stored snapshot of a collection, or nil when it was never saved
func (db *DB) Load(ctx context.Context, collection string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE collection = ?`, collection).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}
	return data, nil
}

// Save replaces the snapshot of a collection and bumps its version
func (db *DB) Save(ctx context.Context, collection string, snapshot []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := db.ExecContext(ctx, `
		INSERT INTO snapshots (collection, data, updated_at, version)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(collection) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at,
			version = snapshots.version + 1`,
		collection, snapshot, now)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", collection, err)
	}
	return nil
}

// Collections lists the stored snapshots ordered by name
func (db *DB) Collections(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT collection, version, length(data), updated_at FROM snapshots ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			updated string
		)
		if err := rows.Scan(&info.Collection, &info.Version, &info.Size, &updated); err != nil {
			return nil, err
		}
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Clear deletes every stored snapshot
func (db *DB) Clear(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
