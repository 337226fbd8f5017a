package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/conorfennell/kapp/internal/domain"
)

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(ctx context.Context, path string, typ domain.SourceType) (int64, error) {
	var id int64
	err := db.conn.QueryRowxContext(ctx, db.rebind(`
		INSERT INTO sources (path, type) VALUES (?, ?) RETURNING id
	`), path, string(typ)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. It returns nil, nil when
// the source is not registered.
func (db *DB) FindSourceByPath(ctx context.Context, path string) (*domain.Source, error) {
	var s domain.Source
	err := db.conn.GetContext(ctx, &s, db.rebind(`
		SELECT id, path, type, last_scanned FROM sources WHERE path = ?
	`), path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Source not found
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources(ctx context.Context) ([]domain.Source, error) {
	sources := []domain.Source{}
	err := db.conn.SelectContext(ctx, &sources, `SELECT id, path, type, last_scanned FROM sources ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	return sources, nil
}

// DeleteSource removes a source together with its decks and cards.
func (db *DB) DeleteSource(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, db.rebind(`DELETE FROM sources WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateSourceLastScanned stamps a source with the time of its last sync.
func (db *DB) UpdateSourceLastScanned(ctx context.Context, sourceID int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx, db.rebind(`
		UPDATE sources SET last_scanned = ? WHERE id = ?
	`), at.UTC(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}
