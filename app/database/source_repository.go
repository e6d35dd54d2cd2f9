package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type SourceRepositoryImpl struct {
	db *DB
}

func NewSourceRepository(db *DB) *SourceRepositoryImpl {
	return &SourceRepositoryImpl{db: db}
}

// UpsertSource inserts a source or refreshes its URL and type from configuration
func (r *SourceRepositoryImpl) UpsertSource(sourceName, sourceURL, sourceType string) error {
	now := formatTime(time.Now())

	_, err := r.db.Exec(`
		INSERT INTO sources (name, url, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			type = excluded.type,
			updated_at = excluded.updated_at
	`, sourceName, sourceURL, sourceType, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetSource returns nil without error when the source is unknown
func (r *SourceRepositoryImpl) GetSource(sourceName string) (*Source, error) {
	var source Source
	var lastFetched, nextFetch sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRow(`
		SELECT name, url, type, last_fetched_at, next_fetch_at, last_error, created_at, updated_at
		FROM sources
		WHERE name = ?
	`, sourceName).Scan(
		&source.Name, &source.URL, &source.Type, &lastFetched, &nextFetch,
		&source.LastError, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	if source.LastFetchedAt, err = parseNullableTime(lastFetched); err != nil {
		return nil, err
	}
	if source.NextFetchAt, err = parseNullableTime(nextFetch); err != nil {
		return nil, err
	}
	if source.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if source.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &source, nil
}

func (r *SourceRepositoryImpl) GetSourceCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}

// UpdateFetchStatus records the outcome of a fetch attempt. An empty
// lastError marks the attempt as successful.
func (r *SourceRepositoryImpl) UpdateFetchStatus(sourceName string, fetchedAt time.Time, nextFetch time.Time, lastError string) error {
	result, err := r.db.Exec(`
		UPDATE sources
		SET last_fetched_at = ?, next_fetch_at = ?, last_error = ?, updated_at = ?
		WHERE name = ?
	`, formatTime(fetchedAt), formatNullableTime(&nextFetch), lastError, formatTime(time.Now()), sourceName)
	if err != nil {
		return fmt.Errorf("failed to update fetch status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("source not found: %s", sourceName)
	}

	return nil
}
