package database

import (
	"database/sql"
	"fmt"
	"time"
)

// ResponseRepository stores downloaded documents keyed by URL. It satisfies
// the downloader's response cache.
type ResponseRepository struct {
	db *DB
}

func NewResponseRepository(db *DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

func (r *ResponseRepository) Get(url string, maxAge time.Duration) ([]byte, bool, error) {
	var body []byte
	var fetchedAt time.Time

	err := r.db.QueryRow(`SELECT body, fetched_at FROM http_responses WHERE url = ?`, url).Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	if time.Since(fetchedAt) > maxAge {
		return nil, false, nil
	}
	return body, true, nil
}

func (r *ResponseRepository) Put(url string, body []byte) error {
	_, err := r.db.Exec(`
		INSERT INTO http_responses (url, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`, url, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

func (r *ResponseRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM http_responses`); err != nil {
		return fmt.Errorf("failed to clear responses: %w", err)
	}
	return nil
}
