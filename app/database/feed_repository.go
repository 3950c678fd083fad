package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ FeedRepository = (*feedRepository)(nil)

type feedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

const feedColumns = `name, feed_url, title, description, link, image_url, language, encoding,
	last_fetched_at, next_fetch_at, created_at, updated_at`

func (r *feedRepository) UpsertFeed(feedName, feedURL string) error {
	_, err := r.db.Exec(`
		INSERT INTO feeds (name, feed_url)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET
			feed_url = excluded.feed_url,
			updated_at = CURRENT_TIMESTAMP
	`, feedName, feedURL)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func (r *feedRepository) UpdateFeedMetadata(feedName string, metadata FeedMetadata, nextFetch time.Time) error {
	now := time.Now().UTC()

	result, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, description = ?, link = ?, image_url = ?, language = ?, encoding = ?,
			last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, metadata.Title, metadata.Description, metadata.Link, metadata.ImageURL, metadata.Language, metadata.Encoding,
		now, nextFetch.UTC(), now, feedName)
	if err != nil {
		return fmt.Errorf("failed to update feed metadata: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("feed '%s' not found", feedName)
	}

	return nil
}

func (r *feedRepository) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, feedName)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

func (r *feedRepository) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	return feeds, rows.Err()
}

func (r *feedRepository) GetFeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feeds: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*Feed, error) {
	var feed Feed
	var lastFetchedAt, nextFetchAt sql.NullTime

	err := s.Scan(&feed.Name, &feed.FeedURL, &feed.Title, &feed.Description, &feed.Link,
		&feed.ImageURL, &feed.Language, &feed.Encoding, &lastFetchedAt, &nextFetchAt,
		&feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		return nil, err
	}

	feed.LastFetchedAt = timePtr(lastFetchedAt)
	feed.NextFetchAt = timePtr(nextFetchAt)

	return &feed, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
