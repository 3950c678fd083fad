package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

var _ ArticleRepository = (*articleRepository)(nil)

type articleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleColumns = `feed_name, article_id, title, description, content, image_url, source, comments,
	author, published_at, tags, enclosure_url, enclosure_length, enclosure_type,
	content_extracted_at, created_at`

func (r *articleRepository) CheckDuplicate(feedName string, articleID int64) (bool, error) {
	var exists int
	err := r.db.QueryRow(`SELECT 1 FROM articles WHERE feed_name = ? AND article_id = ? LIMIT 1`,
		feedName, articleID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return true, nil
}

func (r *articleRepository) UpsertArticle(article Article) error {
	tags, err := json.Marshal(nonNilTags(article.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	// Extracted content survives a re-upsert of the same article.
	_, err = r.db.Exec(`
		INSERT INTO articles (
			feed_name, article_id, title, description, content, image_url, source, comments,
			author, published_at, tags, enclosure_url, enclosure_length, enclosure_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (feed_name, article_id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = CASE WHEN articles.content_extracted_at IS NULL THEN excluded.content ELSE articles.content END,
			image_url = excluded.image_url,
			source = excluded.source,
			comments = excluded.comments,
			author = excluded.author,
			published_at = excluded.published_at,
			tags = excluded.tags,
			enclosure_url = excluded.enclosure_url,
			enclosure_length = excluded.enclosure_length,
			enclosure_type = excluded.enclosure_type
	`, article.FeedName, article.ArticleID, article.Title, article.Description, article.Content,
		article.ImageURL, article.Source, article.Comments, article.Author, nullTime(article.PublishedAt),
		string(tags), article.EnclosureURL, article.EnclosureLength, article.EnclosureType)
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

// GetArticles returns the newest articles first; undated articles come last.
func (r *articleRepository) GetArticles(feedName string, limit int) ([]Article, error) {
	rows, err := r.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE feed_name = ?
		ORDER BY published_at IS NULL, published_at DESC, created_at DESC
		LIMIT ?
	`, feedName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}

	return articles, rows.Err()
}

func (r *articleRepository) GetArticleCount(feedName string) (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM articles WHERE feed_name = ?`, feedName).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

func (r *articleRepository) GetArticlesForExtraction(feedName string, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT article_id, source
		FROM articles
		WHERE feed_name = ? AND content = '' AND source != '' AND content_extracted_at IS NULL
		ORDER BY published_at IS NULL, published_at DESC
		LIMIT ?
	`, feedName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var article ArticleForExtraction
		if err := rows.Scan(&article.ArticleID, &article.Source); err != nil {
			return nil, fmt.Errorf("failed to scan article for extraction: %w", err)
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// UpdateExtractedContent stores content together with the extraction time.
// Once content_extracted_at is set the article leaves the extraction queue.
func (r *articleRepository) UpdateExtractedContent(feedName string, articleID int64, content string, extractedAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE articles
		SET content = ?, content_extracted_at = ?
		WHERE feed_name = ? AND article_id = ?
	`, content, extractedAt.UTC(), feedName, articleID)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

func scanArticle(s scanner) (*Article, error) {
	var article Article
	var publishedAt, extractedAt sql.NullTime
	var tags string

	err := s.Scan(&article.FeedName, &article.ArticleID, &article.Title, &article.Description,
		&article.Content, &article.ImageURL, &article.Source, &article.Comments, &article.Author,
		&publishedAt, &tags, &article.EnclosureURL, &article.EnclosureLength, &article.EnclosureType,
		&extractedAt, &article.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &article.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}

	article.PublishedAt = timePtr(publishedAt)
	article.ContentExtractedAt = timePtr(extractedAt)

	return &article, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
