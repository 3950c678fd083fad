package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL string) error
	UpdateFeedMetadata(feedName string, metadata FeedMetadata, nextFetch time.Time) error
}

type ArticleRepository interface {
	GetArticles(feedName string, limit int) ([]Article, error)
	GetArticleCount(feedName string) (int, error)

	CheckDuplicate(feedName string, articleID int64) (bool, error)
	UpsertArticle(article Article) error

	GetArticlesForExtraction(feedName string, limit int) ([]ArticleForExtraction, error)
	UpdateExtractedContent(feedName string, articleID int64, content string, extractedAt time.Time) error
}
